package storage

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/dbkey/pkg/keycodec"
)

// Row is one record of a bulk load: field literals plus the value to store.
// Fields left out take their defaults.
type Row struct {
	Fields map[string]string `yaml:"fields"`
	Value  string            `yaml:"value"`
}

// ReadRows decodes a YAML document of the form
//
//	rows:
//	  - fields: {stream: 7, seq: -1}
//	    value: hello
func ReadRows(r io.Reader) ([]Row, error) {
	var doc struct {
		Rows []Row `yaml:"rows"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse rows: %w", err)
	}
	return doc.Rows, nil
}

// Load encodes rows with up to workers goroutines and writes them to s in
// input order, so a later row wins over an earlier row with the same key. The
// first encoding error cancels the remaining work and nothing is written.
func Load(ctx context.Context, s Store, rows []Row, workers int) (int, error) {
	desc := s.Descriptor()
	keys := make([]keycodec.Key, len(rows))
	values := make([][]byte, len(rows))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := range rows {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			k, err := desc.FromLiterals(rows[i].Fields)
			if err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			keys[i] = k
			values[i] = []byte(rows[i].Value)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if b, ok := s.(batchPutter); ok {
		if err := b.PutBatch(keys, values); err != nil {
			return 0, err
		}
		return len(keys), nil
	}
	for i, k := range keys {
		if err := s.Put(k, values[i]); err != nil {
			return i, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return len(keys), nil
}
