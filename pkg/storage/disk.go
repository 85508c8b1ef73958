package storage

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/cockroachdb/pebble"

	"github.com/ssargent/dbkey/pkg/keycodec"
	"github.com/ssargent/dbkey/pkg/schema"
)

const (
	schemaFile = "schema.yaml"
	dataDir    = "data"
)

// DiskStore is a Store backed by pebble. The data directory records the schema
// it was created with and refuses to open for an incompatible key type.
type DiskStore struct {
	desc *keycodec.Descriptor
	db   *pebble.DB
	sync *pebble.WriteOptions

	closed atomic.Bool
}

// DiskOptions tunes a DiskStore.
type DiskOptions struct {
	// Sync makes every write durable before it returns.
	Sync bool
	// Pebble is passed to pebble.Open. Nil selects pebble's defaults.
	Pebble *pebble.Options
}

// OpenDisk opens or creates a store for keys of desc under dir.
func OpenDisk(dir string, desc *keycodec.Descriptor, opts DiskOptions) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := bindSchema(filepath.Join(dir, schemaFile), desc); err != nil {
		return nil, err
	}

	popts := opts.Pebble
	if popts == nil {
		popts = &pebble.Options{}
	}
	db, err := pebble.Open(filepath.Join(dir, dataDir), popts)
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble: %w", err)
	}

	wo := pebble.NoSync
	if opts.Sync {
		wo = pebble.Sync
	}
	return &DiskStore{desc: desc, db: db, sync: wo}, nil
}

// bindSchema writes the schema of desc on first use and afterwards checks
// that desc has the recorded name and field layout.
func bindSchema(path string, desc *keycodec.Descriptor) error {
	recorded, err := schema.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return schema.Save(desc, path)
	}
	if err != nil {
		return fmt.Errorf("failed to read store schema: %w", err)
	}
	if recorded.Name() != desc.Name() || !sameLayout(recorded, desc) {
		return fmt.Errorf("%w: directory holds %s %v, opened as %s %v",
			ErrDescriptorMismatch, recorded.Name(), recorded.FieldSizes(), desc.Name(), desc.FieldSizes())
	}
	return nil
}

func (s *DiskStore) Descriptor() *keycodec.Descriptor { return s.desc }

func (s *DiskStore) check(k keycodec.Key) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return checkKey(s.desc, k)
}

func (s *DiskStore) Put(key keycodec.Key, value []byte) error {
	if err := s.check(key); err != nil {
		return err
	}
	if err := s.db.Set(key.Bytes(), value, s.sync); err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	return nil
}

// PutBatch writes all pairs in one atomic pebble batch.
func (s *DiskStore) PutBatch(keys []keycodec.Key, values [][]byte) error {
	if s.closed.Load() {
		return ErrClosed
	}
	b := s.db.NewBatch()
	defer b.Close()
	for i, key := range keys {
		if err := s.check(key); err != nil {
			return err
		}
		if err := b.Set(key.Bytes(), values[i], nil); err != nil {
			return fmt.Errorf("failed to batch %s: %w", key, err)
		}
	}
	if err := b.Commit(s.sync); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

func (s *DiskStore) Get(key keycodec.Key) ([]byte, error) {
	if err := s.check(key); err != nil {
		return nil, err
	}
	data, closer, err := s.db.Get(key.Bytes())
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	defer closer.Close()

	return bytes.Clone(data), nil
}

func (s *DiskStore) Delete(key keycodec.Key) error {
	if err := s.check(key); err != nil {
		return err
	}
	if err := s.db.Delete(key.Bytes(), s.sync); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Scan iterates a pebble snapshot of [from, to]. Keys all have the same
// width, so to followed by a zero byte is an exclusive upper bound that
// admits to itself and nothing after it.
func (s *DiskStore) Scan(from, to keycodec.Key, fn func(keycodec.Key, []byte) bool) error {
	if err := s.check(from); err != nil {
		return err
	}
	if err := s.check(to); err != nil {
		return err
	}
	if from.Compare(to) > 0 {
		return nil
	}

	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: from.Bytes(),
		UpperBound: append(bytes.Clone(to.Bytes()), 0x00),
	})
	if err != nil {
		return fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if !fn(s.desc.FromBytes(iter.Key()), bytes.Clone(iter.Value())) {
			break
		}
	}
	return iter.Error()
}

// Compact asks pebble to compact the whole key space.
func (s *DiskStore) Compact() error {
	if s.closed.Load() {
		return ErrClosed
	}
	lo := make([]byte, s.desc.Width())
	hi := append(bytes.Repeat([]byte{0xFF}, s.desc.Width()), 0x00)
	if err := s.db.Compact(lo, hi, true); err != nil {
		return fmt.Errorf("failed to compact: %w", err)
	}
	return nil
}

func (s *DiskStore) Close() error {
	if s.closed.Swap(true) {
		return ErrClosed
	}
	return s.db.Close()
}
