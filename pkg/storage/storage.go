// Package storage keeps values under encoded keys. Every store iterates in
// byte order of the keys, which is the tuple order of their fields.
package storage

import (
	"errors"
	"fmt"

	"github.com/segmentio/ksuid"

	"github.com/ssargent/dbkey/pkg/keycodec"
)

var (
	ErrNotFound           = errors.New("storage: key not found")
	ErrClosed             = errors.New("storage: store is closed")
	ErrDescriptorMismatch = errors.New("storage: key does not belong to the store's key type")
)

// Store is an ordered key-value store for keys of one descriptor.
type Store interface {
	// Descriptor returns the key type of the store.
	Descriptor() *keycodec.Descriptor
	Put(key keycodec.Key, value []byte) error
	Get(key keycodec.Key) ([]byte, error)
	Delete(key keycodec.Key) error
	// Scan calls fn for every key in [from, to] in ascending order until fn
	// returns false.
	Scan(from, to keycodec.Key, fn func(key keycodec.Key, value []byte) bool) error
	Close() error
}

// Compacter is implemented by stores that can reclaim the space of
// overwritten and deleted values.
type Compacter interface {
	Compact() error
}

// batchPutter is implemented by stores that can commit many writes at once.
type batchPutter interface {
	PutBatch(keys []keycodec.Key, values [][]byte) error
}

// checkKey rejects keys built from another key type. Descriptors parsed twice
// from the same schema are accepted when name and layout agree.
func checkKey(desc *keycodec.Descriptor, k keycodec.Key) error {
	kd := k.Descriptor()
	if kd == desc {
		return nil
	}
	if kd == nil || kd.Name() != desc.Name() || !sameLayout(kd, desc) {
		return fmt.Errorf("%w: want %s", ErrDescriptorMismatch, desc.Name())
	}
	return nil
}

func sameLayout(a, b *keycodec.Descriptor) bool {
	if a.NumFields() != b.NumFields() {
		return false
	}
	for i := 0; i < a.NumFields(); i++ {
		if a.Field(i).Type != b.Field(i).Type {
			return false
		}
	}
	return true
}

// PutAuto stores value under a key built from args with field set to a new
// KSUID. The field must be a 20-byte array. KSUIDs sort by creation time, so
// keys written later sort after earlier ones with equal leading fields.
func PutAuto(s Store, args keycodec.Args, field string, value []byte) (keycodec.Key, error) {
	filled := make(keycodec.Args, len(args)+1)
	for name, v := range args {
		filled[name] = v
	}
	filled[field] = keycodec.ArrayValue(ksuid.New().Bytes())

	key, err := s.Descriptor().FromArgs(filled)
	if err != nil {
		return keycodec.Key{}, fmt.Errorf("failed to build key: %w", err)
	}
	if err := s.Put(key, value); err != nil {
		return keycodec.Key{}, err
	}
	return key, nil
}
