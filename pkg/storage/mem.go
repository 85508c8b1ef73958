package storage

import (
	"bytes"
	"sync/atomic"

	"github.com/ssargent/dbkey/pkg/bptree"
	"github.com/ssargent/dbkey/pkg/keycodec"
)

// MemStore is a Store held in an in-memory B+tree.
type MemStore struct {
	desc   *keycodec.Descriptor
	tree   *bptree.BPlusTree[[]byte, []byte]
	closed atomic.Bool
}

// NewMemStore returns an empty store for keys of desc. order is the B+tree
// branching factor; values below 3 select bptree.DefaultOrder.
func NewMemStore(desc *keycodec.Descriptor, order int) *MemStore {
	return &MemStore{
		desc: desc,
		tree: bptree.NewBPlusTree[[]byte, []byte](order, bytes.Compare),
	}
}

func (s *MemStore) Descriptor() *keycodec.Descriptor { return s.desc }

func (s *MemStore) check(k keycodec.Key) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return checkKey(s.desc, k)
}

func (s *MemStore) Put(key keycodec.Key, value []byte) error {
	if err := s.check(key); err != nil {
		return err
	}
	s.tree.Insert(bytes.Clone(key.Bytes()), bytes.Clone(value))
	return nil
}

func (s *MemStore) Get(key keycodec.Key) ([]byte, error) {
	if err := s.check(key); err != nil {
		return nil, err
	}
	v, ok := s.tree.Search(key.Bytes())
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(v), nil
}

func (s *MemStore) Delete(key keycodec.Key) error {
	if err := s.check(key); err != nil {
		return err
	}
	s.tree.Delete(key.Bytes())
	return nil
}

// Scan snapshots the range before calling fn, so fn may write to the store.
func (s *MemStore) Scan(from, to keycodec.Key, fn func(keycodec.Key, []byte) bool) error {
	if err := s.check(from); err != nil {
		return err
	}
	if err := s.check(to); err != nil {
		return err
	}

	type entry struct{ k, v []byte }
	var entries []entry
	s.tree.Ascend(from.Bytes(), to.Bytes(), func(k, v []byte) bool {
		entries = append(entries, entry{k, bytes.Clone(v)})
		return true
	})
	for _, e := range entries {
		if !fn(s.desc.FromBytes(e.k), e.v) {
			break
		}
	}
	return nil
}

// Len returns the number of stored keys.
func (s *MemStore) Len() int { return s.tree.Len() }

func (s *MemStore) Close() error {
	s.closed.Store(true)
	return nil
}
