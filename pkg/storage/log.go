package storage

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/ssargent/dbkey/pkg/bptree"
	"github.com/ssargent/dbkey/pkg/codec"
	"github.com/ssargent/dbkey/pkg/keycodec"
)

const (
	logFile      = "active.log"
	logBufferLen = 64 * 1024
)

// LogOptions tunes a LogStore.
type LogOptions struct {
	// Sync fsyncs the log after every write.
	Sync bool
	// Order is the branching factor of the in-memory index.
	Order int
}

// Recovery reports what OpenLog found in an existing log.
type Recovery struct {
	RecordsValidated int64
	// BytesTruncated counts the bytes of a torn or corrupt tail that were cut
	// off the log.
	BytesTruncated int64
}

// LogStats holds statistics about a LogStore
type LogStats struct {
	Keys     int
	DataSize int64
}

type logEntry struct {
	offset int64
	size   int
}

// LogStore is a Store kept in an append-only log of checksummed records. An
// in-memory B+tree maps each live key to its latest record, so lookups cost
// one read and scans walk the tree in key order. Deletes append tombstones;
// Compact rewrites the log without dead records.
type LogStore struct {
	desc  *keycodec.Descriptor
	codec *codec.RecordCodec
	opts  LogOptions
	path  string

	mu       sync.RWMutex
	file     *os.File
	writer   *bufio.Writer
	offset   int64
	index    *bptree.BPlusTree[[]byte, logEntry]
	recovery Recovery
	closed   bool
}

// OpenLog opens or creates a log store for keys of desc under dir, replaying
// the log to rebuild the index.
func OpenLog(dir string, desc *keycodec.Descriptor, opts LogOptions) (*LogStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := bindSchema(filepath.Join(dir, schemaFile), desc); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, logFile)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}

	s := &LogStore{
		desc:  desc,
		codec: codec.NewRecordCodec(),
		opts:  opts,
		path:  path,
		file:  file,
		index: bptree.NewBPlusTree[[]byte, logEntry](opts.Order, bytes.Compare),
	}
	if err := s.replay(); err != nil {
		file.Close()
		return nil, err
	}
	if _, err := file.Seek(s.offset, io.SeekStart); err != nil {
		file.Close()
		return nil, err
	}
	s.writer = bufio.NewWriterSize(file, logBufferLen)
	return s, nil
}

// replay rebuilds the index from the log. It stops at the first torn or
// corrupt record and truncates the log there.
func (s *LogStore) replay() error {
	info, err := s.file.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	r := bufio.NewReaderSize(io.NewSectionReader(s.file, 0, size), logBufferLen)

	var offset int64
	for {
		// A header naming another key width is garbage; stop before its
		// sizes are trusted.
		if head, err := r.Peek(codec.HeaderSize); err == nil {
			if h, err := codec.DecodeHeader(head); err == nil && h.KeySize != s.desc.Width() {
				break
			}
		}
		rec, n, err := s.codec.ReadRecordLimit(r, size-offset)
		if err == io.EOF {
			break
		}
		if errors.Is(err, codec.ErrShortRecord) || errors.Is(err, codec.ErrChecksum) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read log: %w", err)
		}
		if len(rec.Key) != s.desc.Width() {
			break
		}

		if rec.Tombstone() {
			s.index.Delete(rec.Key)
		} else {
			s.index.Insert(rec.Key, logEntry{offset: offset, size: n})
		}
		offset += int64(n)
		s.recovery.RecordsValidated++
	}

	if offset < size {
		if err := s.file.Truncate(offset); err != nil {
			return fmt.Errorf("failed to truncate log: %w", err)
		}
		s.recovery.BytesTruncated = size - offset
	}
	s.offset = offset
	return nil
}

// Recovery returns what was found when the log was opened.
func (s *LogStore) Recovery() Recovery { return s.recovery }

// Stats returns store statistics
func (s *LogStore) Stats() LogStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return LogStats{Keys: s.index.Len(), DataSize: s.offset}
}

func (s *LogStore) Descriptor() *keycodec.Descriptor { return s.desc }

func (s *LogStore) check(k keycodec.Key) error {
	if s.closed {
		return ErrClosed
	}
	return checkKey(s.desc, k)
}

// appendRecord buffers r at offset at and returns where it will live in the
// log. s.offset only moves in commit.
func (s *LogStore) appendRecord(r *codec.Record, at int64) (logEntry, error) {
	data, err := s.codec.Encode(r)
	if err != nil {
		return logEntry{}, err
	}
	if _, err := s.writer.Write(data); err != nil {
		return logEntry{}, fmt.Errorf("failed to append to log: %w", err)
	}
	return logEntry{offset: at, size: len(data)}, nil
}

// flush makes buffered records visible to reads, and durable with Sync.
func (s *LogStore) flush() error {
	if err := s.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush log: %w", err)
	}
	if s.opts.Sync {
		return s.file.Sync()
	}
	return nil
}

// commit flushes the records buffered since the last commit and moves the end
// of the log to next. On failure the log is cut back to the last commit and
// the writer is reset, so a retry starts from a consistent offset.
func (s *LogStore) commit(next int64, err error) error {
	if err == nil {
		err = s.flush()
	}
	if err != nil {
		s.rollback()
		return err
	}
	s.offset = next
	return nil
}

func (s *LogStore) rollback() {
	s.writer.Reset(s.file)
	if err := s.file.Truncate(s.offset); err != nil {
		return
	}
	_, _ = s.file.Seek(s.offset, io.SeekStart)
}

func (s *LogStore) Put(key keycodec.Key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(key); err != nil {
		return err
	}
	k := bytes.Clone(key.Bytes())
	e, err := s.appendRecord(codec.NewRecord(k, value), s.offset)
	if err := s.commit(s.offset+int64(e.size), err); err != nil {
		return err
	}
	s.index.Insert(k, e)
	return nil
}

// PutBatch appends all pairs with a single flush.
func (s *LogStore) PutBatch(keys []keycodec.Key, values [][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		if err := s.check(key); err != nil {
			return err
		}
	}
	entries := make([]logEntry, len(keys))
	next := s.offset
	var err error
	for i, key := range keys {
		if entries[i], err = s.appendRecord(codec.NewRecord(key.Bytes(), values[i]), next); err != nil {
			break
		}
		next += int64(entries[i].size)
	}
	if err := s.commit(next, err); err != nil {
		return err
	}
	for i, key := range keys {
		s.index.Insert(bytes.Clone(key.Bytes()), entries[i])
	}
	return nil
}

// read loads and verifies the record at e.
func (s *LogStore) read(e logEntry) (*codec.Record, error) {
	buf := make([]byte, e.size)
	if _, err := s.file.ReadAt(buf, e.offset); err != nil {
		return nil, fmt.Errorf("failed to read log at %d: %w", e.offset, err)
	}
	return s.codec.Decode(buf)
}

func (s *LogStore) Get(key keycodec.Key) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(key); err != nil {
		return nil, err
	}
	e, ok := s.index.Search(key.Bytes())
	if !ok {
		return nil, ErrNotFound
	}
	rec, err := s.read(e)
	if err != nil {
		return nil, err
	}
	return rec.Value, nil
}

// Delete appends a tombstone if key is present.
func (s *LogStore) Delete(key keycodec.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(key); err != nil {
		return err
	}
	if _, ok := s.index.Search(key.Bytes()); !ok {
		return nil
	}
	e, err := s.appendRecord(codec.NewTombstone(key.Bytes()), s.offset)
	if err := s.commit(s.offset+int64(e.size), err); err != nil {
		return err
	}
	s.index.Delete(key.Bytes())
	return nil
}

// Scan reads the range under a read lock and calls fn after releasing it,
// so fn may write to the store.
func (s *LogStore) Scan(from, to keycodec.Key, fn func(keycodec.Key, []byte) bool) error {
	type pair struct{ k, v []byte }
	var pairs []pair

	err := func() error {
		s.mu.RLock()
		defer s.mu.RUnlock()

		if err := s.check(from); err != nil {
			return err
		}
		if err := s.check(to); err != nil {
			return err
		}
		var readErr error
		s.index.Ascend(from.Bytes(), to.Bytes(), func(k []byte, e logEntry) bool {
			rec, err := s.read(e)
			if err != nil {
				readErr = err
				return false
			}
			pairs = append(pairs, pair{k, rec.Value})
			return true
		})
		return readErr
	}()
	if err != nil {
		return err
	}

	for _, p := range pairs {
		if !fn(s.desc.FromBytes(p.k), p.v) {
			break
		}
	}
	return nil
}

// Compact rewrites the log with only the latest record of each live key and
// swaps it in place of the active log.
func (s *LogStore) Compact() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if err := s.flush(); err != nil {
		return err
	}

	tmpPath := s.path + ".compact"
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to create compacted log: %w", err)
	}
	defer os.Remove(tmpPath)

	w := bufio.NewWriterSize(tmp, logBufferLen)
	next := bptree.NewBPlusTree[[]byte, logEntry](s.opts.Order, bytes.Compare)
	var offset int64
	var copyErr error
	lo := make([]byte, s.desc.Width())
	hi := bytes.Repeat([]byte{0xFF}, s.desc.Width())
	s.index.Ascend(lo, hi, func(k []byte, e logEntry) bool {
		buf := make([]byte, e.size)
		if _, copyErr = s.file.ReadAt(buf, e.offset); copyErr != nil {
			return false
		}
		if _, copyErr = w.Write(buf); copyErr != nil {
			return false
		}
		next.Insert(k, logEntry{offset: offset, size: e.size})
		offset += int64(e.size)
		return true
	})
	if copyErr == nil {
		copyErr = w.Flush()
	}
	if copyErr == nil {
		copyErr = tmp.Sync()
	}
	if err := tmp.Close(); copyErr == nil {
		copyErr = err
	}
	if copyErr != nil {
		return fmt.Errorf("failed to write compacted log: %w", copyErr)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace log: %w", err)
	}
	file, err := os.OpenFile(s.path, os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("failed to reopen log: %w", err)
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		file.Close()
		return err
	}

	s.file.Close()
	s.file = file
	s.writer.Reset(file)
	s.offset = offset
	s.index = next
	return nil
}

func (s *LogStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.closed = true
	if err := s.writer.Flush(); err != nil {
		s.file.Close()
		return err
	}
	if err := s.file.Sync(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
