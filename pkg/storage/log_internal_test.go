package storage

import (
	"bufio"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/dbkey/pkg/keycodec"
)

var errDiskFull = errors.New("disk full")

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errDiskFull }

func TestLogStore_FailedFlushKeepsOffset(t *testing.T) {
	desc := keycodec.MustDescriptor("Pair",
		keycodec.Field("a", keycodec.U32),
		keycodec.Field("b", keycodec.U32),
	)
	key := func(b uint32) keycodec.Key {
		k, err := desc.New(keycodec.Uint32Value(1), keycodec.Uint32Value(b))
		require.NoError(t, err)
		return k
	}

	dir := t.TempDir()
	s, err := OpenLog(dir, desc, LogOptions{})
	require.NoError(t, err)
	require.NoError(t, s.Put(key(1), []byte("one")))
	committed := s.offset

	s.writer = bufio.NewWriter(failingWriter{})
	assert.ErrorIs(t, s.Put(key(2), []byte("lost")), errDiskFull)
	assert.Equal(t, committed, s.offset)
	_, err = s.Get(key(2))
	assert.ErrorIs(t, err, ErrNotFound)

	s.writer = bufio.NewWriter(failingWriter{})
	assert.ErrorIs(t, s.PutBatch([]keycodec.Key{key(3), key(4)}, [][]byte{[]byte("x"), []byte("y")}), errDiskFull)
	assert.Equal(t, committed, s.offset)
	assert.Equal(t, 1, s.Stats().Keys)

	// The writer is back on the file, so later writes land at the right offset.
	require.NoError(t, s.Put(key(2), []byte("two")))
	v, err := s.Get(key(2))
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), v)
	require.NoError(t, s.Close())

	s, err = OpenLog(dir, desc, LogOptions{})
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, Recovery{RecordsValidated: 2}, s.Recovery())
	v, err = s.Get(key(1))
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), v)
}
