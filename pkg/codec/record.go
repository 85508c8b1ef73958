package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"time"
)

// HeaderSize is the size of the fixed part of a record.
const HeaderSize = 19

// FlagTombstone marks a record that deletes its key.
const FlagTombstone uint8 = 1 << 0

var (
	ErrShortRecord = errors.New("codec: record truncated")
	ErrChecksum    = errors.New("codec: record checksum mismatch")
	ErrTooLarge    = errors.New("codec: key or value too large for a record")
)

// Record is one entry of a log.
type Record struct {
	Flags     uint8
	Timestamp uint64 // Unix nanoseconds
	Key       []byte
	Value     []byte
}

// Header is the decoded fixed part of a record.
type Header struct {
	CRC32     uint32
	Flags     uint8
	KeySize   int
	ValueSize int
	Timestamp uint64
}

// NewRecord creates a record that stores value under key with the current
// time. The slices are not copied.
func NewRecord(key, value []byte) *Record {
	return &Record{
		Timestamp: uint64(time.Now().UnixNano()),
		Key:       key,
		Value:     value,
	}
}

// NewTombstone creates a record that deletes key.
func NewTombstone(key []byte) *Record {
	r := NewRecord(key, nil)
	r.Flags = FlagTombstone
	return r
}

// Tombstone reports whether r deletes its key.
func (r *Record) Tombstone() bool {
	return r.Flags&FlagTombstone != 0
}

// Size returns the total size of the record when encoded
func (r *Record) Size() int {
	return HeaderSize + len(r.Key) + len(r.Value)
}

// RecordCodec handles serialization and deserialization of records
type RecordCodec struct{}

// NewRecordCodec creates a new record codec instance
func NewRecordCodec() *RecordCodec {
	return &RecordCodec{}
}

// Encode serializes r with its checksum.
func (c *RecordCodec) Encode(r *Record) ([]byte, error) {
	if len(r.Key) > math.MaxUint16 || uint64(len(r.Value)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: key %d bytes, value %d bytes", ErrTooLarge, len(r.Key), len(r.Value))
	}

	buf := make([]byte, r.Size())
	buf[4] = r.Flags
	binary.LittleEndian.PutUint16(buf[5:], uint16(len(r.Key)))
	binary.LittleEndian.PutUint32(buf[7:], uint32(len(r.Value)))
	binary.LittleEndian.PutUint64(buf[11:], r.Timestamp)
	copy(buf[HeaderSize:], r.Key)
	copy(buf[HeaderSize+len(r.Key):], r.Value)
	binary.LittleEndian.PutUint32(buf[0:], crc32.ChecksumIEEE(buf[4:]))

	return buf, nil
}

// DecodeHeader reads the fixed part of a record.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d byte header", ErrShortRecord, len(data))
	}
	return Header{
		CRC32:     binary.LittleEndian.Uint32(data[0:]),
		Flags:     data[4],
		KeySize:   int(binary.LittleEndian.Uint16(data[5:])),
		ValueSize: int(binary.LittleEndian.Uint32(data[7:])),
		Timestamp: binary.LittleEndian.Uint64(data[11:]),
	}, nil
}

// Decode deserializes and verifies one record at the start of data. The
// returned key and value alias data.
func (c *RecordCodec) Decode(data []byte) (*Record, error) {
	h, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}
	end := HeaderSize + h.KeySize + h.ValueSize
	if len(data) < end {
		return nil, fmt.Errorf("%w: %d < %d", ErrShortRecord, len(data), end)
	}
	if sum := crc32.ChecksumIEEE(data[4:end]); sum != h.CRC32 {
		return nil, fmt.Errorf("%w: %08x != %08x", ErrChecksum, sum, h.CRC32)
	}

	return &Record{
		Flags:     h.Flags,
		Timestamp: h.Timestamp,
		Key:       data[HeaderSize : HeaderSize+h.KeySize],
		Value:     data[HeaderSize+h.KeySize : end],
	}, nil
}

// ReadRecord reads the next record from r and returns it with its encoded
// size. A clean end of input is io.EOF; a partial record is ErrShortRecord.
func (c *RecordCodec) ReadRecord(r io.Reader) (*Record, int, error) {
	return c.readRecord(r, -1)
}

// ReadRecordLimit is ReadRecord for a reader with at most limit bytes left.
// A header that claims more than limit bytes is ErrShortRecord and nothing is
// allocated for its body.
func (c *RecordCodec) ReadRecordLimit(r io.Reader, limit int64) (*Record, int, error) {
	if limit < 0 {
		return nil, 0, fmt.Errorf("codec: negative read limit %d", limit)
	}
	return c.readRecord(r, limit)
}

func (c *RecordCodec) readRecord(r io.Reader, limit int64) (*Record, int, error) {
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF {
			return nil, 0, io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			return nil, 0, ErrShortRecord
		}
		return nil, 0, err
	}

	h, err := DecodeHeader(buf)
	if err != nil {
		return nil, 0, err
	}
	size := int64(HeaderSize + h.KeySize + h.ValueSize)
	if limit >= 0 && size > limit {
		return nil, 0, fmt.Errorf("%w: record of %d bytes, %d left", ErrShortRecord, size, limit)
	}
	buf = append(buf, make([]byte, h.KeySize+h.ValueSize)...)
	if _, err := io.ReadFull(r, buf[HeaderSize:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, 0, ErrShortRecord
		}
		return nil, 0, err
	}

	rec, err := c.Decode(buf)
	if err != nil {
		return nil, 0, err
	}
	return rec, len(buf), nil
}
