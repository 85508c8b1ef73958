// Package codec frames the records of the append-only log behind
// storage.LogStore.
//
// # Record Format
//
// Records are little-endian with the following structure:
//
//	[CRC32(4)][Flags(1)][KeySize(2)][ValueSize(4)][Timestamp(8)][Key][Value]
//
// Fields:
//   - CRC32: IEEE checksum of every byte after the CRC32 field
//   - Flags: FlagTombstone marks a deletion; the value is then empty
//   - KeySize: key length in bytes. Keys are encoded keycodec keys, so every
//     record of one log has the same key size
//   - ValueSize: value length in bytes
//   - Timestamp: Unix time of the write in nanoseconds
//
// The total record size is HeaderSize + len(key) + len(value).
//
// # Torn Writes
//
// A crash can leave a partial record at the end of a log. ReadRecord reports
// it as ErrShortRecord, and a record whose bytes were damaged fails its
// checksum with ErrChecksum. Readers replaying a log stop at the first such
// record and treat everything before it as valid.
//
// # Usage
//
//	c := codec.NewRecordCodec()
//	data, err := c.Encode(codec.NewRecord(key.Bytes(), value))
//	...
//	rec, n, err := c.ReadRecord(r)
package codec
