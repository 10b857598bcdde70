package common

import "bytes"

/*
Keys used by the page store must be comparable as byte strings so that range
scans over the underlying storage engine return rows in key order. Integers
and timestamps are stored big-endian with the sign bit flipped so that
unsigned byte comparison matches signed numeric comparison; strings are
stored as their raw UTF-8 bytes with no length prefix, so that one string
being a strict prefix of another orders it first - the same rule the
original C-like Bytes.compare implementation used.
*/

const signBitMask uint64 = 1 << 63

// KeyEncodeInt32 big-endian encodes val for a key, ordering-preserving.
func KeyEncodeInt32(buffer []byte, val int32) []byte {
	uVal := uint32(val) ^ uint32(signBitMask>>32)
	return AppendUint32ToBufferBE(buffer, uVal)
}

// KeyEncodeInt64 big-endian encodes val for a key, ordering-preserving.
func KeyEncodeInt64(buffer []byte, val int64) []byte {
	uVal := uint64(val) ^ signBitMask
	return AppendUint64ToBufferBE(buffer, uVal)
}

// KeyEncodeString appends the raw UTF-8 bytes of val with no length prefix,
// so a shorter string always orders before a longer string it is a prefix
// of.
func KeyEncodeString(buffer []byte, val string) []byte {
	return append(buffer, val...)
}

// KeyEncodeTimestampMillis encodes a timestamp expressed as milliseconds
// since the epoch. A negative value denotes "no timestamp" and is preserved
// through the same sign-flip used for signed integers.
func KeyEncodeTimestampMillis(buffer []byte, millis int64) []byte {
	return KeyEncodeInt64(buffer, millis)
}

func DecodeInt32Key(buffer []byte, offset int) (int32, int) {
	u, off := ReadUint32FromBufferBE(buffer, offset)
	return int32(u ^ uint32(signBitMask>>32)), off
}

func DecodeInt64Key(buffer []byte, offset int) (int64, int) {
	u, off := ReadUint64FromBufferBE(buffer, offset)
	return int64(u ^ signBitMask), off
}

// DecodeStringKey decodes the remainder of buffer (from offset) as a raw
// UTF-8 string. Since keys carry no length prefix, callers that concatenate
// a string with further fields must fix the string's width out of band
// (e.g. it is the final component of the key).
func DecodeStringKey(buffer []byte, offset int) string {
	return string(buffer[offset:])
}

// DecodeTimestampMillisKey is the inverse of KeyEncodeTimestampMillis; a
// negative result denotes "no timestamp".
func DecodeTimestampMillisKey(buffer []byte, offset int) (int64, int) {
	return DecodeInt64Key(buffer, offset)
}

// CompareKeys implements the ordering guarantee required of the page store's
// key space: unsigned lexicographic byte comparison, with a strict prefix
// ordering before any extension of it.
func CompareKeys(a, b []byte) int {
	return bytes.Compare(a, b)
}
