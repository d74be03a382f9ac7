package bytesio

import (
	"encoding/base64"
	"encoding/binary"
	"io"

	"github.com/smartsharp/tagparser/internal/tagparsererr"
)

// ReadUint reads an n-byte (1..8) big-endian unsigned integer from r.
func ReadUint(r io.Reader, n int) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:n]); err != nil {
		return 0, tagparsererr.Wrap(tagparsererr.ErrTruncatedData, err, "read uint")
	}
	var v uint64
	for i := 0; i < n; i++ {
		v = v<<8 | uint64(buf[i])
	}
	return v, nil
}

// ReadUintLE reads an n-byte (1..8) little-endian unsigned integer from r.
func ReadUintLE(r io.Reader, n int) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:n]); err != nil {
		return 0, tagparsererr.Wrap(tagparsererr.ErrTruncatedData, err, "read uint le")
	}
	var v uint64
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | uint64(buf[i])
	}
	return v, nil
}

// WriteUint writes v as an n-byte (1..8) big-endian unsigned integer to w.
func WriteUint(w io.Writer, v uint64, n int) error {
	buf := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		buf[i] = byte(v)
		v >>= 8
	}
	if _, err := w.Write(buf); err != nil {
		return tagparsererr.Wrap(tagparsererr.ErrIO, err, "write uint")
	}
	return nil
}

// WriteUintLE writes v as an n-byte (1..8) little-endian unsigned integer to w.
func WriteUintLE(w io.Writer, v uint64, n int) error {
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		buf[i] = byte(v)
		v >>= 8
	}
	if _, err := w.Write(buf); err != nil {
		return tagparsererr.Wrap(tagparsererr.ErrIO, err, "write uint le")
	}
	return nil
}

// ReadUint32BE is a convenience wrapper around binary.BigEndian.Uint32 that
// reads exactly 4 bytes from r.
func ReadUint32BE(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, tagparsererr.Wrap(tagparsererr.ErrTruncatedData, err, "read uint32")
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// DecodeSynchsafeUint32 decodes a 4-byte synchsafe integer: each byte
// carries 7 bits of value with the top bit always zero, a scheme ID3v2
// uses so a tag body can never contain a false MPEG frame sync.
func DecodeSynchsafeUint32(b []byte) uint32 {
	var v uint32
	for i := 0; i < 4 && i < len(b); i++ {
		v = v<<7 | uint32(b[i]&0x7F)
	}
	return v
}

// EncodeSynchsafeUint32 encodes v (which must fit in 28 bits) as a 4-byte
// synchsafe integer.
func EncodeSynchsafeUint32(v uint32) [4]byte {
	var out [4]byte
	for i := 3; i >= 0; i-- {
		out[i] = byte(v & 0x7F)
		v >>= 7
	}
	return out
}

// ReadSynchsafeUint32 reads and decodes a 4-byte synchsafe integer from r.
func ReadSynchsafeUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, tagparsererr.Wrap(tagparsererr.ErrTruncatedData, err, "read synchsafe uint32")
	}
	return DecodeSynchsafeUint32(buf[:]), nil
}

// WriteSynchsafeUint32 encodes and writes v as a 4-byte synchsafe integer.
func WriteSynchsafeUint32(w io.Writer, v uint32) error {
	enc := EncodeSynchsafeUint32(v)
	if _, err := w.Write(enc[:]); err != nil {
		return tagparsererr.Wrap(tagparsererr.ErrIO, err, "write synchsafe uint32")
	}
	return nil
}

// CalculateUintegerLength returns the minimum number of bytes needed to
// represent v as an unsigned big-endian integer (at least 1).
func CalculateUintegerLength(v uint64) uint32 {
	n := uint32(1)
	for v > 0xFF {
		v >>= 8
		n++
	}
	return n
}

// VINT constants: EBML/Matroska variable-length integers encode their own
// width in the leading zero count of the first byte (1-indexed), for a
// maximum width of 8 bytes.
const (
	MaxVIntLength = 8
)

// CalculateSizeDenotationLength returns the number of bytes a VINT needs to
// hold v without hitting the "unknown size" all-ones sentinel for that
// width, mirroring EbmlElement::calculateSizeDenotationLength in the
// original implementation.
func CalculateSizeDenotationLength(v uint64) uint32 {
	for length := uint32(1); length <= MaxVIntLength; length++ {
		// length bytes hold 7*length value bits once the length marker bit
		// is subtracted; reserve the all-ones pattern for "unknown size".
		max := uint64(1)<<(7*length) - 2
		if v <= max {
			return length
		}
	}
	return MaxVIntLength
}

// ReadVInt reads a variable-length integer from r. If keepLengthMarker is
// false (the default use for sizes), the leading length-marker bit is
// stripped from the returned value; element IDs keep it, since an EBML ID's
// wire bytes -- marker included -- are its canonical form.
func ReadVInt(r io.Reader, keepLengthMarker bool) (value uint64, width int, err error) {
	var first [1]byte
	if _, err = io.ReadFull(r, first[:]); err != nil {
		return 0, 0, tagparsererr.Wrap(tagparsererr.ErrTruncatedData, err, "read vint")
	}
	b := first[0]
	if b == 0 {
		return 0, 0, tagparsererr.New(tagparsererr.ErrInvalidData, "invalid VINT: first byte is 0")
	}
	length := 0
	mask := byte(0x80)
	for i := 0; i < 8; i++ {
		if b&mask != 0 {
			length = i + 1
			break
		}
		mask >>= 1
	}
	if keepLengthMarker {
		value = uint64(b)
	} else {
		value = uint64(b &^ mask)
	}
	if length > 1 {
		rest := make([]byte, length-1)
		if _, err = io.ReadFull(r, rest); err != nil {
			return 0, 0, tagparsererr.Wrap(tagparsererr.ErrTruncatedData, err, "read vint continuation bytes")
		}
		for _, rb := range rest {
			value = value<<8 | uint64(rb)
		}
	}
	return value, length, nil
}

// MakeSizeDenotation encodes size as a minimal-width VINT and returns the
// encoded bytes.
func MakeSizeDenotation(size uint64) []byte {
	length := CalculateSizeDenotationLength(size)
	out := make([]byte, length)
	v := size
	for i := int(length) - 1; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	out[0] |= 1 << (8 - length)
	return out
}

// EncodeBase64 encodes data using standard Base64 (RFC 4648 with padding),
// matching the wire form vorbis comment METADATA_BLOCK_PICTURE fields use.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeBase64 decodes s, wrapping any malformed input as ErrConversion;
// the Vorbis comment field parser reports such a failure as InvalidData.
func DecodeBase64(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, tagparsererr.Wrap(tagparsererr.ErrConversion, err, "decode base64")
	}
	return data, nil
}
