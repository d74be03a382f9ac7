// Package flacmeta implements the FLAC metadata-block framing: the 4-byte
// block header (last-block flag, block type, 24-bit length) shared by every
// block type, and the PICTURE block body in full. Other block types
// (STREAMINFO, SEEKTABLE, CUESHEET, ...) are out of scope -- this module
// only ever needs to locate and edit the PICTURE and VORBIS_COMMENT blocks,
// never decode audio framing.
package flacmeta

import (
	"io"

	"github.com/smartsharp/tagparser/bytesio"
	"github.com/smartsharp/tagparser/internal/tagparsererr"
)

// BlockType identifies the body format of a metadata block.
type BlockType uint8

const (
	TypeStreamInfo    BlockType = 0
	TypePadding       BlockType = 1
	TypeApplication   BlockType = 2
	TypeSeekTable     BlockType = 3
	TypeVorbisComment BlockType = 4
	TypeCueSheet      BlockType = 5
	TypePicture       BlockType = 6
	TypeInvalid       BlockType = 127
)

// BlockHeader is the 4-byte header preceding every FLAC metadata block.
type BlockHeader struct {
	// IsLast reports whether this is the last metadata block before the
	// audio frames begin.
	IsLast bool
	Type   BlockType
	// Length is the size in bytes of the block body, excluding this header.
	Length uint32
}

// ParseBlockHeader reads and decodes a 4-byte metadata block header.
func ParseBlockHeader(r io.Reader) (BlockHeader, error) {
	bits, err := bytesio.ReadUint(r, 4)
	if err != nil {
		return BlockHeader{}, err
	}
	typ := BlockType((bits >> 24) & 0x7F)
	if typ >= 7 && typ <= 126 {
		return BlockHeader{}, tagparsererr.New(tagparsererr.ErrInvalidData, "reserved FLAC metadata block type")
	}
	if typ == TypeInvalid {
		return BlockHeader{}, tagparsererr.New(tagparsererr.ErrInvalidData, "invalid FLAC metadata block type")
	}
	return BlockHeader{
		IsLast: bits&0x80000000 != 0,
		Type:   typ,
		Length: uint32(bits & 0x00FFFFFF),
	}, nil
}

// WriteBlockHeader encodes and writes a 4-byte metadata block header.
func WriteBlockHeader(w io.Writer, h BlockHeader) error {
	bits := uint64(h.Length & 0x00FFFFFF)
	bits |= uint64(h.Type&0x7F) << 24
	if h.IsLast {
		bits |= 0x80000000
	}
	return bytesio.WriteUint(w, bits, 4)
}
