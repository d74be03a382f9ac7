package vorbiscomment

import (
	"bytes"
	"io"
	"math"

	"github.com/smartsharp/tagparser/bytesio"
	"github.com/smartsharp/tagparser/diag"
	"github.com/smartsharp/tagparser/internal/tagparsererr"
	"github.com/smartsharp/tagparser/tagvalue"
)

const blockContext = "parsing Vorbis comment"

// Block is a whole Vorbis comment: the vendor string every encoder stamps
// in, followed by the field list. This is the payload of an Ogg Vorbis/Opus
// comment header packet and of a FLAC VORBIS_COMMENT metadata block alike.
type Block struct {
	Vendor string
	Fields []Field
}

// Parse reads a full comment block from stream. maxSize bounds the number
// of bytes the block may occupy.
func Parse(stream io.Reader, maxSize uint64, d *diag.Diagnostics) (*Block, error) {
	if maxSize < 8 {
		d.Criticalf(blockContext, "Vorbis comment is truncated")
		return nil, tagparsererr.New(tagparsererr.ErrTruncatedData, "vorbis comment header truncated")
	}
	maxSize -= 4
	vendorLen, err := bytesio.ReadUintLE(stream, 4)
	if err != nil {
		return nil, err
	}
	if vendorLen > maxSize {
		d.Criticalf(blockContext, "vendor string is truncated")
		return nil, tagparsererr.New(tagparsererr.ErrTruncatedData, "vorbis comment vendor string truncated")
	}
	maxSize -= vendorLen
	vendor := make([]byte, vendorLen)
	if _, err := io.ReadFull(stream, vendor); err != nil {
		return nil, tagparsererr.Wrap(tagparsererr.ErrIO, err, "read vorbis comment vendor string")
	}

	if maxSize < 4 {
		d.Criticalf(blockContext, "field count is truncated")
		return nil, tagparsererr.New(tagparsererr.ErrTruncatedData, "vorbis comment field count truncated")
	}
	maxSize -= 4
	fieldCount, err := bytesio.ReadUintLE(stream, 4)
	if err != nil {
		return nil, err
	}

	block := &Block{Vendor: string(vendor)}
	for i := uint64(0); i < fieldCount; i++ {
		field, ok, err := ParseField(stream, &maxSize, d)
		if err != nil {
			return nil, err
		}
		if ok {
			block.Fields = append(block.Fields, field)
		}
	}
	return block, nil
}

// Make writes b as a full comment block.
func (b *Block) Make(w io.Writer, flags tagvalue.VorbisCommentFlags, d *diag.Diagnostics) error {
	if len(b.Vendor) > math.MaxUint32 {
		d.Criticalf(blockContext, "vendor string exceeds the maximum size")
		return tagparsererr.New(tagparsererr.ErrInvalidData, "vendor string too large")
	}
	if err := bytesio.WriteUintLE(w, uint64(len(b.Vendor)), 4); err != nil {
		return err
	}
	if _, err := io.WriteString(w, b.Vendor); err != nil {
		return tagparsererr.Wrap(tagparsererr.ErrIO, err, "write vendor string")
	}

	var fieldsBuf bytes.Buffer
	written := uint32(0)
	for _, f := range b.Fields {
		ok, err := f.Make(&fieldsBuf, flags, d)
		if err != nil {
			return err
		}
		if ok {
			written++
		}
	}

	if err := bytesio.WriteUintLE(w, uint64(written), 4); err != nil {
		return err
	}
	_, err := w.Write(fieldsBuf.Bytes())
	return err
}
