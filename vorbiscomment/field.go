// Package vorbiscomment implements the Vorbis comment field format shared
// by Ogg Vorbis, Ogg Opus, and FLAC: a length-prefixed "KEY=VALUE" record,
// with the special-cased METADATA_BLOCK_PICTURE field carrying a
// Base64-encoded FLAC PICTURE block (see package flacmeta).
package vorbiscomment

import (
	"bytes"
	"io"
	"math"

	"github.com/smartsharp/tagparser/bytesio"
	"github.com/smartsharp/tagparser/diag"
	"github.com/smartsharp/tagparser/flacmeta"
	"github.com/smartsharp/tagparser/internal/tagparsererr"
	"github.com/smartsharp/tagparser/tagvalue"
)

// CoverID is the well-known field name Ogg Vorbis/FLAC tools use to embed
// cover art as a Base64-encoded METADATA_BLOCK_PICTURE.
const CoverID = "METADATA_BLOCK_PICTURE"

const parseFieldContext = "parsing Vorbis comment field"
const makeFieldContext = "making Vorbis comment field"

// Field is a single "KEY=VALUE" record. A cover-art field (ID == CoverID)
// carries its decoded picture in Picture instead of Value.
type Field struct {
	ID      string
	Value   string
	Picture *tagvalue.FlacPicture
}

// ParseField reads one field from stream. maxSize bounds how many bytes may
// still be consumed and is decremented as bytes are read. ok is false when
// the field's declared size is the zero-length sentinel some encoders emit,
// in which case no field was produced but the 4-byte length prefix was
// still consumed.
func ParseField(stream io.Reader, maxSize *uint64, d *diag.Diagnostics) (field Field, ok bool, err error) {
	if *maxSize < 4 {
		d.Criticalf(parseFieldContext, "field expected")
		return Field{}, false, tagparsererr.New(tagparsererr.ErrTruncatedData, "vorbis comment field header truncated")
	}
	*maxSize -= 4

	size, err := bytesio.ReadUintLE(stream, 4)
	if err != nil {
		return Field{}, false, err
	}
	if size == 0 {
		return Field{}, false, nil
	}
	if size > *maxSize {
		d.Criticalf(parseFieldContext, "field is truncated")
		return Field{}, false, tagparsererr.New(tagparsererr.ErrTruncatedData, "vorbis comment field body truncated")
	}
	*maxSize -= size

	data := make([]byte, size)
	if _, err := io.ReadFull(stream, data); err != nil {
		return Field{}, false, tagparsererr.Wrap(tagparsererr.ErrIO, err, "read vorbis comment field body")
	}

	idSize := bytes.IndexByte(data, '=')
	if idSize < 0 {
		idSize = len(data)
	}
	if idSize == 0 {
		d.Criticalf(parseFieldContext, "the field ID is empty")
		return Field{}, false, tagparsererr.New(tagparsererr.ErrInvalidData, "empty vorbis comment field id")
	}

	field.ID = string(data[:idSize])
	switch {
	case field.ID == CoverID:
		var value []byte
		if idSize+1 < len(data) {
			value = data[idSize+1:]
		}
		decoded, err := bytesio.DecodeBase64(string(value))
		if err != nil {
			d.Criticalf(parseFieldContext, "base64 coding of METADATA_BLOCK_PICTURE is invalid")
			return Field{}, false, tagparsererr.Wrap(tagparsererr.ErrInvalidData, err, "decode METADATA_BLOCK_PICTURE")
		}
		pic, err := flacmeta.ParsePictureBlock(bytes.NewReader(decoded))
		if err != nil {
			d.Criticalf(parseFieldContext, "METADATA_BLOCK_PICTURE is malformed")
			return Field{}, false, err
		}
		field.Picture = &pic
	case idSize+1 < len(data):
		field.Value = string(data[idSize+1:])
	}
	return field, true, nil
}

// Make writes f as a length-prefixed "KEY=VALUE" record. written is false
// when f was skipped entirely (a cover field suppressed by
// tagvalue.NoCovers).
func (f Field) Make(w *bytes.Buffer, flags tagvalue.VorbisCommentFlags, d *diag.Diagnostics) (written bool, err error) {
	if f.ID == "" {
		d.Criticalf(makeFieldContext, "the field ID is empty")
	}

	var valueString string
	if f.ID == CoverID {
		if flags&tagvalue.NoCovers != 0 {
			return false, nil
		}
		if f.Picture == nil {
			d.Criticalf(makeFieldContext, "assigned value of cover field is not picture data")
			return false, tagparsererr.New(tagparsererr.ErrInvalidData, "cover field missing picture")
		}
		var buf bytes.Buffer
		if err := flacmeta.MakePictureBlock(&buf, *f.Picture); err != nil {
			d.Criticalf(makeFieldContext, "unable to make METADATA_BLOCK_PICTURE struct from the assigned value")
			return false, err
		}
		valueString = bytesio.EncodeBase64(buf.Bytes())
	} else {
		valueString = f.Value
	}

	size := len(valueString) + len(f.ID) + 1
	if size > math.MaxUint32 {
		d.Criticalf(makeFieldContext, "assigned value exceeds the maximum size")
		return false, tagparsererr.New(tagparsererr.ErrInvalidData, "vorbis comment field too large")
	}
	if err := bytesio.WriteUintLE(w, uint64(size), 4); err != nil {
		return false, err
	}
	w.WriteString(f.ID)
	w.WriteByte('=')
	if _, err := w.WriteString(valueString); err != nil {
		return false, tagparsererr.Wrap(tagparsererr.ErrIO, err, "write vorbis comment field")
	}
	return true, nil
}
