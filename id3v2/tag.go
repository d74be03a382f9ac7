package id3v2

import (
	"bytes"
	"io"

	"github.com/smartsharp/tagparser/bytesio"
	"github.com/smartsharp/tagparser/diag"
	"github.com/smartsharp/tagparser/fieldmap"
	"github.com/smartsharp/tagparser/internal/tagparsererr"
)

// Tag is a parsed ID3v2 tag: its header plus an ordered field map from
// frame id to Frame, ordered the way ID3v2 tags are conventionally stored
// (see frameOrder).
type Tag struct {
	Header
	fields *fieldmap.Map[string, Frame]
}

// NewTag creates an empty ID3v2.4 tag ready for SetFrame/Make.
func NewTag() *Tag {
	return &Tag{
		Header: Header{MajorVersion: 4},
		fields: fieldmap.New[string, Frame](frameOrder),
	}
}

// Frames returns the tag's frames in on-disk order.
func (t *Tag) Frames() []Frame {
	out := make([]Frame, 0, t.fields.Len())
	t.fields.Each(func(_ string, f Frame) { out = append(out, f) })
	return out
}

// Frame returns the frame with the given id, if present.
func (t *Tag) Frame(id string) (Frame, bool) {
	return t.fields.Get(id)
}

// SetFrame inserts or replaces the frame with f.ID.
func (t *Tag) SetFrame(f Frame) {
	t.fields.Set(f.ID, f)
}

// Parse reads an ID3v2 tag from stream, bounded by maxSize (the size of the
// enclosing file or prepend region; 0 means unbounded). It mirrors
// Id3v2Tag::parse: a truncated or invalid header is fatal, but individual
// frame failures are recorded as diagnostics and skipped so one bad frame
// does not abort the whole tag.
func Parse(stream io.Reader, maxSize uint64, d *diag.Diagnostics) (*Tag, error) {
	const context = "parsing ID3v2 tag"

	if maxSize != 0 && maxSize < headerSize {
		d.Criticalf(context, "ID3v2 header is truncated (at least %d bytes expected)", headerSize)
		return nil, tagparsererr.New(tagparsererr.ErrTruncatedData, "ID3v2 header truncated")
	}

	hdr, err := parseHeader(stream)
	if err != nil {
		d.Criticalf(context, "%v", err)
		return nil, err
	}

	t := &Tag{Header: hdr, fields: fieldmap.New[string, Frame](frameOrder)}

	if hdr.SizeExcludingHeader == 0 {
		d.Warnf(context, "ID3v2 tag seems to be empty")
		return t, nil
	}

	if !hdr.VersionSupported() {
		d.Criticalf(context, "the ID3v2 tag couldn't be parsed because its version (2.%d) is not supported", hdr.MajorVersion)
		return nil, tagparsererr.New(tagparsererr.ErrVersionNotSupported, "unsupported ID3v2 major version")
	}

	if hdr.HasExtendedHeader() {
		if maxSize != 0 && maxSize < 14 {
			d.Criticalf(context, "extended header denoted but not present")
			return nil, tagparsererr.New(tagparsererr.ErrTruncatedData, "extended header missing")
		}
		extSize, err := bytesio.ReadSynchsafeUint32(stream)
		if err != nil {
			return nil, tagparsererr.Wrap(tagparsererr.ErrTruncatedData, err, "read extended header size")
		}
		if extSize < 6 || extSize > hdr.SizeExcludingHeader || (maxSize != 0 && maxSize < uint64(10+extSize)) {
			d.Criticalf(context, "extended header is invalid/truncated")
			return nil, tagparsererr.New(tagparsererr.ErrTruncatedData, "extended header invalid")
		}
		t.ExtendedHeaderSize = extSize
		if _, err := io.CopyN(io.Discard, stream, int64(extSize-4)); err != nil {
			return nil, tagparsererr.Wrap(tagparsererr.ErrTruncatedData, err, "skip extended header")
		}
	}

	bytesRemaining := hdr.SizeExcludingHeader - t.ExtendedHeaderSize
	if maxSize != 0 && uint64(bytesRemaining) > maxSize {
		bytesRemaining = uint32(maxSize)
		d.Criticalf(context, "frames are truncated")
	}

	for bytesRemaining > 0 {
		outcome := parseFrame(stream, hdr.MajorVersion, bytesRemaining)
		if outcome.PaddingReached {
			t.PaddingSize = bytesRemaining
			break
		}
		if outcome.Err != nil {
			d.Warnf(context, "failed to parse a frame: %v", outcome.Err)
		} else {
			f := outcome.Frame
			if isTextFrame(f.ID) {
				if _, exists := t.fields.Get(f.ID); exists {
					d.Warnf(context, "the text frame %s exists more than once", f.ID)
				}
			}
			t.fields.Set(f.ID, f)
		}
		if outcome.TotalSize == 0 || outcome.TotalSize > bytesRemaining {
			break
		}
		bytesRemaining -= outcome.TotalSize
	}

	if !hdr.HasFooter() {
		return t, nil
	}
	if maxSize != 0 && hdr.TotalSize()+footerSize > maxSize {
		d.Criticalf(context, "footer denoted but not present")
		return nil, tagparsererr.New(tagparsererr.ErrTruncatedData, "footer missing")
	}
	footerID, err := bytesio.ReadUint(stream, 3)
	if err != nil {
		return nil, tagparsererr.Wrap(tagparsererr.ErrTruncatedData, err, "read ID3v2 footer")
	}
	if footerID != footerSignature {
		d.Criticalf(context, "footer signature is invalid")
	}
	if _, err := io.CopyN(io.Discard, stream, 7); err != nil {
		return nil, tagparsererr.Wrap(tagparsererr.ErrTruncatedData, err, "skip ID3v2 footer")
	}
	return t, nil
}

// TagMaker holds the per-frame encoded bytes and total required size
// computed by PrepareMaking, so the caller can learn the tag's on-disk size
// before committing to writing it.
type TagMaker struct {
	tag        *Tag
	frameBytes [][]byte
	framesSize uint32
}

// RequiredSize is the tag's total size (header included, no padding).
func (m *TagMaker) RequiredSize() uint32 {
	return headerSize + m.framesSize
}

// PrepareMaking computes the per-frame encoded bytes and the resulting
// required size without writing anything, mirroring Id3v2Tag::prepareMaking.
func (t *Tag) PrepareMaking(d *diag.Diagnostics) (*TagMaker, error) {
	if !t.VersionSupported() {
		d.Criticalf("making ID3v2 tag", "the ID3v2 tag version isn't supported")
		return nil, tagparsererr.New(tagparsererr.ErrVersionNotSupported, "unsupported ID3v2 major version")
	}

	m := &TagMaker{tag: t}
	for _, f := range t.Frames() {
		var buf bytes.Buffer
		if err := writeFrame(&buf, f, t.MajorVersion); err != nil {
			d.Warnf("making ID3v2 tag", "failed to make frame %s: %v", f.ID, err)
			continue
		}
		m.frameBytes = append(m.frameBytes, buf.Bytes())
		m.framesSize += uint32(buf.Len())
	}
	return m, nil
}

// Make writes the tag to w with the given number of zero padding bytes
// appended after the frames, mirroring Id3v2TagMaker::make.
func (m *TagMaker) Make(w io.Writer, padding uint32) error {
	if err := writeHeader(w, m.tag.Header, m.framesSize+padding); err != nil {
		return err
	}
	for _, fb := range m.frameBytes {
		if _, err := w.Write(fb); err != nil {
			return tagparsererr.Wrap(tagparsererr.ErrIO, err, "write frame")
		}
	}
	for i := uint32(0); i < padding; i++ {
		if _, err := w.Write([]byte{0}); err != nil {
			return tagparsererr.Wrap(tagparsererr.ErrIO, err, "write padding")
		}
	}
	return nil
}

// Make is the one-step convenience wrapper over PrepareMaking/Make.
func (t *Tag) Make(w io.Writer, padding uint32, d *diag.Diagnostics) error {
	m, err := t.PrepareMaking(d)
	if err != nil {
		return err
	}
	return m.Make(w, padding)
}
