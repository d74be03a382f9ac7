// Package ebml implements the element.Adapter for EBML/Matroska/WebM:
// variable-length integer id and size framing, the Matroska element ID
// table, and (in the cues subpackage) the Cues index rewriter.
package ebml

import (
	"github.com/smartsharp/tagparser/bytesio"
	"github.com/smartsharp/tagparser/diag"
	"github.com/smartsharp/tagparser/element"
	"github.com/smartsharp/tagparser/internal/tagparsererr"
)

// isUnknownSize matches an all-ones VINT value (with the length
// marker stripped) for each possible VINT width, the EBML encoding of
// "size unknown", used by live-streamed Matroska for Segment/Cluster.
func isUnknownSize(value uint64, width int) bool {
	return value == (uint64(1)<<(7*width))-1
}

// Adapter decodes EBML element headers: a VINT id (length marker kept,
// since an EBML id's wire bytes including the marker are its canonical
// form) followed by a VINT size (length marker stripped).
type Adapter struct{}

var _ element.Adapter = Adapter{}

func (Adapter) InternalParse(e *element.Element, stream bytesio.Stream, d *diag.Diagnostics) error {
	if _, err := stream.Seek(int64(e.StartOffset), 0); err != nil {
		return tagparsererr.Wrap(tagparsererr.ErrIO, err, "seek to EBML element header")
	}

	id, idWidth, err := bytesio.ReadVInt(stream, true)
	if err != nil {
		return err
	}
	size, sizeWidth, err := bytesio.ReadVInt(stream, false)
	if err != nil {
		return err
	}

	e.ID = id
	e.IDLength = uint32(idWidth)
	e.SizeLength = uint32(sizeWidth)
	if isUnknownSize(size, sizeWidth) {
		e.SizeUnknown = true
		if e.MaxTotalSize == 0 {
			return tagparsererr.New(tagparsererr.ErrParsingFailure,
				"element has unknown size and no bound to resolve it against")
		}
		e.DataSize = e.MaxTotalSize - e.HeaderSize()
		return nil
	}
	e.DataSize = size
	return nil
}

func (Adapter) IsParent(e *element.Element) bool {
	return IsKnownContainer(e.ID)
}

func (Adapter) IsPadding(e *element.Element) bool {
	return e.ID == IDVoid
}

func (Adapter) FirstChildOffset(e *element.Element) uint64 {
	return e.DataOffset()
}
