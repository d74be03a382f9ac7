package ebml

import (
	"github.com/smartsharp/tagparser/bytesio"
	"github.com/smartsharp/tagparser/diag"
	"github.com/smartsharp/tagparser/element"
)

// File is the entry point for reading a Matroska/WebM container: it wraps
// a stream and exposes the lazily-materialized element tree rooted at
// offset 0, replacing the eager whole-file Demuxer the teacher built
// around MatroskaParser with the shared element.Element tree. Top-level
// elements (EBML header, Segment, ...) are siblings of one another, so
// Segment can be reached from Root via the ordinary sibling chain.
type File struct {
	Stream bytesio.Stream
	Root   *element.Element
}

// Open creates a File over stream, whose total length is size bytes, and
// parses the first top-level element's header (typically the EBML
// header).
func Open(stream bytesio.Stream, size uint64, d *diag.Diagnostics) (*File, error) {
	root := element.NewRoot(Adapter{}, stream, 0, size)
	if err := root.Parse(d); err != nil {
		return nil, err
	}
	return &File{Stream: stream, Root: root}, nil
}

// Segment locates the top-level Segment element by scanning the sibling
// chain starting at Root.
func (f *File) Segment(d *diag.Diagnostics) (*element.Element, error) {
	return f.Root.SiblingByIDIncludingThis(IDSegment, d)
}

// Cues locates the Segment's Cues element, if present.
func (f *File) Cues(d *diag.Diagnostics) (*element.Element, error) {
	segment, err := f.Segment(d)
	if err != nil || segment == nil {
		return nil, err
	}
	return segment.ChildByID(IDCues, d)
}

// Tags locates the Segment's Tags element, if present.
func (f *File) Tags(d *diag.Diagnostics) (*element.Element, error) {
	segment, err := f.Segment(d)
	if err != nil || segment == nil {
		return nil, err
	}
	return segment.ChildByID(IDTags, d)
}
