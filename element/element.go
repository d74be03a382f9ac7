// Package element implements the generic polymorphic element tree every
// container format adapter (ebml, mp4, riff, ogg) builds on. A single
// concrete Element type is shared across formats; a format contributes its
// header-decode logic through the Adapter interface rather than through
// per-format subclassing.
package element

import (
	"github.com/pkg/errors"

	"github.com/smartsharp/tagparser/bytesio"
	"github.com/smartsharp/tagparser/diag"
	"github.com/smartsharp/tagparser/internal/tagparsererr"
)

// Adapter decodes one container format's element header and classifies a
// parsed element. Every method receives the element it concerns so an
// adapter may be stateless.
type Adapter interface {
	// InternalParse reads the header at e.StartOffset from stream, filling
	// in e.ID, e.IDLength, e.SizeLength, e.DataSize (and e.SizeUnknown, if
	// the format supports an "unknown size" sentinel). It must not read
	// past e.MaxTotalSize bytes from e.StartOffset.
	InternalParse(e *Element, stream bytesio.Stream, d *diag.Diagnostics) error

	// IsParent reports whether e may have children (container vs. leaf).
	IsParent(e *Element) bool

	// IsPadding reports whether e is filler that validation should count
	// but not otherwise interpret.
	IsPadding(e *Element) bool

	// FirstChildOffset returns the stream offset of e's first child,
	// relative to the start of the stream (not to e). Only called when
	// IsParent(e) is true.
	FirstChildOffset(e *Element) uint64
}

// Handle is a tree-local identity independent of Go pointer identity, used
// by consumers (e.g. ebml/cues.Updater) that need comparable, loggable map
// keys for elements without caring which particular *Element value they
// hold.
type Handle uint64

// Element is one node of the lazily-materialized element tree. Not safe
// for concurrent use by multiple goroutines on the same tree.
type Element struct {
	Adapter Adapter
	Stream  bytesio.Stream

	Handle Handle

	StartOffset  uint64
	ID           uint64
	IDLength     uint32
	SizeLength   uint32
	DataSize     uint64
	MaxTotalSize uint64
	SizeUnknown  bool

	Parent      *Element
	firstChild  *Element
	nextSibling *Element
	childrenLoaded bool
	siblingLoaded  bool

	Buffer []byte
	Parsed bool

	tree *treeState
}

// treeState is shared by every Element materialized from the same root, so
// handle allocation is tree-wide and so top-level elements (which have no
// Parent) can still be chained as siblings up to the tree's overall bound.
type treeState struct {
	nextHandle   uint64
	topLevelEnd  uint64 // absolute stream offset; 0 means unbounded.
}

// NewRoot creates the root element of a fresh tree at startOffset, bounded
// by maxTotalSize. A maxTotalSize of 0 means "no bound" (trust declared
// sizes); in that case NextSibling on a top-level element (one with no
// Parent) always returns nil, since there is no known end offset to scan
// up to.
func NewRoot(adapter Adapter, stream bytesio.Stream, startOffset, maxTotalSize uint64) *Element {
	tree := &treeState{}
	if maxTotalSize != 0 {
		tree.topLevelEnd = startOffset + maxTotalSize
	}
	root := &Element{
		Adapter:      adapter,
		Stream:       stream,
		StartOffset:  startOffset,
		MaxTotalSize: maxTotalSize,
		tree:         tree,
	}
	root.Handle = root.allocHandle()
	return root
}

func (e *Element) allocHandle() Handle {
	e.tree.nextHandle++
	return Handle(e.tree.nextHandle)
}

// HeaderSize returns id_length + size_length.
func (e *Element) HeaderSize() uint64 {
	return uint64(e.IDLength) + uint64(e.SizeLength)
}

// TotalSize returns header_size + data_size.
func (e *Element) TotalSize() uint64 {
	return e.HeaderSize() + e.DataSize
}

// EndOffset returns start_offset + total_size.
func (e *Element) EndOffset() uint64 {
	return e.StartOffset + e.TotalSize()
}

// DataOffset returns the offset of the first payload byte.
func (e *Element) DataOffset() uint64 {
	return e.StartOffset + e.HeaderSize()
}

// Level returns the element's depth, 0 at the root.
func (e *Element) Level() int {
	level := 0
	for p := e.Parent; p != nil; p = p.Parent {
		level++
	}
	return level
}

// Parse is idempotent: on first call it invokes the format adapter to fill
// id/id_length/data_size/size_length. Subsequent calls are no-ops.
func (e *Element) Parse(d *diag.Diagnostics) error {
	if e.Parsed {
		return nil
	}
	if err := e.Adapter.InternalParse(e, e.Stream, d); err != nil {
		return err
	}
	if e.MaxTotalSize != 0 && e.EndOffset() > e.StartOffset+e.MaxTotalSize {
		return tagparsererr.New(tagparsererr.ErrTruncatedData,
			"element end offset exceeds bound imposed by parent")
	}
	e.Parsed = true
	return nil
}

// Reparse clears the cached header state and children/sibling links, then
// re-runs Parse.
func (e *Element) Reparse(d *diag.Diagnostics) error {
	e.Parsed = false
	e.ID = 0
	e.IDLength = 0
	e.SizeLength = 0
	e.DataSize = 0
	e.SizeUnknown = false
	e.firstChild = nil
	e.nextSibling = nil
	e.childrenLoaded = false
	e.siblingLoaded = false
	return e.Parse(d)
}

// FirstChild returns the element's first child, materializing it on demand.
// Requires Parse to have been called. Returns nil if the element is a leaf
// or has no children.
func (e *Element) FirstChild(d *diag.Diagnostics) (*Element, error) {
	if !e.Parsed {
		return nil, tagparsererr.New(tagparsererr.ErrParsingFailure, "FirstChild called before Parse")
	}
	if e.childrenLoaded {
		return e.firstChild, nil
	}
	e.childrenLoaded = true
	if !e.Adapter.IsParent(e) {
		return nil, nil
	}
	childOffset := e.Adapter.FirstChildOffset(e)
	endOffset := e.EndOffset()
	if childOffset >= endOffset {
		return nil, nil
	}
	child := e.newChild(childOffset, endOffset-childOffset)
	e.firstChild = child
	return child, nil
}

// NextSibling returns the element's next sibling, materializing it on
// demand. Requires Parse to have been called.
func (e *Element) NextSibling(d *diag.Diagnostics) (*Element, error) {
	if !e.Parsed {
		return nil, tagparsererr.New(tagparsererr.ErrParsingFailure, "NextSibling called before Parse")
	}
	if e.siblingLoaded {
		return e.nextSibling, nil
	}
	e.siblingLoaded = true

	var boundEnd uint64
	if e.Parent != nil {
		boundEnd = e.Parent.EndOffset()
	} else {
		// Top-level elements have no Parent but still share the tree's
		// overall bound, so successive top-level elements (e.g. an EBML
		// header followed by a Segment) chain as siblings too.
		if e.tree.topLevelEnd == 0 {
			return nil, nil
		}
		boundEnd = e.tree.topLevelEnd
	}

	siblingOffset := e.EndOffset()
	if siblingOffset >= boundEnd {
		return nil, nil
	}
	sibling := &Element{
		Adapter:      e.Adapter,
		Stream:       e.Stream,
		StartOffset:  siblingOffset,
		MaxTotalSize: boundEnd - siblingOffset,
		Parent:       e.Parent,
		tree:         e.tree,
	}
	sibling.Handle = sibling.allocHandle()
	e.nextSibling = sibling
	return sibling, nil
}

func (e *Element) newChild(offset, maxSize uint64) *Element {
	child := &Element{
		Adapter:      e.Adapter,
		Stream:       e.Stream,
		StartOffset:  offset,
		MaxTotalSize: maxSize,
		Parent:       e,
		tree:         e.tree,
	}
	child.Handle = child.allocHandle()
	return child
}

// ChildByID returns the first child (forcing Parse on each visited node)
// whose ID equals id, or nil if none matches.
func (e *Element) ChildByID(id uint64, d *diag.Diagnostics) (*Element, error) {
	child, err := e.FirstChild(d)
	if err != nil || child == nil {
		return nil, err
	}
	return child.SiblingByIDIncludingThis(id, d)
}

// SiblingByID scans forward from e's next sibling (exclusive of e) for the
// first element with the given id.
func (e *Element) SiblingByID(id uint64, d *diag.Diagnostics) (*Element, error) {
	next, err := e.NextSibling(d)
	if err != nil || next == nil {
		return nil, err
	}
	return next.SiblingByIDIncludingThis(id, d)
}

// SiblingByIDIncludingThis scans the sibling chain starting at e
// (inclusive) for the first element with the given id.
func (e *Element) SiblingByIDIncludingThis(id uint64, d *diag.Diagnostics) (*Element, error) {
	for cur := e; cur != nil; {
		if err := cur.Parse(d); err != nil {
			return nil, err
		}
		if cur.ID == id {
			return cur, nil
		}
		next, err := cur.NextSibling(d)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return nil, nil
}

// SubelementByPath walks ids one level at a time: at each level it scans
// the sibling chain (starting from the receiver, inclusive, for the first
// id) for a match, then descends into that match's first child for the
// remaining ids. A single-id call is equivalent to
// SiblingByIDIncludingThis. Returns nil if any level fails to match.
func (e *Element) SubelementByPath(d *diag.Diagnostics, ids ...uint64) (*Element, error) {
	if len(ids) == 0 {
		return nil, tagparsererr.New(tagparsererr.ErrParsingFailure, "SubelementByPath requires at least one id")
	}
	match, err := e.SiblingByIDIncludingThis(ids[0], d)
	if err != nil || match == nil || len(ids) == 1 {
		return match, err
	}
	child, err := match.FirstChild(d)
	if err != nil || child == nil {
		return nil, err
	}
	return child.SubelementByPath(d, ids[1:]...)
}

// MakeBuffer allocates TotalSize bytes and loads the element (header and
// payload) contiguously into Buffer.
func (e *Element) MakeBuffer() error {
	if !e.Parsed {
		return tagparsererr.New(tagparsererr.ErrParsingFailure, "MakeBuffer called before Parse")
	}
	total := e.TotalSize()
	buf := make([]byte, total)
	if _, err := e.Stream.Seek(int64(e.StartOffset), 0); err != nil {
		return tagparsererr.Wrap(tagparsererr.ErrIO, err, "seek for MakeBuffer")
	}
	if _, err := readFull(e.Stream, buf); err != nil {
		return tagparsererr.Wrap(tagparsererr.ErrTruncatedData, err, "read for MakeBuffer")
	}
	e.Buffer = buf
	return nil
}

// DiscardBuffer releases any buffered bytes.
func (e *Element) DiscardBuffer() {
	e.Buffer = nil
}

func readFull(s bytesio.Stream, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := s.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, errors.New("short read")
		}
	}
	return total, nil
}

// ValidateSubsequentElementStructure performs a DFS over e and its
// following siblings, tolerating (recording, then continuing past)
// non-IO failures in a child subtree so sibling validation is not aborted
// by one bad subtree. Padding elements (per Adapter.IsPadding) contribute
// their total size to *paddingAccum instead of being recursed into.
//
// Mirroring genericfileelement.h's validateSubsequentElementStructure: only
// the recursive descent into a child subtree is guarded, and only against
// Failure-class errors. Self-parse and sibling materialization are not
// guarded at all, and an error wrapping ErrIO is always propagated,
// regardless of where it surfaces, rather than swallowed into Warnf.
func (e *Element) ValidateSubsequentElementStructure(d *diag.Diagnostics, paddingAccum *uint64) error {
	for cur := e; cur != nil; {
		if err := cur.Parse(d); err != nil {
			return err
		}
		if cur.Adapter.IsPadding(cur) {
			*paddingAccum += cur.TotalSize()
		} else {
			child, err := cur.FirstChild(d)
			if err != nil {
				if errors.Is(err, tagparsererr.ErrIO) {
					return err
				}
				d.Warnf("element", "failed to materialize children of element at offset %d: %v", cur.StartOffset, err)
			} else if child != nil {
				if err := child.ValidateSubsequentElementStructure(d, paddingAccum); err != nil {
					if errors.Is(err, tagparsererr.ErrIO) {
						return err
					}
					d.Warnf("element", "failed to validate children of element at offset %d: %v", cur.StartOffset, err)
				}
			}
		}
		next, err := cur.NextSibling(d)
		if err != nil {
			return err
		}
		cur = next
	}
	return nil
}
