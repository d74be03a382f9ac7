// Package cues implements the Matroska Cues index rewriter: it parses the
// "Cues" element of a Matroska/WebM file into absolute and relative offset
// projections, lets a caller update those offsets as clusters move during a
// rewrite, and re-emits the element with the new offsets -- propagating any
// resulting width change up through parent size fields.
//
// Grounded line-by-line on original_source/matroska/matroskacues.cpp's
// MatroskaCuePositionUpdater; keyed by element.Handle rather than pointer
// identity, per the module's redesign of "pointer-identity keys" into
// explicit handles.
package cues

import (
	"errors"
	"io"

	"github.com/smartsharp/tagparser/bytesio"
	"github.com/smartsharp/tagparser/diag"
	"github.com/smartsharp/tagparser/ebml"
	"github.com/smartsharp/tagparser/element"
	"github.com/smartsharp/tagparser/internal/tagparsererr"
)

type offsetEntry struct {
	elem    *element.Element
	initial uint64
	current uint64
}

type relOffsetEntry struct {
	elem      *element.Element
	reference uint64
	initial   uint64
	current   uint64
}

// Updater tracks a parsed Cues subtree and the absolute/relative offsets it
// contains, so a rewrite can update them in place and re-emit a
// size-consistent Cues element. Not safe for concurrent use.
type Updater struct {
	cuesElement *element.Element

	sizes           map[element.Handle]uint64
	offsets         map[element.Handle]*offsetEntry
	relativeOffsets map[element.Handle]*relOffsetEntry
	byHandle        map[element.Handle]*element.Element
}

// New returns an empty Updater. Call Parse before using it.
func New() *Updater {
	return &Updater{}
}

func (u *Updater) clear() {
	u.cuesElement = nil
	u.sizes = make(map[element.Handle]uint64)
	u.offsets = make(map[element.Handle]*offsetEntry)
	u.relativeOffsets = make(map[element.Handle]*relOffsetEntry)
	u.byHandle = make(map[element.Handle]*element.Element)
}

func (u *Updater) trackSize(e *element.Element, size uint64) {
	u.sizes[e.Handle] = size
	u.byHandle[e.Handle] = e
}

// TotalSize returns how many bytes Make will write for the whole Cues
// element (id + size denotation + payload), given the current state.
func (u *Updater) TotalSize() uint64 {
	if u.cuesElement == nil {
		return 0
	}
	size := u.sizes[u.cuesElement.Handle]
	return 4 + uint64(bytesio.CalculateSizeDenotationLength(size)) + size
}

// Parse walks cuesElement's subtree (CuePoint -> CueTrackPositions ->
// CueReference), recording per-node payload sizes and absolute/relative
// offset projections. Previous state is discarded.
func (u *Updater) Parse(cuesElement *element.Element, d *diag.Diagnostics) error {
	u.clear()
	const context = "parsing Cues element"

	var cuesElementSize uint64
	child, err := cuesElement.FirstChild(d)
	if err != nil {
		return err
	}
	for cur := child; cur != nil; {
		if err := cur.Parse(d); err != nil {
			return err
		}
		switch cur.ID {
		case ebml.IDVoid, ebml.IDCRC32:
		case ebml.IDCuePoint:
			size, err := u.parseCuePoint(cur, d)
			if err != nil {
				return err
			}
			cuesElementSize += 1 + uint64(bytesio.CalculateSizeDenotationLength(size)) + size
			u.trackSize(cur, size)
		default:
			d.Warnf(context, "Cues element contains an element which is not a CuePoint element; ignored")
		}
		next, err := cur.NextSibling(d)
		if err != nil {
			return err
		}
		cur = next
	}
	u.cuesElement = cuesElement
	u.trackSize(cuesElement, cuesElementSize)
	return nil
}

func (u *Updater) parseCuePoint(cuePointElement *element.Element, d *diag.Diagnostics) (uint64, error) {
	const context = "parsing CuePoint element"
	var size uint64
	child, err := cuePointElement.FirstChild(d)
	if err != nil {
		return 0, err
	}
	for cur := child; cur != nil; {
		if err := cur.Parse(d); err != nil {
			return 0, err
		}
		switch cur.ID {
		case ebml.IDVoid, ebml.IDCRC32:
		case ebml.IDCueTime:
			if err := cur.MakeBuffer(); err != nil {
				return 0, err
			}
			size += cur.TotalSize()
		case ebml.IDCueTrackPositions:
			childSize, err := u.parseCueTrackPositions(cur, d)
			if err != nil {
				return 0, err
			}
			size += 1 + uint64(bytesio.CalculateSizeDenotationLength(childSize)) + childSize
			u.trackSize(cur, childSize)
		default:
			d.Warnf(context, "CuePoint element contains an element which is not CueTime or CueTrackPositions; ignored")
		}
		next, err := cur.NextSibling(d)
		if err != nil {
			return 0, err
		}
		cur = next
	}
	return size, nil
}

func (u *Updater) parseCueTrackPositions(e *element.Element, d *diag.Diagnostics) (uint64, error) {
	const context = "parsing CueTrackPositions element"
	var size uint64
	var clusterPos *element.Element
	var relPos *element.Element
	var relValue uint64

	child, err := e.FirstChild(d)
	if err != nil {
		return 0, err
	}
	for cur := child; cur != nil; {
		if err := cur.Parse(d); err != nil {
			return 0, err
		}
		switch cur.ID {
		case ebml.IDCueTrack, ebml.IDCueDuration, ebml.IDCueBlockNumber:
			if err := cur.MakeBuffer(); err != nil {
				return 0, err
			}
			size += cur.TotalSize()
		case ebml.IDCueRelativePosition:
			v, err := readUInteger(cur)
			if err != nil {
				return 0, err
			}
			relPos, relValue = cur, v
		case ebml.IDCueClusterPosition:
			v, err := readUInteger(cur)
			if err != nil {
				return 0, err
			}
			clusterPos = cur
			size += 2 + uint64(bytesio.CalculateUintegerLength(v))
			u.offsets[cur.Handle] = &offsetEntry{elem: cur, initial: v, current: v}
			u.byHandle[cur.Handle] = cur
		case ebml.IDCueCodecState:
			v, err := readUInteger(cur)
			if err != nil {
				return 0, err
			}
			size += 2 + uint64(bytesio.CalculateUintegerLength(v))
			u.offsets[cur.Handle] = &offsetEntry{elem: cur, initial: v, current: v}
			u.byHandle[cur.Handle] = cur
		case ebml.IDCueReference:
			refSize, err := u.parseCueReference(cur, d)
			if err != nil {
				return 0, err
			}
			size += 1 + uint64(bytesio.CalculateSizeDenotationLength(refSize)) + refSize
			u.trackSize(cur, refSize)
		default:
			d.Warnf(context, "CueTrackPositions element contains an element which is not known; ignored")
		}
		next, err := cur.NextSibling(d)
		if err != nil {
			return 0, err
		}
		cur = next
	}

	if clusterPos == nil {
		d.Criticalf(context, "CueTrackPositions element does not contain mandatory CueClusterPosition element")
	} else if relPos != nil {
		size += 2 + uint64(bytesio.CalculateUintegerLength(relValue))
		u.relativeOffsets[relPos.Handle] = &relOffsetEntry{
			elem:      relPos,
			reference: u.offsets[clusterPos.Handle].initial,
			initial:   relValue,
			current:   relValue,
		}
		u.byHandle[relPos.Handle] = relPos
	}
	return size, nil
}

func (u *Updater) parseCueReference(e *element.Element, d *diag.Diagnostics) (uint64, error) {
	const context = "parsing CueReference element"
	var size uint64
	child, err := e.FirstChild(d)
	if err != nil {
		return 0, err
	}
	for cur := child; cur != nil; {
		if err := cur.Parse(d); err != nil {
			return 0, err
		}
		switch cur.ID {
		case ebml.IDVoid, ebml.IDCRC32:
		case ebml.IDCueRefTime, ebml.IDCueRefNumber:
			if err := cur.MakeBuffer(); err != nil {
				return 0, err
			}
			size += cur.TotalSize()
		case ebml.IDCueRefCluster, ebml.IDCueRefCodecState:
			v, err := readUInteger(cur)
			if err != nil {
				return 0, err
			}
			size += 2 + uint64(bytesio.CalculateUintegerLength(v))
			u.offsets[cur.Handle] = &offsetEntry{elem: cur, initial: v, current: v}
			u.byHandle[cur.Handle] = cur
		default:
			d.Warnf(context, "CueReference element contains an element which is not known; ignored")
		}
		next, err := cur.NextSibling(d)
		if err != nil {
			return 0, err
		}
		cur = next
	}
	return size, nil
}

func readUInteger(e *element.Element) (uint64, error) {
	if err := e.MakeBuffer(); err != nil {
		return 0, err
	}
	defer e.DiscardBuffer()
	payload := e.Buffer[e.HeaderSize():]
	var v uint64
	for _, b := range payload {
		v = v<<8 | uint64(b)
	}
	return v, nil
}

// UpdateOffsets rewrites every tracked absolute offset whose initially
// parsed value equals originalOffset to newOffset, and reports whether doing so changed the
// size of the Cues element (because the VINT-encoded offset's width
// changed).
func (u *Updater) UpdateOffsets(originalOffset, newOffset uint64) bool {
	updated := false
	for _, entry := range u.offsets {
		if entry.initial == originalOffset && entry.current != newOffset {
			shift := int(bytesio.CalculateUintegerLength(newOffset)) - int(bytesio.CalculateUintegerLength(entry.current))
			if u.updateSize(entry.elem.Parent, shift) {
				updated = true
			}
			entry.current = newOffset
		}
	}
	return updated
}

// UpdateRelativeOffsets rewrites every tracked relative offset matching
// referenceOffset and originalRelativeOffset to newRelativeOffset.
func (u *Updater) UpdateRelativeOffsets(referenceOffset, originalRelativeOffset, newRelativeOffset uint64) bool {
	updated := false
	for _, entry := range u.relativeOffsets {
		if entry.reference == referenceOffset && entry.initial == originalRelativeOffset && entry.current != newRelativeOffset {
			shift := int(bytesio.CalculateUintegerLength(newRelativeOffset)) - int(bytesio.CalculateUintegerLength(entry.current))
			if u.updateSize(entry.elem.Parent, shift) {
				updated = true
			}
			entry.current = newRelativeOffset
		}
	}
	return updated
}

// updateSize applies shift to element's tracked size and recurses into its
// parent with the resulting size-denotation width delta, stopping once it
// reaches an element outside the updater's scope (typically the Segment).
func (u *Updater) updateSize(e *element.Element, shift int) bool {
	if shift == 0 {
		return false
	}
	if e == nil {
		return true
	}
	size, ok := u.sizes[e.Handle]
	if !ok {
		return shift != 0
	}
	var newSize uint64
	if shift >= 0 {
		newSize = size + uint64(shift)
	} else {
		newSize = size - uint64(-shift)
	}
	widthDelta := int(bytesio.CalculateSizeDenotationLength(newSize)) - int(bytesio.CalculateSizeDenotationLength(size))
	updated := u.updateSize(e.Parent, shift+widthDelta)
	u.sizes[e.Handle] = newSize
	return updated
}

// Make writes the previously-parsed Cues element, with any updated
// offsets, to w.
func (u *Updater) Make(w io.Writer, d *diag.Diagnostics) error {
	const context = "making Cues element"
	if u.cuesElement == nil {
		d.Warnf(context, "no cues written; the cues of the source file could not be parsed correctly")
		return nil
	}

	if err := writeIDAndSize(w, ebml.IDCues, u.sizes[u.cuesElement.Handle]); err != nil {
		return err
	}

	var dd diag.Diagnostics
	child, err := u.cuesElement.FirstChild(&dd)
	if err != nil {
		return tagparsererr.Wrap(tagparsererr.ErrInvalidData, err, context)
	}
	for cur := child; cur != nil; {
		if err := cur.Parse(&dd); err != nil {
			return tagparsererr.Wrap(tagparsererr.ErrInvalidData, err, context)
		}
		switch cur.ID {
		case ebml.IDVoid, ebml.IDCRC32:
		case ebml.IDCuePoint:
			if err := u.makeCuePoint(w, cur, &dd); err != nil {
				if errors.Is(err, tagparsererr.ErrInvalidData) {
					d.Criticalf(context, "unable to write the Cues element: the Cues of the source file could not be parsed correctly")
				}
				return err
			}
		default:
			d.Warnf(context, "Cues element contains an element which is not a CuePoint element; ignored")
		}
		next, err := cur.NextSibling(&dd)
		if err != nil {
			return tagparsererr.Wrap(tagparsererr.ErrInvalidData, err, context)
		}
		cur = next
	}
	return nil
}

func (u *Updater) makeCuePoint(w io.Writer, e *element.Element, d *diag.Diagnostics) error {
	if err := writeIDAndSize(w, ebml.IDCuePoint, u.sizes[e.Handle]); err != nil {
		return err
	}
	child, err := e.FirstChild(d)
	if err != nil {
		return err
	}
	for cur := child; cur != nil; {
		if err := cur.Parse(d); err != nil {
			return err
		}
		switch cur.ID {
		case ebml.IDVoid, ebml.IDCRC32:
		case ebml.IDCueTime:
			if err := writeBuffered(w, cur); err != nil {
				return err
			}
		case ebml.IDCueTrackPositions:
			if err := u.makeCueTrackPositions(w, cur, d); err != nil {
				return err
			}
		default:
			d.Warnf("making CuePoint element", "element which is not CueTime or CueTrackPositions ignored")
		}
		next, err := cur.NextSibling(d)
		if err != nil {
			return err
		}
		cur = next
	}
	return nil
}

func (u *Updater) makeCueTrackPositions(w io.Writer, e *element.Element, d *diag.Diagnostics) error {
	if err := writeIDAndSize(w, ebml.IDCueTrackPositions, u.sizes[e.Handle]); err != nil {
		return err
	}
	child, err := e.FirstChild(d)
	if err != nil {
		return err
	}
	for cur := child; cur != nil; {
		if err := cur.Parse(d); err != nil {
			return err
		}
		switch cur.ID {
		case ebml.IDCueTrack, ebml.IDCueDuration, ebml.IDCueBlockNumber:
			if err := writeBuffered(w, cur); err != nil {
				return err
			}
		case ebml.IDCueRelativePosition:
			if entry, ok := u.relativeOffsets[cur.Handle]; ok {
				if err := writeSimpleElement(w, cur.ID, entry.current); err != nil {
					return err
				}
			}
		case ebml.IDCueClusterPosition, ebml.IDCueCodecState:
			entry, ok := u.offsets[cur.Handle]
			if !ok {
				return tagparsererr.New(tagparsererr.ErrInvalidData, "missing offset for CueClusterPosition/CueCodecState")
			}
			if err := writeSimpleElement(w, cur.ID, entry.current); err != nil {
				return err
			}
		case ebml.IDCueReference:
			if err := u.makeCueReference(w, cur, d); err != nil {
				return err
			}
		default:
			d.Warnf("making CueTrackPositions element", "unknown element ignored")
		}
		next, err := cur.NextSibling(d)
		if err != nil {
			return err
		}
		cur = next
	}
	return nil
}

func (u *Updater) makeCueReference(w io.Writer, e *element.Element, d *diag.Diagnostics) error {
	if err := writeIDAndSize(w, ebml.IDCueReference, u.sizes[e.Handle]); err != nil {
		return err
	}
	child, err := e.FirstChild(d)
	if err != nil {
		return err
	}
	for cur := child; cur != nil; {
		if err := cur.Parse(d); err != nil {
			return err
		}
		switch cur.ID {
		case ebml.IDVoid, ebml.IDCRC32:
		case ebml.IDCueRefTime, ebml.IDCueRefNumber:
			if err := writeBuffered(w, cur); err != nil {
				return err
			}
		case ebml.IDCueRefCluster, ebml.IDCueRefCodecState:
			entry, ok := u.offsets[cur.Handle]
			if !ok {
				return tagparsererr.New(tagparsererr.ErrInvalidData, "missing offset for CueRefCluster/CueRefCodecState")
			}
			if err := writeSimpleElement(w, cur.ID, entry.current); err != nil {
				return err
			}
		default:
			d.Warnf("making CueReference element", "unknown element ignored")
		}
		next, err := cur.NextSibling(d)
		if err != nil {
			return err
		}
		cur = next
	}
	return nil
}

func writeBuffered(w io.Writer, e *element.Element) error {
	if e.Buffer == nil {
		if err := e.MakeBuffer(); err != nil {
			return err
		}
	}
	defer e.DiscardBuffer()
	_, err := w.Write(e.Buffer)
	if err != nil {
		return tagparsererr.Wrap(tagparsererr.ErrIO, err, "write buffered element")
	}
	return nil
}

func writeIDAndSize(w io.Writer, id uint64, size uint64) error {
	if err := bytesio.WriteUint(w, id, int(bytesio.CalculateUintegerLength(id))); err != nil {
		return err
	}
	if _, err := w.Write(bytesio.MakeSizeDenotation(size)); err != nil {
		return tagparsererr.Wrap(tagparsererr.ErrIO, err, "write size denotation")
	}
	return nil
}

// writeSimpleElement writes an element with a plain minimal-width unsigned
// integer payload: id, size denotation, value.
func writeSimpleElement(w io.Writer, id uint64, value uint64) error {
	valueLen := bytesio.CalculateUintegerLength(value)
	if err := writeIDAndSize(w, id, uint64(valueLen)); err != nil {
		return err
	}
	return bytesio.WriteUint(w, value, int(valueLen))
}
