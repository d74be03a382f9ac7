// Package ogg implements the element.Adapter for Ogg page framing (RFC
// 3533): the "OggS" capture pattern, a fixed-width header, and a segment
// table giving each lacing value's length. A page is modeled as an
// element.Element node (siblings chain across the whole logical bitstream
// multiplex); logical-packet reassembly across continuation pages -- a
// concept the generic contiguous-byte-range Element model cannot express
// as a child span once a packet crosses a page boundary -- is handled
// separately by ReadPackets, not through element.Element.FirstChild.
package ogg

import (
	"io"

	"github.com/smartsharp/tagparser/bytesio"
	"github.com/smartsharp/tagparser/diag"
	"github.com/smartsharp/tagparser/element"
	"github.com/smartsharp/tagparser/internal/tagparsererr"
)

const (
	capturePattern = "OggS"
	fixedHeaderLen = 27 // capture pattern through page_segments, inclusive.

	FlagContinuedPacket byte = 1 << 0
	FlagBOS             byte = 1 << 1
	FlagEOS             byte = 1 << 2
)

// PageHeader is the fully decoded form of an Ogg page header.
type PageHeader struct {
	Version         byte
	HeaderTypeFlags byte
	GranulePosition uint64
	SerialNumber    uint32
	SequenceNumber  uint32
	Checksum        uint32
	SegmentTable    []byte
	HeaderLen       uint32
	DataLen         uint64
}

func (h PageHeader) Continued() bool { return h.HeaderTypeFlags&FlagContinuedPacket != 0 }
func (h PageHeader) BOS() bool       { return h.HeaderTypeFlags&FlagBOS != 0 }
func (h PageHeader) EOS() bool       { return h.HeaderTypeFlags&FlagEOS != 0 }

// pageID is the uint64 id every Ogg page element reports; pages are not
// differentiated by type the way EBML/MP4/RIFF elements are; the page's
// decoded fields (read via DecodePage) carry the information a caller needs
// to distinguish or reassemble them.
const pageID = uint64(0x4F676753) // "OggS" packed big-endian.

// Adapter decodes Ogg page headers.
type Adapter struct{}

var _ element.Adapter = Adapter{}

func (Adapter) InternalParse(e *element.Element, stream bytesio.Stream, d *diag.Diagnostics) error {
	h, err := decodeHeader(stream, e.StartOffset)
	if err != nil {
		return err
	}
	e.ID = pageID
	e.IDLength = h.HeaderLen
	e.SizeLength = 0
	e.DataSize = h.DataLen
	return nil
}

func (Adapter) IsParent(*element.Element) bool {
	// Packet reassembly crosses page boundaries and so cannot be expressed
	// as a byte-contiguous child span; see ReadPackets.
	return false
}

func (Adapter) IsPadding(*element.Element) bool {
	return false
}

func (Adapter) FirstChildOffset(e *element.Element) uint64 {
	return e.DataOffset()
}

// DecodePage fully decodes the page header at e.StartOffset, including the
// fields Adapter.InternalParse doesn't surface on Element itself.
func DecodePage(e *element.Element, stream bytesio.Stream) (PageHeader, error) {
	return decodeHeader(stream, e.StartOffset)
}

func decodeHeader(stream bytesio.Stream, offset uint64) (PageHeader, error) {
	if _, err := stream.Seek(int64(offset), 0); err != nil {
		return PageHeader{}, tagparsererr.Wrap(tagparsererr.ErrIO, err, "seek to Ogg page header")
	}

	sig := make([]byte, 4)
	if _, err := io.ReadFull(stream, sig); err != nil {
		return PageHeader{}, tagparsererr.Wrap(tagparsererr.ErrTruncatedData, err, "read Ogg capture pattern")
	}
	if string(sig) != capturePattern {
		return PageHeader{}, tagparsererr.New(tagparsererr.ErrInvalidData, "Ogg capture pattern not found")
	}

	version, err := bytesio.ReadUint(stream, 1)
	if err != nil {
		return PageHeader{}, err
	}
	if version != 0 {
		return PageHeader{}, tagparsererr.New(tagparsererr.ErrVersionNotSupported, "unsupported Ogg page version")
	}

	flags, err := bytesio.ReadUint(stream, 1)
	if err != nil {
		return PageHeader{}, err
	}
	granule, err := bytesio.ReadUintLE(stream, 8)
	if err != nil {
		return PageHeader{}, err
	}
	serial, err := bytesio.ReadUintLE(stream, 4)
	if err != nil {
		return PageHeader{}, err
	}
	sequence, err := bytesio.ReadUintLE(stream, 4)
	if err != nil {
		return PageHeader{}, err
	}
	checksum, err := bytesio.ReadUintLE(stream, 4)
	if err != nil {
		return PageHeader{}, err
	}
	segCount, err := bytesio.ReadUint(stream, 1)
	if err != nil {
		return PageHeader{}, err
	}
	segTable := make([]byte, segCount)
	if _, err := io.ReadFull(stream, segTable); err != nil {
		return PageHeader{}, tagparsererr.Wrap(tagparsererr.ErrTruncatedData, err, "read Ogg segment table")
	}

	var dataLen uint64
	for _, v := range segTable {
		dataLen += uint64(v)
	}

	return PageHeader{
		Version:         byte(version),
		HeaderTypeFlags: byte(flags),
		GranulePosition: granule,
		SerialNumber:    uint32(serial),
		SequenceNumber:  uint32(sequence),
		Checksum:        uint32(checksum),
		SegmentTable:    segTable,
		HeaderLen:       uint32(fixedHeaderLen + len(segTable)),
		DataLen:         dataLen,
	}, nil
}
