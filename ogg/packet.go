package ogg

import (
	"io"

	"github.com/smartsharp/tagparser/bytesio"
	"github.com/smartsharp/tagparser/diag"
	"github.com/smartsharp/tagparser/element"
	"github.com/smartsharp/tagparser/internal/tagparsererr"
)

// Packet is one reassembled logical packet of a single Ogg logical
// bitstream (identified by SerialNumber).
type Packet struct {
	SerialNumber uint32
	Data         []byte
	BOS          bool
	EOS          bool
}

// ReadPackets walks the sibling chain of pages starting at root, decoding
// each page's header and reassembling packets per the lacing rules in RFC
// 3533: a segment of value 255 continues the packet into the next segment
// (possibly on the next page, when that page's continued-packet flag is
// set); any segment value less than 255 ends the packet.
//
// Packets from every logical bitstream multiplexed into the file are
// returned in page order; callers interested in one serial number filter
// the result themselves, mirroring how the comment-header packet is
// located in practice (by BOS page + stream type, not by a dedicated
// filter parameter here).
func ReadPackets(root *element.Element, stream bytesio.Stream, d *diag.Diagnostics) ([]Packet, error) {
	var packets []Packet
	pending := map[uint32][]byte{}
	// pendingBOS records, per serial number, that the packet left pending
	// at the end of the previous page started on a BOS page.
	pendingBOS := map[uint32]bool{}

	for page := root; page != nil; {
		if err := page.Parse(d); err != nil {
			return nil, err
		}
		h, err := DecodePage(page, stream)
		if err != nil {
			return nil, err
		}

		if _, err := stream.Seek(int64(page.DataOffset()), 0); err != nil {
			return nil, tagparsererr.Wrap(tagparsererr.ErrIO, err, "seek to Ogg page data")
		}

		buf := pending[h.SerialNumber]
		if !h.Continued() {
			buf = nil
		}
		// bosPending marks that whichever packet completes next was at
		// least partly built from a BOS page's data; BOS/EOS are page-level
		// flags, so a packet spanning a BOS page and a later, non-BOS page
		// still counts as the stream's opening packet.
		bosPending := h.BOS() || (h.Continued() && pendingBOS[h.SerialNumber])

		offset := 0
		for offset < len(h.SegmentTable) {
			runLen := 0
			terminated := false
			for offset < len(h.SegmentTable) {
				v := h.SegmentTable[offset]
				offset++
				runLen += int(v)
				if v < 255 {
					terminated = true
					break
				}
			}
			segment := make([]byte, runLen)
			if _, err := io.ReadFull(stream, segment); err != nil {
				return nil, tagparsererr.Wrap(tagparsererr.ErrTruncatedData, err, "read Ogg packet segment")
			}
			buf = append(buf, segment...)
			if terminated {
				packets = append(packets, Packet{
					SerialNumber: h.SerialNumber,
					Data:         buf,
					BOS:          bosPending,
					EOS:          h.EOS(),
				})
				buf = nil
				bosPending = false
			}
		}
		pending[h.SerialNumber] = buf
		pendingBOS[h.SerialNumber] = bosPending && len(buf) > 0

		next, err := page.NextSibling(d)
		if err != nil {
			return nil, err
		}
		page = next
	}

	for serial, leftover := range pending {
		if len(leftover) > 0 {
			d.Warnf("ogg", "logical bitstream %d ends mid-packet", serial)
		}
	}
	return packets, nil
}
