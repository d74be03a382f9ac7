package ogg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartsharp/tagparser/bytesio"
	"github.com/smartsharp/tagparser/diag"
	"github.com/smartsharp/tagparser/element"
)

// buildPage assembles one Ogg page carrying packets, each shorter than 255
// bytes so one lacing value always exactly terminates one packet.
func buildPage(serial, seq uint32, flags byte, packets ...[]byte) []byte {
	var segTable []byte
	var data []byte
	for _, p := range packets {
		if len(p) >= 255 {
			panic("test helper only supports packets under 255 bytes")
		}
		segTable = append(segTable, byte(len(p)))
		data = append(data, p...)
	}

	out := []byte(capturePattern)
	out = append(out, 0) // version
	out = append(out, flags)
	out = append(out, make([]byte, 8)...) // granule position, unused here.
	out = append(out, le32(serial)...)
	out = append(out, le32(seq)...)
	out = append(out, le32(0)...) // checksum, unchecked by this adapter.
	out = append(out, byte(len(segTable)))
	out = append(out, segTable...)
	out = append(out, data...)
	return out
}

func le32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func TestParsePageHeaderFields(t *testing.T) {
	data := buildPage(42, 0, FlagBOS, []byte("identification"))
	stream := bytesio.NewMemStream(data)
	root := element.NewRoot(Adapter{}, stream, 0, uint64(len(data)))

	var d diag.Diagnostics
	require.NoError(t, root.Parse(&d))
	assert.EqualValues(t, len("identification"), root.DataSize)

	h, err := DecodePage(root, stream)
	require.NoError(t, err)
	assert.True(t, h.BOS())
	assert.False(t, h.Continued())
	assert.EqualValues(t, 42, h.SerialNumber)
}

func TestRejectsBadCapturePattern(t *testing.T) {
	data := buildPage(1, 0, 0, []byte("x"))
	data[0] = 'X'
	stream := bytesio.NewMemStream(data)
	root := element.NewRoot(Adapter{}, stream, 0, uint64(len(data)))
	var d diag.Diagnostics
	assert.Error(t, root.Parse(&d))
}

func TestReadPacketsSinglePagePerPacket(t *testing.T) {
	page1 := buildPage(7, 0, FlagBOS, []byte("id header"))
	page2 := buildPage(7, 1, 0, []byte("comment header"))
	data := append(append([]byte{}, page1...), page2...)

	stream := bytesio.NewMemStream(data)
	root := element.NewRoot(Adapter{}, stream, 0, uint64(len(data)))

	var d diag.Diagnostics
	packets, err := ReadPackets(root, stream, &d)
	require.NoError(t, err)
	require.Len(t, packets, 2)
	assert.Equal(t, "id header", string(packets[0].Data))
	assert.True(t, packets[0].BOS)
	assert.Equal(t, "comment header", string(packets[1].Data))
	assert.False(t, packets[1].BOS)
}

func TestReadPacketsReassemblesContinuationAcrossPages(t *testing.T) {
	full := make([]byte, 300)
	for i := range full {
		full[i] = byte(i)
	}

	// Page 1: one segment of 255 (continues), leaving 45 bytes pending.
	seg1 := full[:255]
	page1 := []byte(capturePattern)
	page1 = append(page1, 0, FlagBOS)
	page1 = append(page1, make([]byte, 8)...)
	page1 = append(page1, le32(9)...)
	page1 = append(page1, le32(0)...)
	page1 = append(page1, le32(0)...)
	page1 = append(page1, 1, 255)
	page1 = append(page1, seg1...)

	// Page 2: continuation flag set, one segment of 45 (terminates).
	seg2 := full[255:]
	page2 := []byte(capturePattern)
	page2 = append(page2, 0, FlagContinuedPacket|FlagEOS)
	page2 = append(page2, make([]byte, 8)...)
	page2 = append(page2, le32(9)...)
	page2 = append(page2, le32(1)...)
	page2 = append(page2, le32(0)...)
	page2 = append(page2, 1, byte(len(seg2)))
	page2 = append(page2, seg2...)

	data := append(append([]byte{}, page1...), page2...)
	stream := bytesio.NewMemStream(data)
	root := element.NewRoot(Adapter{}, stream, 0, uint64(len(data)))

	var d diag.Diagnostics
	packets, err := ReadPackets(root, stream, &d)
	require.NoError(t, err)
	require.Len(t, packets, 1)
	assert.Equal(t, full, packets[0].Data)
	assert.True(t, packets[0].BOS)
	assert.True(t, packets[0].EOS)
}
