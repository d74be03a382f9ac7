package cues

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartsharp/tagparser/bytesio"
	"github.com/smartsharp/tagparser/diag"
	"github.com/smartsharp/tagparser/ebml"
	"github.com/smartsharp/tagparser/element"
)

func encodeElem(id uint64, idWidth int, payload []byte) []byte {
	idBytes := make([]byte, idWidth)
	v := id
	for i := idWidth - 1; i >= 0; i-- {
		idBytes[i] = byte(v)
		v >>= 8
	}
	sizeBytes := bytesio.MakeSizeDenotation(uint64(len(payload)))
	out := append([]byte{}, idBytes...)
	out = append(out, sizeBytes...)
	out = append(out, payload...)
	return out
}

// buildCues builds a minimal Cues element containing one CuePoint with a
// CueTime and a CueTrackPositions{CueTrack, CueClusterPosition=clusterPos}.
func buildCues(clusterPos uint64) []byte {
	clusterLen := bytesio.CalculateUintegerLength(clusterPos)
	clusterBuf := make([]byte, clusterLen)
	v := clusterPos
	for i := int(clusterLen) - 1; i >= 0; i-- {
		clusterBuf[i] = byte(v)
		v >>= 8
	}

	cueTrack := encodeElem(ebml.IDCueTrack, 1, []byte{1})
	cueClusterPosition := encodeElem(ebml.IDCueClusterPosition, 1, clusterBuf)
	trackPositionsPayload := append(append([]byte{}, cueTrack...), cueClusterPosition...)
	cueTrackPositions := encodeElem(ebml.IDCueTrackPositions, 1, trackPositionsPayload)

	cueTime := encodeElem(ebml.IDCueTime, 1, []byte{5})
	cuePointPayload := append(append([]byte{}, cueTime...), cueTrackPositions...)
	cuePoint := encodeElem(ebml.IDCuePoint, 1, cuePointPayload)

	return encodeElem(ebml.IDCues, 4, cuePoint)
}

func parseCuesRoot(t *testing.T, data []byte) *element.Element {
	t.Helper()
	stream := bytesio.NewMemStream(data)
	root := element.NewRoot(ebml.Adapter{}, stream, 0, uint64(len(data)))
	var d diag.Diagnostics
	require.NoError(t, root.Parse(&d))
	return root
}

func TestParseTracksClusterPosition(t *testing.T) {
	root := parseCuesRoot(t, buildCues(100))
	u := New()
	var d diag.Diagnostics
	require.NoError(t, u.Parse(root, &d))

	require.Len(t, u.offsets, 1)
	for _, entry := range u.offsets {
		assert.EqualValues(t, 100, entry.initial)
		assert.EqualValues(t, 100, entry.current)
	}
}

func TestUpdateOffsetsWidensSizeOnOverflow(t *testing.T) {
	data := buildCues(100)
	root := parseCuesRoot(t, data)
	u := New()
	var d diag.Diagnostics
	require.NoError(t, u.Parse(root, &d))

	before := u.TotalSize()
	changed := u.UpdateOffsets(100, 300) // 300 needs 2 bytes, was 1.
	assert.True(t, changed)
	after := u.TotalSize()
	assert.Greater(t, after, before)
}

func TestUpdateOffsetsNoOpWhenWidthUnchanged(t *testing.T) {
	root := parseCuesRoot(t, buildCues(100))
	u := New()
	var d diag.Diagnostics
	require.NoError(t, u.Parse(root, &d))

	before := u.TotalSize()
	changed := u.UpdateOffsets(100, 200) // still fits in 1 byte.
	assert.False(t, changed)
	assert.Equal(t, before, u.TotalSize())
}

func TestMakeReflectsUpdatedOffset(t *testing.T) {
	root := parseCuesRoot(t, buildCues(100))
	u := New()
	var d diag.Diagnostics
	require.NoError(t, u.Parse(root, &d))
	u.UpdateOffsets(100, 300)

	var buf bytes.Buffer
	require.NoError(t, u.Make(&buf, &d))

	out := buf.Bytes()
	assert.EqualValues(t, ebml.IDCues>>24, out[0])
	// The new cluster position value (300 = 0x012C) must appear somewhere
	// in the re-serialized bytes.
	assert.Contains(t, string(out), string([]byte{0x01, 0x2C}))
}
