package id3v2

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartsharp/tagparser/diag"
)

func buildTitleFrame(t *testing.T, text string) []byte {
	t.Helper()
	f := Frame{ID: idTitle}
	require.NoError(t, f.SetText(EncodingISO8859_1, text))
	var buf bytes.Buffer
	require.NoError(t, writeFrame(&buf, f, 3))
	return buf.Bytes()
}

func buildTagBytes(t *testing.T, frames ...[]byte) []byte {
	t.Helper()
	var framesBuf bytes.Buffer
	for _, f := range frames {
		framesBuf.Write(f)
	}

	var buf bytes.Buffer
	buf.WriteString("ID3")
	buf.Write([]byte{3, 0})  // version
	buf.WriteByte(0)         // flags
	enc := encodeSynchsafeForTest(uint32(framesBuf.Len()))
	buf.Write(enc[:])
	buf.Write(framesBuf.Bytes())
	return buf.Bytes()
}

func encodeSynchsafeForTest(v uint32) [4]byte {
	var out [4]byte
	for i := 3; i >= 0; i-- {
		out[i] = byte(v & 0x7F)
		v >>= 7
	}
	return out
}

func TestParseSimpleTitleTag(t *testing.T) {
	titleFrame := buildTitleFrame(t, "Hello")
	data := buildTagBytes(t, titleFrame)

	var d diag.Diagnostics
	tag, err := Parse(bytes.NewReader(data), uint64(len(data)), &d)
	require.NoError(t, err)

	f, ok := tag.Frame(idTitle)
	require.True(t, ok)
	text, err := f.Text()
	require.NoError(t, err)
	assert.Equal(t, "Hello", text)
}

func TestParseMultipleFramesSortsByFrameOrder(t *testing.T) {
	ufid := MakeUFID(UFID{Owner: "owner", Identifier: []byte{1}})
	var ufidBuf bytes.Buffer
	require.NoError(t, writeFrame(&ufidBuf, ufid, 3))

	titleFrame := buildTitleFrame(t, "Title")

	albumFrame := Frame{ID: idAlbum}
	require.NoError(t, albumFrame.SetText(EncodingISO8859_1, "Album"))
	var albumBuf bytes.Buffer
	require.NoError(t, writeFrame(&albumBuf, albumFrame, 3))

	data := buildTagBytes(t, albumBuf.Bytes(), ufidBuf.Bytes(), titleFrame)

	var d diag.Diagnostics
	tag, err := Parse(bytes.NewReader(data), uint64(len(data)), &d)
	require.NoError(t, err)

	frames := tag.Frames()
	require.Len(t, frames, 3)
	assert.Equal(t, idUniqueFileID, frames[0].ID)
	assert.Equal(t, idTitle, frames[1].ID)
	assert.Equal(t, idAlbum, frames[2].ID)
}

func TestParseEmptyTagWarns(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("ID3")
	buf.Write([]byte{3, 0, 0, 0, 0, 0, 0})

	var d diag.Diagnostics
	tag, err := Parse(bytes.NewReader(buf.Bytes()), uint64(buf.Len()), &d)
	require.NoError(t, err)
	assert.Zero(t, tag.SizeExcludingHeader)
	assert.True(t, d.Has(diag.LevelWarning))
}

func TestParseRejectsUnsupportedVersion(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("ID3")
	buf.Write([]byte{9, 0, 0})
	enc := encodeSynchsafeForTest(10)
	buf.WriteByte(enc[0])
	buf.Write(enc[1:])

	var d diag.Diagnostics
	_, err := Parse(bytes.NewReader(buf.Bytes()), uint64(buf.Len()), &d)
	assert.Error(t, err)
}

func TestMakeThenParseRoundTrip(t *testing.T) {
	tag := NewTag()
	title := Frame{ID: idTitle}
	require.NoError(t, title.SetText(EncodingUTF8, "Round Trip"))
	tag.SetFrame(title)

	var buf bytes.Buffer
	var d diag.Diagnostics
	require.NoError(t, tag.Make(&buf, 10, &d))

	parsed, err := Parse(bytes.NewReader(buf.Bytes()), uint64(buf.Len()), &d)
	require.NoError(t, err)

	f, ok := parsed.Frame(idTitle)
	require.True(t, ok)
	text, err := f.Text()
	require.NoError(t, err)
	assert.Equal(t, "Round Trip", text)
	assert.EqualValues(t, 10, parsed.PaddingSize)
}

func TestDuplicateTextFrameWarns(t *testing.T) {
	f1 := buildTitleFrame(t, "First")
	f2 := buildTitleFrame(t, "Second")
	data := buildTagBytes(t, f1, f2)

	var d diag.Diagnostics
	tag, err := Parse(bytes.NewReader(data), uint64(len(data)), &d)
	require.NoError(t, err)
	assert.True(t, d.Has(diag.LevelWarning))

	f, ok := tag.Frame(idTitle)
	require.True(t, ok)
	text, err := f.Text()
	require.NoError(t, err)
	assert.Equal(t, "Second", text)
}
