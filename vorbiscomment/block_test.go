package vorbiscomment

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartsharp/tagparser/diag"
	"github.com/smartsharp/tagparser/tagvalue"
)

func TestMakeThenParseBlockRoundTrip(t *testing.T) {
	block := &Block{
		Vendor: "smartsharp tagparser",
		Fields: []Field{
			{ID: "TITLE", Value: "Hi"},
			{ID: "ARTIST", Value: "Someone"},
			{ID: "ARTIST", Value: "Someone Else"},
		},
	}

	var buf bytes.Buffer
	var d diag.Diagnostics
	require.NoError(t, block.Make(&buf, tagvalue.VorbisCommentFlagsNone, &d))

	parsed, err := Parse(bytes.NewReader(buf.Bytes()), uint64(buf.Len()), &d)
	require.NoError(t, err)
	assert.Equal(t, "smartsharp tagparser", parsed.Vendor)
	require.Len(t, parsed.Fields, 3)
	assert.Equal(t, "TITLE", parsed.Fields[0].ID)
	assert.Equal(t, "Hi", parsed.Fields[0].Value)
	assert.Equal(t, "Someone", parsed.Fields[1].Value)
	assert.Equal(t, "Someone Else", parsed.Fields[2].Value)
}

func TestCoverFieldRoundTripThroughBlock(t *testing.T) {
	pic := tagvalue.FlacPicture{
		Type:     tagvalue.FlacPictureCoverFront,
		MimeType: "image/png",
		Data:     []byte{1, 2, 3, 4},
	}
	block := &Block{
		Vendor: "vendor",
		Fields: []Field{{ID: CoverID, Picture: &pic}},
	}

	var buf bytes.Buffer
	var d diag.Diagnostics
	require.NoError(t, block.Make(&buf, tagvalue.VorbisCommentFlagsNone, &d))

	parsed, err := Parse(bytes.NewReader(buf.Bytes()), uint64(buf.Len()), &d)
	require.NoError(t, err)
	require.Len(t, parsed.Fields, 1)
	require.NotNil(t, parsed.Fields[0].Picture)
	assert.Equal(t, pic, *parsed.Fields[0].Picture)
}

func TestCoverFieldSkippedWithNoCoversFlag(t *testing.T) {
	pic := tagvalue.FlacPicture{Type: tagvalue.FlacPictureCoverFront, Data: []byte{1}}
	block := &Block{Fields: []Field{{ID: CoverID, Picture: &pic}, {ID: "TITLE", Value: "Hi"}}}

	var buf bytes.Buffer
	var d diag.Diagnostics
	require.NoError(t, block.Make(&buf, tagvalue.NoCovers, &d))

	parsed, err := Parse(bytes.NewReader(buf.Bytes()), uint64(buf.Len()), &d)
	require.NoError(t, err)
	require.Len(t, parsed.Fields, 1)
	assert.Equal(t, "TITLE", parsed.Fields[0].ID)
}

func TestParseFieldRejectsEmptyID(t *testing.T) {
	var buf bytes.Buffer
	// length=1, body="=" (id size 0).
	require.NoError(t, writeRawField(&buf, "="))

	maxSize := uint64(buf.Len())
	var d diag.Diagnostics
	_, _, err := ParseField(&buf, &maxSize, &d)
	assert.Error(t, err)
}

func writeRawField(buf *bytes.Buffer, body string) error {
	size := uint32(len(body))
	return writeLE(buf, size, []byte(body))
}

func writeLE(buf *bytes.Buffer, size uint32, body []byte) error {
	var lenBytes [4]byte
	for i := 0; i < 4; i++ {
		lenBytes[i] = byte(size >> (8 * i))
	}
	buf.Write(lenBytes[:])
	buf.Write(body)
	return nil
}
