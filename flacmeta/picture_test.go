package flacmeta

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartsharp/tagparser/tagvalue"
)

func TestMakeParsePictureBlockRoundTrip(t *testing.T) {
	in := tagvalue.FlacPicture{
		Type:        tagvalue.FlacPictureCoverFront,
		MimeType:    "image/jpeg",
		Description: "front cover",
		Width:       100,
		Height:      200,
		ColorDepth:  24,
		Colors:      0,
		Data:        []byte{0xFF, 0xD8, 0xFF, 0x00, 0x01},
	}

	var buf bytes.Buffer
	require.NoError(t, MakePictureBlock(&buf, in))
	assert.EqualValues(t, RequiredSize(in), buf.Len())

	out, err := ParsePictureBlock(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestBlockHeaderRoundTrip(t *testing.T) {
	h := BlockHeader{IsLast: true, Type: TypePicture, Length: 12345}
	var buf bytes.Buffer
	require.NoError(t, WriteBlockHeader(&buf, h))
	require.Len(t, buf.Bytes(), 4)

	out, err := ParseBlockHeader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, h, out)
}

func TestParseBlockHeaderRejectsReservedType(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBlockHeader(&buf, BlockHeader{Type: 10}))
	_, err := ParseBlockHeader(bytes.NewReader(buf.Bytes()))
	assert.Error(t, err)
}
