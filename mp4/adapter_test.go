package mp4

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartsharp/tagparser/bytesio"
	"github.com/smartsharp/tagparser/diag"
	"github.com/smartsharp/tagparser/element"
)

func buildBox(boxType string, payload []byte) []byte {
	size := uint32(8 + len(payload))
	out := []byte{byte(size >> 24), byte(size >> 16), byte(size >> 8), byte(size)}
	out = append(out, boxType...)
	out = append(out, payload...)
	return out
}

func TestParseLeafBox(t *testing.T) {
	data := buildBox("free", []byte{1, 2, 3})
	stream := bytesio.NewMemStream(data)
	root := element.NewRoot(Adapter{}, stream, 0, uint64(len(data)))

	var d diag.Diagnostics
	require.NoError(t, root.Parse(&d))
	assert.Equal(t, FourCC("free"), root.ID)
	assert.EqualValues(t, 3, root.DataSize)
	assert.True(t, Adapter{}.IsPadding(root))
}

func TestParseContainerBoxWithChild(t *testing.T) {
	inner := buildBox("mdia", nil)
	outer := buildBox("trak", inner)
	stream := bytesio.NewMemStream(outer)
	root := element.NewRoot(Adapter{}, stream, 0, uint64(len(outer)))

	var d diag.Diagnostics
	require.NoError(t, root.Parse(&d))
	assert.Equal(t, FourCC("trak"), root.ID)
	assert.True(t, Adapter{}.IsParent(root))

	child, err := root.FirstChild(&d)
	require.NoError(t, err)
	require.NotNil(t, child)
	require.NoError(t, child.Parse(&d))
	assert.Equal(t, FourCC("mdia"), child.ID)
	assert.EqualValues(t, 0, child.DataSize)
}

func TestParseMetaBoxSkipsVersionFlags(t *testing.T) {
	inner := buildBox("ilst", nil)
	metaPayload := append([]byte{0, 0, 0, 0}, inner...)
	outer := buildBox("meta", metaPayload)
	stream := bytesio.NewMemStream(outer)
	root := element.NewRoot(Adapter{}, stream, 0, uint64(len(outer)))

	var d diag.Diagnostics
	require.NoError(t, root.Parse(&d))
	child, err := root.FirstChild(&d)
	require.NoError(t, err)
	require.NotNil(t, child)
	require.NoError(t, child.Parse(&d))
	assert.Equal(t, FourCC("ilst"), child.ID)
}

func TestParseUUIDBoxExposesExtendedType(t *testing.T) {
	var extType [16]byte
	for i := range extType {
		extType[i] = byte(i)
	}
	payload := append(append([]byte{}, extType[:]...), []byte("hello")...)
	data := buildBox("uuid", payload)
	stream := bytesio.NewMemStream(data)
	root := element.NewRoot(Adapter{}, stream, 0, uint64(len(data)))

	var d diag.Diagnostics
	require.NoError(t, root.Parse(&d))
	assert.Equal(t, BoxUUID, root.ID)
	assert.EqualValues(t, 5, root.DataSize)

	got, err := ExtendedType(root, stream)
	require.NoError(t, err)
	assert.Equal(t, extType, got)
}

func TestFourCCRoundTrip(t *testing.T) {
	assert.Equal(t, "moov", FourCCString(FourCC("moov")))
}
