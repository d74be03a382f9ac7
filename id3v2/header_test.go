package id3v2

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaderRejectsBadSignature(t *testing.T) {
	_, err := parseHeader(bytes.NewReader([]byte("XYZ\x03\x00\x00\x00\x00\x00\x00")))
	assert.Error(t, err)
}

func TestParseHeaderDecodesSynchsafeSize(t *testing.T) {
	// 257 encoded synchsafe is {0x00,0x00,0x02,0x01}.
	data := []byte{'I', 'D', '3', 3, 0, 0x00, 0x00, 0x00, 0x02, 0x01}
	hdr, err := parseHeader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.EqualValues(t, 3, hdr.MajorVersion)
	assert.EqualValues(t, 257, hdr.SizeExcludingHeader)
	assert.True(t, hdr.VersionSupported())
}

func TestHeaderFlagHelpers(t *testing.T) {
	hdr := Header{Flags: FlagExtendedHeader | FlagFooter}
	assert.True(t, hdr.HasExtendedHeader())
	assert.True(t, hdr.HasFooter())

	plain := Header{}
	assert.False(t, plain.HasExtendedHeader())
	assert.False(t, plain.HasFooter())
}

func TestVersionSupported(t *testing.T) {
	assert.True(t, Header{MajorVersion: 2}.VersionSupported())
	assert.True(t, Header{MajorVersion: 4}.VersionSupported())
	assert.False(t, Header{MajorVersion: 1}.VersionSupported())
	assert.False(t, Header{MajorVersion: 5}.VersionSupported())
}

func TestWriteHeaderClearsExtendedHeaderBit(t *testing.T) {
	var buf bytes.Buffer
	h := Header{MajorVersion: 4, RevisionVersion: 0, Flags: FlagExtendedHeader | FlagUnsynchronisation}
	require.NoError(t, writeHeader(&buf, h, 100))

	out := buf.Bytes()
	require.Len(t, out, headerSize)
	assert.Equal(t, "ID3", string(out[:3]))
	assert.Equal(t, byte(FlagUnsynchronisation), out[5])
}
