package id3v1

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeParseRoundTrip(t *testing.T) {
	in := &Tag{
		Title:   "Hello",
		Artist:  "Someone",
		Album:   "An Album",
		Year:    "1999",
		Comment: "a comment",
		Genre:   17, // Rock
	}

	var buf bytes.Buffer
	require.NoError(t, Make(&buf, in))
	assert.Equal(t, tagSize, buf.Len())

	out, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, "Hello", out.Title)
	assert.Equal(t, "Someone", out.Artist)
	assert.Equal(t, "An Album", out.Album)
	assert.Equal(t, "1999", out.Year)
	assert.Equal(t, "a comment", out.Comment)
	assert.EqualValues(t, 0, out.TrackNumber)
	assert.Equal(t, "Rock", Genre(out.Genre))
}

func TestMakeParseRoundTripV1Point1(t *testing.T) {
	in := &Tag{
		Title:       "Title",
		Comment:     "short comment",
		TrackNumber: 7,
		Genre:       0,
	}

	var buf bytes.Buffer
	require.NoError(t, Make(&buf, in))

	out, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, "short comment", out.Comment)
	assert.EqualValues(t, 7, out.TrackNumber)
}

func TestParseRejectsBadSignature(t *testing.T) {
	buf := bytes.NewBuffer(make([]byte, tagSize))
	_, err := Parse(buf)
	assert.Error(t, err)
}

func TestParseRejectsTruncatedTag(t *testing.T) {
	buf := bytes.NewBuffer([]byte("TAG"))
	_, err := Parse(buf)
	assert.Error(t, err)
}

func TestGenreIndexRoundTrip(t *testing.T) {
	idx, ok := GenreIndex("Jazz")
	require.True(t, ok)
	assert.Equal(t, "Jazz", Genre(idx))

	_, ok = GenreIndex("Not A Real Genre")
	assert.False(t, ok)
}
