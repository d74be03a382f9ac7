package bytesio

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStreamReadWriteSeek(t *testing.T) {
	m := NewMemStream([]byte("hello world"))

	buf := make([]byte, 5)
	n, err := m.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(buf))

	pos, err := m.Seek(6, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(6), pos)

	n, err = m.Write([]byte("there"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello there", string(m.Bytes()))

	length, err := m.Len()
	require.NoError(t, err)
	assert.Equal(t, int64(11), length)
}

func TestMemStreamGrowsOnWritePastEnd(t *testing.T) {
	m := NewMemStream(nil)
	_, err := m.Seek(4, io.SeekStart)
	require.NoError(t, err)
	_, err = m.Write([]byte("x"))
	require.NoError(t, err)

	length, err := m.Len()
	require.NoError(t, err)
	assert.Equal(t, int64(5), length)
}

func TestMemStreamSeekBeforeStartFails(t *testing.T) {
	m := NewMemStream([]byte("abc"))
	_, err := m.Seek(-1, io.SeekStart)
	assert.Error(t, err)
}

func TestMemStreamReadAtEOF(t *testing.T) {
	m := NewMemStream([]byte("ab"))
	_, _ = m.Seek(0, io.SeekEnd)
	_, err := m.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadOnlyStreamRejectsWrites(t *testing.T) {
	s := NewReadOnlyStream([]byte("abc"))
	_, err := s.Write([]byte("x"))
	assert.Error(t, err)

	length, err := s.Len()
	require.NoError(t, err)
	assert.Equal(t, int64(3), length)
}
