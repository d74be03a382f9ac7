// Package bytesio provides the seekable byte-stream abstraction and the
// primitive integer/VINT/synchsafe codecs every format adapter in this
// module builds on.
package bytesio

import (
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/smartsharp/tagparser/internal/tagparsererr"
)

// Stream is the minimal capability every container parser needs from its
// underlying byte source: random-access reads and writes over a sequence
// of known total length.
type Stream interface {
	io.Reader
	io.Writer
	io.Seeker
	// Len returns the total number of bytes in the stream.
	Len() (int64, error)
}

// MemStream is an in-memory Stream backed by a growable byte buffer. It is
// what the test suite uses in place of temp files.
type MemStream struct {
	buf []byte
	pos int64
}

// NewMemStream creates a MemStream pre-populated with data. The returned
// stream does not alias data's backing array for writes past the initial
// length.
func NewMemStream(data []byte) *MemStream {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &MemStream{buf: buf}
}

func (m *MemStream) Read(p []byte) (int, error) {
	if m.pos >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *MemStream) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	n := copy(m.buf[m.pos:end], p)
	m.pos = end
	return n, nil
}

func (m *MemStream) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = m.pos + offset
	case io.SeekEnd:
		newPos = int64(len(m.buf)) + offset
	default:
		return 0, errors.Errorf("bytesio: invalid whence %d", whence)
	}
	if newPos < 0 {
		return 0, tagparsererr.New(tagparsererr.ErrIO, "seek before start of stream")
	}
	m.pos = newPos
	return m.pos, nil
}

func (m *MemStream) Len() (int64, error) {
	return int64(len(m.buf)), nil
}

// Bytes returns the stream's current contents. The caller must not mutate
// the returned slice.
func (m *MemStream) Bytes() []byte {
	return m.buf
}

// FileStream adapts an *os.File-like random-access handle (any
// io.ReadWriteSeeker, with its length reported by a caller-supplied
// function) to Stream.
type FileStream struct {
	io.ReadWriteSeeker
	statLen func() (int64, error)
}

// NewFileStream wraps rws, using lenFn to report total length (typically
// derived from os.File.Stat).
func NewFileStream(rws io.ReadWriteSeeker, lenFn func() (int64, error)) *FileStream {
	return &FileStream{ReadWriteSeeker: rws, statLen: lenFn}
}

func (f *FileStream) Len() (int64, error) {
	return f.statLen()
}

// bytesReaderStream adapts a *bytes.Reader (read-only) to Stream for
// parsing sub-ranges of an already-loaded buffer, mirroring the teacher's
// seekableReader pattern of reusing the generic reader over nested element
// payloads.
type bytesReaderStream struct {
	*bytes.Reader
}

// NewReadOnlyStream wraps data as a read-only Stream. Writes fail.
func NewReadOnlyStream(data []byte) Stream {
	return &bytesReaderStream{bytes.NewReader(data)}
}

func (b *bytesReaderStream) Write([]byte) (int, error) {
	return 0, tagparsererr.New(tagparsererr.ErrIO, "stream is read-only")
}

func (b *bytesReaderStream) Len() (int64, error) {
	return b.Reader.Size(), nil
}
