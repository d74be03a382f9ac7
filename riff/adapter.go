// Package riff implements the element.Adapter for RIFF/AVI chunk framing: a
// 4-character FourCC id, a little-endian 32-bit size, and even-boundary
// padding (a single zero pad byte when size is odd, not itself counted in
// size). RIFF and LIST chunks carry a nested 4-character form/list type and
// are the only chunks this adapter descends into.
package riff

import (
	"github.com/smartsharp/tagparser/bytesio"
	"github.com/smartsharp/tagparser/diag"
	"github.com/smartsharp/tagparser/element"
	"github.com/smartsharp/tagparser/internal/tagparsererr"
)

const headerSize = 8 // 4-byte FourCC id + 4-byte LE size.

// FourCC packs a 4-character chunk id into the uint64 id space
// element.Element uses.
func FourCC(s string) uint64 {
	var id uint64
	for i := 0; i < 4; i++ {
		id <<= 8
		if i < len(s) {
			id |= uint64(s[i])
		}
	}
	return id
}

// FourCCString renders a FourCC id back to its 4-character form.
func FourCCString(id uint64) string {
	b := [4]byte{byte(id >> 24), byte(id >> 16), byte(id >> 8), byte(id)}
	return string(b[:])
}

var (
	ChunkRIFF = FourCC("RIFF")
	ChunkLIST = FourCC("LIST")
	// ChunkJunk and ChunkPad are the conventional RIFF filler chunks
	// (AVI/WAV encoders use them to reserve space for later edits); their
	// payload carries no meaning.
	ChunkJunk = FourCC("JUNK")
	ChunkPad  = FourCC("PAD ")
)

// Adapter decodes RIFF chunk headers.
type Adapter struct{}

var _ element.Adapter = Adapter{}

func (Adapter) InternalParse(e *element.Element, stream bytesio.Stream, d *diag.Diagnostics) error {
	if _, err := stream.Seek(int64(e.StartOffset), 0); err != nil {
		return tagparsererr.Wrap(tagparsererr.ErrIO, err, "seek to RIFF chunk header")
	}

	idBytes := make([]byte, 4)
	if _, err := readFull(stream, idBytes); err != nil {
		return err
	}
	size, err := bytesio.ReadUintLE(stream, 4)
	if err != nil {
		return err
	}

	e.ID = FourCC(string(idBytes))
	e.IDLength = 4
	e.SizeLength = 4
	// DataSize carries the padded span so element.Element's generic
	// EndOffset/NextSibling arithmetic lands on the next chunk's real start;
	// DeclaredSize recovers the unpadded size a payload reader needs.
	e.DataSize = paddedSize(size)
	return nil
}

// DeclaredSize returns e's on-disk size field by re-reading it from stream,
// unlike e.DataSize which (for an odd-sized chunk) includes the single pad
// byte RIFF inserts to keep every chunk on an even boundary and so cannot
// be un-padded after the fact without knowing the original value.
func DeclaredSize(e *element.Element, stream bytesio.Stream) (uint64, error) {
	if _, err := stream.Seek(int64(e.StartOffset)+4, 0); err != nil {
		return 0, tagparsererr.Wrap(tagparsererr.ErrIO, err, "seek to RIFF chunk size field")
	}
	return bytesio.ReadUintLE(stream, 4)
}

func (Adapter) IsParent(e *element.Element) bool {
	return e.ID == ChunkRIFF || e.ID == ChunkLIST
}

func (Adapter) IsPadding(e *element.Element) bool {
	return e.ID == ChunkJunk || e.ID == ChunkPad
}

func (Adapter) FirstChildOffset(e *element.Element) uint64 {
	// RIFF/LIST carry a 4-byte form/list type before their children.
	return e.DataOffset() + 4
}

// FormType reads the 4-character form/list type immediately following a
// RIFF or LIST chunk's header, without interpreting it.
func FormType(e *element.Element, stream bytesio.Stream) (string, error) {
	if e.ID != ChunkRIFF && e.ID != ChunkLIST {
		return "", tagparsererr.New(tagparsererr.ErrParsingFailure, "FormType called on a non-RIFF/LIST chunk")
	}
	if _, err := stream.Seek(int64(e.DataOffset()), 0); err != nil {
		return "", tagparsererr.Wrap(tagparsererr.ErrIO, err, "seek to RIFF form type")
	}
	buf := make([]byte, 4)
	if _, err := readFull(stream, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// paddedSize returns size rounded up to the next even number, matching
// RIFF's word-alignment rule for chunk data.
func paddedSize(size uint64) uint64 {
	if size%2 != 0 {
		return size + 1
	}
	return size
}

func readFull(stream bytesio.Stream, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := stream.Read(buf[total:])
		total += n
		if err != nil {
			return total, tagparsererr.Wrap(tagparsererr.ErrTruncatedData, err, "read RIFF chunk header")
		}
		if n == 0 {
			return total, tagparsererr.New(tagparsererr.ErrTruncatedData, "short read in RIFF chunk header")
		}
	}
	return total, nil
}
