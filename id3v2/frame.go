package id3v2

import (
	"bytes"
	"io"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/smartsharp/tagparser/bytesio"
	"github.com/smartsharp/tagparser/internal/tagparsererr"
	"github.com/smartsharp/tagparser/tagvalue"
)

// Text-encoding byte values every text/URL frame payload is prefixed with
// (except URL frames, which are always ISO-8859-1 with no encoding byte).
const (
	EncodingISO8859_1 byte = 0
	EncodingUTF16BOM  byte = 1
	EncodingUTF16BE   byte = 2
	EncodingUTF8      byte = 3
)

// Frame is one parsed ID3v2 frame: an id (3 characters for ID3v2.2, 4 for
// ID3v2.3/2.4), its flags (always 0 for ID3v2.2, which has none), and its
// raw, still-encoded payload.
type Frame struct {
	ID    string
	Flags uint16
	Data  []byte
}

// FrameParseOutcome is the discriminated result of parsing one frame,
// replacing the original implementation's exception-based control flow
// (NoDataFoundException for "padding reached", Failure for anything else).
type FrameParseOutcome struct {
	Frame          Frame
	PaddingReached bool
	Err            error
	// TotalSize is how far the tag parser advances its frame window for
	// this frame, valid even when Err is set: header plus payload for a
	// complete frame, the id length when padding is reached, and on an
	// error the header length, the header plus declared payload size, or
	// the whole remaining window. It is not always the number of bytes
	// actually read from the stream.
	TotalSize uint32
}

// frameHeaderLayout returns the id/size/flags byte widths used by major, the
// ID3v2 major version the enclosing tag declared.
func frameHeaderLayout(major byte) (idLen, sizeLen, flagsLen int) {
	if major <= 2 {
		return 3, 3, 0
	}
	return 4, 4, 2
}

// parseFrame reads one frame header and payload from stream, bounded by
// bytesRemaining. major is the enclosing tag's major version, which
// determines id/size/flags framing (ID3v2.2 has no flags and a plain
// 3-byte size; ID3v2.3 has a plain 4-byte size; ID3v2.4's size is
// synchsafe).
func parseFrame(stream io.Reader, major byte, bytesRemaining uint32) FrameParseOutcome {
	idLen, sizeLen, flagsLen := frameHeaderLayout(major)
	headerLen := idLen + sizeLen + flagsLen
	if uint32(headerLen) > bytesRemaining {
		return FrameParseOutcome{Err: tagparsererr.New(tagparsererr.ErrTruncatedData, "frame header does not fit in remaining tag size"), TotalSize: bytesRemaining}
	}

	idBytes := make([]byte, idLen)
	if _, err := io.ReadFull(stream, idBytes); err != nil {
		return FrameParseOutcome{Err: tagparsererr.Wrap(tagparsererr.ErrTruncatedData, err, "read frame id"), TotalSize: bytesRemaining}
	}
	allZero := true
	for _, b := range idBytes {
		if b != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return FrameParseOutcome{PaddingReached: true, TotalSize: uint32(idLen)}
	}
	for _, b := range idBytes {
		if !(b >= 'A' && b <= 'Z') && !(b >= '0' && b <= '9') {
			return FrameParseOutcome{Err: tagparsererr.New(tagparsererr.ErrInvalidData, "invalid frame id"), TotalSize: uint32(headerLen)}
		}
	}
	id := string(idBytes)

	var size uint32
	var err error
	switch {
	case major >= 4:
		size, err = bytesio.ReadSynchsafeUint32(stream)
	default:
		var v uint64
		v, err = bytesio.ReadUint(stream, sizeLen)
		size = uint32(v)
	}
	if err != nil {
		return FrameParseOutcome{Err: tagparsererr.Wrap(tagparsererr.ErrTruncatedData, err, "read frame size"), TotalSize: uint32(headerLen)}
	}

	var flags uint16
	if flagsLen > 0 {
		v, err := bytesio.ReadUint(stream, flagsLen)
		if err != nil {
			return FrameParseOutcome{Err: tagparsererr.Wrap(tagparsererr.ErrTruncatedData, err, "read frame flags"), TotalSize: uint32(headerLen)}
		}
		flags = uint16(v)
	}

	totalSize := uint32(headerLen) + size
	if totalSize > bytesRemaining {
		return FrameParseOutcome{Err: tagparsererr.New(tagparsererr.ErrTruncatedData, "frame payload exceeds remaining tag size"), TotalSize: bytesRemaining}
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(stream, data); err != nil {
		return FrameParseOutcome{Err: tagparsererr.Wrap(tagparsererr.ErrTruncatedData, err, "read frame payload"), TotalSize: totalSize}
	}

	return FrameParseOutcome{Frame: Frame{ID: id, Flags: flags, Data: data}, TotalSize: totalSize}
}

// writeFrame writes f using major's framing. The writer always normalizes
// the frame id to its long (4-character) form first, since this package
// only ever writes ID3v2.3/2.4 tags.
func writeFrame(w io.Writer, f Frame, major byte) error {
	id := f.ID
	if !isLongID(id) {
		id = convertToLongID(id)
	}
	if _, err := io.WriteString(w, id); err != nil {
		return tagparsererr.Wrap(tagparsererr.ErrIO, err, "write frame id")
	}
	if major >= 4 {
		if err := bytesio.WriteSynchsafeUint32(w, uint32(len(f.Data))); err != nil {
			return err
		}
	} else {
		if err := bytesio.WriteUint(w, uint64(len(f.Data)), 4); err != nil {
			return err
		}
	}
	if err := bytesio.WriteUint(w, uint64(f.Flags), 2); err != nil {
		return err
	}
	if _, err := w.Write(f.Data); err != nil {
		return tagparsererr.Wrap(tagparsererr.ErrIO, err, "write frame payload")
	}
	return nil
}

// hasText reports whether f carries text this package decodes: either an
// encoding-byte-prefixed string (a text frame) or a bare ISO-8859-1 URL (a
// URL frame). It is false for every other frame.
func (f Frame) hasText() bool {
	return isTextFrame(f.ID) || isURLFrame(f.ID)
}

// Text decodes f's payload as a string, honoring the ID3v2 text-encoding
// byte for text frames; URL frames (Wxxx) are plain ISO-8859-1 with no
// encoding byte.
func (f Frame) Text() (string, error) {
	if !f.hasText() {
		return "", tagparsererr.New(tagparsererr.ErrParsingFailure, "frame does not carry text content")
	}
	if isURLFrame(f.ID) {
		return decodeText(EncodingISO8859_1, f.Data)
	}
	if len(f.Data) == 0 {
		return "", tagparsererr.New(tagparsererr.ErrTruncatedData, "text frame has no encoding byte")
	}
	return decodeText(f.Data[0], f.Data[1:])
}

// SetText replaces f's payload with str encoded using encoding (ignored for
// URL frames, which are always written as ISO-8859-1).
func (f *Frame) SetText(encoding byte, str string) error {
	if !f.hasText() {
		return tagparsererr.New(tagparsererr.ErrParsingFailure, "frame does not carry text content")
	}
	if isURLFrame(f.ID) {
		encoded, err := encodeText(EncodingISO8859_1, str)
		if err != nil {
			return err
		}
		f.Data = encoded
		return nil
	}
	encoded, err := encodeText(encoding, str)
	if err != nil {
		return err
	}
	f.Data = append([]byte{encoding}, encoded...)
	return nil
}

func decodeText(encoding byte, data []byte) (string, error) {
	switch encoding {
	case EncodingISO8859_1:
		return trimNull(charmap.ISO8859_1.NewDecoder(), data)
	case EncodingUTF16BOM:
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		return trimNull(dec, data)
	case EncodingUTF16BE:
		dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
		return trimNull(dec, data)
	case EncodingUTF8:
		return string(bytes.TrimRight(data, "\x00")), nil
	default:
		return "", tagparsererr.New(tagparsererr.ErrConversion, "unsupported ID3v2 text encoding byte")
	}
}

type stringDecoder interface {
	Bytes([]byte) ([]byte, error)
}

func trimNull(dec stringDecoder, data []byte) (string, error) {
	out, err := dec.Bytes(data)
	if err != nil {
		return "", tagparsererr.Wrap(tagparsererr.ErrConversion, err, "decode ID3v2 text")
	}
	return string(bytes.TrimRight(out, "\x00")), nil
}

func encodeText(encoding byte, s string) ([]byte, error) {
	switch encoding {
	case EncodingISO8859_1:
		out, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
		if err != nil {
			return nil, tagparsererr.Wrap(tagparsererr.ErrConversion, err, "encode ISO-8859-1 text")
		}
		return append(out, 0x00), nil
	case EncodingUTF16BOM:
		out, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(s))
		if err != nil {
			return nil, tagparsererr.Wrap(tagparsererr.ErrConversion, err, "encode UTF-16 text")
		}
		return append(out, 0x00, 0x00), nil
	case EncodingUTF16BE:
		out, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
		if err != nil {
			return nil, tagparsererr.Wrap(tagparsererr.ErrConversion, err, "encode UTF-16BE text")
		}
		return append(out, 0x00, 0x00), nil
	case EncodingUTF8:
		return append([]byte(s), 0x00), nil
	default:
		return nil, tagparsererr.New(tagparsererr.ErrConversion, "unsupported ID3v2 text encoding byte")
	}
}

// UFID is the decoded payload of a UFID frame: an owner identifier (a
// null-terminated ISO-8859-1 string, typically a reverse-DNS name) and an
// opaque binary identifier.
type UFID struct {
	Owner      string
	Identifier []byte
}

// ParseUFID decodes f's payload as a UFID frame.
func ParseUFID(f Frame) (UFID, error) {
	idx := bytes.IndexByte(f.Data, 0x00)
	if idx < 0 {
		return UFID{}, tagparsererr.New(tagparsererr.ErrInvalidData, "UFID frame missing owner terminator")
	}
	return UFID{Owner: string(f.Data[:idx]), Identifier: append([]byte{}, f.Data[idx+1:]...)}, nil
}

// MakeUFID encodes u as a UFID frame payload.
func MakeUFID(u UFID) Frame {
	data := append([]byte(u.Owner), 0x00)
	data = append(data, u.Identifier...)
	return Frame{ID: idUniqueFileID, Data: data}
}

// Picture is the decoded payload of an APIC (ID3v2.3/2.4) or PIC (ID3v2.2)
// frame. Type reuses tagvalue.FlacPictureType, since the APIC picture-type
// byte and the FLAC PICTURE block's picture-type field share the same
// enumeration.
type Picture struct {
	Type tagvalue.FlacPictureType
	tagvalue.PictureValue
}

// ParsePicture decodes f's payload as an APIC (4-character id, MIME type is
// a null-terminated string) or PIC (3-character id, MIME type is a fixed
// 3-byte image format) frame.
func ParsePicture(f Frame) (Picture, error) {
	if len(f.Data) < 2 {
		return Picture{}, tagparsererr.New(tagparsererr.ErrTruncatedData, "picture frame too short")
	}
	encoding := f.Data[0]
	rest := f.Data[1:]

	var mime string
	if isLongID(f.ID) {
		idx := bytes.IndexByte(rest, 0x00)
		if idx < 0 {
			return Picture{}, tagparsererr.New(tagparsererr.ErrInvalidData, "APIC frame missing MIME type terminator")
		}
		mime = string(rest[:idx])
		rest = rest[idx+1:]
	} else {
		if len(rest) < 3 {
			return Picture{}, tagparsererr.New(tagparsererr.ErrTruncatedData, "PIC frame missing image format")
		}
		mime = string(rest[:3])
		rest = rest[3:]
	}

	if len(rest) < 1 {
		return Picture{}, tagparsererr.New(tagparsererr.ErrTruncatedData, "picture frame missing picture type")
	}
	pictureType := tagvalue.FlacPictureType(rest[0])
	rest = rest[1:]

	description, remainder, err := splitEncodedString(encoding, rest)
	if err != nil {
		return Picture{}, err
	}

	return Picture{
		Type: pictureType,
		PictureValue: tagvalue.PictureValue{
			MimeType:    mime,
			Description: description,
			Data:        append([]byte{}, remainder...),
		},
	}, nil
}

// splitEncodedString reads one encoding-prefixed, null-terminated string
// from the front of data and returns it decoded along with the remaining
// bytes. The terminator width matches the encoding (one zero byte for
// Latin-1/UTF-8, two for the UTF-16 variants).
func splitEncodedString(encoding byte, data []byte) (string, []byte, error) {
	termWidth := 1
	if encoding == EncodingUTF16BOM || encoding == EncodingUTF16BE {
		termWidth = 2
	}
	idx := -1
	for i := 0; i+termWidth <= len(data); i += termWidth {
		isTerm := true
		for j := 0; j < termWidth; j++ {
			if data[i+j] != 0 {
				isTerm = false
				break
			}
		}
		if isTerm {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", nil, tagparsererr.New(tagparsererr.ErrInvalidData, "missing string terminator")
	}
	s, err := decodeText(encoding, data[:idx])
	if err != nil {
		return "", nil, err
	}
	return s, data[idx+termWidth:], nil
}

// MakePicture encodes p as an APIC frame payload, using UTF-8 for the
// description.
func MakePicture(p Picture) (Frame, error) {
	var buf bytes.Buffer
	buf.WriteByte(EncodingUTF8)
	buf.WriteString(p.MimeType)
	buf.WriteByte(0x00)
	buf.WriteByte(byte(p.Type))
	desc, err := encodeText(EncodingUTF8, p.Description)
	if err != nil {
		return Frame{}, err
	}
	buf.Write(desc)
	buf.Write(p.Data)
	return Frame{ID: idCover, Data: buf.Bytes()}, nil
}
