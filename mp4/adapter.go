package mp4

import (
	"github.com/smartsharp/tagparser/bytesio"
	"github.com/smartsharp/tagparser/diag"
	"github.com/smartsharp/tagparser/element"
	"github.com/smartsharp/tagparser/internal/tagparsererr"
)

const (
	minBoxHeaderSize    = 8  // size32 + type
	largeSizeExtraBytes = 8  // size64, present when size32 == 1
	uuidExtraBytes      = 16 // extended type, present when type == "uuid"
)

// Adapter decodes MP4/ISO-BMFF box headers: a big-endian size32 and a
// 4-character FourCC type, optionally followed by a big-endian size64 (when
// size32 == 1) and a 16-byte extended type (when the FourCC is "uuid").
type Adapter struct{}

var _ element.Adapter = Adapter{}

func (Adapter) InternalParse(e *element.Element, stream bytesio.Stream, d *diag.Diagnostics) error {
	if _, err := stream.Seek(int64(e.StartOffset), 0); err != nil {
		return tagparsererr.Wrap(tagparsererr.ErrIO, err, "seek to MP4 box header")
	}

	size32, err := bytesio.ReadUint(stream, 4)
	if err != nil {
		return err
	}
	typeBytes := make([]byte, 4)
	if err := readExact(stream, typeBytes); err != nil {
		return err
	}

	headerSize := uint64(minBoxHeaderSize)
	var dataSize uint64
	switch size32 {
	case 0:
		// Box extends to the end of its container.
		if e.MaxTotalSize == 0 {
			return tagparsererr.New(tagparsererr.ErrParsingFailure,
				"box extends to end of container but container has no bound")
		}
		dataSize = e.MaxTotalSize - headerSize
	case 1:
		size64, err := bytesio.ReadUint(stream, 8)
		if err != nil {
			return err
		}
		headerSize += largeSizeExtraBytes
		if size64 < headerSize {
			return tagparsererr.New(tagparsererr.ErrInvalidData, "MP4 box size64 smaller than its own header")
		}
		dataSize = size64 - headerSize
	default:
		if size32 < headerSize {
			return tagparsererr.New(tagparsererr.ErrInvalidData, "MP4 box size smaller than its header")
		}
		dataSize = size32 - headerSize
	}

	id := FourCC(string(typeBytes))
	if id == BoxUUID {
		headerSize += uuidExtraBytes
		if dataSize < uuidExtraBytes {
			return tagparsererr.New(tagparsererr.ErrTruncatedData, "uuid box missing extended type")
		}
		dataSize -= uuidExtraBytes
	}

	e.ID = id
	e.IDLength = uint32(headerSize - 4) // everything after size32 that isn't payload.
	e.SizeLength = 4
	e.DataSize = dataSize
	return nil
}

func (Adapter) IsParent(e *element.Element) bool {
	return IsKnownContainer(e.ID)
}

func (Adapter) IsPadding(e *element.Element) bool {
	return e.ID == BoxFree || e.ID == BoxSkip
}

func (Adapter) FirstChildOffset(e *element.Element) uint64 {
	offset := e.DataOffset()
	if fullBoxContainers[e.ID] {
		offset += 4 // version + flags
	}
	return offset
}

// ExtendedType reads the 16-byte extended type following a "uuid" box's
// FourCC, without interpreting it. Only valid once e has been parsed and
// e.ID == BoxUUID.
func ExtendedType(e *element.Element, stream bytesio.Stream) ([16]byte, error) {
	var out [16]byte
	if e.ID != BoxUUID {
		return out, tagparsererr.New(tagparsererr.ErrParsingFailure, "ExtendedType called on non-uuid box")
	}
	// The extended type sits right before the payload, after size32+type
	// (+size64 if present); HeaderSize already accounts for it, so back up
	// uuidExtraBytes from the data offset.
	if _, err := stream.Seek(int64(e.DataOffset())-uuidExtraBytes, 0); err != nil {
		return out, tagparsererr.Wrap(tagparsererr.ErrIO, err, "seek to uuid extended type")
	}
	if err := readExact(stream, out[:]); err != nil {
		return out, err
	}
	return out, nil
}

func readExact(stream bytesio.Stream, buf []byte) error {
	total := 0
	for total < len(buf) {
		n, err := stream.Read(buf[total:])
		total += n
		if err != nil {
			return tagparsererr.Wrap(tagparsererr.ErrTruncatedData, err, "read MP4 box header")
		}
		if n == 0 {
			return tagparsererr.New(tagparsererr.ErrTruncatedData, "short read in MP4 box header")
		}
	}
	return nil
}
