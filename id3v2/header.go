package id3v2

import (
	"io"

	"github.com/smartsharp/tagparser/bytesio"
	"github.com/smartsharp/tagparser/internal/tagparsererr"
)

const (
	headerSize = 10
	footerSize = 10

	signature       = uint64(0x494433) // "ID3", big-endian 3-byte value.
	footerSignature = uint64(0x334449) // "3DI", the footer's reversed signature.
)

// Header flag bits, defined on the ID3v2.3/2.4 header's flags byte. Bit 4
// (footer present) is only meaningful for ID3v2.4.
const (
	FlagUnsynchronisation byte = 1 << 7
	FlagExtendedHeader    byte = 1 << 6
	FlagExperimental      byte = 1 << 5
	FlagFooter            byte = 1 << 4
)

// Header is the fixed 10-byte ID3v2 tag header plus the optional extended
// header fields this package understands enough to skip correctly.
type Header struct {
	MajorVersion        byte
	RevisionVersion     byte
	Flags               byte
	SizeExcludingHeader uint32
	ExtendedHeaderSize  uint32
	PaddingSize         uint32
}

// HasExtendedHeader reports whether the extended-header flag is set.
func (h Header) HasExtendedHeader() bool {
	return h.Flags&FlagExtendedHeader != 0
}

// HasFooter reports whether the footer flag is set.
func (h Header) HasFooter() bool {
	return h.Flags&FlagFooter != 0
}

// VersionSupported reports whether this package can parse the header's
// major version. ID3v2.2, 2.3 and 2.4 are supported; anything else is not.
func (h Header) VersionSupported() bool {
	return h.MajorVersion >= 2 && h.MajorVersion <= 4
}

// TotalSize is the tag's total on-disk size, header included.
func (h Header) TotalSize() uint64 {
	return headerSize + uint64(h.SizeExcludingHeader)
}

// parseHeader reads and validates the fixed 10-byte header from stream. It
// does not read the extended header; callers check HasExtendedHeader and
// read that separately, since its presence depends on the major version's
// framing as well as the flags byte.
func parseHeader(stream io.Reader) (Header, error) {
	id, err := bytesio.ReadUint(stream, 3)
	if err != nil {
		return Header{}, tagparsererr.Wrap(tagparsererr.ErrTruncatedData, err, "read ID3v2 signature")
	}
	if id != signature {
		return Header{}, tagparsererr.New(tagparsererr.ErrInvalidData, "ID3v2 signature is invalid")
	}

	var hdr Header
	major, err := bytesio.ReadUint(stream, 1)
	if err != nil {
		return Header{}, tagparsererr.Wrap(tagparsererr.ErrTruncatedData, err, "read ID3v2 major version")
	}
	hdr.MajorVersion = byte(major)
	revision, err := bytesio.ReadUint(stream, 1)
	if err != nil {
		return Header{}, tagparsererr.Wrap(tagparsererr.ErrTruncatedData, err, "read ID3v2 revision")
	}
	hdr.RevisionVersion = byte(revision)
	flags, err := bytesio.ReadUint(stream, 1)
	if err != nil {
		return Header{}, tagparsererr.Wrap(tagparsererr.ErrTruncatedData, err, "read ID3v2 flags")
	}
	hdr.Flags = byte(flags)
	size, err := bytesio.ReadSynchsafeUint32(stream)
	if err != nil {
		return Header{}, tagparsererr.Wrap(tagparsererr.ErrTruncatedData, err, "read ID3v2 size")
	}
	hdr.SizeExcludingHeader = size
	return hdr, nil
}

// writeHeader writes the 10-byte header. The extended-header and
// compression bits are always cleared, since this package's writer never
// emits either.
func writeHeader(w io.Writer, h Header, framesSizeWithPadding uint32) error {
	if err := bytesio.WriteUint(w, signature, 3); err != nil {
		return err
	}
	if err := bytesio.WriteUint(w, uint64(h.MajorVersion), 1); err != nil {
		return err
	}
	if err := bytesio.WriteUint(w, uint64(h.RevisionVersion), 1); err != nil {
		return err
	}
	// Clear the extended-header bit (0x40): the writer never emits one.
	if err := bytesio.WriteUint(w, uint64(h.Flags&0xBF), 1); err != nil {
		return err
	}
	return bytesio.WriteSynchsafeUint32(w, framesSizeWithPadding)
}
