package tagvalue

// FlacPictureType mirrors the FLAC PICTURE metadata block's picture-type
// enumeration (identical values are reused by ID3v2 APIC frames).
type FlacPictureType uint32

const (
	FlacPictureOther FlacPictureType = iota
	FlacPictureFileIcon
	FlacPictureOtherFileIcon
	FlacPictureCoverFront
	FlacPictureCoverBack
	FlacPictureLeaflet
	FlacPictureMedia
)

// FlacPicture is the decoded form of a FLAC PICTURE metadata block, which
// is also what a Vorbis comment's METADATA_BLOCK_PICTURE field carries
// Base64-encoded. Only the fields tag editors actually read/write are
// modeled; this is not a general-purpose image library.
type FlacPicture struct {
	Type        FlacPictureType
	MimeType    string
	Description string
	Width       uint32
	Height      uint32
	ColorDepth  uint32
	Colors      uint32 // number of colors for indexed-color images, 0 otherwise.
	Data        []byte
}
