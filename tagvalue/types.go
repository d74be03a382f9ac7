package tagvalue

// DataType is the proposed interpretation of a tag field's value, as
// suggested by a format adapter for identifiers it recognizes.
type DataType int

const (
	Undefined DataType = iota
	Text
	Integer
	PositionInSet
	TimeSpan
	Picture
	Boolean
)

func (t DataType) String() string {
	switch t {
	case Text:
		return "text"
	case Integer:
		return "integer"
	case PositionInSet:
		return "position-in-set"
	case TimeSpan:
		return "time-span"
	case Picture:
		return "picture"
	case Boolean:
		return "boolean"
	default:
		return "undefined"
	}
}

// KnownField names a tag concept independent of the container format that
// stores it (e.g. ID3v2's TIT2 and a Vorbis comment's TITLE both map to
// Title).
type KnownField int

const (
	FieldInvalid KnownField = iota
	FieldTitle
	FieldAlbum
	FieldArtist
	FieldComment
	FieldYear
	FieldRecordDate
	FieldGenre
	FieldTrackPosition
	FieldDiskPosition
	FieldEncoder
	FieldEncoderSettings
	FieldBpm
	FieldCover
	FieldLyricist
	FieldLength
	FieldLanguage
	FieldLyrics
	FieldSynchronizedLyrics
	FieldGrouping
	FieldRecordLabel
	FieldComposer
	FieldRating
	FieldUniqueFileID
)

// PositionInSetValue is a track-or-disk position paired with the total
// count, e.g. "3/12".
type PositionInSetValue struct {
	Position int
	Total    int // 0 if unknown.
}

// PictureValue is an opaque embedded image, consumed by the core without
// interpretation of its encoded bytes.
type PictureValue struct {
	MimeType    string
	Description string
	Data        []byte
}

// VorbisCommentFlags controls optional behavior of the Vorbis-comment
// writer.
type VorbisCommentFlags uint8

const (
	VorbisCommentFlagsNone VorbisCommentFlags = 0
	// NoCovers skips METADATA_BLOCK_PICTURE fields entirely when writing.
	NoCovers VorbisCommentFlags = 1 << iota
)
