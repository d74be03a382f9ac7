// Package id3v2 implements an ID3v2.2/2.3/2.4 tag parser and writer: header,
// extended header, frame, padding and footer handling, plus the frame
// ordering and data-type proposal rules ID3v2 tag editors rely on.
package id3v2

import "github.com/smartsharp/tagparser/tagvalue"

// Long-form (ID3v2.3/2.4, 4-character) frame identifiers this package gives
// special treatment to, either for ordering (FrameComparer in the original)
// or for the known-field/data-type tables below.
const (
	idUniqueFileID    = "UFID"
	idTitle           = "TIT2"
	idContentGroup    = "TIT1"
	idSubtitle        = "TIT3"
	idArtist          = "TPE1"
	idAlbumArtist     = "TPE2"
	idConductor       = "TPE3"
	idComposer        = "TCOM"
	idAlbum           = "TALB"
	idYear            = "TYER"
	idRecordingTime   = "TDRC"
	idComment         = "COMM"
	idGenre           = "TCON"
	idTrackPosition   = "TRCK"
	idDiskPosition    = "TPOS"
	idBpm             = "TBPM"
	idLength          = "TLEN"
	idLanguage        = "TLAN"
	idWriter          = "TEXT"
	idEncoderSettings = "TSSE"
	idUnsyncLyrics    = "USLT"
	idSyncLyrics      = "SYLT"
	idRecordLabel     = "TPUB"
	idCover           = "APIC"
	idUserText        = "TXXX"
	idUserURL         = "WXXX"
)

// shortToLong maps every ID3v2.2 (3-character) frame id this package
// recognizes to its ID3v2.3/2.4 (4-character) equivalent, the standard
// mapping every ID3v2.2 reader/writer uses.
var shortToLong = map[string]string{
	"UFI": "UFID",
	"TT1": "TIT1",
	"TT2": "TIT2",
	"TT3": "TIT3",
	"TP1": "TPE1",
	"TP2": "TPE2",
	"TP3": "TPE3",
	"TP4": "TPE4",
	"TCM": "TCOM",
	"TXT": "TEXT",
	"TLA": "TLAN",
	"TCO": "TCON",
	"TAL": "TALB",
	"TPA": "TPOS",
	"TRK": "TRCK",
	"TRC": "TSRC",
	"TYE": "TYER",
	"TDA": "TDAT",
	"TIM": "TIME",
	"TRD": "TRDA",
	"TMT": "TMED",
	"TFT": "TFLT",
	"TBP": "TBPM",
	"TCR": "TCOP",
	"TPB": "TPUB",
	"TEN": "TENC",
	"TSS": "TSSE",
	"TOF": "TOFN",
	"TLE": "TLEN",
	"TSI": "TSIZ",
	"TDY": "TDLY",
	"TKE": "TKEY",
	"TOT": "TOAL",
	"TOA": "TOPE",
	"TOL": "TOLY",
	"TOR": "TORY",
	"TXX": "TXXX",
	"WAF": "WOAF",
	"WAR": "WOAR",
	"WAS": "WOAS",
	"WCM": "WCOM",
	"WCP": "WCOP",
	"WPB": "WPUB",
	"WXX": "WXXX",
	"COM": "COMM",
	"PIC": "APIC",
	"POP": "POPM",
	"GEO": "GEOB",
	"CNT": "PCNT",
	"ULT": "USLT",
	"SLT": "SYLT",
}

// isLongID reports whether id is already in ID3v2.3/2.4 (4-character) form.
func isLongID(id string) bool {
	return len(id) == 4
}

// convertToLongID maps a short (3-character, ID3v2.2) id to its long form.
// Ids this package doesn't have a mapping for are returned unchanged, which
// keeps the comparator total (every id sorts, even an unrecognized one).
func convertToLongID(id string) string {
	if long, ok := shortToLong[id]; ok {
		return long
	}
	return id
}

// isTextFrame reports whether id names a frame whose payload starts with an
// encoding byte followed by one or more encoded strings -- every frame id
// beginning with 'T' (including TXXX), per the ID3v2 frame-id convention.
func isTextFrame(id string) bool {
	return len(id) > 0 && id[0] == 'T'
}

// isURLFrame reports whether id names a frame whose payload is a bare
// ISO-8859-1 URL with no leading encoding byte.
func isURLFrame(id string) bool {
	return len(id) > 0 && id[0] == 'W'
}

// frameOrder is the fieldmap.Less ordering ID3v2 tags store frames in,
// ported from FrameComparer::operator() in the original implementation: the
// unique file identifier goes first, then the title, then other text
// frames, then other frames, with the cover picture always last.
func frameOrder(lhs, rhs string) bool {
	if lhs == rhs {
		return false
	}

	if !isLongID(lhs) {
		lhs = convertToLongID(lhs)
	}
	if !isLongID(rhs) {
		rhs = convertToLongID(rhs)
	}

	if lhs == idUniqueFileID {
		return true
	}
	if rhs == idUniqueFileID {
		return false
	}
	if lhs == idTitle {
		return true
	}
	if rhs == idTitle {
		return false
	}

	lhsText, rhsText := isTextFrame(lhs), isTextFrame(rhs)
	if lhsText && !rhsText {
		return true
	}
	if !lhsText && rhsText {
		return false
	}

	if lhs == idCover {
		return false
	}
	if rhs == idCover {
		return true
	}
	return lhs < rhs
}

// knownFields maps each long frame id to the tag concept it names (looked
// up by KnownField), ported from Id3v2Tag::internallyGetKnownField's switch.
var knownFields = map[string]tagvalue.KnownField{
	idUniqueFileID:    tagvalue.FieldUniqueFileID,
	idTitle:           tagvalue.FieldTitle,
	idArtist:          tagvalue.FieldArtist,
	idAlbumArtist:     tagvalue.FieldArtist,
	idAlbum:           tagvalue.FieldAlbum,
	idComment:         tagvalue.FieldComment,
	idYear:            tagvalue.FieldYear,
	idRecordingTime:   tagvalue.FieldRecordDate,
	idGenre:           tagvalue.FieldGenre,
	idTrackPosition:   tagvalue.FieldTrackPosition,
	idDiskPosition:    tagvalue.FieldDiskPosition,
	idBpm:             tagvalue.FieldBpm,
	idCover:           tagvalue.FieldCover,
	idWriter:          tagvalue.FieldLyricist,
	idLanguage:        tagvalue.FieldLanguage,
	idLength:          tagvalue.FieldLength,
	idEncoderSettings: tagvalue.FieldEncoderSettings,
	idUnsyncLyrics:    tagvalue.FieldLyrics,
	idSyncLyrics:      tagvalue.FieldSynchronizedLyrics,
	idContentGroup:    tagvalue.FieldGrouping,
	idRecordLabel:     tagvalue.FieldRecordLabel,
	idComposer:        tagvalue.FieldComposer,
}

// KnownField returns the tag concept id names, or tagvalue.FieldInvalid if
// this package has no mapping for it. Short (ID3v2.2) ids are normalized to
// their long form first.
func KnownField(id string) tagvalue.KnownField {
	if !isLongID(id) {
		id = convertToLongID(id)
	}
	if field, ok := knownFields[id]; ok {
		return field
	}
	return tagvalue.FieldInvalid
}

// ProposedDataType proposes a tagvalue.DataType for a known identifier,
// ported from Id3v2Tag::internallyGetProposedDataType.
func ProposedDataType(id string) tagvalue.DataType {
	if !isLongID(id) {
		id = convertToLongID(id)
	}
	switch id {
	case idLength:
		return tagvalue.TimeSpan
	case idBpm:
		return tagvalue.Integer
	case idTrackPosition, idDiskPosition:
		return tagvalue.PositionInSet
	case idCover:
		return tagvalue.Picture
	default:
		if isTextFrame(id) {
			return tagvalue.Text
		}
		return tagvalue.Undefined
	}
}
