package ebml

// Element IDs for EBML and Matroska/WebM, carried over from the teacher's
// constant table (luispater-matroska-go/ebml.go) and extended with the
// Cues-subtree ids original_source/matroska/matroskacues.cpp operates on.
const (
	// EBML header elements.
	IDEBMLHeader             = 0x1A45DFA3
	IDEBMLVersion            = 0x4286
	IDEBMLReadVersion        = 0x42F7
	IDEBMLMaxIDLength        = 0x42F2
	IDEBMLMaxSizeLength      = 0x42F3
	IDEBMLDocType            = 0x4282
	IDEBMLDocTypeVersion     = 0x4287
	IDEBMLDocTypeReadVersion = 0x4285

	// Segment.
	IDSegment = 0x18538067

	// Meta Seek Information.
	IDSeekHead = 0x114D9B74
	IDSeek     = 0x4DBB
	IDSeekID   = 0x53AB
	IDSeekPos  = 0x53AC

	// Segment Information.
	IDSegmentInfo      = 0x1549A966
	IDSegmentUID       = 0x73A4
	IDSegmentFilename  = 0x7384
	IDPrevUID          = 0x3CB923
	IDPrevFilename     = 0x3C83AB
	IDNextUID          = 0x3EB923
	IDNextFilename     = 0x3E83BB
	IDSegmentFamily    = 0x4444
	IDChapterTranslate = 0x6924
	IDTimestampScale   = 0x2AD7B1
	IDDuration         = 0x4489
	IDDateUTC          = 0x4461
	IDTitle            = 0x7BA9
	IDMuxingApp        = 0x4D80
	IDWritingApp       = 0x5741

	// Tracks.
	IDTracks     = 0x1654AE6B
	IDTrackEntry = 0xAE
	IDTrackNum   = 0xD7
	IDTrackUID   = 0x73C5
	IDTrackType  = 0x83
	IDTrackName  = 0x536E
	IDLanguage   = 0x22B59C
	IDCodecID    = 0x86
	IDCodecPriv  = 0x63A2
	IDCodecName  = 0x258688
	IDVideo      = 0xE0
	IDAudio      = 0xE1

	// Video.
	IDFlagInterlaced = 0x9A
	IDPixelWidth     = 0xB0
	IDPixelHeight    = 0xBA
	IDDisplayWidth   = 0x54B0
	IDDisplayHeight  = 0x54BA

	// Audio.
	IDSamplingFrequency       = 0xB5
	IDOutputSamplingFrequency = 0x78B5
	IDChannels                = 0x9F
	IDBitDepth                = 0x6264

	// Cluster.
	IDCluster     = 0x1F43B675
	IDTimestamp   = 0xE7
	IDSimpleBlock = 0xA3
	IDBlockGroup  = 0xA0
	IDBlock       = 0xA1

	// Cues and the Cues subtree the cues.Updater walks.
	IDCues                = 0x1C53BB6B
	IDCuePoint            = 0xBB
	IDCueTime             = 0xB3
	IDCueTrackPositions   = 0xB7
	IDCueTrack            = 0xF7
	IDCueClusterPosition  = 0xF1
	IDCueRelativePosition = 0xF0
	IDCueDuration         = 0xB2
	IDCueBlockNumber      = 0x5378
	IDCueCodecState       = 0xEA
	IDCueReference        = 0xDB
	IDCueRefTime          = 0x96
	IDCueRefCluster       = 0x97
	IDCueRefCodecState    = 0xEB
	IDCueRefNumber        = 0x535F

	// Chapters, Tags, Attachments.
	IDChapters    = 0x1043A770
	IDTags        = 0x1254C367
	IDTag         = 0x7373
	IDSimpleTag   = 0x67C8
	IDTagName     = 0x45A3
	IDTagString   = 0x4487
	IDAttachments = 0x1941A469

	// IDVoid is the standard EBML padding element; its bytes carry no
	// meaning and are discarded on write.
	IDVoid = 0xEC
	// IDCRC32 is the standard EBML checksum element, wrapping a single
	// child plus a 4-byte checksum; treated here as opaque, uninterpreted
	// payload.
	IDCRC32 = 0xBF
)

// containerIDs lists element ids this adapter treats as having children.
// Every other recognized id is a leaf (even if data_size > 0); the set is
// intentionally small -- enough for the spec's tag/cues scope, not a full
// Matroska demuxer.
var containerIDs = map[uint64]bool{
	IDEBMLHeader:          true,
	IDSegment:             true,
	IDSeekHead:            true,
	IDSeek:                true,
	IDSegmentInfo:         true,
	IDTracks:              true,
	IDTrackEntry:          true,
	IDVideo:               true,
	IDAudio:               true,
	IDCluster:             true,
	IDBlockGroup:          true,
	IDCues:                true,
	IDCuePoint:            true,
	IDCueTrackPositions:   true,
	IDCueReference:        true,
	IDChapters:            true,
	IDTags:                true,
	IDTag:                 true,
	IDSimpleTag:           true,
	IDAttachments:         true,
}

// IsKnownContainer reports whether id is an element this adapter descends
// into as a parent.
func IsKnownContainer(id uint64) bool {
	return containerIDs[id]
}
