package cmd

import "bytes"

// format identifies which package's Adapter (or Parse function) should
// handle a file, decided from its leading bytes alone.
type format int

const (
	formatUnknown format = iota
	formatEBML
	formatID3v2
	formatMP4
	formatRIFF
	formatOgg
)

func (f format) String() string {
	switch f {
	case formatEBML:
		return "EBML/Matroska"
	case formatID3v2:
		return "ID3v2"
	case formatMP4:
		return "MP4/ISO-BMFF"
	case formatRIFF:
		return "RIFF"
	case formatOgg:
		return "Ogg"
	default:
		return "unknown"
	}
}

// mp4TopLevelBoxes lists FourCCs that plausibly open an MP4 file; unlike
// EBML/RIFF/Ogg, MP4 has no single magic number, only a FourCC at offset 4.
var mp4TopLevelBoxes = []string{"ftyp", "moov", "mdat", "free", "skip", "wide"}

// sniff classifies a file from its first 12 bytes, enough to cover every
// format's magic: EBML's 4-byte id, RIFF's and Ogg's 4-byte signatures, and
// MP4's size+FourCC header.
func sniff(header []byte) format {
	switch {
	case len(header) >= 3 && bytes.Equal(header[:3], []byte("ID3")):
		return formatID3v2
	case len(header) >= 4 && bytes.Equal(header[:4], []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return formatEBML
	case len(header) >= 4 && bytes.Equal(header[:4], []byte("RIFF")):
		return formatRIFF
	case len(header) >= 4 && bytes.Equal(header[:4], []byte("OggS")):
		return formatOgg
	case len(header) >= 8:
		fourCC := string(header[4:8])
		for _, box := range mp4TopLevelBoxes {
			if fourCC == box {
				return formatMP4
			}
		}
	}
	return formatUnknown
}
