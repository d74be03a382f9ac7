package cmd

import "testing"

func TestSniff(t *testing.T) {
	cases := []struct {
		name   string
		header []byte
		want   format
	}{
		{"ebml", []byte{0x1A, 0x45, 0xDF, 0xA3, 0, 0, 0, 0}, formatEBML},
		{"id3v2", []byte("ID3\x04\x00\x00\x00\x00\x00\x00"), formatID3v2},
		{"riff", []byte("RIFFxxxxWAVE"), formatRIFF},
		{"ogg", []byte("OggS\x00\x02\x00\x00\x00\x00\x00\x00"), formatOgg},
		{"mp4 ftyp", []byte("\x00\x00\x00\x18ftypisom"), formatMP4},
		{"mp4 moov", append([]byte{0, 0, 0, 0}, []byte("moovrest")...), formatMP4},
		{"unknown", []byte("nope nope"), formatUnknown},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := sniff(c.header); got != c.want {
				t.Errorf("sniff(%q) = %v, want %v", c.header, got, c.want)
			}
		})
	}
}

func TestVorbisCommentPayload(t *testing.T) {
	vorbis := append([]byte{0x03}, []byte("vorbisVENDOR...")...)
	if payload, ok := vorbisCommentPayload(vorbis); !ok || string(payload) != "VENDOR..." {
		t.Errorf("vorbisCommentPayload(vorbis packet) = %q, %v", payload, ok)
	}

	opus := append([]byte("OpusTags"), []byte("VENDOR...")...)
	if payload, ok := vorbisCommentPayload(opus); !ok || string(payload) != "VENDOR..." {
		t.Errorf("vorbisCommentPayload(opus packet) = %q, %v", payload, ok)
	}

	if _, ok := vorbisCommentPayload([]byte("garbage")); ok {
		t.Error("vorbisCommentPayload(garbage) = ok, want !ok")
	}
}
