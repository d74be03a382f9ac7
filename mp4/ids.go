// Package mp4 implements the element.Adapter for MP4/ISO-BMFF box framing:
// the 32/64-bit box-size header, FourCC box type, and uuid extended type,
// plus the container-box set (moov/trak/mdia/minf/stbl/udta/meta/ilst) a
// tag editor needs to reach the `ilst` metadata item list.
package mp4

// FourCC packs a 4-character box-type string into the uint64 id space
// element.Element uses, so box types compare and log the same way EBML/VINT
// ids do elsewhere in this module.
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

// Well-known box types this package cares about. Others pass through as
// opaque leaves identified by their raw FourCC id.
var (
	BoxMovie       = FourCC("moov")
	BoxTrack       = FourCC("trak")
	BoxMedia       = FourCC("mdia")
	BoxMediaInfo   = FourCC("minf")
	BoxSampleTable = FourCC("stbl")
	BoxUserData    = FourCC("udta")
	BoxMeta        = FourCC("meta")
	BoxItemList    = FourCC("ilst")
	BoxFree        = FourCC("free")
	BoxSkip        = FourCC("skip")
	BoxUUID        = FourCC("uuid")
)

var containerIDs = map[uint64]bool{
	BoxMovie:       true,
	BoxTrack:       true,
	BoxMedia:       true,
	BoxMediaInfo:   true,
	BoxSampleTable: true,
	BoxUserData:    true,
	BoxMeta:        true,
	BoxItemList:    true,
}

// IsKnownContainer reports whether id is a box type this adapter descends
// into as a parent.
func IsKnownContainer(id uint64) bool {
	return containerIDs[id]
}

// fullBoxContainers carries a 4-byte version+flags header before its
// children begin, unlike a plain container box.
var fullBoxContainers = map[uint64]bool{
	BoxMeta: true,
}
