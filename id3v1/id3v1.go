// Package id3v1 implements the 128-byte ID3v1 trailing tag: a fixed-width
// Latin-1 record appended to the end of many MP3 files, predating and
// frequently coexisting with ID3v2 (see SPEC_FULL.md §6).
package id3v1

import (
	"bytes"
	"io"

	"golang.org/x/text/encoding/charmap"

	"github.com/smartsharp/tagparser/internal/tagparsererr"
)

const (
	tagSize = 128
	sig0    = 'T'
	sig1    = 'A'
	sig2    = 'G'
)

// Tag is a parsed ID3v1 (or ID3v1.1, if TrackNumber is nonzero) tag.
type Tag struct {
	Title       string
	Artist      string
	Album       string
	Year        string
	Comment     string
	TrackNumber byte // 0 means "not an ID3v1.1 tag" / unset.
	Genre       byte // index into the standard genre table; see Genre.
}

// Parse reads a 128-byte ID3v1 tag from r. The caller is responsible for
// seeking r to 128 bytes before the end of the file first.
func Parse(r io.Reader) (*Tag, error) {
	var buf [tagSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, tagparsererr.Wrap(tagparsererr.ErrTruncatedData, err, "read ID3v1 tag")
	}
	if buf[0] != sig0 || buf[1] != sig1 || buf[2] != sig2 {
		return nil, tagparsererr.New(tagparsererr.ErrInvalidData, "ID3v1 signature is invalid")
	}

	dec := charmap.ISO8859_1.NewDecoder()
	latin1 := func(b []byte) string {
		out, err := dec.Bytes(b)
		if err != nil {
			out = b
		}
		return trimPadding(out)
	}

	t := &Tag{
		Title:  latin1(buf[3:33]),
		Artist: latin1(buf[33:63]),
		Album:  latin1(buf[63:93]),
		Year:   latin1(buf[93:97]),
		Genre:  buf[127],
	}

	// ID3v1.1: byte 125 is zero and byte 126 holds the track number, which
	// a plain ID3v1 tag would instead use for the last two comment bytes.
	comment := buf[97:127]
	if comment[28] == 0 && comment[29] != 0 {
		t.Comment = latin1(comment[:28])
		t.TrackNumber = comment[29]
	} else {
		t.Comment = latin1(comment)
	}

	return t, nil
}

// Make writes t as a 128-byte ID3v1 tag. If t.TrackNumber is nonzero the
// tag is written in ID3v1.1 form (comment truncated to 28 bytes, followed
// by a zero byte and the track number).
func Make(w io.Writer, t *Tag) error {
	var buf [tagSize]byte
	buf[0], buf[1], buf[2] = sig0, sig1, sig2

	enc := charmap.ISO8859_1.NewEncoder()
	putField := func(dst []byte, s string) {
		out, err := enc.Bytes([]byte(s))
		if err != nil {
			out = []byte(s)
		}
		copy(dst, out)
	}

	putField(buf[3:33], t.Title)
	putField(buf[33:63], t.Artist)
	putField(buf[63:93], t.Album)
	putField(buf[93:97], t.Year)

	if t.TrackNumber != 0 {
		putField(buf[97:125], t.Comment)
		buf[125] = 0
		buf[126] = t.TrackNumber
	} else {
		putField(buf[97:127], t.Comment)
	}
	buf[127] = t.Genre

	if _, err := w.Write(buf[:]); err != nil {
		return tagparsererr.Wrap(tagparsererr.ErrIO, err, "write ID3v1 tag")
	}
	return nil
}

// trimPadding strips trailing NUL and space padding, both of which
// real-world ID3v1 writers use interchangeably.
func trimPadding(b []byte) string {
	return string(bytes.TrimRight(b, "\x00 "))
}
