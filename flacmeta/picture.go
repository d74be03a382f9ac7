package flacmeta

import (
	"io"

	"github.com/smartsharp/tagparser/bytesio"
	"github.com/smartsharp/tagparser/tagvalue"
)

// ParsePictureBlock decodes a FLAC METADATA_BLOCK_PICTURE body:
//
//	type         uint32 BE
//	mime_length  uint32 BE
//	mime_string  [mime_length]byte
//	desc_length  uint32 BE
//	desc_string  [desc_length]byte
//	width        uint32 BE
//	height       uint32 BE
//	color_depth  uint32 BE
//	color_count  uint32 BE
//	data_length  uint32 BE
//	data         [data_length]byte
//
// The body is fully self-delimiting, so no length argument is taken.
func ParsePictureBlock(r io.Reader) (tagvalue.FlacPicture, error) {
	var pic tagvalue.FlacPicture

	typ, err := bytesio.ReadUint(r, 4)
	if err != nil {
		return tagvalue.FlacPicture{}, err
	}
	pic.Type = tagvalue.FlacPictureType(typ)

	mimeLen, err := bytesio.ReadUint(r, 4)
	if err != nil {
		return tagvalue.FlacPicture{}, err
	}
	mime := make([]byte, mimeLen)
	if _, err := io.ReadFull(r, mime); err != nil {
		return tagvalue.FlacPicture{}, err
	}
	pic.MimeType = string(mime)

	descLen, err := bytesio.ReadUint(r, 4)
	if err != nil {
		return tagvalue.FlacPicture{}, err
	}
	desc := make([]byte, descLen)
	if _, err := io.ReadFull(r, desc); err != nil {
		return tagvalue.FlacPicture{}, err
	}
	pic.Description = string(desc)

	width, err := bytesio.ReadUint(r, 4)
	if err != nil {
		return tagvalue.FlacPicture{}, err
	}
	pic.Width = uint32(width)

	height, err := bytesio.ReadUint(r, 4)
	if err != nil {
		return tagvalue.FlacPicture{}, err
	}
	pic.Height = uint32(height)

	depth, err := bytesio.ReadUint(r, 4)
	if err != nil {
		return tagvalue.FlacPicture{}, err
	}
	pic.ColorDepth = uint32(depth)

	colors, err := bytesio.ReadUint(r, 4)
	if err != nil {
		return tagvalue.FlacPicture{}, err
	}
	pic.Colors = uint32(colors)

	dataLen, err := bytesio.ReadUint(r, 4)
	if err != nil {
		return tagvalue.FlacPicture{}, err
	}
	data := make([]byte, dataLen)
	if _, err := io.ReadFull(r, data); err != nil {
		return tagvalue.FlacPicture{}, err
	}
	pic.Data = data

	return pic, nil
}

// RequiredSize returns the encoded byte length of p's METADATA_BLOCK_PICTURE
// body.
func RequiredSize(p tagvalue.FlacPicture) uint32 {
	return uint32(32 + len(p.MimeType) + len(p.Description) + len(p.Data))
}

// MakePictureBlock encodes p as a METADATA_BLOCK_PICTURE body.
func MakePictureBlock(w io.Writer, p tagvalue.FlacPicture) error {
	if err := bytesio.WriteUint(w, uint64(p.Type), 4); err != nil {
		return err
	}
	if err := bytesio.WriteUint(w, uint64(len(p.MimeType)), 4); err != nil {
		return err
	}
	if _, err := io.WriteString(w, p.MimeType); err != nil {
		return err
	}
	if err := bytesio.WriteUint(w, uint64(len(p.Description)), 4); err != nil {
		return err
	}
	if _, err := io.WriteString(w, p.Description); err != nil {
		return err
	}
	if err := bytesio.WriteUint(w, uint64(p.Width), 4); err != nil {
		return err
	}
	if err := bytesio.WriteUint(w, uint64(p.Height), 4); err != nil {
		return err
	}
	if err := bytesio.WriteUint(w, uint64(p.ColorDepth), 4); err != nil {
		return err
	}
	if err := bytesio.WriteUint(w, uint64(p.Colors), 4); err != nil {
		return err
	}
	if err := bytesio.WriteUint(w, uint64(len(p.Data)), 4); err != nil {
		return err
	}
	_, err := w.Write(p.Data)
	return err
}
