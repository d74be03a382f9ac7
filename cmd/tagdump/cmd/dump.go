package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/smartsharp/tagparser/bytesio"
	"github.com/smartsharp/tagparser/diag"
	"github.com/smartsharp/tagparser/ebml"
	"github.com/smartsharp/tagparser/element"
	"github.com/smartsharp/tagparser/id3v1"
	"github.com/smartsharp/tagparser/id3v2"
	"github.com/smartsharp/tagparser/mp4"
	"github.com/smartsharp/tagparser/ogg"
	"github.com/smartsharp/tagparser/riff"
	"github.com/smartsharp/tagparser/vorbiscomment"
)

const id3v1TrailerSize = 128

// dumpFile sniffs stream and dispatches to the matching container package,
// logging everything it finds through logger. A trailing ID3v1 tag is
// checked independently of the leading-byte sniff, since the two tag kinds
// commonly coexist in one MP3 file.
func dumpFile(stream bytesio.Stream, size uint64, logger *zap.Logger) error {
	header := make([]byte, 12)
	n, err := stream.Read(header)
	if err != nil && n == 0 {
		return fmt.Errorf("read file header: %w", err)
	}
	header = header[:n]
	if _, err := stream.Seek(0, 0); err != nil {
		return fmt.Errorf("rewind after sniffing container: %w", err)
	}

	var d diag.Diagnostics
	defer func() { d.MirrorTo(logger) }()

	f := sniff(header)
	logger.Info("sniffed container", zap.Stringer("format", f))

	switch f {
	case formatEBML:
		err = dumpEBML(stream, size, &d, logger)
	case formatID3v2:
		err = dumpID3v2(stream, size, &d, logger)
	case formatMP4:
		err = dumpGenericTree(stream, size, mp4.Adapter{}, mp4.FourCCString, &d, logger)
	case formatRIFF:
		err = dumpGenericTree(stream, size, riff.Adapter{}, riff.FourCCString, &d, logger)
	case formatOgg:
		err = dumpOgg(stream, size, &d, logger)
	default:
		logger.Warn("no matching container adapter for this file")
	}
	if err != nil {
		return err
	}

	if size >= id3v1TrailerSize {
		dumpID3v1(stream, size, logger)
	}
	return nil
}

func dumpEBML(stream bytesio.Stream, size uint64, d *diag.Diagnostics, logger *zap.Logger) error {
	file, err := ebml.Open(stream, size, d)
	if err != nil {
		return fmt.Errorf("open EBML file: %w", err)
	}
	if err := dumpTree(file.Root, d, ebmlIDString, 0, logger); err != nil {
		return err
	}

	tags, err := file.Tags(d)
	if err != nil {
		return err
	}
	if tags == nil {
		return nil
	}
	return dumpSimpleTags(tags, d, logger)
}

// dumpSimpleTags walks a Tags element's SimpleTag children and logs each
// TagName/TagString pair, the Matroska analogue of a Vorbis comment field.
func dumpSimpleTags(tags *element.Element, d *diag.Diagnostics, logger *zap.Logger) error {
	tag, err := tags.FirstChild(d)
	if err != nil {
		return err
	}
	for tag != nil {
		if err := tag.Parse(d); err != nil {
			return err
		}
		if tag.ID == ebml.IDTag {
			simpleTag, err := tag.ChildByID(ebml.IDSimpleTag, d)
			if err != nil {
				return err
			}
			for simpleTag != nil {
				name, value, err := readSimpleTag(simpleTag, d)
				if err != nil {
					return err
				}
				logger.Info("tag", zap.String("name", name), zap.String("value", value))
				next, err := simpleTag.SiblingByID(ebml.IDSimpleTag, d)
				if err != nil {
					return err
				}
				simpleTag = next
			}
		}
		next, err := tag.NextSibling(d)
		if err != nil {
			return err
		}
		tag = next
	}
	return nil
}

func readSimpleTag(simpleTag *element.Element, d *diag.Diagnostics) (name, value string, err error) {
	nameElement, err := simpleTag.ChildByID(ebml.IDTagName, d)
	if err != nil || nameElement == nil {
		return "", "", err
	}
	if err := nameElement.MakeBuffer(); err != nil {
		return "", "", err
	}
	name = string(nameElement.Buffer[nameElement.HeaderSize():])

	valueElement, err := simpleTag.ChildByID(ebml.IDTagString, d)
	if err != nil || valueElement == nil {
		return name, "", err
	}
	if err := valueElement.MakeBuffer(); err != nil {
		return name, "", err
	}
	value = string(valueElement.Buffer[valueElement.HeaderSize():])
	return name, value, nil
}

func ebmlIDString(id uint64) string {
	return fmt.Sprintf("0x%X", id)
}

func dumpID3v2(stream bytesio.Stream, size uint64, d *diag.Diagnostics, logger *zap.Logger) error {
	tag, err := id3v2.Parse(stream, size, d)
	if err != nil {
		return fmt.Errorf("parse ID3v2 tag: %w", err)
	}
	for _, frame := range tag.Frames() {
		logger.Info("frame", zap.String("id", frame.ID), zap.Int("bytes", len(frame.Data)))
	}
	return nil
}

func dumpID3v1(stream bytesio.Stream, size uint64, logger *zap.Logger) {
	if _, err := stream.Seek(int64(size-id3v1TrailerSize), 0); err != nil {
		return
	}
	tag, err := id3v1.Parse(stream)
	if err != nil {
		return
	}
	logger.Info("ID3v1 trailer",
		zap.String("title", tag.Title), zap.String("artist", tag.Artist), zap.String("album", tag.Album))
}

// dumpGenericTree walks any format whose Adapter exposes element.Element
// directly (MP4, RIFF); idString renders that format's id for logging.
func dumpGenericTree(stream bytesio.Stream, size uint64, adapter element.Adapter, idString func(uint64) string, d *diag.Diagnostics, logger *zap.Logger) error {
	root := element.NewRoot(adapter, stream, 0, size)
	if err := root.Parse(d); err != nil {
		return fmt.Errorf("parse container root: %w", err)
	}
	return dumpTree(root, d, idString, 0, logger)
}

// dumpTree logs e and its following siblings depth-first, the same
// traversal shape as element.Element.ValidateSubsequentElementStructure,
// but printing instead of validating.
func dumpTree(e *element.Element, d *diag.Diagnostics, idString func(uint64) string, depth int, logger *zap.Logger) error {
	for cur := e; cur != nil; {
		if err := cur.Parse(d); err != nil {
			logger.Warn("failed to parse element", zap.Uint64("offset", cur.StartOffset), zap.Error(err))
			return nil
		}
		logger.Info(strings.Repeat("  ", depth)+idString(cur.ID),
			zap.Uint64("offset", cur.StartOffset), zap.Uint64("size", cur.DataSize))

		if !cur.Adapter.IsPadding(cur) {
			child, err := cur.FirstChild(d)
			if err != nil {
				return err
			}
			if child != nil {
				if err := dumpTree(child, d, idString, depth+1, logger); err != nil {
					return err
				}
			}
		}

		next, err := cur.NextSibling(d)
		if err != nil {
			return err
		}
		cur = next
	}
	return nil
}

var (
	vorbisCommentMagic = append([]byte{0x03}, []byte("vorbis")...)
	opusTagsMagic      = []byte("OpusTags")
)

// vorbisCommentPayload strips the packet-type framing Vorbis and Opus each
// put in front of their comment header packet, returning the raw
// vendor+fields body vorbiscomment.Parse expects.
func vorbisCommentPayload(packet []byte) ([]byte, bool) {
	if bytes.HasPrefix(packet, vorbisCommentMagic) {
		return packet[len(vorbisCommentMagic):], true
	}
	if bytes.HasPrefix(packet, opusTagsMagic) {
		return packet[len(opusTagsMagic):], true
	}
	return nil, false
}

func dumpOgg(stream bytesio.Stream, size uint64, d *diag.Diagnostics, logger *zap.Logger) error {
	root := element.NewRoot(ogg.Adapter{}, stream, 0, size)
	packets, err := ogg.ReadPackets(root, stream, d)
	if err != nil {
		return fmt.Errorf("reassemble Ogg packets: %w", err)
	}
	for _, p := range packets {
		logger.Info("packet", zap.Uint32("serial", p.SerialNumber), zap.Int("bytes", len(p.Data)),
			zap.Bool("bos", p.BOS), zap.Bool("eos", p.EOS))
		payload, ok := vorbisCommentPayload(p.Data)
		if !ok {
			continue
		}
		block, err := vorbiscomment.Parse(bytes.NewReader(payload), uint64(len(payload)), d)
		if err != nil {
			logger.Warn("failed to parse comment header", zap.Uint32("serial", p.SerialNumber), zap.Error(err))
			continue
		}
		logger.Info("comment header", zap.Uint32("serial", p.SerialNumber), zap.String("vendor", block.Vendor))
		for _, field := range block.Fields {
			if field.Picture != nil {
				logger.Info("cover field", zap.String("id", field.ID), zap.String("mime", field.Picture.MimeType))
				continue
			}
			logger.Info("field", zap.String("id", field.ID), zap.String("value", field.Value))
		}
	}
	return nil
}
