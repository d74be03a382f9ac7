package element

import (
	"context"

	"github.com/smartsharp/tagparser/bytesio"
	"github.com/smartsharp/tagparser/internal/tagparsererr"
)

// copyChunkSize is the buffer size used by chunked copies, matching the
// teacher's preference for fixed-size scratch buffers over io.Copy's
// unconditional allocation.
const copyChunkSize = 8 * 1024

// Progress reports chunked-copy progress and allows cooperative
// cancellation independent of ctx, mirroring the original's
// AbortableProgressFeedback collaborator.
type Progress struct {
	// IsAborted, if non-nil, is polled between chunks; a true result stops
	// the copy with ErrOperationAborted.
	IsAborted func() bool
	// UpdateFraction, if non-nil, is called after each chunk with the
	// fraction of bytes copied so far (0.0 .. 1.0).
	UpdateFraction func(fraction float64)
}

func (p *Progress) aborted() bool {
	return p != nil && p.IsAborted != nil && p.IsAborted()
}

func (p *Progress) report(fraction float64) {
	if p != nil && p.UpdateFraction != nil {
		p.UpdateFraction(fraction)
	}
}

// copyStream copies exactly size bytes from src at srcOffset to dst at
// dstOffset, in copyChunkSize chunks, honoring ctx cancellation and an
// optional Progress.
func copyStream(ctx context.Context, src bytesio.Stream, srcOffset uint64, dst bytesio.Stream, dstOffset uint64, size uint64, progress *Progress) error {
	if size == 0 {
		return nil
	}
	if _, err := src.Seek(int64(srcOffset), 0); err != nil {
		return tagparsererr.Wrap(tagparsererr.ErrIO, err, "seek source for copy")
	}
	if _, err := dst.Seek(int64(dstOffset), 0); err != nil {
		return tagparsererr.Wrap(tagparsererr.ErrIO, err, "seek destination for copy")
	}

	buf := make([]byte, copyChunkSize)
	var copied uint64
	for copied < size {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return tagparsererr.Wrap(tagparsererr.ErrOperationAborted, ctx.Err(), "copy canceled")
			default:
			}
		}
		if progress.aborted() {
			return tagparsererr.New(tagparsererr.ErrOperationAborted, "copy aborted by progress callback")
		}

		remaining := size - copied
		chunk := uint64(len(buf))
		if remaining < chunk {
			chunk = remaining
		}
		n, err := readFull(src, buf[:chunk])
		if err != nil {
			return tagparsererr.Wrap(tagparsererr.ErrTruncatedData, err, "read during copy")
		}
		if _, err := dst.Write(buf[:n]); err != nil {
			return tagparsererr.Wrap(tagparsererr.ErrIO, err, "write during copy")
		}
		copied += uint64(n)
		progress.report(float64(copied) / float64(size))
	}
	return nil
}

// CopyHeader copies just the element's header bytes (id + size fields)
// into target at targetOffset.
func (e *Element) CopyHeader(ctx context.Context, target bytesio.Stream, targetOffset uint64, progress *Progress) error {
	if !e.Parsed {
		return tagparsererr.New(tagparsererr.ErrParsingFailure, "CopyHeader called before Parse")
	}
	return copyStream(ctx, e.Stream, e.StartOffset, target, targetOffset, e.HeaderSize(), progress)
}

// CopyWithoutChildren copies the element's header and any payload bytes
// that precede its first child, omitting descendants entirely. For a leaf
// element this is equivalent to CopyEntirely.
func (e *Element) CopyWithoutChildren(ctx context.Context, target bytesio.Stream, targetOffset uint64, progress *Progress) error {
	if !e.Parsed {
		return tagparsererr.New(tagparsererr.ErrParsingFailure, "CopyWithoutChildren called before Parse")
	}
	size := e.TotalSize()
	if e.Adapter.IsParent(e) {
		childOffset := e.Adapter.FirstChildOffset(e)
		if childOffset > e.StartOffset {
			size = childOffset - e.StartOffset
		}
	}
	return copyStream(ctx, e.Stream, e.StartOffset, target, targetOffset, size, progress)
}

// CopyEntirely copies the element's full byte range (header and payload,
// including all descendants) into target.
func (e *Element) CopyEntirely(ctx context.Context, target bytesio.Stream, targetOffset uint64, progress *Progress) error {
	if !e.Parsed {
		return tagparsererr.New(tagparsererr.ErrParsingFailure, "CopyEntirely called before Parse")
	}
	return copyStream(ctx, e.Stream, e.StartOffset, target, targetOffset, e.TotalSize(), progress)
}

// CopyPreferablyFromBuffer writes e's buffered bytes (if MakeBuffer has
// been called and not discarded) to target, falling back to CopyEntirely
// against the original stream otherwise.
func (e *Element) CopyPreferablyFromBuffer(ctx context.Context, target bytesio.Stream, targetOffset uint64, progress *Progress) error {
	if e.Buffer != nil {
		if _, err := target.Seek(int64(targetOffset), 0); err != nil {
			return tagparsererr.Wrap(tagparsererr.ErrIO, err, "seek destination for buffered copy")
		}
		if _, err := target.Write(e.Buffer); err != nil {
			return tagparsererr.Wrap(tagparsererr.ErrIO, err, "write buffered bytes")
		}
		progress.report(1.0)
		return nil
	}
	return e.CopyEntirely(ctx, target, targetOffset, progress)
}
