package element

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartsharp/tagparser/bytesio"
	"github.com/smartsharp/tagparser/diag"
)

// tlvAdapter is a minimal test-only format: each element is one ID byte,
// one payload-length byte, then that many payload bytes. An element with
// nonzero payload is treated as a parent whose payload is itself a run of
// child elements in the same framing -- enough structure to exercise
// FirstChild/NextSibling/SubelementByPath without a real container format.
type tlvAdapter struct{}

func (tlvAdapter) InternalParse(e *Element, stream bytesio.Stream, d *diag.Diagnostics) error {
	if _, err := stream.Seek(int64(e.StartOffset), 0); err != nil {
		return err
	}
	var hdr [2]byte
	if _, err := readFull(stream, hdr[:]); err != nil {
		return err
	}
	e.ID = uint64(hdr[0])
	e.IDLength = 1
	e.SizeLength = 1
	e.DataSize = uint64(hdr[1])
	return nil
}

func (tlvAdapter) IsParent(e *Element) bool      { return e.DataSize > 0 }
func (tlvAdapter) IsPadding(e *Element) bool     { return e.ID == 'P' }
func (tlvAdapter) FirstChildOffset(e *Element) uint64 { return e.DataOffset() }

// buildTree encodes A{B{C}, D} and returns the raw bytes.
func buildTree() []byte {
	c := []byte{'C', 0}
	b := append([]byte{'B', byte(len(c))}, c...)
	d := []byte{'D', 0}
	payloadA := append(append([]byte{}, b...), d...)
	a := append([]byte{'A', byte(len(payloadA))}, payloadA...)
	return a
}

func newTestRoot(t *testing.T, data []byte) *Element {
	t.Helper()
	stream := bytesio.NewMemStream(data)
	root := NewRoot(tlvAdapter{}, stream, 0, uint64(len(data)))
	var d diag.Diagnostics
	require.NoError(t, root.Parse(&d))
	return root
}

func TestElementParseIsIdempotent(t *testing.T) {
	root := newTestRoot(t, buildTree())
	assert.EqualValues(t, 'A', root.ID)
	assert.EqualValues(t, 1, root.IDLength)
	assert.True(t, root.Parsed)

	// Mutate ID directly to prove a second Parse call is a no-op.
	root.ID = 0
	var d diag.Diagnostics
	require.NoError(t, root.Parse(&d))
	assert.EqualValues(t, 0, root.ID, "Parse after Parsed=true must be a no-op")
}

func TestElementReparseRefreshesState(t *testing.T) {
	root := newTestRoot(t, buildTree())
	root.ID = 0
	var d diag.Diagnostics
	require.NoError(t, root.Reparse(&d))
	assert.EqualValues(t, 'A', root.ID)
}

func TestFirstChildAndNextSibling(t *testing.T) {
	root := newTestRoot(t, buildTree())
	var d diag.Diagnostics

	b, err := root.FirstChild(&d)
	require.NoError(t, err)
	require.NotNil(t, b)
	require.NoError(t, b.Parse(&d))
	assert.EqualValues(t, 'B', b.ID)

	dElem, err := b.NextSibling(&d)
	require.NoError(t, err)
	require.NotNil(t, dElem)
	require.NoError(t, dElem.Parse(&d))
	assert.EqualValues(t, 'D', dElem.ID)

	none, err := dElem.NextSibling(&d)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestChildByIDAndSiblingByID(t *testing.T) {
	root := newTestRoot(t, buildTree())
	var d diag.Diagnostics

	dElem, err := root.ChildByID('D', &d)
	require.NoError(t, err)
	require.NotNil(t, dElem)
	assert.EqualValues(t, 'D', dElem.ID)

	missing, err := root.ChildByID('Z', &d)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSubelementByPathSingleID(t *testing.T) {
	root := newTestRoot(t, buildTree())
	var d diag.Diagnostics

	match, err := root.SubelementByPath(&d, 'A')
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Same(t, root, match)
}

func TestSubelementByPathMultiID(t *testing.T) {
	root := newTestRoot(t, buildTree())
	var d diag.Diagnostics

	c, err := root.SubelementByPath(&d, uint64('A'), uint64('B'), uint64('C'))
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.EqualValues(t, 'C', c.ID)
}

func TestSubelementByPathMissingReturnsNil(t *testing.T) {
	root := newTestRoot(t, buildTree())
	var d diag.Diagnostics

	missing, err := root.SubelementByPath(&d, uint64('A'), uint64('Z'))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMakeBufferAndDiscard(t *testing.T) {
	data := buildTree()
	root := newTestRoot(t, data)

	require.NoError(t, root.MakeBuffer())
	assert.Equal(t, data, root.Buffer)

	root.DiscardBuffer()
	assert.Nil(t, root.Buffer)
}

func TestValidateSubsequentElementStructureAccumulatesPadding(t *testing.T) {
	// A{B{C}, D, P} -- P is a padding child sibling of B and D.
	c := []byte{'C', 0}
	b := append([]byte{'B', byte(len(c))}, c...)
	d0 := []byte{'D', 0}
	p := []byte{'P', 0}
	payloadA := append(append(append([]byte{}, b...), d0...), p...)
	data := append([]byte{'A', byte(len(payloadA))}, payloadA...)

	stream := bytesio.NewMemStream(data)
	root := NewRoot(tlvAdapter{}, stream, 0, uint64(len(data)))
	var d diag.Diagnostics
	require.NoError(t, root.Parse(&d))

	var paddingAccum uint64
	require.NoError(t, root.ValidateSubsequentElementStructure(&d, &paddingAccum))
	assert.EqualValues(t, 2, paddingAccum)
}

func TestHandlesAreUniquePerElement(t *testing.T) {
	root := newTestRoot(t, buildTree())
	var d diag.Diagnostics

	b, err := root.FirstChild(&d)
	require.NoError(t, err)
	require.NoError(t, b.Parse(&d))
	dElem, err := b.NextSibling(&d)
	require.NoError(t, err)

	assert.NotEqual(t, root.Handle, b.Handle)
	assert.NotEqual(t, b.Handle, dElem.Handle)
}
