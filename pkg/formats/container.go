package formats

import (
	"fmt"

	"github.com/Faultbox/lyt/pkg/encoding"
)

const (
	headerSize      = 0x10
	blockHeaderSize = 0x08

	bomBigEndian    = 0xFEFF
	bomLittleEndian = 0xFFFE
)

// Header is the common file header of layout and animation resources.
type Header struct {
	Magic             string
	Version           uint16
	FileLength        uint32
	RootSectionOffset uint16
	SectionCount      uint16
}

// ReadHeader validates the magic and byte order mark and reads the header.
// The version and file length are recorded but not validated.
func ReadHeader(r *encoding.Reader, magic string) (Header, error) {
	if r.Len() < headerSize {
		return Header{}, fmt.Errorf("%w: %d bytes is shorter than the header", ErrMalformedContainer, r.Len())
	}

	h := Header{Magic: r.Fourcc(0x00)}
	if h.Magic != magic {
		return Header{}, fmt.Errorf("%w: expected magic %q, got %q", ErrMalformedContainer, magic, h.Magic)
	}

	switch bom := r.U16(0x04); bom {
	case bomBigEndian:
	case bomLittleEndian:
		return Header{}, ErrUnsupportedEndian
	default:
		return Header{}, fmt.Errorf("%w: invalid byte order mark 0x%04X", ErrMalformedContainer, bom)
	}

	h.Version = r.U16(0x06)
	h.FileLength = r.U32(0x08)
	h.RootSectionOffset = r.U16(0x0C)
	h.SectionCount = r.U16(0x0E)
	return h, r.Err()
}

// Block is one tagged section of a resource. Size includes the 8-byte block header.
type Block struct {
	Tag    string
	Offset int
	Size   int
}

// ContentOffset returns the offset of the first byte after the block header.
func (b Block) ContentOffset() int {
	return b.Offset + blockHeaderSize
}

// End returns the offset one past the last byte of the block.
func (b Block) End() int {
	return b.Offset + b.Size
}

// BlockWalker iterates the blocks of a resource once, in file order.
//
//	w := NewBlockWalker(r, h)
//	for w.Next() {
//		b := w.Block()
//	}
//	if err := w.Err(); err != nil { ... }
type BlockWalker struct {
	r         *encoding.Reader
	offs      int
	remaining int
	cur       Block
	err       error
}

// NewBlockWalker returns a walker over the h.SectionCount blocks starting at
// h.RootSectionOffset.
func NewBlockWalker(r *encoding.Reader, h Header) *BlockWalker {
	return &BlockWalker{
		r:         r,
		offs:      int(h.RootSectionOffset),
		remaining: int(h.SectionCount),
	}
}

// Next advances to the next block. It returns false when all blocks have been
// visited or a block header is invalid.
func (w *BlockWalker) Next() bool {
	if w.err != nil || w.remaining == 0 {
		return false
	}

	if w.offs+blockHeaderSize > w.r.Len() {
		w.err = fmt.Errorf("%w: block header at 0x%X past end of buffer", ErrCorruptRecord, w.offs)
		return false
	}

	tag := w.r.Fourcc(w.offs)
	size := int(w.r.U32(w.offs + 0x04))
	if size < blockHeaderSize {
		w.err = fmt.Errorf("%w: block %q at 0x%X has size %d", ErrCorruptRecord, tag, w.offs, size)
		return false
	}
	if w.offs+size > w.r.Len() {
		w.err = fmt.Errorf("%w: block %q at 0x%X overruns buffer (size 0x%X)", ErrCorruptRecord, tag, w.offs, size)
		return false
	}

	w.cur = Block{Tag: tag, Offset: w.offs, Size: size}
	w.offs += size
	w.remaining--
	return true
}

// Block returns the current block.
func (w *BlockWalker) Block() Block {
	return w.cur
}

// Err returns the error that stopped the walk, if any.
func (w *BlockWalker) Err() error {
	return w.err
}
