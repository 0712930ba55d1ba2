package encoding

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrOutOfBounds is returned when a read would go past the end of the buffer.
var ErrOutOfBounds = errors.New("read out of bounds")

// Reader reads big-endian values at absolute offsets of a byte buffer.
//
// All methods are bounds-checked. The first failing read is remembered and
// later reads return zero values, so a decoder can issue a run of reads and
// check Err once at the end of a record.
type Reader struct {
	data []byte
	err  error
}

// NewReader returns a Reader over data. The buffer is not copied.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Len returns the buffer length.
func (r *Reader) Len() int {
	return len(r.data)
}

// Err returns the first out-of-bounds error, if any.
func (r *Reader) Err() error {
	return r.err
}

// Bytes returns n bytes at offs without copying.
func (r *Reader) Bytes(offs, n int) []byte {
	if !r.check(offs, n) {
		return nil
	}
	return r.data[offs : offs+n]
}

// U8 reads an unsigned byte.
func (r *Reader) U8(offs int) uint8 {
	if !r.check(offs, 1) {
		return 0
	}
	return r.data[offs]
}

// U16 reads a big-endian uint16.
func (r *Reader) U16(offs int) uint16 {
	if !r.check(offs, 2) {
		return 0
	}
	return binary.BigEndian.Uint16(r.data[offs:])
}

// S16 reads a big-endian int16.
func (r *Reader) S16(offs int) int16 {
	return int16(r.U16(offs))
}

// U32 reads a big-endian uint32.
func (r *Reader) U32(offs int) uint32 {
	if !r.check(offs, 4) {
		return 0
	}
	return binary.BigEndian.Uint32(r.data[offs:])
}

// F32 reads a big-endian IEEE-754 float32.
func (r *Reader) F32(offs int) float32 {
	return math.Float32frombits(r.U32(offs))
}

// Fourcc reads a four character tag.
func (r *Reader) Fourcc(offs int) string {
	b := r.Bytes(offs, 4)
	if b == nil {
		return ""
	}
	return string(b)
}

// FixedString reads an 8-bit, null-padded string field of n bytes.
func (r *Reader) FixedString(offs, n int) string {
	b := r.Bytes(offs, n)
	if b == nil {
		return ""
	}
	return FixedString(b)
}

// CString reads an 8-bit string terminated by a null byte.
func (r *Reader) CString(offs int) string {
	if !r.check(offs, 0) {
		return ""
	}
	for end := offs; end < len(r.data); end++ {
		if r.data[end] == 0 {
			return string(r.data[offs:end])
		}
	}
	r.fail(offs, len(r.data)-offs+1)
	return ""
}

// UTF16String reads size bytes of big-endian UTF-16 text.
func (r *Reader) UTF16String(offs, size int) string {
	b := r.Bytes(offs, size)
	if b == nil {
		return ""
	}
	return UTF16BEToUTF8(b)
}

func (r *Reader) check(offs, n int) bool {
	if r.err != nil {
		return false
	}
	if offs < 0 || n < 0 || offs+n > len(r.data) {
		r.fail(offs, n)
		return false
	}
	return true
}

func (r *Reader) fail(offs, n int) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %d bytes at 0x%X (buffer is 0x%X)", ErrOutOfBounds, n, offs, len(r.data))
	}
}
