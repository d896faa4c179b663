package layout

import (
	"encoding/binary"
	"fmt"
)

// writer fills a preallocated fixed-size buffer front to back.
type writer struct {
	buf []byte
	off int
}

func (w *writer) bytes(b []byte) {
	w.off += copy(w.buf[w.off:], b)
}

func (w *writer) int64(v int64) {
	binary.LittleEndian.PutUint64(w.buf[w.off:], uint64(v))
	w.off += 8
}

// text writes a length prefix and the bytes, then skips to the end of the
// field's budget so the next field starts at a fixed offset.
func (w *writer) text(field, s string, budget int) error {
	if len(s) > budget {
		return fmt.Errorf("%w: %s is %d bytes, budget %d", ErrFieldOverflow, field, len(s), budget)
	}
	binary.LittleEndian.PutUint32(w.buf[w.off:], uint32(len(s)))
	w.off += StringLengthPrefix
	copy(w.buf[w.off:], s)
	w.off += budget
	return nil
}

type reader struct {
	buf []byte
	off int
}

func (r *reader) bytes(n int) []byte {
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) int64() int64 {
	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return int64(v)
}

func (r *reader) text(field string, budget int) (string, error) {
	n := int(binary.LittleEndian.Uint32(r.buf[r.off:]))
	r.off += StringLengthPrefix
	if n > budget {
		return "", fmt.Errorf("%w: %s length prefix %d, budget %d", ErrFieldOverflow, field, n, budget)
	}
	s := string(r.buf[r.off : r.off+n])
	r.off += budget
	return s, nil
}

// header checks size and discriminator and returns a reader positioned
// after the discriminator.
func header(data []byte, size int, d Discriminator, name string) (*reader, error) {
	if len(data) != size {
		return nil, fmt.Errorf("%w: %s is %d bytes, want %d", ErrSizeMismatch, name, len(data), size)
	}
	r := &reader{buf: data}
	if Discriminator(r.bytes(DiscriminatorLength)) != d {
		return nil, fmt.Errorf("%w: not a %s", ErrDiscriminatorMismatch, name)
	}
	return r, nil
}
