package classfile

import (
	"encoding/binary"
	"io"
	"math"
)

// Source is the byte-level input to Parse. It is always read sequentially
// and never seeked. Len reports the total size of the underlying data when
// the caller knows it up front (a file, a buffer); archive entries streamed
// out of a ZIP reader typically don't, and report ok == false.
type Source interface {
	io.Reader
	Len() (n int64, ok bool)
}

// sizedSource wraps an io.Reader that has a statically known length, such as
// an os.File after Stat or an in-memory buffer.
type sizedSource struct {
	io.Reader
	size int64
}

func NewSource(r io.Reader, size int64) Source {
	return &sizedSource{Reader: r, size: size}
}

func (s *sizedSource) Len() (int64, bool) { return s.size, true }

// unsizedSource wraps a reader whose length isn't known ahead of time, e.g.
// a zip.File's stream. The EOF check in Parse is skipped for these unless
// ParseOptions.Strict forces it.
type unsizedSource struct {
	io.Reader
}

func NewUnsizedSource(r io.Reader) Source {
	return &unsizedSource{Reader: r}
}

func (s *unsizedSource) Len() (int64, bool) { return 0, false }

// reader is the sequential big-endian cursor used while the class assembler
// walks the top-level structure. It carries its first error and turns every
// subsequent read into a no-op, so callers only need to check r.err once
// after a run of reads instead of after each one.
type reader struct {
	r   io.Reader
	err error
}

func (r *reader) readU1() uint8 {
	if r.err != nil {
		return 0
	}
	var buf [1]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return buf[0]
}

func (r *reader) readU2() uint16 {
	if r.err != nil {
		return 0
	}
	var buf [2]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return binary.BigEndian.Uint16(buf[:])
}

func (r *reader) readU4() uint32 {
	if r.err != nil {
		return 0
	}
	var buf [4]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return binary.BigEndian.Uint32(buf[:])
}

func (r *reader) readI4() int32 {
	return int32(r.readU4())
}

func (r *reader) readF4() float32 {
	return math.Float32frombits(r.readU4())
}

func (r *reader) readU8() uint64 {
	if r.err != nil {
		return 0
	}
	var buf [8]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return binary.BigEndian.Uint64(buf[:])
}

func (r *reader) readI8() int64 {
	return int64(r.readU8())
}

func (r *reader) readF8() float64 {
	return math.Float64frombits(r.readU8())
}

func (r *reader) readBytes(n int) []byte {
	if r.err != nil || n < 0 {
		return nil
	}
	buf := make([]byte, n)
	_, r.err = io.ReadFull(r.r, buf)
	return buf
}

