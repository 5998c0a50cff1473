// Copyright 2026 The odb Authors
// This file is part of the odb library.
//
// The odb library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The odb library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the odb library. If not, see <http://www.gnu.org/licenses/>.

// Package wire implements the ODB binary wire protocol: little-endian
// fixed-width codec primitives, a length-prefixed framed transport, and the
// per-request-type descriptors that drive client-encode / server-decode /
// server-encode / client-decode.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrShortBuffer is returned by Reader methods when fewer bytes remain than
// the read requires.
var ErrShortBuffer = errors.New("wire: short buffer")

// Writer accumulates a payload using the wire's little-endian primitives.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated payload.
func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) WriteU8(v uint8)   { w.buf = append(w.buf, v) }
func (w *Writer) WriteI8(v int8)    { w.WriteU8(uint8(v)) }
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteU8(1)
	} else {
		w.WriteU8(0)
	}
}

func (w *Writer) WriteU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteString writes a u64 length prefix followed by the raw bytes.
func (w *Writer) WriteString(s string) {
	w.WriteU64(uint64(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteBytes writes a u64 length prefix followed by the raw bytes. Used for
// variable-size buffers whose size isn't implicit in another field.
func (w *Writer) WriteBytes(b []byte) {
	w.WriteU64(uint64(len(b)))
	w.buf = append(w.buf, b...)
}

// WriteRaw appends b verbatim, with no length prefix — used when the shape
// (e.g. a uniform-size row) is implicit in an already-written field.
func (w *Writer) WriteRaw(b []byte) { w.buf = append(w.buf, b...) }

// Reader consumes a payload using the wire's little-endian primitives.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for sequential reads.
func NewReader(buf []byte) *Reader { return &Reader{buf: buf} }

// Remaining reports how many unread bytes are left.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) need(n int) error {
	if r.Remaining() < n {
		return fmt.Errorf("%w: need %d, have %d", ErrShortBuffer, n, r.Remaining())
	}
	return nil
}

func (r *Reader) ReadU8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *Reader) ReadI8() (int8, error) {
	v, err := r.ReadU8()
	return int8(v), err
}

func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadU8()
	return v != 0, err
}

func (r *Reader) ReadU32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *Reader) ReadU64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadU64()
	if err != nil {
		return "", err
	}
	if err := r.need(int(n)); err != nil {
		return "", err
	}
	s := string(r.buf[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}

func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	if err := r.need(int(n)); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	copy(b, r.buf[r.pos:r.pos+int(n)])
	r.pos += int(n)
	return b, nil
}

// ReadRaw reads exactly n bytes with no length prefix.
func (r *Reader) ReadRaw(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	copy(b, r.buf[r.pos:r.pos+n])
	r.pos += n
	return b, nil
}

// WriteNullTermStrings encodes an "array of null-terminated strings": a
// u64 count, a u64 length-prefixed flat byte block (each name followed by
// a NUL), per spec.md §4.4.
func (w *Writer) WriteNullTermStrings(names []string) {
	w.WriteU64(uint64(len(names)))
	var flat []byte
	for _, n := range names {
		flat = append(flat, n...)
		flat = append(flat, 0)
	}
	w.WriteBytes(flat)
}

func (r *Reader) ReadNullTermStrings() ([]string, error) {
	n, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	flat, err := r.ReadBytes()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, n)
	start := 0
	for i, b := range flat {
		if b == 0 {
			out = append(out, string(flat[start:i]))
			start = i + 1
		}
	}
	if uint64(len(out)) != n {
		return nil, fmt.Errorf("wire: expected %d null-terminated strings, found %d", n, len(out))
	}
	return out, nil
}
