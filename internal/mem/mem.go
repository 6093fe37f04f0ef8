// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package mem provides byte and 32-bit register access to a window of
// physical address space.
package mem

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var ErrRange = errors.New("address out of range")

// Memory is addressed by physical address rather than offset.
type Memory interface {
	io.ReaderAt
	io.WriterAt
}

// window is a byte slice mapped at base.
type window struct {
	base uint64
	b    []byte
}

func (w *window) Base() uint64 { return w.base }
func (w *window) Size() int    { return len(w.b) }

func (w *window) slice(addr int64, n int) ([]byte, error) {
	off := uint64(addr) - w.base
	if addr < 0 || uint64(addr) < w.base || off+uint64(n) > uint64(len(w.b)) {
		return nil, fmt.Errorf("%#x+%#x: %w [%#x, %#x)", addr, n, ErrRange,
			w.base, w.base+uint64(len(w.b)))
	}
	return w.b[off : off+uint64(n)], nil
}

func (w *window) ReadAt(p []byte, addr int64) (int, error) {
	b, err := w.slice(addr, len(p))
	if err != nil {
		return 0, err
	}
	return copy(p, b), nil
}

func (w *window) WriteAt(p []byte, addr int64) (int, error) {
	b, err := w.slice(addr, len(p))
	if err != nil {
		return 0, err
	}
	return copy(b, p), nil
}

// RAM is process memory standing in for a physical window; it serves dry
// runs and tests.
type RAM struct {
	window
}

func NewRAM(base uint64, size int) *RAM {
	return &RAM{window{base, make([]byte, size)}}
}

// Bytes returns the window content.
func (r *RAM) Bytes() []byte { return r.b }

// Section reads n bytes of m from addr as if they were a file.
func Section(m Memory, addr uint64, n int64) *io.SectionReader {
	return io.NewSectionReader(m, int64(addr), n)
}

// Zero clears n bytes at addr.
func Zero(m Memory, addr uint64, n int64) error {
	var zeros [4096]byte
	for n > 0 {
		l := int64(len(zeros))
		if n < l {
			l = n
		}
		if _, err := m.WriteAt(zeros[:l], int64(addr)); err != nil {
			return err
		}
		addr += uint64(l)
		n -= l
	}
	return nil
}

// Read32 returns the little endian register at addr.
func Read32(m Memory, addr uint64) (uint32, error) {
	var b [4]byte
	if _, err := m.ReadAt(b[:], int64(addr)); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func Write32(m Memory, addr uint64, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := m.WriteAt(b[:], int64(addr))
	return err
}

// Update32 replaces the masked bits of the register at addr with v.
func Update32(m Memory, addr uint64, mask, v uint32) error {
	cur, err := Read32(m, addr)
	if err != nil {
		return err
	}
	return Write32(m, addr, cur&^mask|v&mask)
}
