// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package elftest builds minimal ELF64 executables.
package elftest

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
)

type Segment struct {
	Type  elf.ProgType
	Paddr uint64
	Data  []byte
	Memsz uint64
}

// Build returns a little endian RISC-V executable with the given program
// headers followed by their data.
func Build(entry uint64, segs ...Segment) []byte {
	const (
		ehsize    = 64
		phentsize = 56
	)
	hdr := elf.Header64{
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(elf.EM_RISCV),
		Version:   uint32(elf.EV_CURRENT),
		Entry:     entry,
		Phoff:     ehsize,
		Ehsize:    ehsize,
		Phentsize: phentsize,
		Phnum:     uint16(len(segs)),
	}
	copy(hdr.Ident[:], elf.ELFMAG)
	hdr.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	hdr.Ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	hdr.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)

	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, &hdr)
	off := uint64(ehsize + phentsize*len(segs))
	for _, s := range segs {
		binary.Write(buf, binary.LittleEndian, &elf.Prog64{
			Type:   uint32(s.Type),
			Flags:  uint32(elf.PF_R | elf.PF_X),
			Off:    off,
			Vaddr:  s.Paddr,
			Paddr:  s.Paddr,
			Filesz: uint64(len(s.Data)),
			Memsz:  s.Memsz,
			Align:  8,
		})
		off += uint64(len(s.Data))
	}
	for _, s := range segs {
		buf.Write(s.Data)
	}
	return buf.Bytes()
}
