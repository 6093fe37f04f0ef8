// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package elfboot places the loadable segments of a bare metal ELF image
// at their physical addresses.
package elfboot

import (
	"debug/elf"
	"fmt"
	"io"

	"github.com/platinasystems/axpboot/internal/mem"
	"github.com/platinasystems/log"
)

func open(r io.ReaderAt) (*elf.File, error) {
	f, err := elf.NewFile(r)
	if err != nil {
		return nil, fmt.Errorf("elf: %w", err)
	}
	if f.Class != elf.ELFCLASS64 {
		return nil, fmt.Errorf("elf: %v: not a 64-bit image", f.Class)
	}
	return f, nil
}

// Entry returns the image's entry address.
func Entry(r io.ReaderAt) (uint64, error) {
	f, err := open(r)
	if err != nil {
		return 0, err
	}
	return f.Entry, nil
}

// Load copies each PT_LOAD segment to its physical address and clears
// the remainder of its memory size.
func Load(m mem.Memory, r io.ReaderAt) error {
	f, err := open(r)
	if err != nil {
		return err
	}
	for i, prg := range f.Progs {
		if prg.Type != elf.PT_LOAD {
			continue
		}
		if prg.Filesz > prg.Memsz {
			return fmt.Errorf("elf: segment %d: file size %#x > memory size %#x",
				i, prg.Filesz, prg.Memsz)
		}
		b := make([]byte, prg.Filesz)
		if _, err = prg.ReadAt(b, 0); err != nil {
			return fmt.Errorf("elf: segment %d: %w", i, err)
		}
		if _, err = m.WriteAt(b, int64(prg.Paddr)); err != nil {
			return fmt.Errorf("elf: segment %d: %w", i, err)
		}
		bss := prg.Memsz - prg.Filesz
		if err = mem.Zero(m, prg.Paddr+prg.Filesz, int64(bss)); err != nil {
			return fmt.Errorf("elf: segment %d bss: %w", i, err)
		}
		log.Printf("debug", "ELF: load %#x bytes at %#x, clear %#x",
			prg.Filesz, prg.Paddr, bss)
	}
	return nil
}
