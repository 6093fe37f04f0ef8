// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package core holds a coprocessor in reset while its image is loaded
// then starts it at the image entry.
package core

import (
	"os"

	"github.com/platinasystems/axpboot/internal/mem"
	"github.com/platinasystems/log"
)

type Starter interface {
	// Reset gates the core's clock and asserts its reset.
	Reset() error
	// Release programs the reset vector, ungates the clock then
	// deasserts reset.
	Release(entry uint64) error
}

// Field is the masked bits of a 32-bit register; set bits enable.
type Field struct {
	Addr mem.Addr `json:"addr"`
	Mask uint32   `json:"mask"`
}

// Regs locate the core's controls. VectorHi is optional for cores with a
// 32-bit reset vector.
type Regs struct {
	Clock    Field    `json:"clock"`
	Reset    Field    `json:"reset"`
	VectorLo mem.Addr `json:"vector_lo"`
	VectorHi mem.Addr `json:"vector_hi,omitempty"`
}

// MMIO drives the core through its memory mapped control registers.
type MMIO struct {
	Mem  mem.Memory
	Regs Regs
}

func (c *MMIO) Reset() error {
	reset, clock := c.Regs.Reset, c.Regs.Clock
	if err := mem.Update32(c.Mem, uint64(reset.Addr), reset.Mask, 0); err != nil {
		return err
	}
	if err := mem.Update32(c.Mem, uint64(clock.Addr), clock.Mask, 0); err != nil {
		return err
	}
	log.Print("debug", "CORE: held in reset")
	return nil
}

func (c *MMIO) Release(entry uint64) error {
	lo, hi := uint64(c.Regs.VectorLo), uint64(c.Regs.VectorHi)
	if err := mem.Write32(c.Mem, lo, uint32(entry)); err != nil {
		return err
	}
	if hi != 0 {
		if err := mem.Write32(c.Mem, hi, uint32(entry>>32)); err != nil {
			return err
		}
	}
	clock := c.Regs.Clock
	if err := mem.Update32(c.Mem, uint64(clock.Addr), clock.Mask, clock.Mask); err != nil {
		return err
	}
	reset := c.Regs.Reset
	if err := mem.Update32(c.Mem, uint64(reset.Addr), reset.Mask, reset.Mask); err != nil {
		return err
	}
	log.Printf("info", "CORE: running at %#08x", entry)
	return nil
}

// Dry only logs, for boards or runs without register access.
type Dry struct {
	Entry    uint64
	Released bool
}

func (d *Dry) Reset() error {
	log.Print("info", "CORE: dry run, skip reset")
	return nil
}

func (d *Dry) Release(entry uint64) error {
	d.Entry, d.Released = entry, true
	log.Printf("info", "CORE: dry run, would start at %#08x", entry)
	return nil
}

// Map opens the pages of /dev/mem that hold the registers.
func Map(regs Regs) (*MMIO, error) {
	addrs := []mem.Addr{regs.Clock.Addr, regs.Reset.Addr, regs.VectorLo}
	if regs.VectorHi != 0 {
		addrs = append(addrs, regs.VectorHi)
	}
	lo, hi := addrs[0], addrs[0]+4
	for _, a := range addrs[1:] {
		if a < lo {
			lo = a
		}
		if a+4 > hi {
			hi = a + 4
		}
	}
	pg := mem.Addr(os.Getpagesize())
	lo &^= pg - 1
	hi = (hi + pg - 1) &^ (pg - 1)
	m, err := mem.OpenDevMem(uint64(lo), int(hi-lo))
	if err != nil {
		return nil, err
	}
	return &MMIO{Mem: m, Regs: regs}, nil
}

// Close unmaps registers opened by Map.
func (c *MMIO) Close() error {
	if m, ok := c.Mem.(*mem.DevMem); ok {
		return m.Close()
	}
	return nil
}
