// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package axp provides access to the X-Powers AXP1530 family of power
// management ICs: chip identification and per rail voltage and enable
// control.
package axp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/platinasystems/axpboot/internal/twi"
	"github.com/platinasystems/log"
)

var (
	ErrNotReady       = errors.New("transport not ready")
	ErrNoDevice       = errors.New("no matching PMU")
	ErrUnknownRail    = errors.New("unknown rail")
	ErrBadCode        = errors.New("step code out of range")
	ErrUnsupported    = errors.New("unsupported by variant")
	ErrNotInitialized = errors.New("not initialized")
	ErrClosed         = errors.New("closed")
)

type Variant struct {
	ID   uint8
	Name string
}

type Bit struct {
	Reg uint8
	Bit uint
}

type RegWrite struct {
	Reg, Val uint8
}

// DualPhase combines two DC-DC converters into one interleaved rail on
// the variant with the given ID.
type DualPhase struct {
	ID     uint8
	Writes []RegWrite
}

// Chip is the immutable description of a PMU model given to New.
type Chip struct {
	Name       string
	Addr       uint8
	VersionReg uint8
	IDMask     uint8
	Variants   []Variant
	Shutdown   Bit
	DualPhase  DualPhase
	Rails      Table
}

// WithAddr returns a copy of the chip at another bus address.
func (c Chip) WithAddr(addr uint8) Chip {
	c.Addr = addr
	return c
}

func (c Chip) variant(id uint8) (string, bool) {
	for _, v := range c.Variants {
		if v.ID == id {
			return v.Name, true
		}
	}
	return "", false
}

type State int

const (
	Unready State = iota
	Probed
	Initialized
	Closed
)

func (s State) String() string {
	switch s {
	case Unready:
		return "unready"
	case Probed:
		return "probed"
	case Initialized:
		return "initialized"
	case Closed:
		return "closed"
	}
	return fmt.Sprint("state(", int(s), ")")
}

// Reading is one rail's Dump result; MV is zero for disabled rails.
type Reading struct {
	Rail string
	MV   int
	Err  error
}

type PMU struct {
	tr      twi.Transport
	chip    Chip
	state   State
	variant string
}

func New(tr twi.Transport, chip Chip) *PMU {
	return &PMU{tr: tr, chip: chip}
}

func (p *PMU) Chip() Chip      { return p.chip }
func (p *PMU) State() State    { return p.state }
func (p *PMU) Variant() string { return p.variant }

// Probe identifies the variant from the version register.
func (p *PMU) Probe() (string, error) {
	if p.state == Closed {
		return "", ErrClosed
	}
	if !p.tr.Ready() {
		log.Print("warn", "PMU: I2C not init")
		return "", ErrNotReady
	}
	v, err := p.tr.ReadReg(p.chip.Addr, p.chip.VersionReg)
	if err != nil {
		log.Print("warn", "PMU: probe ", p.chip.Name, " failed: ", err)
		return "", fmt.Errorf("%s: probe: %w", p.chip.Name, err)
	}
	id := v & p.chip.IDMask
	name, found := p.chip.variant(id)
	if !found {
		log.Printf("info", "PMU: no match for id %#02x", id)
		return "", fmt.Errorf("%s: id %#02x: %w", p.chip.Name, id, ErrNoDevice)
	}
	log.Print("info", "PMU: Found ", name, " PMU")
	p.variant = name
	if p.state < Probed {
		p.state = Probed
	}
	return name, nil
}

// Init probes the chip then enables its over temperature shutdown.
func (p *PMU) Init() error {
	if p.state == Closed {
		return ErrClosed
	}
	if !p.tr.Ready() {
		log.Print("warn", "PMU: I2C not init")
		return ErrNotReady
	}
	if _, err := p.Probe(); err != nil {
		return err
	}
	bit := p.chip.Shutdown
	if err := p.update(bit.Reg, 1<<bit.Bit, 1<<bit.Bit); err != nil {
		return err
	}
	p.state = Initialized
	return nil
}

// SetVoltage sets the named rail to mv, unless mv <= 0, then enables
// (onoff > 0) or disables (onoff == 0) it; a negative onoff leaves the
// enable bit alone.
func (p *PMU) SetVoltage(name string, mv, onoff int) error {
	if err := p.ready(); err != nil {
		return err
	}
	r, found := p.chip.Rails.Lookup(name)
	if !found {
		return fmt.Errorf("%s: %w", name, ErrUnknownRail)
	}
	if mv > 0 && r.Adjustable() {
		if err := p.update(r.CfgReg, r.CfgMask, Encode(r, mv)); err != nil {
			return err
		}
		log.Printf("debug", "PMU: %s set %dmv", r.Name, r.Clamp(mv))
	}
	if onoff < 0 {
		return nil
	}
	var v uint8
	if onoff > 0 {
		v = 1 << r.CtrlBit
	}
	return p.update(r.CtrlReg, 1<<r.CtrlBit, v)
}

// Voltage returns the named rail's millivolts or 0 if it's disabled.
func (p *PMU) Voltage(name string) (int, error) {
	if err := p.ready(); err != nil {
		return 0, err
	}
	r, found := p.chip.Rails.Lookup(name)
	if !found {
		return 0, fmt.Errorf("%s: %w", name, ErrUnknownRail)
	}
	ctrl, err := p.read(r.CtrlReg)
	if err != nil {
		return 0, err
	}
	if !r.enabled(ctrl) {
		return 0, nil
	}
	v, err := p.read(r.CfgReg)
	if err != nil {
		return 0, err
	}
	return Decode(r, v)
}

// Dump logs and returns every rail's voltage; failures are logged and
// recorded in the reading.
func (p *PMU) Dump() []Reading {
	readings := make([]Reading, 0, len(p.chip.Rails))
	for _, r := range p.chip.Rails {
		mv, err := p.Voltage(r.Name)
		if err != nil {
			log.Print("warn", "PMU: ", p.chip.Name, " ", r.Name, ": ", err)
		} else {
			log.Printf("debug", "PMU: %s %s = %dmv", p.chip.Name,
				strings.ToUpper(r.Name), mv)
		}
		readings = append(readings, Reading{r.Name, mv, err})
	}
	return readings
}

// SetDualPhase reconfigures DCDC1 and DCDC2 as one phase interleaved
// rail. Only the chip's dual phase variant accepts this.
func (p *PMU) SetDualPhase() error {
	if err := p.ready(); err != nil {
		return err
	}
	v, err := p.read(p.chip.VersionReg)
	if err != nil {
		return err
	}
	id := v & p.chip.IDMask
	if len(p.chip.DualPhase.Writes) == 0 || id != p.chip.DualPhase.ID {
		log.Print("info", "PMU: ", p.variant, " not support dual phase")
		return fmt.Errorf("%s: dual phase: %w", p.variant, ErrUnsupported)
	}
	for _, w := range p.chip.DualPhase.Writes {
		if err = p.write(w.Reg, w.Val); err != nil {
			return err
		}
	}
	log.Print("info", "PMU: ", p.variant, " dual phase enabled")
	return nil
}

// Close retires the handle; the chip keeps its configuration.
func (p *PMU) Close() error {
	p.state = Closed
	return nil
}

func (p *PMU) ready() error {
	switch p.state {
	case Initialized:
		return nil
	case Closed:
		return ErrClosed
	}
	return fmt.Errorf("%s: %w", p.chip.Name, ErrNotInitialized)
}

func (p *PMU) read(reg uint8) (uint8, error) {
	v, err := p.tr.ReadReg(p.chip.Addr, reg)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", p.chip.Name, err)
	}
	return v, nil
}

func (p *PMU) write(reg, v uint8) error {
	if err := p.tr.WriteReg(p.chip.Addr, reg, v); err != nil {
		return fmt.Errorf("%s: %w", p.chip.Name, err)
	}
	return nil
}

// update replaces the masked bits of reg with v.
func (p *PMU) update(reg, mask, v uint8) error {
	cur, err := p.read(reg)
	if err != nil {
		return err
	}
	return p.write(reg, cur&^mask|v&mask)
}
