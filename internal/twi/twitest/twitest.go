// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package twitest provides an in-memory register file Transport that
// records every transfer.
package twitest

import (
	"errors"
	"fmt"
)

var ErrInjected = errors.New("injected failure")

// Call is one recorded transfer; Op is 'r' or 'w'.
type Call struct {
	Op  byte
	Dev uint8
	Reg uint8
	Val uint8
}

func (c Call) String() string {
	return fmt.Sprintf("%c %02x.%02x=%02x", c.Op, c.Dev, c.Reg, c.Val)
}

// Fake answers any device address from a single register file unless Dev
// is non-zero, in which case other addresses fail.
type Fake struct {
	Live bool
	Dev  uint8
	Regs [256]byte

	// FailRead and FailWrite inject errors by register.
	FailRead  map[uint8]bool
	FailWrite map[uint8]bool

	Calls []Call
}

func New(dev uint8) *Fake {
	return &Fake{
		Live:      true,
		Dev:       dev,
		FailRead:  make(map[uint8]bool),
		FailWrite: make(map[uint8]bool),
	}
}

func (f *Fake) Ready() bool { return f.Live }

func (f *Fake) ReadReg(dev, reg uint8) (byte, error) {
	f.Calls = append(f.Calls, Call{'r', dev, reg, f.Regs[reg]})
	if err := f.check(dev, reg, f.FailRead); err != nil {
		return 0, err
	}
	return f.Regs[reg], nil
}

func (f *Fake) WriteReg(dev, reg, v uint8) error {
	f.Calls = append(f.Calls, Call{'w', dev, reg, v})
	if err := f.check(dev, reg, f.FailWrite); err != nil {
		return err
	}
	f.Regs[reg] = v
	return nil
}

func (f *Fake) check(dev, reg uint8, fail map[uint8]bool) error {
	if f.Dev != 0 && dev != f.Dev {
		return fmt.Errorf("%02x: no ack", dev)
	}
	if fail[reg] {
		return fmt.Errorf("%02x.%02x: %w", dev, reg, ErrInjected)
	}
	return nil
}

// Writes returns only the recorded writes.
func (f *Fake) Writes() []Call {
	var l []Call
	for _, c := range f.Calls {
		if c.Op == 'w' {
			l = append(l, c)
		}
	}
	return l
}

// Reset forgets the recorded calls.
func (f *Fake) Reset() { f.Calls = f.Calls[:0] }
