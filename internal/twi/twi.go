// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package twi provides byte register access to devices on a two-wire
// (I2C/SMBus) bus.
package twi

import "fmt"

// Transport reads and writes one byte register of a bus device. Ready
// reports whether the underlying bus has been brought up.
type Transport interface {
	Ready() bool
	ReadReg(dev, reg uint8) (byte, error)
	WriteReg(dev, reg, v uint8) error
}

// Error records the failed transfer.
type Error struct {
	Op  string
	Dev uint8
	Reg uint8
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %02x.%02x: %v", e.Op, e.Dev, e.Reg, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
