// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package twi

import (
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Periph is a Transport over a periph.io registered bus, e.g. "I2C0" or
// "/dev/i2c-1".
type Periph struct {
	bus i2c.BusCloser
}

// OpenPeriph initializes the host drivers then opens the named bus; an
// empty name selects the first registered bus.
func OpenPeriph(name string) (*Periph, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, err
	}
	return &Periph{bus: bus}, nil
}

func (p *Periph) Ready() bool { return p != nil && p.bus != nil }

func (p *Periph) ReadReg(dev, reg uint8) (byte, error) {
	var r [1]byte
	if err := p.bus.Tx(uint16(dev), []byte{reg}, r[:]); err != nil {
		return 0, &Error{"read", dev, reg, err}
	}
	return r[0], nil
}

func (p *Periph) WriteReg(dev, reg, v uint8) error {
	if err := p.bus.Tx(uint16(dev), []byte{reg, v}, nil); err != nil {
		return &Error{"write", dev, reg, err}
	}
	return nil
}

func (p *Periph) Close() error {
	if p.bus == nil {
		return nil
	}
	err := p.bus.Close()
	p.bus = nil
	return err
}
