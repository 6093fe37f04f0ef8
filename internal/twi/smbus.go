// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package twi

import (
	"sync"

	"github.com/platinasystems/i2c"
)

// SMBus is a Transport over a Linux i2c-dev bus number.
type SMBus struct {
	Bus int

	mutex sync.Mutex
	ready bool
}

// OpenSMBus checks that the bus exists before returning it as ready.
func OpenSMBus(n int) (*SMBus, error) {
	var bus i2c.Bus
	if err := bus.Open(n); err != nil {
		return &SMBus{Bus: n}, err
	}
	bus.Close()
	return &SMBus{Bus: n, ready: true}, nil
}

func (s *SMBus) Ready() bool { return s != nil && s.ready }

func (s *SMBus) ReadReg(dev, reg uint8) (byte, error) {
	var data i2c.SMBusData
	if err := s.do(i2c.Read, dev, reg, &data); err != nil {
		return 0, &Error{"read", dev, reg, err}
	}
	return data[0], nil
}

func (s *SMBus) WriteReg(dev, reg, v uint8) error {
	var data i2c.SMBusData
	data[0] = v
	if err := s.do(i2c.Write, dev, reg, &data); err != nil {
		return &Error{"write", dev, reg, err}
	}
	return nil
}

func (s *SMBus) do(rw i2c.RW, dev, reg uint8, data *i2c.SMBusData) (err error) {
	var bus i2c.Bus

	s.mutex.Lock()
	defer s.mutex.Unlock()

	err = bus.Open(s.Bus)
	if err != nil {
		return
	}
	defer bus.Close()

	err = bus.ForceSlaveAddress(int(dev))
	if err != nil {
		return
	}

	err = bus.Do(rw, reg, i2c.ByteData, data)
	return
}
