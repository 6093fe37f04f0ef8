// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package boot

import (
	"github.com/platinasystems/axpboot/environ/xpowers"
	"github.com/platinasystems/axpboot/internal/board"
	"github.com/platinasystems/axpboot/internal/core"
	"github.com/platinasystems/axpboot/internal/fatfs"
	"github.com/platinasystems/axpboot/internal/mem"
	"github.com/platinasystems/axpboot/internal/mmc"
	"github.com/platinasystems/axpboot/internal/twi"
	"github.com/platinasystems/log"
)

// Closers are released last opened first.
type Closers []func() error

func (l *Closers) Add(f func() error) { *l = append(*l, f) }

func (l Closers) Close() (err error) {
	for i := len(l) - 1; i >= 0; i-- {
		if e := l[i](); e != nil && err == nil {
			err = e
		}
	}
	return
}

// OpenTransport opens the board's I2C bus.
func OpenTransport(c board.I2C) (twi.Transport, func() error, error) {
	if c.Backend == "periph" {
		p, err := twi.OpenPeriph(c.Name)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	}
	s, err := twi.OpenSMBus(c.Bus)
	if err != nil {
		return nil, nil, err
	}
	return s, func() error { return nil }, nil
}

// OpenFS returns the unmounted filesystem of the board's card.
func OpenFS(c board.Storage) (fatfs.FS, error) {
	fs, err := fatfs.New(c.FS, c.Dev)
	if err != nil {
		return nil, err
	}
	switch t := fs.(type) {
	case *fatfs.FAT:
		t.Partition = c.Partition
	case *fatfs.Ext4:
		t.Offset = c.Offset
	}
	return fs, nil
}

// OpenMemory maps the board's memory window or, for dry runs, allocates
// it.
func OpenMemory(c board.Memory, dry bool) (mem.Memory, func() error, error) {
	if dry || c.Kind == "ram" {
		return mem.NewRAM(uint64(c.Base), c.Size), func() error {
			return nil
		}, nil
	}
	m, err := mem.OpenDevMem(uint64(c.Base), c.Size)
	if err != nil {
		return nil, nil, err
	}
	return m, m.Close, nil
}

// Open readies the board's devices for Run. Missing PMU or speed test
// devices are logged and left nil.
func Open(cfg board.Config, dry bool) (Deps, Closers, error) {
	var (
		d  = Deps{Chip: axp.AXP1530}
		cl Closers
	)
	if cfg.PMU.Present {
		tr, closer, err := OpenTransport(cfg.I2C)
		if err != nil {
			log.Print("warn", "PMU: ", err)
		} else {
			d.Transport = tr
			cl.Add(closer)
		}
	}
	if len(cfg.Storage.Raw) > 0 {
		card, err := mmc.Open(cfg.Storage.Raw)
		if err != nil {
			log.Print("warn", "SMHC: ", err)
		} else {
			d.Dev = card
			cl.Add(card.Close)
		}
	}
	fs, err := OpenFS(cfg.Storage)
	if err != nil {
		return d, cl, err
	}
	d.FS = fs
	m, closer, err := OpenMemory(cfg.Memory, dry)
	if err != nil {
		return d, cl, err
	}
	d.Mem = m
	cl.Add(closer)
	if cfg.Core == nil || dry {
		d.Core = new(core.Dry)
		return d, cl, nil
	}
	mmio, err := core.Map(*cfg.Core)
	if err != nil {
		return d, cl, err
	}
	d.Core = mmio
	cl.Add(mmio.Close)
	return d, cl, nil
}
