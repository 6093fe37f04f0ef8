// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package boot brings up the PMU then loads and starts the coprocessor.
package boot

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/platinasystems/axpboot/environ/xpowers"
	"github.com/platinasystems/axpboot/internal/board"
	"github.com/platinasystems/axpboot/internal/core"
	"github.com/platinasystems/axpboot/internal/elfboot"
	"github.com/platinasystems/axpboot/internal/fatfs"
	"github.com/platinasystems/axpboot/internal/loader"
	"github.com/platinasystems/axpboot/internal/mem"
	"github.com/platinasystems/axpboot/internal/mmc"
	"github.com/platinasystems/axpboot/internal/twi"
	"github.com/platinasystems/log"
	uuid "github.com/satori/go.uuid"
)

// Settle is the delay between loading the image and releasing the core.
const Settle = 100 * time.Millisecond

var ErrSum = errors.New("image measurement mismatch")

// Deps are the opened devices. Transport may be nil for boards without a
// PMU, Dev nil to skip the card speed test.
type Deps struct {
	Transport twi.Transport
	Chip      axp.Chip
	Dev       mmc.Device
	FS        fatfs.FS
	Mem       mem.Memory
	Core      core.Starter
	Settle    time.Duration
}

// Report is what a boot did.
type Report struct {
	ID      uuid.UUID
	Variant string
	Rails   []axp.Reading
	Load    loader.Result
	Entry   uint64
}

// Run performs one boot. PMU failures are logged and skipped; any later
// failure stops the boot before the core is released.
func Run(ctx context.Context, cfg board.Config, d Deps) (*Report, error) {
	rep := &Report{ID: uuid.NewV4()}
	log.Print("info", "BOOT: ", cfg.Name, " ", rep.ID)
	if cfg.PMU.Present {
		pmu(cfg.PMU, d, rep)
	}
	if err := ctx.Err(); err != nil {
		return rep, err
	}

	img := loader.Image{
		Dest:     uint64(cfg.Image.Dest),
		Filename: cfg.Image.File,
	}
	l := loader.Loader{Dev: d.Dev, FS: d.FS, Mem: d.Mem}
	res, err := l.Load(img)
	if err != nil {
		log.Print("err", "SMHC: loading failed")
		return rep, fmt.Errorf("load: %w", err)
	}
	rep.Load = res
	log.Printf("debug", "BOOT: %s blake2b-256 %x", img.Filename, res.Sum)
	if len(cfg.Image.Sum) > 0 {
		want, err := hex.DecodeString(cfg.Image.Sum)
		if err != nil {
			return rep, fmt.Errorf("image sum: %w", err)
		}
		if !bytes.Equal(want, res.Sum) {
			return rep, fmt.Errorf("%s: %w", img.Filename, ErrSum)
		}
	}

	if err = d.Core.Reset(); err != nil {
		return rep, fmt.Errorf("core reset: %w", err)
	}
	src := mem.Section(d.Mem, img.Dest, res.Bytes)
	if rep.Entry, err = elfboot.Entry(src); err != nil {
		return rep, err
	}
	log.Printf("info", "RISC-V ELF run addr: %#08x", rep.Entry)
	if err = elfboot.Load(d.Mem, src); err != nil {
		log.Print("err", "RISC-V ELF load FAIL")
		return rep, err
	}

	settle := d.Settle
	if settle == 0 {
		settle = Settle
	}
	t := time.NewTimer(settle)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return rep, ctx.Err()
	case <-t.C:
	}
	if err = d.Core.Release(rep.Entry); err != nil {
		return rep, fmt.Errorf("core release: %w", err)
	}
	log.Print("info", "BOOT: ", rep.ID, " done")
	return rep, nil
}

func pmu(cfg board.PMU, d Deps, rep *Report) {
	if d.Transport == nil {
		log.Print("warn", "PMU: no transport, skipped")
		return
	}
	chip := d.Chip
	if cfg.Addr != 0 {
		chip = chip.WithAddr(cfg.Addr)
	}
	p := axp.New(d.Transport, chip)
	defer p.Close()
	if err := p.Init(); err != nil {
		log.Print("warn", "PMU: init: ", err, ", skipped")
		return
	}
	rep.Variant = p.Variant()
	if cfg.DualPhase {
		if err := p.SetDualPhase(); err != nil {
			log.Print("warn", "PMU: ", err)
		}
	}
	for _, r := range cfg.Rails {
		if err := p.SetVoltage(r.Name, r.MV, r.OnOff()); err != nil {
			log.Print("warn", "PMU: ", r.Name, ": ", err)
		}
	}
	rep.Rails = p.Dump()
}
