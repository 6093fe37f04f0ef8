// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package pmu probes, reads and sets the rails of an AXP1530 family PMU.
package pmu

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/platinasystems/axpboot/environ/xpowers"
	"github.com/platinasystems/axpboot/internal/board"
	"github.com/platinasystems/axpboot/internal/boot"
	"github.com/platinasystems/axpboot/internal/goes"
	"github.com/platinasystems/axpboot/internal/twi"
	"periph.io/x/conn/v3/physic"
)

var subcommands = []string{
	"dual-phase",
	"dump",
	"get",
	"init",
	"probe",
	"set",
}

type Command struct {
	// Transport, if set, is used instead of opening the bus.
	Transport twi.Transport
	Chip      axp.Chip
}

func (c *Command) Main(ctx context.Context, args ...string) error {
	chip := c.Chip
	if len(chip.Rails) == 0 {
		chip = axp.AXP1530
	}
	switch goes.Preemption(ctx) {
	case "help":
		goes.Usage(ctx, "[-bus N] [-periph NAME] [-addr ADDR] COMMAND\n",
			"\nCommands:\n",
			"  probe\t\t\tprint the PMU variant\n",
			"  init\t\t\tprobe and enable over temperature shutdown\n",
			"  dump\t\t\tprint each rail's voltage\n",
			"  get RAIL\t\tprint RAIL's voltage, 0 if disabled\n",
			"  set RAIL MV [on|off]\tset RAIL to the nearest step below MV\n",
			"  dual-phase\t\tcombine DCDC1 and DCDC2 (AXP323)\n",
			"\nRails: ", strings.Join(chip.Rails.Names(), ", "))
		return nil
	case "complete":
		c.complete(ctx, chip, args)
		return nil
	}
	_, parm, args := goes.Options(args, nil, "-bus", "-periph", "-addr")
	if len(args) == 0 {
		return goes.ErrorfWith(ctx, "missing COMMAND")
	}
	if !known(args[0]) {
		return goes.ErrorfWith(ctx, "%s: unknown", args[0])
	}
	if s := parm.ByName["-addr"]; len(s) > 0 {
		addr, err := strconv.ParseUint(s, 0, 7)
		if err != nil {
			return goes.ErrorfWith(ctx, "-addr %s: %v", s, err)
		}
		chip = chip.WithAddr(uint8(addr))
	}
	tr := c.Transport
	if tr == nil {
		var cfg board.I2C
		if s := parm.ByName["-bus"]; len(s) > 0 {
			n, err := strconv.Atoi(s)
			if err != nil {
				return goes.ErrorfWith(ctx, "-bus %s: %v", s, err)
			}
			cfg.Bus = n
		}
		if s := parm.ByName["-periph"]; len(s) > 0 {
			cfg.Backend, cfg.Name = "periph", s
		}
		var closer func() error
		var err error
		if tr, closer, err = boot.OpenTransport(cfg); err != nil {
			return goes.ErrorfWith(ctx, "%v", err)
		}
		defer closer()
	}
	p := axp.New(tr, chip)
	defer p.Close()
	if err := c.run(ctx, p, args); err != nil {
		return goes.ErrorfWith(ctx, "%s: %v", args[0], err)
	}
	return nil
}

func (c *Command) run(ctx context.Context, p *axp.PMU, args []string) error {
	o := goes.OutputOf(ctx)
	if args[0] == "probe" {
		variant, err := p.Probe()
		if err == nil {
			o.Println(variant)
		}
		return err
	}
	if err := p.Init(); err != nil {
		return err
	}
	switch args[0] {
	case "init":
		o.Println(p.Variant(), p.State())
	case "dump":
		for _, r := range p.Dump() {
			if r.Err != nil {
				o.Print(r.Rail, ": ", r.Err, "\n")
			} else {
				o.Print(r.Rail, ": ", volts(r.MV), "\n")
			}
		}
	case "get":
		if len(args) != 2 {
			return goes.ErrIncomplete
		}
		mv, err := p.Voltage(args[1])
		if err != nil {
			return err
		}
		o.Print(args[1], ": ", volts(mv), "\n")
	case "set":
		return set(ctx, p, args[1:])
	case "dual-phase":
		return p.SetDualPhase()
	}
	return nil
}

func known(s string) bool {
	for _, k := range subcommands {
		if s == k {
			return true
		}
	}
	return false
}

func set(ctx context.Context, p *axp.PMU, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return goes.ErrIncomplete
	}
	mv, err := strconv.Atoi(args[1])
	if err != nil {
		return err
	}
	onoff := -1
	if len(args) == 3 {
		switch args[2] {
		case "on":
			onoff = 1
		case "off":
			onoff = 0
		default:
			return fmt.Errorf("%s: neither on nor off", args[2])
		}
	}
	if err = p.SetVoltage(args[0], mv, onoff); err != nil {
		return err
	}
	if r, found := p.Chip().Rails.Lookup(args[0]); found && mv > 0 &&
		r.Adjustable() {
		q, err := axp.Quantize(r, mv)
		if err != nil {
			return err
		}
		goes.OutputOf(ctx).Print(r.Name, ": ", volts(q), "\n")
	}
	return nil
}

// volts formats millivolts with the SI unit.
func volts(mv int) string {
	return (physic.ElectricPotential(mv) * physic.MilliVolt).String()
}

func (c *Command) complete(ctx context.Context, chip axp.Chip, args []string) {
	var l []string
	switch {
	case len(args) <= 1:
		l = subcommands
	case len(args) == 2 && (args[0] == "get" || args[0] == "set"):
		l = chip.Rails.Names()
	case len(args) == 4 && args[0] == "set":
		l = []string{"off", "on"}
	}
	o := goes.OutputOf(ctx)
	for _, s := range goes.CompleteStrings(l, args) {
		o.Println(s)
	}
}
