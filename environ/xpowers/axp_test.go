// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package axp

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/platinasystems/axpboot/internal/twi/twitest"
)

func r(reg, v uint8) twitest.Call {
	return twitest.Call{Op: 'r', Dev: axp1530Addr, Reg: reg, Val: v}
}

func w(reg, v uint8) twitest.Call {
	return twitest.Call{Op: 'w', Dev: axp1530Addr, Reg: reg, Val: v}
}

// newPMU returns an initialized AXP1530 with its transfers forgotten.
func newPMU(t *testing.T, id uint8) (*PMU, *twitest.Fake) {
	t.Helper()
	f := twitest.New(axp1530Addr)
	f.Regs[regVersion] = id
	p := New(f, AXP1530)
	if err := p.Init(); err != nil {
		t.Fatal(err)
	}
	f.Reset()
	return p, f
}

func TestProbe(t *testing.T) {
	t.Run("variants", func(t *testing.T) {
		for id, want := range map[uint8]string{
			0x48: "AXP1530",
			0x4b: "AXP313A",
			0x4c: "AXP313B",
			0x4d: "AXP323",
			0x78: "AXP1530", // masked revision bits
		} {
			f := twitest.New(axp1530Addr)
			f.Regs[regVersion] = id
			p := New(f, AXP1530)
			got, err := p.Probe()
			if err != nil {
				t.Fatal(err)
			}
			if got != want {
				t.Errorf("%#x: %s != %s", id, got, want)
			}
			if s := p.State(); s != Probed {
				t.Error(s)
			}
		}
	})
	t.Run("no-match", func(t *testing.T) {
		f := twitest.New(axp1530Addr)
		f.Regs[regVersion] = 0x11
		p := New(f, AXP1530)
		if _, err := p.Probe(); !errors.Is(err, ErrNoDevice) {
			t.Error(err)
		}
		if s := p.State(); s != Unready {
			t.Error(s)
		}
	})
	t.Run("not-ready", func(t *testing.T) {
		f := twitest.New(axp1530Addr)
		f.Live = false
		p := New(f, AXP1530)
		if _, err := p.Probe(); !errors.Is(err, ErrNotReady) {
			t.Error(err)
		}
		if err := p.Init(); !errors.Is(err, ErrNotReady) {
			t.Error(err)
		}
		if len(f.Calls) != 0 {
			t.Error(f.Calls)
		}
	})
	t.Run("nak", func(t *testing.T) {
		f := twitest.New(0x34)
		f.Regs[regVersion] = idAXP1530
		p := New(f, AXP1530)
		if _, err := p.Probe(); err == nil {
			t.Error("probed the wrong address")
		}
		p = New(f, AXP1530.WithAddr(0x34))
		if _, err := p.Probe(); err != nil {
			t.Error(err)
		}
	})
}

func TestInit(t *testing.T) {
	f := twitest.New(axp1530Addr)
	f.Regs[regVersion] = idAXP1530
	f.Regs[regPowerDownSeq] = 0x20
	p := New(f, AXP1530)
	if err := p.SetVoltage("dcdc1", 900, 1); !errors.Is(err, ErrNotInitialized) {
		t.Error("before init:", err)
	}
	if err := p.Init(); err != nil {
		t.Fatal(err)
	}
	want := []twitest.Call{
		r(regVersion, idAXP1530),
		r(regPowerDownSeq, 0x20),
		w(regPowerDownSeq, 0x22),
	}
	if diff := cmp.Diff(want, f.Calls); diff != "" {
		t.Error(diff)
	}
	if s := p.State(); s != Initialized {
		t.Error(s)
	}
	if v := p.Variant(); v != "AXP1530" {
		t.Error(v)
	}
}

func TestSetVoltage(t *testing.T) {
	t.Run("unknown", func(t *testing.T) {
		p, f := newPMU(t, idAXP1530)
		if err := p.SetVoltage("bldo9", 900, 1); !errors.Is(err, ErrUnknownRail) {
			t.Error(err)
		}
		if len(f.Calls) != 0 {
			t.Error(f.Calls)
		}
	})
	t.Run("set-on", func(t *testing.T) {
		p, f := newPMU(t, idAXP1530)
		f.Regs[regDC1Out] = 0x80
		f.Regs[regOnOff] = 0x1c
		if err := p.SetVoltage("dcdc1", 1600, 1); err != nil {
			t.Fatal(err)
		}
		want := []twitest.Call{
			r(regDC1Out, 0x80),
			w(regDC1Out, 0x80|88),
			r(regOnOff, 0x1c),
			w(regOnOff, 0x1d),
		}
		if diff := cmp.Diff(want, f.Calls); diff != "" {
			t.Error(diff)
		}
	})
	t.Run("prefix", func(t *testing.T) {
		p, f := newPMU(t, idAXP1530)
		if err := p.SetVoltage("dcdc3-ddr", 1100, -1); err != nil {
			t.Fatal(err)
		}
		want := []twitest.Call{
			r(regDC3Out, 0),
			w(regDC3Out, 60),
		}
		if diff := cmp.Diff(want, f.Calls); diff != "" {
			t.Error(diff)
		}
	})
	t.Run("off-only", func(t *testing.T) {
		p, f := newPMU(t, idAXP1530)
		f.Regs[regOnOff] = 0x1f
		if err := p.SetVoltage("aldo1", 0, 0); err != nil {
			t.Fatal(err)
		}
		want := []twitest.Call{
			r(regOnOff, 0x1f),
			w(regOnOff, 0x17),
		}
		if diff := cmp.Diff(want, f.Calls); diff != "" {
			t.Error(diff)
		}
	})
	t.Run("nothing", func(t *testing.T) {
		p, f := newPMU(t, idAXP1530)
		if err := p.SetVoltage("aldo1", -5, -1); err != nil {
			t.Fatal(err)
		}
		if len(f.Calls) != 0 {
			t.Error(f.Calls)
		}
	})
	t.Run("switch-only", func(t *testing.T) {
		chip := AXP1530
		chip.Rails = append(Table{{
			Name:    "sw",
			CfgReg:  0x20,
			CfgMask: 0xff,
			CtrlReg: regOnOff,
			CtrlBit: 7,
		}}, AXP1530.Rails...)
		f := twitest.New(axp1530Addr)
		f.Regs[regVersion] = idAXP1530
		p := New(f, chip)
		if err := p.Init(); err != nil {
			t.Fatal(err)
		}
		f.Reset()
		if err := p.SetVoltage("sw", 3300, 1); err != nil {
			t.Fatal(err)
		}
		want := []twitest.Call{
			r(regOnOff, 0),
			w(regOnOff, 0x80),
		}
		if diff := cmp.Diff(want, f.Calls); diff != "" {
			t.Error(diff)
		}
	})
	t.Run("write-fails", func(t *testing.T) {
		p, f := newPMU(t, idAXP1530)
		f.FailWrite[regDC2Out] = true
		err := p.SetVoltage("dcdc2", 1000, 1)
		if !errors.Is(err, twitest.ErrInjected) {
			t.Error(err)
		}
		for _, c := range f.Calls {
			if c.Reg == regOnOff {
				t.Error("enabled after failed set:", c)
			}
		}
	})
}

func TestVoltage(t *testing.T) {
	p, f := newPMU(t, idAXP1530)
	f.Regs[regDC2Out] = 71
	if mv, err := p.Voltage("dcdc2"); err != nil || mv != 0 {
		t.Error("disabled:", mv, err)
	}
	f.Regs[regOnOff] = 1 << 1
	if mv, err := p.Voltage("dcdc2"); err != nil || mv != 1220 {
		t.Error("enabled:", mv, err)
	}
	f.Regs[regDC2Out] = 100
	if _, err := p.Voltage("dcdc2"); !errors.Is(err, ErrBadCode) {
		t.Error("bad code:", err)
	}
	if _, err := p.Voltage("nope"); !errors.Is(err, ErrUnknownRail) {
		t.Error(err)
	}
}

func TestDump(t *testing.T) {
	p, f := newPMU(t, idAXP1530)
	if err := p.SetVoltage("dcdc1", 900, 1); err != nil {
		t.Fatal(err)
	}
	if err := p.SetVoltage("aldo1", 1800, 1); err != nil {
		t.Fatal(err)
	}
	f.FailRead[regDLDO1Out] = true
	f.Regs[regOnOff] |= 1 << 4
	got := p.Dump()
	want := []Reading{
		{"dcdc1", 900, nil},
		{"dcdc2", 0, nil},
		{"dcdc3", 0, nil},
		{"aldo1", 1800, nil},
		{"dldo1", 0, nil},
	}
	if len(got) != len(want) {
		t.Fatal(got)
	}
	for i := range want {
		if got[i].Rail != want[i].Rail || got[i].MV != want[i].MV {
			t.Errorf("%d: %v != %v", i, got[i], want[i])
		}
		if i == 4 {
			if !errors.Is(got[i].Err, twitest.ErrInjected) {
				t.Error("dldo1:", got[i].Err)
			}
		} else if got[i].Err != nil {
			t.Error(got[i].Rail, got[i].Err)
		}
	}
}

func TestSetDualPhase(t *testing.T) {
	t.Run("axp323", func(t *testing.T) {
		p, f := newPMU(t, idAXP323)
		if err := p.SetDualPhase(); err != nil {
			t.Fatal(err)
		}
		want := []twitest.Call{
			w(regOutputMonitor, 0x1e),
			w(regDCDCModeCtrl2, 0x02),
			w(regPowerDownSeq, 0x22),
		}
		if diff := cmp.Diff(want, f.Writes()); diff != "" {
			t.Error(diff)
		}
	})
	t.Run("axp313a", func(t *testing.T) {
		p, f := newPMU(t, idAXP313A)
		if err := p.SetDualPhase(); !errors.Is(err, ErrUnsupported) {
			t.Error(err)
		}
		if l := f.Writes(); len(l) != 0 {
			t.Error(l)
		}
	})
}

func TestClose(t *testing.T) {
	p, f := newPMU(t, idAXP1530)
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if err := p.SetVoltage("dcdc1", 900, 1); !errors.Is(err, ErrClosed) {
		t.Error(err)
	}
	if _, err := p.Probe(); !errors.Is(err, ErrClosed) {
		t.Error(err)
	}
	if err := p.Init(); !errors.Is(err, ErrClosed) {
		t.Error(err)
	}
	if len(f.Calls) != 0 {
		t.Error(f.Calls)
	}
}
