// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package pmud

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/platinasystems/axpboot/environ/xpowers"
	"github.com/platinasystems/axpboot/internal/goes"
	"github.com/platinasystems/axpboot/internal/twi/twitest"
	"github.com/platinasystems/redis/rpc/args"
	"github.com/platinasystems/redis/rpc/reply"
)

type pub []string

func (p *pub) Print(a ...interface{}) (int, error) {
	s := fmt.Sprint(a...)
	*p = append(*p, s)
	return len(s), nil
}

func (p *pub) flush() []string {
	l := *p
	*p = nil
	return l
}

func setup(t *testing.T) (*Info, *pub, *twitest.Fake) {
	t.Helper()
	f := twitest.New(0x36)
	f.Regs[0x03] = 0x4b
	f.Regs[0x10] = 0x01
	f.Regs[0x13] = 70
	pmu := axp.New(f, axp.AXP1530)
	if err := pmu.Init(); err != nil {
		t.Fatal(err)
	}
	p := new(pub)
	i := new(Info)
	i.init(pmu, p)
	return i, p, f
}

func TestUpdate(t *testing.T) {
	i, p, f := setup(t)
	i.update()
	want := []string{
		"pmu.variant: AXP313A",
		"pmu.dcdc1.units.mV: 1200",
		"pmu.dcdc2.units.mV: 0",
		"pmu.dcdc3.units.mV: 0",
		"pmu.aldo1.units.mV: 0",
		"pmu.dldo1.units.mV: 0",
	}
	if diff := cmp.Diff(want, p.flush()); diff != "" {
		t.Error(diff)
	}
	i.update()
	if l := p.flush(); len(l) != 0 {
		t.Error("republished", l)
	}
	f.Regs[0x13] = 71
	i.update()
	if diff := cmp.Diff([]string{"pmu.dcdc1.units.mV: 1220"},
		p.flush()); diff != "" {
		t.Error(diff)
	}
	f.FailRead[0x16] = true
	f.Regs[0x10] = 0x09
	i.update()
	if l := p.flush(); len(l) != 0 {
		t.Error("published failed read", l)
	}
}

func TestHset(t *testing.T) {
	i, p, f := setup(t)
	i.update()
	p.flush()
	var r reply.Hset
	err := i.Hset(args.Hset{Field: "pmu.dcdc2.units.mV",
		Value: []byte("900\n")}, &r)
	if err != nil {
		t.Fatal(err)
	}
	if r != 1 {
		t.Error("reply", r)
	}
	if v := f.Regs[0x14] & 0x7f; v != 40 {
		t.Errorf("dcdc2 code %d", v)
	}
	if diff := cmp.Diff([]string{"pmu.dcdc2.units.mV: 900"},
		p.flush()); diff != "" {
		t.Error(diff)
	}
	err = i.Hset(args.Hset{Field: "pmu.dcdc1.enable",
		Value: []byte("false")}, &r)
	if err != nil {
		t.Fatal(err)
	}
	if f.Regs[0x10]&1 != 0 {
		t.Error("dcdc1 still enabled")
	}
	if diff := cmp.Diff([]string{"pmu.dcdc1.units.mV: 0"},
		p.flush()); diff != "" {
		t.Error(diff)
	}
	for _, x := range []args.Hset{
		{Field: "pmu.variant", Value: []byte("AXP323")},
		{Field: "pmu.dcdc1.units.mV", Value: []byte("lots")},
		{Field: "pmu.dcdc1.units.mV", Value: []byte("-5")},
		{Field: "pmu.dcdc1.enable", Value: []byte("maybe")},
		{Field: "pmu.vcore.units.mV", Value: []byte("900")},
	} {
		r = 0
		if err = i.Hset(x, &r); err == nil {
			t.Errorf("%s: %s: accepted", x.Field, x.Value)
		}
		if r != 0 {
			t.Error("reply", r)
		}
	}
}

func TestHelp(t *testing.T) {
	w := new(strings.Builder)
	ctx := goes.WithOutput(context.Background(), w)
	ctx = goes.WithPath(ctx, "axpboot")
	ctx = goes.WithPath(ctx, "help")
	ctx = goes.WithPath(ctx, Name)
	if err := new(Command).Main(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(w.String(), "usage: axpboot pmud [-bus N]") {
		t.Errorf("%q", w.String())
	}
	for _, s := range []string{"Publish pmu.RAIL.units.mV ",
		"hset pmu.RAIL.enable"} {
		if !strings.Contains(w.String(), s) {
			t.Errorf("missing %q", s)
		}
	}
}
