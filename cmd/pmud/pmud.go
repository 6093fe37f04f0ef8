// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package pmud publishes the PMU rails to redis and sets them from redis
// hset of the "pmu." fields.
package pmud

import (
	"context"
	"fmt"
	"net/rpc"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jpillora/backoff"
	"github.com/platinasystems/atsock"
	"github.com/platinasystems/axpboot/environ/xpowers"
	"github.com/platinasystems/axpboot/internal/board"
	"github.com/platinasystems/axpboot/internal/boot"
	"github.com/platinasystems/axpboot/internal/goes"
	"github.com/platinasystems/axpboot/internal/twi"
	"github.com/platinasystems/log"
	"github.com/platinasystems/redis"
	"github.com/platinasystems/redis/publisher"
	"github.com/platinasystems/redis/rpc/args"
	"github.com/platinasystems/redis/rpc/reply"
)

const (
	Name   = "pmud"
	prefix = "pmu."
)

var pollInterval = 5 * time.Second

type Command struct {
	Info
	// Transport, if set, is used instead of opening the bus.
	Transport twi.Transport
}

type printer interface {
	Print(...interface{}) (int, error)
}

type Info struct {
	mutex   sync.Mutex
	rpc     *atsock.RpcServer
	pub     printer
	pmu     *axp.PMU
	variant string
	last    map[string]int
}

func (c *Command) Main(ctx context.Context, args ...string) error {
	switch goes.Preemption(ctx) {
	case "help":
		goes.Usage(ctx, "[-bus N] [-periph NAME] [-addr ADDR] [-interval D]",
			"\n\nPublish pmu.RAIL.units.mV to redis; "+
				"hset pmu.RAIL.units.mV or pmu.RAIL.enable to change a rail.")
		return nil
	case "complete":
		return nil
	}
	_, parm, args := goes.Options(args, nil, "-bus", "-periph", "-addr",
		"-interval")
	if len(args) > 0 {
		return goes.ErrorfWith(ctx, "%v: unexpected", args)
	}
	interval := pollInterval
	if s := parm.ByName["-interval"]; len(s) > 0 {
		d, err := time.ParseDuration(s)
		if err != nil {
			return goes.ErrorfWith(ctx, "-interval %s: %v", s, err)
		}
		interval = d
	}
	chip := axp.AXP1530
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
	pmu := axp.New(tr, chip)
	defer pmu.Close()
	if err := pmu.Init(); err != nil {
		return goes.ErrorfWith(ctx, "%v", err)
	}
	if err := waitRedis(ctx); err != nil {
		return err
	}
	pub, err := publisher.New()
	if err != nil {
		return err
	}
	defer pub.Close()
	c.Info.init(pmu, pub)
	if c.rpc, err = atsock.NewRpcServer(Name); err != nil {
		return err
	}
	defer c.rpc.Close()
	rpc.Register(&c.Info)
	err = redis.Assign(redis.DefaultHash+":"+prefix, Name, "Info")
	if err != nil {
		return err
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		c.update()
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}

// waitRedis retries until redis is ready or the context is done.
func waitRedis(ctx context.Context) error {
	b := &backoff.Backoff{
		Min:    1 * time.Second,
		Max:    60 * time.Second,
		Factor: 2,
		Jitter: false,
	}
	for {
		err := redis.IsReady()
		if err == nil {
			return nil
		}
		d := b.Duration()
		log.Print("warn", Name, ": ", err, ", retry in ", d)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
		}
	}
}

func (i *Info) init(pmu *axp.PMU, pub printer) {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	i.pmu = pmu
	i.pub = pub
	i.variant = ""
	i.last = make(map[string]int)
}

func (i *Info) update() {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	i.publish()
}

// publish prints the changed rails; i.mutex must be held.
func (i *Info) publish() {
	if v := i.pmu.Variant(); v != i.variant {
		i.pub.Print(prefix, "variant: ", v)
		i.variant = v
	}
	for _, r := range i.pmu.Dump() {
		if r.Err != nil {
			continue
		}
		k := prefix + r.Rail + ".units.mV"
		if v, found := i.last[k]; !found || v != r.MV {
			i.pub.Print(k, ": ", r.MV)
			i.last[k] = r.MV
		}
	}
}

// Hset sets "pmu.RAIL.units.mV" to millivolts, enabling the rail, or
// "pmu.RAIL.enable" to true or false.
func (i *Info) Hset(args args.Hset, reply *reply.Hset) error {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	v := strings.TrimRight(string(args.Value), "\n")
	field := strings.TrimPrefix(args.Field, prefix)
	var err error
	switch {
	case strings.HasSuffix(field, ".units.mV"):
		var mv int
		if mv, err = strconv.Atoi(v); err != nil || mv <= 0 {
			return fmt.Errorf("%s: %q: invalid millivolts", args.Field, v)
		}
		err = i.pmu.SetVoltage(strings.TrimSuffix(field, ".units.mV"),
			mv, 1)
	case strings.HasSuffix(field, ".enable"):
		var on bool
		if on, err = strconv.ParseBool(v); err != nil {
			return fmt.Errorf("%s: %q: invalid", args.Field, v)
		}
		onoff := 0
		if on {
			onoff = 1
		}
		err = i.pmu.SetVoltage(strings.TrimSuffix(field, ".enable"), 0,
			onoff)
	default:
		return fmt.Errorf("%s: can't set", args.Field)
	}
	if err != nil {
		return err
	}
	i.publish()
	*reply = 1
	return nil
}
