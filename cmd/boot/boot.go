// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package boot sets the board's PMU rails then loads and starts its
// coprocessor image.
package boot

import (
	"context"
	"fmt"

	"github.com/platinasystems/axpboot/internal/board"
	"github.com/platinasystems/axpboot/internal/boot"
	"github.com/platinasystems/axpboot/internal/goes"
	"github.com/platinasystems/log"
)

func Main(ctx context.Context, args ...string) error {
	switch goes.Preemption(ctx) {
	case "help":
		goes.Usage(ctx, "[OPTION]...\n",
			"\nOptions:\n",
			"  -config FILE\tJSON board file\n",
			"  -board NAME\tcompiled in board\n",
			"  -dtb FILE\tdevice tree blob with PMU rails\n",
			"  -dry\t\tload to RAM and don't start the core\n",
			"  -halt\t\twait for a signal after boot\n",
			"\nBoards:")
		for _, s := range board.Names() {
			goes.OutputOf(ctx).Println(" ", s)
		}
		return nil
	case "complete":
		return nil
	}
	flag, parm, args := goes.Options(args, []string{"-dry", "-halt"},
		"-config", "-board", "-dtb")
	if len(args) > 0 {
		return goes.ErrorfWith(ctx, "%v: unexpected", args)
	}
	cfg, err := config(parm.ByName)
	if err != nil {
		return goes.ErrorfWith(ctx, "%v", err)
	}
	d, cl, err := boot.Open(cfg, flag.ByName["-dry"])
	defer cl.Close()
	if err != nil {
		return goes.ErrorfWith(ctx, "%v", err)
	}
	rep, err := boot.Run(ctx, cfg, d)
	if rep != nil {
		report(ctx, rep)
	}
	if err != nil {
		return goes.ErrorfWith(ctx, "%v", err)
	}
	if flag.ByName["-halt"] {
		log.Print("info", "BOOT: halted")
		<-ctx.Done()
	}
	return nil
}

func config(parm map[string]string) (board.Config, error) {
	var (
		cfg board.Config
		err error
	)
	if fn := parm["-config"]; len(fn) > 0 {
		if cfg, err = board.Load(fn); err != nil {
			return cfg, err
		}
	} else {
		name := parm["-board"]
		if len(name) == 0 {
			name = board.DefaultName
		}
		if _, found := board.Boards[name]; !found {
			return cfg, fmt.Errorf("%s: unknown board", name)
		}
		cfg = board.Lookup(name)
	}
	if fn := parm["-dtb"]; len(fn) > 0 {
		if err = cfg.ApplyDTB(fn); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}

func report(ctx context.Context, rep *boot.Report) {
	o := goes.OutputOf(ctx)
	o.Println("id:", rep.ID)
	if len(rep.Variant) > 0 {
		o.Println("pmu:", rep.Variant)
	}
	for _, r := range rep.Rails {
		if r.Err != nil {
			o.Print("  ", r.Rail, ": ", r.Err, "\n")
		} else {
			o.Printf("  %s: %dmV\n", r.Rail, r.MV)
		}
	}
	if rep.Load.Bytes > 0 {
		o.Printf("load: %d bytes in %dms at %.2fMB/S\n", rep.Load.Bytes,
			rep.Load.Elapsed.Milliseconds()+1, rep.Load.MBps())
		o.Printf("blake2b-256: %x\n", rep.Load.Sum)
	}
	if rep.Entry != 0 {
		o.Printf("entry: %#x\n", rep.Entry)
	}
}
