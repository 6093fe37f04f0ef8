// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package load copies an image from the card's filesystem into memory.
package load

import (
	"context"
	"fmt"
	"strconv"

	"github.com/platinasystems/axpboot/internal/board"
	"github.com/platinasystems/axpboot/internal/boot"
	"github.com/platinasystems/axpboot/internal/goes"
	"github.com/platinasystems/axpboot/internal/loader"
	"github.com/platinasystems/axpboot/internal/mem"
	"github.com/platinasystems/axpboot/internal/mmc"
)

func Main(ctx context.Context, args ...string) error {
	switch goes.Preemption(ctx) {
	case "help":
		goes.Usage(ctx, "[OPTION]... FILE\n",
			"\nOptions:\n",
			"  -fs fat|ext4|dir\tfilesystem kind (fat)\n",
			"  -dev PATH\t\tcard device, image or directory\n",
			"  -part N\t\tFAT partition\n",
			"  -offset N\t\text4 byte offset\n",
			"  -dest ADDR\t\tload address\n",
			"  -mem devmem|ram\tdestination memory (devmem)\n",
			"  -size N\t\tmemory window size\n",
			"  -raw PATH\t\ttime a raw read of this device first")
		return nil
	case "complete":
		return nil
	}
	def := board.Default()
	_, parm, args := goes.Options(args, nil, "-fs", "-dev", "-part",
		"-offset", "-dest", "-mem", "-size", "-raw")
	if n := len(args); n == 0 {
		return goes.ErrorfWith(ctx, "missing FILE")
	} else if n > 1 {
		return goes.ErrorfWith(ctx, "%v: unexpected", args[1:])
	}
	st := def.Storage
	st.Raw = ""
	m := def.Memory
	dest := def.Image.Dest
	for _, x := range []struct {
		name string
		s    *string
	}{
		{"-fs", &st.FS},
		{"-dev", &st.Dev},
		{"-raw", &st.Raw},
		{"-mem", &m.Kind},
	} {
		if s := parm.ByName[x.name]; len(s) > 0 {
			*x.s = s
		}
	}
	for _, x := range []struct {
		name string
		p    *int
	}{
		{"-part", &st.Partition},
		{"-size", &m.Size},
	} {
		if s := parm.ByName[x.name]; len(s) > 0 {
			n, err := strconv.ParseInt(s, 0, 0)
			if err != nil {
				return goes.ErrorfWith(ctx, "%s %s: %v", x.name, s, err)
			}
			*x.p = int(n)
		}
	}
	if s := parm.ByName["-offset"]; len(s) > 0 {
		n, err := strconv.ParseInt(s, 0, 64)
		if err != nil {
			return goes.ErrorfWith(ctx, "-offset %s: %v", s, err)
		}
		st.Offset = n
	}
	if s := parm.ByName["-dest"]; len(s) > 0 {
		a, err := mem.ParseAddr(s)
		if err != nil {
			return goes.ErrorfWith(ctx, "-dest %s: %v", s, err)
		}
		dest = a
	}
	if m.Kind == "ram" {
		m.Base = dest
	}
	res, err := load(st, m, loader.Image{Dest: uint64(dest),
		Filename: args[0]})
	if err != nil {
		return goes.ErrorfWith(ctx, "%v", err)
	}
	o := goes.OutputOf(ctx)
	o.Printf("%s: %d bytes to %s in %dms at %.2fMB/S\n", args[0],
		res.Bytes, dest, res.Elapsed.Milliseconds()+1, res.MBps())
	o.Printf("blake2b-256: %x\n", res.Sum)
	return nil
}

func load(st board.Storage, m board.Memory, img loader.Image) (loader.Result,
	error) {
	var cl boot.Closers
	defer cl.Close()
	fs, err := boot.OpenFS(st)
	if err != nil {
		return loader.Result{}, err
	}
	dst, closer, err := boot.OpenMemory(m, false)
	if err != nil {
		return loader.Result{}, err
	}
	cl.Add(closer)
	l := &loader.Loader{FS: fs, Mem: dst}
	if len(st.Raw) > 0 {
		card, err := mmc.Open(st.Raw)
		if err != nil {
			return loader.Result{}, fmt.Errorf("speedtest: %w", err)
		}
		cl.Add(card.Close)
		l.Dev = card
	}
	return l.Load(img)
}
