// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package goes selects and runs the named command of a multi-call
// program with a context that carries its output, usage and command path.
package goes

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"sort"
	"syscall"

	"github.com/platinasystems/flags"
	"github.com/platinasystems/parms"
)

var Prog = filepath.Base(os.Args[0])

var ErrIncomplete = errors.New("incomplete")

type Func = func(context.Context, ...string) error

type Selection map[string]Func

var BuiltIn = Selection{
	"version": func(ctx context.Context, args ...string) error {
		if Preemption(ctx) == "help" {
			Usage(ctx, "\nPrint the program version.")
			return nil
		}
		if bi, ok := debug.ReadBuildInfo(); ok {
			OutputOf(ctx).Println(bi.Main.Version)
		}
		return nil
	},
}

func (m Selection) Keys() []string {
	var keys []string
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Main runs the command named by the program, e.g. a symlink, or the
// first argument then exits non-zero on error.
func (m Selection) Main() {
	StyleLog()
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()
	for k, v := range BuiltIn {
		if _, ok := m[k]; !ok {
			m[k] = v
		}
	}
	ctx = WithOutput(ctx, os.Stdout)
	ctx = WithPath(ctx, Prog)
	args := os.Args[1:]
	parm, args := parms.New(args, "-timeout")
	if s := parm.ByName["-timeout"]; len(s) > 0 {
		var cancel context.CancelFunc
		var err error
		if ctx, cancel, err = WithTimeout(ctx, s); err != nil {
			PlainLog()
			Fatal(err)
		}
		defer cancel()
	}
	ctx, args = Preempt(ctx, args)
	f, found := m[Prog]
	if !found {
		f = m.Select
	}
	if err := f(ctx, args...); err != nil {
		PlainLog()
		Fatal(err)
	}
}

// Select runs the command named by the first argument.
func (m Selection) Select(ctx context.Context, args ...string) error {
	if len(args) == 0 {
		switch Preemption(ctx) {
		case "":
			if f, found := m[""]; found {
				return f(ctx)
			}
			return ErrIncomplete
		case "complete":
			m.complete(ctx)
		case "help":
			Usage(ctx, "COMMAND [OPTION]...\n", m)
		}
		return nil
	}
	if f, found := m[args[0]]; found {
		return f(WithPath(ctx, args[0]), args[1:]...)
	}
	switch Preemption(ctx) {
	case "complete":
		m.complete(ctx, args...)
		return nil
	case "help":
		Usage(ctx, "COMMAND [OPTION]...\n", m)
		return nil
	}
	return ErrorfWith(ctx, "%s: command not found", args[0])
}

func (m Selection) complete(ctx context.Context, args ...string) {
	o := OutputOf(ctx)
	for _, s := range CompleteStrings(m.Keys(), args) {
		o.Println(s)
	}
}

// Options splits the boolean flags and valued parameters from args.
func Options(args []string, bools []string, values ...string) (*flags.Flags,
	*parms.Parms, []string) {
	bs := make([]interface{}, len(bools))
	for i, s := range bools {
		bs[i] = s
	}
	vs := make([]interface{}, len(values))
	for i, s := range values {
		vs[i] = s
	}
	flag, args := flags.New(args, bs...)
	parm, args := parms.New(args, vs...)
	return flag, parm, args
}

func CompleteStrings(l []string, args []string) (c []string) {
	var arg string
	if n := len(args); n > 0 {
		arg = args[n-1]
	}
	for _, s := range l {
		if len(s) > 0 && (len(arg) == 0 || len(s) >= len(arg) &&
			s[:len(arg)] == arg) {
			c = append(c, s)
		}
	}
	return
}

// ErrorfWith prefaces the error with the context path.
func ErrorfWith(ctx context.Context, format string, args ...interface{}) error {
	var path string
	for i, s := range PathOf(ctx) {
		if i > 0 {
			path += " "
		}
		path += s
	}
	return fmt.Errorf(path+": "+format, args...)
}
