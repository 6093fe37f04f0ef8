// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package goes

import "context"

var (
	pathMark int
	pathKey  = &pathMark
)

type path struct {
	context.Context
	name string
}

// WithPath appends a command name to the context.
func WithPath(ctx context.Context, name string) context.Context {
	return path{ctx, name}
}

func (p path) Value(k interface{}) interface{} {
	if k == pathKey {
		return p
	}
	return p.Context.Value(k)
}

// PathOf returns the command names in the order appended.
func PathOf(ctx context.Context) []string {
	var l []string
	for v := ctx.Value(pathKey); v != nil; v = ctx.Value(pathKey) {
		p := v.(path)
		l = append([]string{p.name}, l...)
		ctx = p.Context
	}
	return l
}

var preemptive = map[string]bool{
	"complete": true,
	"help":     true,
}

// Preemption returns "complete" or "help" if the second element of the
// context path is either; otherwise, an empty string.
func Preemption(ctx context.Context) string {
	p := PathOf(ctx)
	if len(p) > 1 && preemptive[p[1]] {
		return p[1]
	}
	return ""
}

// Preempt moves leading "complete" and "help" arguments to the context.
func Preempt(ctx context.Context, args []string) (context.Context, []string) {
	for len(args) > 0 && preemptive[args[0]] {
		ctx = WithPath(ctx, args[0])
		args = args[1:]
	}
	return ctx, args
}
