// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package goes

import (
	"context"
	"fmt"
	"io"
	"time"
)

var (
	outputMark int
	outputKey  = &outputMark
)

// Output writes to the context's writer until the context is done.
type Output struct {
	context.Context
	w io.Writer
}

func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return Output{ctx, w}
}

func OutputOf(ctx context.Context) Output {
	if v := ctx.Value(outputKey); v != nil {
		return v.(Output)
	}
	return Output{ctx, nil}
}

func (o Output) Print(args ...interface{}) {
	if o.Err() == nil && o.w != nil {
		fmt.Fprint(o.w, args...)
	}
}

func (o Output) Printf(format string, args ...interface{}) {
	if o.Err() == nil && o.w != nil {
		fmt.Fprintf(o.w, format, args...)
	}
}

func (o Output) Println(args ...interface{}) {
	if o.Err() == nil && o.w != nil {
		fmt.Fprintln(o.w, args...)
	}
}

func (o Output) Write(b []byte) (int, error) {
	if err := o.Err(); err != nil {
		return 0, err
	}
	if o.w == nil {
		return len(b), nil
	}
	return o.w.Write(b)
}

func (o Output) Value(k interface{}) interface{} {
	if k == outputKey {
		return o
	}
	return o.Context.Value(k)
}

// WithTimeout limits the context by the given duration string.
func WithTimeout(ctx context.Context, s string) (context.Context,
	context.CancelFunc, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return ctx, func() {}, err
	}
	ctx, cancel := context.WithTimeout(ctx, d)
	return ctx, cancel, nil
}
