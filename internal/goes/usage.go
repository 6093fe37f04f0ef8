// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package goes

import "context"

// Usage prints,
//
//	usage: PATH ARGS...
//
// where PATH is the context path less any "help", and ARGS are printed
// without separation. A Selection arg lists its command names.
func Usage(ctx context.Context, args ...interface{}) {
	o := OutputOf(ctx)
	o.Print("usage:")
	for _, s := range PathOf(ctx) {
		if s != "help" {
			o.Print(" ", s)
		}
	}
	end := "\n"
	if len(args) > 0 {
		o.Print(" ")
	}
	for _, v := range args {
		if sel, ok := v.(Selection); ok {
			end = ""
			for _, s := range sel.Keys() {
				if len(s) > 0 {
					o.Println(" ", s)
				}
			}
		} else {
			o.Print(v)
		}
	}
	o.Print(end)
}
