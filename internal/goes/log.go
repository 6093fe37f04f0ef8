// Copyright © 2016-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package goes

import (
	"log"
	"os"

	"github.com/mattn/go-isatty"
)

var Fatal = log.Fatal

func PlainLog() {
	log.SetOutput(os.Stderr)
	log.SetFlags(0)
	log.SetPrefix(Prog + ": ")
}

// StyleLog adds source lines to the standard logger when on a terminal.
func StyleLog() {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		PlainLog()
		return
	}
	log.SetOutput(os.Stdout)
	log.SetFlags(log.Lshortfile)
	log.SetPrefix(Prog + ":")
}
