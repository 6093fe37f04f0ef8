// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// This is the coprocessor boot machine of Allwinner boards with an
// AXP1530 family PMU.
package main

import (
	"github.com/platinasystems/axpboot/cmd/boot"
	"github.com/platinasystems/axpboot/cmd/load"
	"github.com/platinasystems/axpboot/cmd/pmu"
	"github.com/platinasystems/axpboot/cmd/pmud"
	"github.com/platinasystems/axpboot/internal/goes"
)

func main() {
	goes.Selection{
		"boot": boot.Main,
		"load": load.Main,
		"pmu":  new(pmu.Command).Main,
		"pmud": new(pmud.Command).Main,
	}.Main()
}
