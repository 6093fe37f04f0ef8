// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package axp

import "strings"

// Rail describes one regulated output: its bounds, the configuration
// register field holding the step code, and the enable bit.
type Rail struct {
	Name         string
	MinMV, MaxMV int
	CfgReg       uint8
	CfgMask      uint8
	CtrlReg      uint8
	CtrlBit      uint
	Shift        uint
	Segments     Segments
}

// Adjustable is false for switch only rails; these have a zero MinMV and
// ignore voltage requests.
func (r Rail) Adjustable() bool { return r.MinMV != 0 }

func (r Rail) Clamp(mv int) int {
	if mv < r.MinMV {
		return r.MinMV
	}
	if mv > r.MaxMV {
		return r.MaxMV
	}
	return mv
}

func (r Rail) enabled(ctrl uint8) bool { return ctrl&(1<<r.CtrlBit) != 0 }

// Table is searched in order.
type Table []Rail

// Lookup returns the first rail whose name prefixes the given name, so
// "dcdc1" also answers "dcdc1-cpu".
func (t Table) Lookup(name string) (Rail, bool) {
	for _, r := range t {
		if strings.HasPrefix(name, r.Name) {
			return r, true
		}
	}
	return Rail{}, false
}

func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for _, r := range t {
		names = append(names, r.Name)
	}
	return names
}
