// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package board

import (
	"encoding/binary"
	"fmt"
	"os"
	"sort"

	"github.com/platinasystems/fdt"
)

const dtbMagic = 0xd00dfeed

// ApplyDTB overrides the configured rails with the children of the
// blob's "pmu" node; each child names a rail and has a "regulator-mv"
// cell and an optional "regulator-off" flag.
func (c *Config) ApplyDTB(fn string) error {
	b, err := os.ReadFile(fn)
	if err != nil {
		return err
	}
	rails, err := dtbRails(b)
	if err != nil {
		return fmt.Errorf("%s: %w", fn, err)
	}
	if len(rails) == 0 {
		return nil
	}
	c.PMU.Present = true
	for _, r := range rails {
		c.setRail(r)
	}
	return nil
}

func (c *Config) setRail(r Rail) {
	for i := range c.PMU.Rails {
		if c.PMU.Rails[i].Name == r.Name {
			c.PMU.Rails[i] = r
			return
		}
	}
	c.PMU.Rails = append(c.PMU.Rails, r)
}

func dtbRails(b []byte) (rails []Rail, err error) {
	if len(b) < 40 || binary.BigEndian.Uint32(b) != dtbMagic {
		return nil, fmt.Errorf("not a device tree blob")
	}
	defer func() {
		if r := recover(); r != nil {
			rails, err = nil, fmt.Errorf("malformed device tree: %v", r)
		}
	}()
	t := &fdt.Tree{Debug: false, IsLittleEndian: false}
	if err = t.Parse(b); err != nil {
		return nil, err
	}
	t.MatchNode("pmu", func(n *fdt.Node) {
		for _, child := range n.Children {
			v, found := child.Properties["regulator-mv"]
			if !found || len(v) < 4 {
				continue
			}
			r := Rail{Name: child.Name, MV: int(t.PropUint32(v))}
			_, off := child.Properties["regulator-off"]
			r.On = new(bool)
			*r.On = !off
			rails = append(rails, r)
		}
	})
	sort.Slice(rails, func(i, j int) bool {
		return rails[i].Name < rails[j].Name
	})
	return rails, nil
}
