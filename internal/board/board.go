// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package board describes what a board boots and with which devices.
package board

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/platinasystems/axpboot/internal/core"
	"github.com/platinasystems/axpboot/internal/mem"
)

type I2C struct {
	// Backend is "smbus" (default) for /dev/i2c-N or "periph".
	Backend string `json:"backend,omitempty"`
	Bus     int    `json:"bus"`
	// Name is the periph bus name; empty selects the first.
	Name string `json:"name,omitempty"`
}

// Rail is one voltage to apply at boot. A nil On leaves the enable bit
// as it is.
type Rail struct {
	Name string `json:"name"`
	MV   int    `json:"mv"`
	On   *bool  `json:"on,omitempty"`
}

// OnOff is the driver's tri-state enable argument.
func (r Rail) OnOff() int {
	switch {
	case r.On == nil:
		return -1
	case *r.On:
		return 1
	}
	return 0
}

type PMU struct {
	Present   bool   `json:"present"`
	Addr      uint8  `json:"addr,omitempty"`
	DualPhase bool   `json:"dual_phase,omitempty"`
	Rails     []Rail `json:"rails,omitempty"`
}

// Image is the coprocessor ELF. Sum, if set, is the expected hex
// BLAKE2b-256 of the file.
type Image struct {
	File string   `json:"file"`
	Dest mem.Addr `json:"dest"`
	Sum  string   `json:"sum,omitempty"`
}

// Storage is the card holding the image. Partition selects the FAT
// partition and Offset the byte offset of an ext4 partition.
type Storage struct {
	FS        string `json:"fs"`
	Dev       string `json:"dev"`
	Partition int    `json:"partition,omitempty"`
	Offset    int64  `json:"offset,omitempty"`
	// Raw is the block device timed before mount; empty skips that.
	Raw string `json:"raw,omitempty"`
}

// Memory is the physical window that holds the image, its segments and,
// if Core is set, the core's control registers.
type Memory struct {
	Kind string   `json:"kind"`
	Base mem.Addr `json:"base"`
	Size int      `json:"size"`
}

type Config struct {
	Name    string     `json:"name"`
	I2C     I2C        `json:"i2c"`
	PMU     PMU        `json:"pmu"`
	Image   Image      `json:"image"`
	Storage Storage    `json:"storage"`
	Memory  Memory     `json:"memory"`
	Core    *core.Regs `json:"core,omitempty"`
}

const DefaultName = "100ask-d1-h"

func on() *bool {
	b := true
	return &b
}

// Boards are the compiled in configurations.
var Boards = map[string]Config{
	"100ask-d1-h": {
		Name: "100ask-d1-h",
		Image: Image{
			File: "c906.elf",
			Dest: 0x45000000,
		},
		Storage: Storage{
			FS:        "fat",
			Dev:       "/dev/mmcblk0",
			Partition: 1,
			Raw:       "/dev/mmcblk0",
		},
		Memory: Memory{
			Kind: "devmem",
			Base: 0x40000000,
			Size: 0x10000000,
		},
	},
	"longanpi-3h": {
		Name: "longanpi-3h",
		I2C:  I2C{Bus: 0},
		PMU: PMU{
			Present: true,
			Addr:    0x36,
			Rails: []Rail{
				{Name: "dcdc1", MV: 1100, On: on()},
				{Name: "dcdc2", MV: 920, On: on()},
				{Name: "dcdc3", MV: 1160, On: on()},
			},
		},
		Image: Image{
			File: "c906.elf",
			Dest: 0x45000000,
		},
		Storage: Storage{
			FS:        "fat",
			Dev:       "/dev/mmcblk0",
			Partition: 1,
		},
		Memory: Memory{
			Kind: "devmem",
			Base: 0x40000000,
			Size: 0x10000000,
		},
	},
}

func Names() []string {
	names := make([]string, 0, len(Boards))
	for name := range Boards {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns a copy of the default board.
func Default() Config {
	return Lookup(DefaultName)
}

// Lookup returns a copy of the named board or the zero Config.
func Lookup(name string) Config {
	c := Boards[name]
	c.PMU.Rails = append([]Rail(nil), c.PMU.Rails...)
	for i, r := range c.PMU.Rails {
		if r.On != nil {
			on := *r.On
			c.PMU.Rails[i].On = &on
		}
	}
	return c
}

// Load reads a JSON board file over the named, or default, board so the
// file need only list differences.
func Load(fn string) (Config, error) {
	b, err := os.ReadFile(fn)
	if err != nil {
		return Config{}, err
	}
	var probe struct {
		Name string `json:"name"`
		PMU  struct {
			Rails json.RawMessage `json:"rails"`
		} `json:"pmu"`
	}
	if err = json.Unmarshal(b, &probe); err != nil {
		return Config{}, fmt.Errorf("%s: %w", fn, err)
	}
	c := Default()
	if len(probe.Name) > 0 {
		if _, found := Boards[probe.Name]; found {
			c = Lookup(probe.Name)
		}
	}
	// listed rails replace the board's rather than merge by index
	if len(probe.PMU.Rails) > 0 {
		c.PMU.Rails = nil
	}
	if err = json.Unmarshal(b, &c); err != nil {
		return Config{}, fmt.Errorf("%s: %w", fn, err)
	}
	return c, c.Validate()
}

// Validate checks the fields that have no usable zero value.
func (c Config) Validate() error {
	if len(c.Image.File) == 0 {
		return fmt.Errorf("%s: image: missing file", c.Name)
	}
	if c.Memory.Size <= 0 {
		return fmt.Errorf("%s: memory: missing size", c.Name)
	}
	if c.Image.Dest < c.Memory.Base ||
		c.Image.Dest >= c.Memory.Base+mem.Addr(c.Memory.Size) {
		return fmt.Errorf("%s: image: dest %v outside memory", c.Name,
			c.Image.Dest)
	}
	switch c.Memory.Kind {
	case "ram", "devmem":
	default:
		return fmt.Errorf("%s: memory: %q unknown", c.Name, c.Memory.Kind)
	}
	switch c.I2C.Backend {
	case "", "smbus", "periph":
	default:
		return fmt.Errorf("%s: i2c: %q unknown", c.Name, c.I2C.Backend)
	}
	return nil
}
