// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package mem

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

const DevMemName = "/dev/mem"

// DevMem maps a page aligned physical window through /dev/mem.
type DevMem struct {
	window
}

func OpenDevMem(base uint64, size int) (*DevMem, error) {
	if pg := uint64(os.Getpagesize()); base%pg != 0 {
		return nil, fmt.Errorf("%s: %#x not page aligned", DevMemName, base)
	}
	f, err := os.OpenFile(DevMemName, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	b, err := unix.Mmap(int(f.Fd()), int64(base), size,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("%s: mmap %#x+%#x: %w", DevMemName, base,
			size, err)
	}
	return &DevMem{window{base, b}}, nil
}

func (d *DevMem) Close() error {
	if d.b == nil {
		return nil
	}
	err := unix.Munmap(d.b)
	d.b = nil
	return err
}
