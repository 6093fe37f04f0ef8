// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package mmc reads 512 byte sectors from an SD/MMC card, or an image of
// one, through its block device node.
package mmc

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/platinasystems/log"
)

const SectorSize = 512

var ErrAlign = errors.New("transfer not sector aligned")

// Device transfers whole sectors starting at lba.
type Device interface {
	ReadBlocks(p []byte, lba int64) error
}

// Card is a Device over a block special file such as /dev/mmcblk0 or a
// card image.
type Card struct {
	Name string
	f    *os.File
}

func Open(name string) (*Card, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return &Card{Name: name, f: f}, nil
}

func (c *Card) ReadBlocks(p []byte, lba int64) error {
	if len(p)%SectorSize != 0 {
		return fmt.Errorf("%s: %d bytes: %w", c.Name, len(p), ErrAlign)
	}
	n, err := c.f.ReadAt(p, lba*SectorSize)
	if err == io.EOF && n == len(p) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("%s: lba %d: %w", c.Name, lba, err)
	}
	return nil
}

// Sectors is the card size in sectors.
func (c *Card) Sectors() (int64, error) {
	end, err := c.f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	return end / SectorSize, nil
}

func (c *Card) Close() error { return c.f.Close() }

// Speed is the result of a timed raw read.
type Speed struct {
	Bytes   int
	Elapsed time.Duration
}

// KBps is kilobytes per second; elapsed time is rounded up to a
// millisecond so that a fast read doesn't divide by zero.
func (s Speed) KBps() int64 {
	ms := s.Elapsed.Milliseconds() + 1
	return int64(s.Bytes) * 1000 / 1024 / ms
}

func (s Speed) String() string {
	return fmt.Sprintf("%dKB in %dms at %dKB/S", s.Bytes/1024,
		s.Elapsed.Milliseconds(), s.KBps())
}

// SpeedTest times a read of n sectors from lba 0 into buf, which must
// hold them; the data is scratch.
func SpeedTest(dev Device, buf []byte, n int) (Speed, error) {
	size := n * SectorSize
	if len(buf) < size {
		return Speed{}, fmt.Errorf("speedtest: %d byte buffer: %w",
			len(buf), io.ErrShortBuffer)
	}
	start := time.Now()
	if err := dev.ReadBlocks(buf[:size], 0); err != nil {
		return Speed{}, err
	}
	s := Speed{size, time.Since(start)}
	log.Print("debug", "SDMMC: speedtest ", s)
	return s, nil
}
