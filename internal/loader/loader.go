// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package loader copies an image file from the card's filesystem into
// physical memory.
package loader

import (
	"fmt"
	"hash"
	"time"

	"github.com/platinasystems/axpboot/internal/fatfs"
	"github.com/platinasystems/axpboot/internal/mem"
	"github.com/platinasystems/axpboot/internal/mmc"
	"github.com/platinasystems/log"
	"golang.org/x/crypto/blake2b"
)

const (
	ChunkSize = 0x20000
	// SpeedTestSectors is the size of the raw read timed before mount.
	SpeedTestSectors = 1024
)

// Image is the file to load and where.
type Image struct {
	Dest     uint64
	Filename string
}

// Result measures a completed load; Sum is the BLAKE2b-256 digest of the
// loaded bytes.
type Result struct {
	Bytes   int64
	Elapsed time.Duration
	Sum     []byte
}

// MBps rounds the elapsed time up to the next millisecond.
func (r Result) MBps() float64 {
	ms := r.Elapsed.Milliseconds() + 1
	return float64(r.Bytes) / float64(ms) / 1024
}

// Error records the failed stage: "mount", "open", "read", "write" or
// "unmount".
type Error struct {
	Stage string
	Name  string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Name, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Loader has no state beyond its collaborators; Dev may be nil to skip
// the speed test.
type Loader struct {
	Dev mmc.Device
	FS  fatfs.FS
	Mem mem.Memory
}

// Load mounts the filesystem, copies the image into memory by ChunkSize
// pieces at ascending addresses until a short read, then unmounts. Open
// and read failures leave the filesystem mounted.
func (l *Loader) Load(img Image) (Result, error) {
	if l.Dev != nil {
		buf := make([]byte, SpeedTestSectors*mmc.SectorSize)
		if _, err := mmc.SpeedTest(l.Dev, buf, SpeedTestSectors); err != nil {
			log.Print("warn", "SDMMC: speedtest: ", err)
		}
	}
	start := time.Now()
	if err := l.FS.Mount(); err != nil {
		log.Print("err", "FATFS: mount error: ", err)
		return Result{}, &Error{"mount", img.Filename, err}
	}
	log.Print("debug", "FATFS: mount OK")
	log.Printf("info", "FATFS: read %s addr=%x", img.Filename, img.Dest)
	res, err := l.copy(img)
	if err != nil {
		return res, err
	}
	if err = l.FS.Unmount(); err != nil {
		log.Print("err", "FATFS: unmount error ", err)
		return res, &Error{"unmount", img.Filename, err}
	}
	log.Print("debug", "FATFS: unmount OK")
	log.Printf("debug", "FATFS: done in %dms",
		time.Since(start).Milliseconds())
	return res, nil
}

func (l *Loader) copy(img Image) (Result, error) {
	var res Result
	f, err := l.FS.Open(img.Filename)
	if err != nil {
		log.Printf("err", "FATFS: open, filename: [%s]: error %v",
			img.Filename, err)
		return res, &Error{"open", img.Filename, err}
	}
	h, _ := blake2b.New256(nil)
	start := time.Now()
	err = l.chunks(f, img.Dest, h, &res)
	res.Elapsed = time.Since(start)
	res.Sum = h.Sum(nil)
	if cerr := f.Close(); cerr != nil {
		log.Print("warn", "FATFS: close error ", cerr)
	}
	if err != nil {
		return res, err
	}
	log.Printf("debug", "FATFS: read in %dms at %.2fMB/S",
		res.Elapsed.Milliseconds()+1, res.MBps())
	return res, nil
}

func (l *Loader) chunks(f fatfs.File, dest uint64, h hash.Hash,
	res *Result) error {
	buf := make([]byte, ChunkSize)
	for {
		n, err := f.Read(buf)
		if err != nil {
			log.Print("err", "FATFS: read: error ", err)
			return &Error{"read", fmt.Sprintf("%#x", dest), err}
		}
		if n > 0 {
			if _, err = l.Mem.WriteAt(buf[:n], int64(dest)); err != nil {
				return &Error{"write", fmt.Sprintf("%#x", dest), err}
			}
			h.Write(buf[:n])
			res.Bytes += int64(n)
		}
		dest += ChunkSize
		if n < ChunkSize {
			return nil
		}
	}
}
