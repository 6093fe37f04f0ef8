// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package fatfs mounts the boot partition of a card and reads files from
// it in fixed size pieces.
package fatfs

import (
	"errors"
	"fmt"
	"io"
)

var (
	ErrNotMounted = errors.New("not mounted")
	ErrMounted    = errors.New("already mounted")
	ErrNotFound   = errors.New("file not found")
)

// FS is mounted once per load. Unmount releases whatever Mount acquired.
type FS interface {
	Mount() error
	Open(name string) (File, error)
	Unmount() error
}

// File.Read fills p unless it reaches the end of file; so a short read
// with a nil error is the end and a read at the end returns 0, nil.
type File interface {
	Read(p []byte) (int, error)
	Close() error
}

// New returns the FS of the named kind: "fat" or "ext4" for a card or
// image at dev, or "dir" for a host directory.
func New(kind, dev string) (FS, error) {
	switch kind {
	case "", "fat", "vfat":
		return &FAT{Path: dev}, nil
	case "ext4":
		return &Ext4{Path: dev}, nil
	case "dir":
		return &Dir{Root: dev}, nil
	}
	return nil, fmt.Errorf("%s: unknown filesystem", kind)
}

// filler adapts an io.Reader to File.Read semantics.
type filler struct {
	r     io.Reader
	close func() error
}

func (f *filler) Read(p []byte) (int, error) {
	n, err := io.ReadFull(f.r, p)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = nil
	}
	return n, err
}

func (f *filler) Close() error {
	if f.close == nil {
		return nil
	}
	return f.close()
}
