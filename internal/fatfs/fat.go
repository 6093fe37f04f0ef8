// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package fatfs

import (
	"fmt"
	"os"
	"path"

	diskfs "github.com/diskfs/go-diskfs"
	"github.com/diskfs/go-diskfs/disk"
	"github.com/diskfs/go-diskfs/filesystem"
)

// FAT reads a FAT32 filesystem from a card or image. Partition 0 is an
// unpartitioned image, otherwise it's the 1 based partition number.
type FAT struct {
	Path      string
	Partition int

	disk *disk.Disk
	fs   filesystem.FileSystem
}

func (f *FAT) Mount() error {
	if f.fs != nil {
		return ErrMounted
	}
	d, err := diskfs.Open(f.Path)
	if err != nil {
		return err
	}
	fs, err := d.GetFilesystem(f.Partition)
	if err != nil {
		d.File.Close()
		return fmt.Errorf("%s: partition %d: %w", f.Path, f.Partition, err)
	}
	if fs.Type() != filesystem.TypeFat32 {
		d.File.Close()
		return fmt.Errorf("%s: partition %d: not FAT32", f.Path,
			f.Partition)
	}
	f.disk, f.fs = d, fs
	return nil
}

func (f *FAT) Open(name string) (File, error) {
	if f.fs == nil {
		return nil, ErrNotMounted
	}
	r, err := f.fs.OpenFile(path.Join("/", name), os.O_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", name, ErrNotFound, err)
	}
	return &filler{r, r.Close}, nil
}

func (f *FAT) Unmount() error {
	if f.fs == nil {
		return ErrNotMounted
	}
	err := f.disk.File.Close()
	f.disk, f.fs = nil, nil
	return err
}
