// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package fatfs

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dsoprea/go-ext4"
)

// Ext4 reads an ext4 partition that starts Offset bytes into a card or
// image.
type Ext4 struct {
	Path   string
	Offset int64

	f    *os.File
	part *io.SectionReader
	bgdl *ext4.BlockGroupDescriptorList
}

func (e *Ext4) Mount() error {
	if e.f != nil {
		return ErrMounted
	}
	f, err := os.Open(e.Path)
	if err != nil {
		return err
	}
	end, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return err
	}
	part := io.NewSectionReader(f, e.Offset, end-e.Offset)
	if _, err = part.Seek(ext4.Superblock0Offset, io.SeekStart); err != nil {
		f.Close()
		return err
	}
	sb, err := ext4.NewSuperblockWithReader(part)
	if err != nil {
		f.Close()
		return fmt.Errorf("%s: superblock: %w", e.Path, err)
	}
	bgdl, err := ext4.NewBlockGroupDescriptorListWithReadSeeker(part, sb)
	if err != nil {
		f.Close()
		return fmt.Errorf("%s: block groups: %w", e.Path, err)
	}
	e.f, e.part, e.bgdl = f, part, bgdl
	return nil
}

func (e *Ext4) Open(name string) (File, error) {
	if e.f == nil {
		return nil, ErrNotMounted
	}
	name = strings.Trim(name, "/")
	bgd, err := e.bgdl.GetWithAbsoluteInode(ext4.InodeRootDirectory)
	if err != nil {
		return nil, err
	}
	dw, err := ext4.NewDirectoryWalk(e.part, bgd, ext4.InodeRootDirectory)
	if err != nil {
		return nil, err
	}
	var ino int
	for ino == 0 {
		p, de, err := dw.Next()
		if err == io.EOF {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		} else if err != nil {
			return nil, err
		}
		if strings.Trim(p, "/") == name {
			ino = int(de.Data().Inode)
		}
	}
	if bgd, err = e.bgdl.GetWithAbsoluteInode(ino); err != nil {
		return nil, err
	}
	inode, err := ext4.NewInodeWithReadSeeker(bgd, e.part, ino)
	if err != nil {
		return nil, err
	}
	en := ext4.NewExtentNavigatorWithReadSeeker(e.part, inode)
	return &filler{r: ext4.NewInodeReader(en)}, nil
}

func (e *Ext4) Unmount() error {
	if e.f == nil {
		return ErrNotMounted
	}
	err := e.f.Close()
	e.f, e.part, e.bgdl = nil, nil, nil
	return err
}
