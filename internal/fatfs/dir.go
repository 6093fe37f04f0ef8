// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package fatfs

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dir serves files of an already mounted host directory.
type Dir struct {
	Root    string
	mounted bool
}

func (d *Dir) Mount() error {
	if d.mounted {
		return ErrMounted
	}
	fi, err := os.Stat(d.Root)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s: not a directory", d.Root)
	}
	d.mounted = true
	return nil
}

func (d *Dir) Open(name string) (File, error) {
	if !d.mounted {
		return nil, ErrNotMounted
	}
	f, err := os.Open(filepath.Join(d.Root, filepath.FromSlash(name)))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &filler{f, f.Close}, nil
}

func (d *Dir) Unmount() error {
	if !d.mounted {
		return ErrNotMounted
	}
	d.mounted = false
	return nil
}
