// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package loader

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/platinasystems/axpboot/internal/fatfs"
	"github.com/platinasystems/axpboot/internal/mem"
	"golang.org/x/crypto/blake2b"
)

var errSpy = errors.New("spy failure")

// spy is a single file FS that logs each call.
type spy struct {
	data  []byte
	off   int
	calls []string

	failMount, failOpen, failClose, failUnmount bool
	failRead                                    int // 1 based read that fails
}

func (s *spy) Mount() error {
	s.calls = append(s.calls, "mount")
	if s.failMount {
		return errSpy
	}
	return nil
}

func (s *spy) Open(name string) (fatfs.File, error) {
	s.calls = append(s.calls, "open "+name)
	if s.failOpen {
		return nil, errSpy
	}
	s.off = 0
	return s, nil
}

func (s *spy) Read(p []byte) (int, error) {
	reads := 0
	for _, c := range s.calls {
		if len(c) > 4 && c[:4] == "read" {
			reads++
		}
	}
	if reads+1 == s.failRead {
		s.calls = append(s.calls, "read !")
		return 0, errSpy
	}
	n := copy(p, s.data[s.off:])
	s.off += n
	s.calls = append(s.calls, fmt.Sprint("read ", n))
	return n, nil
}

func (s *spy) Close() error {
	s.calls = append(s.calls, "close")
	if s.failClose {
		return errSpy
	}
	return nil
}

func (s *spy) Unmount() error {
	s.calls = append(s.calls, "unmount")
	if s.failUnmount {
		return errSpy
	}
	return nil
}

const dest = 0x45000000

func pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i ^ i>>8)
	}
	return b
}

func load(t *testing.T, fs *spy) (*mem.RAM, Result, error) {
	t.Helper()
	ram := mem.NewRAM(dest, 4*ChunkSize)
	l := &Loader{FS: fs, Mem: ram}
	res, err := l.Load(Image{Dest: dest, Filename: "c906.elf"})
	return ram, res, err
}

func TestLoad(t *testing.T) {
	for _, x := range []struct {
		name  string
		size  int
		reads []string
	}{
		{"empty", 0, []string{"read 0"}},
		{"small", 1000, []string{"read 1000"}},
		{"one-chunk", ChunkSize, []string{
			fmt.Sprint("read ", ChunkSize),
			"read 0",
		}},
		{"chunk-and-a-half", ChunkSize + ChunkSize/2, []string{
			fmt.Sprint("read ", ChunkSize),
			fmt.Sprint("read ", ChunkSize/2),
		}},
	} {
		t.Run(x.name, func(t *testing.T) {
			fs := &spy{data: pattern(x.size)}
			ram, res, err := load(t, fs)
			if err != nil {
				t.Fatal(err)
			}
			want := append([]string{"mount", "open c906.elf"}, x.reads...)
			want = append(want, "close", "unmount")
			if diff := cmp.Diff(want, fs.calls); diff != "" {
				t.Error(diff)
			}
			if res.Bytes != int64(x.size) {
				t.Error("bytes", res.Bytes)
			}
			if !bytes.Equal(ram.Bytes()[:x.size], fs.data) {
				t.Error("content")
			}
			sum := blake2b.Sum256(fs.data)
			if !bytes.Equal(res.Sum, sum[:]) {
				t.Errorf("sum %x", res.Sum)
			}
		})
	}
}

func TestLoadCloseFails(t *testing.T) {
	fs := &spy{data: pattern(1000), failClose: true}
	ram, res, err := load(t, fs)
	if err != nil {
		t.Fatal(err)
	}
	if res.Bytes != 1000 || !bytes.Equal(ram.Bytes()[:1000], fs.data) {
		t.Error("loaded", res.Bytes)
	}
	want := []string{"mount", "open c906.elf", "read 1000", "close",
		"unmount"}
	if diff := cmp.Diff(want, fs.calls); diff != "" {
		t.Error(diff)
	}
}

func TestLoadFails(t *testing.T) {
	for _, x := range []struct {
		name  string
		fs    *spy
		stage string
		calls []string
	}{
		{
			"mount",
			&spy{failMount: true},
			"mount",
			[]string{"mount"},
		},
		{
			"open",
			&spy{failOpen: true},
			"open",
			[]string{"mount", "open c906.elf"},
		},
		{
			"read",
			&spy{data: pattern(3 * ChunkSize), failRead: 2},
			"read",
			[]string{
				"mount",
				"open c906.elf",
				fmt.Sprint("read ", ChunkSize),
				"read !",
				"close",
			},
		},
		{
			"unmount",
			&spy{data: pattern(10), failUnmount: true},
			"unmount",
			[]string{"mount", "open c906.elf", "read 10", "close",
				"unmount"},
		},
	} {
		t.Run(x.name, func(t *testing.T) {
			_, _, err := load(t, x.fs)
			var le *Error
			if !errors.As(err, &le) {
				t.Fatal(err)
			}
			if le.Stage != x.stage {
				t.Error("stage", le.Stage)
			}
			if !errors.Is(err, errSpy) {
				t.Error(err)
			}
			if diff := cmp.Diff(x.calls, x.fs.calls); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func TestLoadOverflow(t *testing.T) {
	fs := &spy{data: pattern(5 * ChunkSize)}
	_, _, err := load(t, fs)
	var le *Error
	if !errors.As(err, &le) || le.Stage != "write" {
		t.Fatal(err)
	}
	if !errors.Is(err, mem.ErrRange) {
		t.Error(err)
	}
}

func TestLoadDir(t *testing.T) {
	root := t.TempDir()
	data := pattern(2*ChunkSize + 17)
	err := os.WriteFile(filepath.Join(root, "c906.elf"), data, 0644)
	if err != nil {
		t.Fatal(err)
	}
	ram := mem.NewRAM(dest, 4*ChunkSize)
	l := &Loader{FS: &fatfs.Dir{Root: root}, Mem: ram}
	res, err := l.Load(Image{Dest: dest, Filename: "c906.elf"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Bytes != int64(len(data)) || !bytes.Equal(ram.Bytes()[:len(data)], data) {
		t.Error("loaded", res.Bytes)
	}
}

func TestMBps(t *testing.T) {
	r := Result{Bytes: 1 << 20, Elapsed: 1023 * time.Millisecond}
	if got := r.MBps(); got != 1 {
		t.Error(got)
	}
}
