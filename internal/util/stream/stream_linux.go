//go:build linux
// +build linux

package stream

import (
	"os"

	"golang.org/x/sys/unix"
)

func init() {

	ReadOptimizations = []Optimization{
		{
			Name: "fadvise-sequential",
			Action: func(fh *os.File, stat os.FileInfo) error {
				if !stat.Mode().IsRegular() {
					return os.ErrInvalid
				}
				return unix.Fadvise(int(fh.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
			},
		},
	}

	WriteOptimizations = []Optimization{
		{
			Name: "fadvise-dontneed",
			Action: func(fh *os.File, stat os.FileInfo) error {
				if !stat.Mode().IsRegular() {
					return os.ErrInvalid
				}
				// sealed chunks are write-once, no point keeping them cached
				return unix.Fadvise(int(fh.Fd()), 0, 0, unix.FADV_DONTNEED)
			},
		},
	}
}
