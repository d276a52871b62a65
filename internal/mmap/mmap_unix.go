//go:build unix

package mmap

import (
	"os"

	"golang.org/x/sys/unix"
)

func mapFile(f *os.File, size int) ([]byte, error) {
	return unix.Mmap(
		int(f.Fd()), //nolint:gosec // G115: file descriptor fits in int
		0,
		size,
		unix.PROT_READ,
		unix.MAP_SHARED,
	)
}

func unmapFile(data []byte) error {
	return unix.Munmap(data)
}
