// Package mmap maps whole files read-only into memory.
package mmap

import (
	"fmt"
	"os"
)

// File is a read-only memory mapping of an entire file.
type File struct {
	file   *os.File
	data   []byte
	closed bool
}

// Open maps the file at path into memory.
//
// Important: Always call Close() when done to unmap the file (use defer).
// Slices returned by Bytes are invalid after Close.
func Open(path string) (*File, error) {
	//nolint:gosec // G304: path comes from the caller by design.
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	m := &File{file: file}
	if size := stat.Size(); size > 0 {
		if size != int64(int(size)) {
			_ = file.Close()
			return nil, fmt.Errorf("mmap %s: file too large (%d bytes)", path, size)
		}
		if m.data, err = mapFile(file, int(size)); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("mmap %s: %w", path, err)
		}
	}
	return m, nil
}

// Bytes returns the mapped contents. The slice must not be written to.
func (m *File) Bytes() []byte {
	return m.data
}

// Len returns the size of the mapping in bytes.
func (m *File) Len() int {
	return len(m.data)
}

// Close unmaps and closes the file. Calling Close twice is a no-op.
func (m *File) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true

	var err error
	if m.data != nil {
		err = unmapFile(m.data)
		m.data = nil
	}
	if closeErr := m.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}
