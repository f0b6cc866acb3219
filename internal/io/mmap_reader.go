// Package io gives whole-file byte access, memory mapping files when it can.
package io

import (
	"fmt"
	"os"
	"syscall"
)

// MMapConfig contains configuration for memory-mapped reading
type MMapConfig struct {
	MaxMapSize int64 // Files above this size are read into memory instead
	UseMmap    bool  // Whether to use memory mapping
}

// DefaultMMapConfig returns a default configuration
func DefaultMMapConfig() MMapConfig {
	return MMapConfig{
		MaxMapSize: 512 * 1024 * 1024, // 512MB max map size
		UseMmap:    true,
	}
}

// MappedFile holds the contents of a file. Data is only valid until Close.
type MappedFile struct {
	Data     []byte
	isMapped bool
}

// ReadFile returns the contents of path, memory mapped when enabled and the
// file is non-empty and within MaxMapSize. A failed mapping falls back to a
// regular read.
func ReadFile(path string, config MMapConfig) (*MappedFile, error) {
	if config.MaxMapSize == 0 {
		config.MaxMapSize = DefaultMMapConfig().MaxMapSize
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}
	size := info.Size()

	if config.UseMmap && size > 0 && size <= config.MaxMapSize {
		data, err := syscall.Mmap(int(file.Fd()), 0, int(size), syscall.PROT_READ, syscall.MAP_SHARED)
		if err == nil {
			return &MappedFile{Data: data, isMapped: true}, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read failed: %w", err)
	}
	return &MappedFile{Data: data}, nil
}

// IsMapped returns true if the file is memory mapped
func (f *MappedFile) IsMapped() bool {
	return f.isMapped
}

// Close unmaps the file if necessary
func (f *MappedFile) Close() error {
	if !f.isMapped {
		f.Data = nil
		return nil
	}

	err := syscall.Munmap(f.Data)
	f.Data = nil
	f.isMapped = false
	if err != nil {
		return fmt.Errorf("munmap failed: %w", err)
	}
	return nil
}
