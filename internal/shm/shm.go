// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package shm manages named shared-memory segments.
//
// A segment is a file under /dev/shm (or the system temporary directory when
// /dev/shm is unavailable) mapped read-write and shared between processes.
// The package handles OS-level lifecycle only: create-exclusive, open, map,
// unmap and unlink. It knows nothing about the bytes inside the mapping.
package shm

import (
	"fmt"
	"os"
	"path/filepath"
)

// namePrefix keeps queue segments distinguishable from other files in the
// shared-memory directory.
const namePrefix = "shmq_"

// Segment is a named shared-memory object mapped into the caller's address
// space. The mapping stays valid until Close; the underlying object survives
// any individual mapping and is removed only by Unlink.
type Segment struct {
	name    string
	path    string
	file    *os.File
	data    []byte
	created bool
}

// Path returns the filesystem path backing the named segment.
func Path(name string) string {
	dir := "/dev/shm"
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		dir = os.TempDir()
	}
	return filepath.Join(dir, namePrefix+name)
}

// Create creates the named segment with exclusive semantics, sizes it to
// exactly size bytes and maps it. Fails if the name already exists.
func Create(name string, size int) (*Segment, error) {
	path := Path(name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("shm: create %q: %w", path, err)
	}
	if err := file.Truncate(int64(size)); err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("shm: size %q to %d bytes: %w", path, size, err)
	}
	data, err := mapShared(file, size)
	if err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("shm: map %q: %w", path, err)
	}
	return &Segment{name: name, path: path, file: file, data: data, created: true}, nil
}

// Open opens and maps the full extent of an existing named segment.
func Open(name string) (*Segment, error) {
	path := Path(name)
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("shm: open %q: %w", path, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("shm: stat %q: %w", path, err)
	}
	data, err := mapShared(file, int(info.Size()))
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("shm: map %q: %w", path, err)
	}
	return &Segment{name: name, path: path, file: file, data: data}, nil
}

// Bytes returns the mapped region. The slice aliases shared memory; it is
// invalid after Close.
func (s *Segment) Bytes() []byte { return s.data }

// Size returns the mapped size in bytes.
func (s *Segment) Size() int { return len(s.data) }

// Name returns the segment name.
func (s *Segment) Name() string { return s.name }

// Created reports whether this process created the segment.
func (s *Segment) Created() bool { return s.created }

// Close unmaps the region and closes the backing file. The named object
// itself is left in place. Close is idempotent.
func (s *Segment) Close() error {
	var first error
	if s.data != nil {
		if err := unmapShared(s.data); err != nil {
			first = fmt.Errorf("shm: unmap %q: %w", s.path, err)
		}
		s.data = nil
	}
	if s.file != nil {
		if err := s.file.Close(); err != nil && first == nil {
			first = fmt.Errorf("shm: close %q: %w", s.path, err)
		}
		s.file = nil
	}
	return first
}

// Unlink removes the named segment. Existing mappings keep working until
// they are individually closed.
func Unlink(name string) error {
	if err := os.Remove(Path(name)); err != nil {
		return fmt.Errorf("shm: unlink %q: %w", name, err)
	}
	return nil
}
