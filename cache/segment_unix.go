//go:build unix

package cache

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// attachedFile is the POSIX shared-memory backing for a Segment: a file
// under /dev/shm, mmap'd MAP_SHARED so every process attaching the same
// path observes the same bytes (spec.md §5's cross-process sharing
// model). This is the one piece of the module with no portable standard
// library equivalent, matching SPEC_FULL.md's Domain Stack note on
// golang.org/x/sys/unix.
type attachedFile struct {
	file *os.File
	data []byte
}

// ShmPath builds the conventional /dev/shm path for a named segment.
func ShmPath(name string) string {
	return "/dev/shm/" + name
}

// createSegmentFile creates (or truncates) the backing file to size and
// mmaps it, used by CreateSegment when standing up a fresh segment.
func createSegmentFile(path string, size uint64) (*attachedFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create segment file %s: %w", path, err)
	}
	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		return nil, fmt.Errorf("truncate segment file %s to %d: %w", path, size, err)
	}
	return mapFile(f, size)
}

// openSegmentFile opens an existing backing file and mmaps exactly its
// current size, used by OpenSegment to attach to an already-initialized
// segment.
func openSegmentFile(path string) (*attachedFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open segment file %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat segment file %s: %w", path, err)
	}
	return mapFile(f, uint64(info.Size()))
}

func mapFile(f *os.File, size uint64) (*attachedFile, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap segment file %s: %w", f.Name(), err)
	}
	return &attachedFile{file: f, data: data}, nil
}

func (a *attachedFile) close() error {
	if err := unix.Munmap(a.data); err != nil {
		a.file.Close()
		return fmt.Errorf("munmap: %w", err)
	}
	return a.file.Close()
}
