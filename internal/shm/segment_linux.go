//go:build linux

package shm

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/maximewewer/shmtime-reader/pkg/logger"
)

// Segment is a read-only attachment of an existing SysV segment.
type Segment struct {
	memView
	id   int
	key  uint32
	once sync.Once
	err  error
}

// Attach locates the segment registered under key and maps it read-only.
// The segment must already exist and be exactly Size bytes.
func Attach(unit int, key uint32) (*Segment, error) {
	// key_t is a C int; the kernel only sees the low 32 bits.
	id, err := unix.SysvShmGet(int(int32(key)), Size, 0)
	if err != nil {
		return nil, &LookupError{Unit: unit, Key: key, Err: err}
	}

	var desc unix.SysvShmDesc
	if _, err := unix.SysvShmCtl(id, unix.IPC_STAT, &desc); err != nil {
		return nil, &AttachError{Unit: unit, Key: key, Op: "stat", Err: err}
	}
	if uint64(desc.Segsz) != uint64(Size) {
		return nil, &LookupError{
			Unit: unit,
			Key:  key,
			Err:  fmt.Errorf("%w: segment is %d bytes, want %d", ErrSizeMismatch, uint64(desc.Segsz), Size),
		}
	}

	data, err := unix.SysvShmAttach(id, 0, unix.SHM_RDONLY)
	if err != nil {
		return nil, &AttachError{Unit: unit, Key: key, Op: "shmat", Err: err}
	}

	logger.Segment("attach", unit, key, map[string]interface{}{
		"shmid": id,
		"size":  len(data),
	})

	return &Segment{memView: memView{data: data}, id: id, key: key}, nil
}

// Bytes returns the live mapping. It must not be used after Close.
func (s *Segment) Bytes() []byte {
	return s.data
}

// Close detaches the segment.
func (s *Segment) Close() error {
	s.once.Do(func() {
		s.err = unix.SysvShmDetach(s.data)
		s.data = nil
	})
	return s.err
}
