package shm

import (
	"fmt"
	"math"
	"sync/atomic"
	"unsafe"
)

// View is a read-only window onto a published record.
type View interface {
	// Mode loads the producer's current mode.
	Mode() Mode
	// Count loads the producer's sequence counter.
	Count() int32
	// CopyTo copies the whole record into dst and returns the bytes copied.
	CopyTo(dst []byte) int
	// Close releases the view. Calling it more than once is a no-op.
	Close() error
}

// KeyFor returns the SysV IPC key of an SHM unit: base plus unit.
// Units whose key would not fit in 32 bits are rejected rather than
// wrapped onto another unit's key.
func KeyFor(base uint32, unit int) (uint32, error) {
	if unit < 0 || uint64(unit) > math.MaxUint32-uint64(base) {
		return 0, fmt.Errorf("%w: unit %d with base key 0x%x", ErrUnitOutOfRange, unit, base)
	}
	return base + uint32(unit), nil
}

// memView implements the View loads over a mapped record.
type memView struct {
	data []byte
}

func (v *memView) Mode() Mode {
	return Mode(atomic.LoadInt32(v.word(OffsetMode)))
}

func (v *memView) Count() int32 {
	return atomic.LoadInt32(v.word(OffsetCount))
}

func (v *memView) CopyTo(dst []byte) int {
	return copy(dst, v.data[:Size])
}

func (v *memView) word(off int) *int32 {
	return (*int32)(unsafe.Pointer(&v.data[off]))
}
