package shm

import (
	"errors"
	"fmt"
)

var (
	// ErrSegmentNotFound matches every *LookupError.
	ErrSegmentNotFound = errors.New("shared memory segment not found")

	// ErrSizeMismatch is wrapped when a segment exists under the key but
	// is not exactly Size bytes.
	ErrSizeMismatch = errors.New("shared memory segment size mismatch")

	// ErrAttachFailed matches every *AttachError.
	ErrAttachFailed = errors.New("failed to attach to shared memory segment")

	// ErrUnitOutOfRange is returned when base plus unit leaves the key space.
	ErrUnitOutOfRange = errors.New("unit number out of range")

	// ErrUnsupported is returned on platforms without SysV shared memory.
	ErrUnsupported = errors.New("SysV shared memory is not supported on this platform")
)

// LookupError reports that no usable segment is registered under the key.
type LookupError struct {
	Unit int
	Key  uint32
	Err  error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("failed to get shared memory segment for unit %d (key: 0x%x): %v", e.Unit, e.Key, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrSegmentNotFound) hold for any lookup failure.
func (e *LookupError) Is(target error) bool { return target == ErrSegmentNotFound }

// Hint suggests the likely producer misconfiguration.
func (e *LookupError) Hint() string {
	return fmt.Sprintf("Make sure NTP is running and configured to use SHM driver unit %d", e.Unit)
}

// AttachError reports an OS failure to map an existing segment.
type AttachError struct {
	Unit int
	Key  uint32
	Op   string
	Err  error
}

func (e *AttachError) Error() string {
	return fmt.Sprintf("failed to attach to shared memory segment (key: 0x%x, %s): %v", e.Key, e.Op, e.Err)
}

func (e *AttachError) Unwrap() error { return e.Err }

// Hint suggests the likely producer or permission misconfiguration.
func (e *AttachError) Hint() string {
	return fmt.Sprintf("Make sure NTP is configured to use SHM driver unit %d and the segment is readable by this user", e.Unit)
}

// Is makes errors.Is(err, ErrAttachFailed) hold for any attach failure.
func (e *AttachError) Is(target error) bool { return target == ErrAttachFailed }
