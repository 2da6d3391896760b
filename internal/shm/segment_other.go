//go:build !linux

package shm

// Segment is a read-only attachment of an existing SysV segment
// (stub for non-Linux platforms). Attach never returns one, so it is
// never mapped; memView is embedded only so the View methods exist.
type Segment struct {
	memView
}

// Attach is not supported on this platform.
func Attach(unit int, key uint32) (*Segment, error) {
	return nil, &AttachError{Unit: unit, Key: key, Op: "shmget", Err: ErrUnsupported}
}

// Bytes returns the live mapping.
func (s *Segment) Bytes() []byte {
	return s.data
}

// Close is a no-op.
func (s *Segment) Close() error {
	return nil
}
