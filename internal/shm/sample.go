package shm

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Mode is the producer's write-consistency discipline.
type Mode int32

const (
	// ModeBestEffort: use the values if valid is set.
	ModeBestEffort Mode = 0

	// ModeCountGuarded: use the values if valid is set and count did not
	// change across the read.
	ModeCountGuarded Mode = 1
)

func (m Mode) String() string {
	switch m {
	case ModeBestEffort:
		return "best-effort"
	case ModeCountGuarded:
		return "count-guarded"
	}
	return fmt.Sprintf("unknown(%d)", int32(m))
}

// Leap is a leap second indicator.
type Leap int32

const (
	// LeapNoWarning indicates no leap second.
	LeapNoWarning Leap = 0

	// LeapAddSecond indicates a positive leap second.
	LeapAddSecond Leap = 1

	// LeapDelSecond indicates a negative leap second.
	LeapDelSecond Leap = 2

	// LeapNotInSync indicates the clock is not synchronized.
	LeapNotInSync Leap = 3
)

func (l Leap) String() string {
	switch l {
	case LeapNoWarning:
		return "no leap warning"
	case LeapAddSecond:
		return "add leap second"
	case LeapDelSecond:
		return "del leap second"
	case LeapNotInSync:
		return "not in sync"
	}
	return ""
}

// Sample is a decoded struct shmTime.
type Sample struct {
	Mode                 Mode
	Count                int32
	ClockTimeStampSec    int64
	ClockTimeStampUSec   int32
	ClockTimeStampNSec   uint32
	ReceiveTimeStampSec  int64
	ReceiveTimeStampUSec int32
	ReceiveTimeStampNSec uint32
	Leap                 Leap
	Precision            int32
	NSamples             int32
	Valid                int32
	Dummy                [DummyLen]int32
}

// IsValid reports whether the producer marked the record usable.
func (s Sample) IsValid() bool {
	return s.Valid != 0
}

// ClockTime returns the reference clock reading.
func (s Sample) ClockTime() time.Time {
	return time.Unix(s.ClockTimeStampSec, int64(s.ClockTimeStampNSec))
}

// ReceiveTime returns the local clock reading at receipt.
func (s Sample) ReceiveTime() time.Time {
	return time.Unix(s.ReceiveTimeStampSec, int64(s.ReceiveTimeStampNSec))
}

// Offset is the reference clock minus the local clock. Offsets beyond
// the range of time.Duration are clamped to its bounds.
func (s Sample) Offset() time.Duration {
	if f := s.OffsetSeconds(); f >= maxOffsetSeconds {
		return time.Duration(math.MaxInt64)
	} else if f <= -maxOffsetSeconds {
		return time.Duration(math.MinInt64)
	}
	sec := s.ClockTimeStampSec - s.ReceiveTimeStampSec
	nsec := int64(s.ClockTimeStampNSec) - int64(s.ReceiveTimeStampNSec)
	return time.Duration(sec)*time.Second + time.Duration(nsec)
}

// OffsetSeconds is Offset in floating point seconds, without clamping.
func (s Sample) OffsetSeconds() float64 {
	sec := float64(s.ClockTimeStampSec) - float64(s.ReceiveTimeStampSec)
	nsec := float64(int64(s.ClockTimeStampNSec) - int64(s.ReceiveTimeStampNSec))
	return sec + nsec/1e9
}

// Largest whole-second offset time.Duration holds, less one second of
// margin for the nanosecond parts.
const maxOffsetSeconds = float64(math.MaxInt64/int64(time.Second) - 1)

// Decode interprets a raw record image.
func Decode(raw []byte) (Sample, error) {
	if len(raw) != Size {
		return Sample{}, fmt.Errorf("shm record is %d bytes, want %d", len(raw), Size)
	}

	s := Sample{
		Mode:                 Mode(getInt32(raw, OffsetMode)),
		Count:                getInt32(raw, OffsetCount),
		ClockTimeStampSec:    getTimeT(raw[OffsetClockTimeStampSec:]),
		ClockTimeStampUSec:   getInt32(raw, OffsetClockTimeStampUSec),
		ClockTimeStampNSec:   binary.NativeEndian.Uint32(raw[OffsetClockTimeStampNSec:]),
		ReceiveTimeStampSec:  getTimeT(raw[OffsetReceiveTimeStampSec:]),
		ReceiveTimeStampUSec: getInt32(raw, OffsetReceiveTimeStampUSec),
		ReceiveTimeStampNSec: binary.NativeEndian.Uint32(raw[OffsetReceiveTimeStampNSec:]),
		Leap:                 Leap(getInt32(raw, OffsetLeap)),
		Precision:            getInt32(raw, OffsetPrecision),
		NSamples:             getInt32(raw, OffsetNSamples),
		Valid:                getInt32(raw, OffsetValid),
	}
	for i := range s.Dummy {
		s.Dummy[i] = getInt32(raw, OffsetDummy+4*i)
	}

	return s, nil
}

// Encode builds the record image a producer would publish for s.
// Padding bytes are zero.
func Encode(s Sample) []byte {
	raw := make([]byte, Size)

	putInt32(raw, OffsetMode, int32(s.Mode))
	putInt32(raw, OffsetCount, s.Count)
	putTimeT(raw[OffsetClockTimeStampSec:], s.ClockTimeStampSec)
	putInt32(raw, OffsetClockTimeStampUSec, s.ClockTimeStampUSec)
	binary.NativeEndian.PutUint32(raw[OffsetClockTimeStampNSec:], s.ClockTimeStampNSec)
	putTimeT(raw[OffsetReceiveTimeStampSec:], s.ReceiveTimeStampSec)
	putInt32(raw, OffsetReceiveTimeStampUSec, s.ReceiveTimeStampUSec)
	binary.NativeEndian.PutUint32(raw[OffsetReceiveTimeStampNSec:], s.ReceiveTimeStampNSec)
	putInt32(raw, OffsetLeap, int32(s.Leap))
	putInt32(raw, OffsetPrecision, s.Precision)
	putInt32(raw, OffsetNSamples, s.NSamples)
	putInt32(raw, OffsetValid, s.Valid)
	for i, v := range s.Dummy {
		putInt32(raw, OffsetDummy+4*i, v)
	}

	return raw
}

// NewSample fills the timestamp sub-fields the way ntpd-compatible
// producers do: seconds, microseconds and nanoseconds of each reading.
func NewSample(clock, receive time.Time) Sample {
	return Sample{
		ClockTimeStampSec:    clock.Unix(),
		ClockTimeStampUSec:   int32(clock.Nanosecond() / 1e3),
		ClockTimeStampNSec:   uint32(clock.Nanosecond()),
		ReceiveTimeStampSec:  receive.Unix(),
		ReceiveTimeStampUSec: int32(receive.Nanosecond() / 1e3),
		ReceiveTimeStampNSec: uint32(receive.Nanosecond()),
	}
}

func getInt32(b []byte, off int) int32 {
	return int32(binary.NativeEndian.Uint32(b[off:]))
}

func putInt32(b []byte, off int, v int32) {
	binary.NativeEndian.PutUint32(b[off:], uint32(v))
}
