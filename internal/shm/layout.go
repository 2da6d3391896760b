// Package shm reads the ntpd SHM reference clock segment (driver 28).
//
// The segment holds a single struct shmTime written by an external
// producer (ntpd, chrony, gpsd, a GPS or PTP bridge). This package only
// ever attaches it read-only.
package shm

import "unsafe"

// shmTime mirrors the producer's struct shmTime in native C layout.
// Field order, width and signedness are an ABI contract.
type shmTime struct {
	mode                 int32 // 0: use if valid; 1: use if valid and count unchanged across the read
	count                int32
	clockTimeStampSec    timeT // external clock
	clockTimeStampUSec   int32
	receiveTimeStampSec  timeT // internal clock, when external value was received
	receiveTimeStampUSec int32
	leap                 int32
	precision            int32
	nsamples             int32
	valid                int32
	clockTimeStampNSec   uint32 // Unsigned ns timestamps
	receiveTimeStampNSec uint32
	dummy                [8]int32
}

// Size is sizeof(struct shmTime) on this platform, padding included.
const Size = int(unsafe.Sizeof(shmTime{}))

// Field offsets within the record.
const (
	OffsetMode                 = int(unsafe.Offsetof(shmTime{}.mode))
	OffsetCount                = int(unsafe.Offsetof(shmTime{}.count))
	OffsetClockTimeStampSec    = int(unsafe.Offsetof(shmTime{}.clockTimeStampSec))
	OffsetClockTimeStampUSec   = int(unsafe.Offsetof(shmTime{}.clockTimeStampUSec))
	OffsetReceiveTimeStampSec  = int(unsafe.Offsetof(shmTime{}.receiveTimeStampSec))
	OffsetReceiveTimeStampUSec = int(unsafe.Offsetof(shmTime{}.receiveTimeStampUSec))
	OffsetLeap                 = int(unsafe.Offsetof(shmTime{}.leap))
	OffsetPrecision            = int(unsafe.Offsetof(shmTime{}.precision))
	OffsetNSamples             = int(unsafe.Offsetof(shmTime{}.nsamples))
	OffsetValid                = int(unsafe.Offsetof(shmTime{}.valid))
	OffsetClockTimeStampNSec   = int(unsafe.Offsetof(shmTime{}.clockTimeStampNSec))
	OffsetReceiveTimeStampNSec = int(unsafe.Offsetof(shmTime{}.receiveTimeStampNSec))
	OffsetDummy                = int(unsafe.Offsetof(shmTime{}.dummy))
)

// DummyLen is the number of reserved trailing integers.
const DummyLen = 8
