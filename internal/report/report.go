// Package report renders SHM snapshots for output.
package report

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/maximewewer/shmtime-reader/internal/shm"
)

// CalendarLayout is the second-precision part of a readable timestamp.
const CalendarLayout = "2006-01-02 15:04:05"

// InvalidNotice is printed instead of readable times when valid is zero.
const InvalidNotice = "Note: Data is marked as INVALID"

// Seconds beyond this are not handed to the time package.
const maxCalendarSeconds = 1 << 40

// WriteRaw writes the record's byte image unmodified.
func WriteRaw(w io.Writer, raw []byte) error {
	n, err := w.Write(raw)
	if err != nil {
		return err
	}
	if n != len(raw) {
		return io.ErrShortWrite
	}
	return nil
}

// WriteFormatted writes the labeled report for s, rendering readable
// times in loc.
func WriteFormatted(w io.Writer, s shm.Sample, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}

	var b bytes.Buffer
	b.WriteString("NTP Shared Memory Contents:\n")
	b.WriteString("===========================\n")
	fmt.Fprintf(&b, "Mode:                    %d\n", int32(s.Mode))
	fmt.Fprintf(&b, "Count:                   %d\n", s.Count)
	fmt.Fprintf(&b, "Valid:                   %d\n", s.Valid)
	fmt.Fprintf(&b, "Clock Timestamp (sec):   %d\n", s.ClockTimeStampSec)
	fmt.Fprintf(&b, "Clock Timestamp (usec):  %d\n", s.ClockTimeStampUSec)
	fmt.Fprintf(&b, "Clock Timestamp (nsec):  %d\n", s.ClockTimeStampNSec)
	fmt.Fprintf(&b, "Receive Timestamp (sec): %d\n", s.ReceiveTimeStampSec)
	fmt.Fprintf(&b, "Receive Timestamp (usec):%d\n", s.ReceiveTimeStampUSec)
	fmt.Fprintf(&b, "Receive Timestamp (nsec):%d\n", s.ReceiveTimeStampNSec)
	fmt.Fprintf(&b, "Leap:                    %d\n", int32(s.Leap))
	fmt.Fprintf(&b, "Precision:               %d\n", s.Precision)
	fmt.Fprintf(&b, "Number of samples:       %d\n", s.NSamples)
	b.WriteString("Reserved:                ")
	for i, v := range s.Dummy {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d", v)
	}
	b.WriteString("\n\n")

	if s.IsValid() {
		if ts, ok := Calendar(s.ClockTimeStampSec, s.ClockTimeStampNSec, loc); ok {
			fmt.Fprintf(&b, "Clock Time (readable):   %s\n", ts)
		}
		if ts, ok := Calendar(s.ReceiveTimeStampSec, s.ReceiveTimeStampNSec, loc); ok {
			fmt.Fprintf(&b, "Receive Time (readable): %s\n", ts)
		}
	} else {
		b.WriteString(InvalidNotice + "\n")
	}

	_, err := w.Write(b.Bytes())
	return err
}

// Calendar renders epoch seconds plus a nanosecond remainder as local
// calendar time. It reports false when the year falls outside 0001..9999.
func Calendar(sec int64, nsec uint32, loc *time.Location) (string, bool) {
	if sec > maxCalendarSeconds || sec < -maxCalendarSeconds {
		return "", false
	}

	t := time.Unix(sec, 0).In(loc)
	if year := t.Year(); year < 1 || year > 9999 {
		return "", false
	}

	return t.Format(CalendarLayout) + fmt.Sprintf(".%09d", nsec), true
}
