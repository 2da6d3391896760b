package shm

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/maximewewer/shmtime-reader/pkg/logger"
)

// AttachFunc opens a view of the record published under key.
type AttachFunc func(unit int, key uint32) (View, error)

// ReaderConfig holds snapshot reader configuration.
type ReaderConfig struct {
	// BaseKey is the key of unit 0.
	BaseKey uint32

	// ReadRetries bounds the re-reads of a count-guarded record whose
	// count moved during the copy.
	ReadRetries int

	// RetryInterval paces re-reads. Zero retries immediately.
	RetryInterval time.Duration
}

// Snapshot is a process-owned copy of the record.
type Snapshot struct {
	Unit int
	Key  uint32

	// Raw is the exact byte image of the record, padding included.
	Raw    []byte
	Sample Sample

	// Attempts is the number of copies taken.
	Attempts int

	// Consistent is false when the count guard still saw a concurrent
	// write after the last retry. Best-effort records are always
	// reported consistent; only valid qualifies them.
	Consistent bool

	// DetachErr is the non-fatal error from releasing the segment.
	DetachErr error
}

// Reader takes torn-read-safe snapshots of SHM units.
type Reader struct {
	config ReaderConfig
	attach AttachFunc
}

// NewReader creates a reader backed by the kernel's SysV segments.
func NewReader(config ReaderConfig) *Reader {
	return NewReaderWithAttacher(config, func(unit int, key uint32) (View, error) {
		seg, err := Attach(unit, key)
		if err != nil {
			return nil, err
		}
		return seg, nil
	})
}

// NewReaderWithAttacher creates a reader over a custom view source.
func NewReaderWithAttacher(config ReaderConfig, attach AttachFunc) *Reader {
	if config.ReadRetries < 0 {
		config.ReadRetries = 0
	}
	return &Reader{
		config: config,
		attach: attach,
	}
}

// Key returns the key the reader uses for unit.
func (r *Reader) Key(unit int) (uint32, error) {
	return KeyFor(r.config.BaseKey, unit)
}

// Read attaches the unit's segment, copies the record and detaches.
// Once attached, a copy is always returned; detach failures are only
// recorded on the snapshot.
func (r *Reader) Read(ctx context.Context, unit int) (*Snapshot, error) {
	key, err := r.Key(unit)
	if err != nil {
		return nil, err
	}

	view, err := r.attach(unit, key)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Unit: unit, Key: key}
	defer func() {
		if err := view.Close(); err != nil {
			snap.DetachErr = err
			logger.SafeWarn("shm", "Failed to detach from shared memory", map[string]interface{}{
				"unit":  unit,
				"error": err.Error(),
			})
			return
		}
		logger.Segment("detach", unit, key, nil)
	}()

	start := time.Now()
	snap.Raw, snap.Attempts, snap.Consistent = r.copyRecord(ctx, view)
	logger.Snapshot(unit, snap.Attempts, snap.Consistent, time.Since(start))

	snap.Sample, err = Decode(snap.Raw)
	if err != nil {
		return nil, err
	}

	return snap, nil
}

// copyRecord performs the optimistic read. Under ModeCountGuarded the
// copy is accepted only when count reads the same before and after it.
func (r *Reader) copyRecord(ctx context.Context, view View) ([]byte, int, bool) {
	buf := make([]byte, Size)
	limiter := r.newLimiter()

	attempts := 0
	for {
		attempts++

		if view.Mode() != ModeCountGuarded {
			view.CopyTo(buf)
			return buf, attempts, true
		}

		before := view.Count()
		view.CopyTo(buf)
		after := view.Count()
		if before == after {
			return buf, attempts, true
		}

		if attempts > r.config.ReadRetries {
			return buf, attempts, false
		}
		if err := limiter.Wait(ctx); err != nil {
			return buf, attempts, false
		}
	}
}

// newLimiter returns a limiter whose initial token is already spent, so
// every Wait lasts one RetryInterval.
func (r *Reader) newLimiter() *rate.Limiter {
	if r.config.RetryInterval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	limiter := rate.NewLimiter(rate.Every(r.config.RetryInterval), 1)
	limiter.Allow()
	return limiter
}
