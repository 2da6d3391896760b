//go:build !(386 || arm || mips || mipsle)

package shm

import "encoding/binary"

// timeT is time_t on 64-bit platforms.
type timeT = int64

func getTimeT(b []byte) int64 {
	return int64(binary.NativeEndian.Uint64(b))
}

func putTimeT(b []byte, v int64) {
	binary.NativeEndian.PutUint64(b, uint64(v))
}
