//go:build 386 || arm || mips || mipsle

package shm

import "encoding/binary"

// timeT is the legacy 32-bit time_t. Producers built with
// _TIME_BITS=64 on these platforms use a different layout.
type timeT = int32

func getTimeT(b []byte) int64 {
	return int64(int32(binary.NativeEndian.Uint32(b)))
}

func putTimeT(b []byte, v int64) {
	binary.NativeEndian.PutUint32(b, uint32(int32(v)))
}
