package okmongo

import (
	"encoding/binary"
	"math"
)

// The wire format is little-endian throughout; this package assumes nothing
// about host byte order and converts explicitly at every boundary.

func putInt32(dst []byte, v int32) {
	binary.LittleEndian.PutUint32(dst, uint32(v))
}

func getInt32(src []byte) int32 {
	return int32(binary.LittleEndian.Uint32(src))
}

func putInt64(dst []byte, v int64) {
	binary.LittleEndian.PutUint64(dst, uint64(v))
}

func getInt64(src []byte) int64 {
	return int64(binary.LittleEndian.Uint64(src))
}

func putFloat64(dst []byte, v float64) {
	binary.LittleEndian.PutUint64(dst, math.Float64bits(v))
}

func getFloat64(src []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(src))
}
