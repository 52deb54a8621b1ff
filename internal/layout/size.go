// Package layout computes tensor byte sizes and the padding used to pack
// several values into one contiguous memory pool.
//
// All arithmetic is overflow-checked: sizes are uint32 like the locations that
// reference them, and a product or sum that does not fit is reported rather
// than wrapped.
package layout

import (
	"errors"
	"math"
	"math/bits"

	"github.com/born-ml/nncore/internal/types"
)

// MaxSize is the value SizeOf saturates to when the true size does not fit.
const MaxSize = math.MaxUint32

// ErrOverflow is returned when a size or offset computation exceeds MaxSize.
var ErrOverflow = errors.New("size computation overflows uint32")

// CheckedSizeOf returns the number of bytes needed to store a value of type t
// with the given dimensions.
//
// The size is the element width times the product of dims for every type; an
// empty dimension list is a product of 1, so a scalar occupies its fixed
// width, and any zero dimension yields an empty (zero-byte) value.
//
// t is assumed to be valid; unknown types have width 0.
func CheckedSizeOf(t types.OperandType, dims []uint32) (uint32, error) {
	// An empty tensor is valid regardless of the other dimensions.
	for _, d := range dims {
		if d == 0 {
			return 0, nil
		}
	}

	size := t.Size()
	for _, d := range dims {
		hi, lo := bits.Mul32(size, d)
		if hi != 0 {
			return MaxSize, ErrOverflow
		}
		size = lo
	}
	return size, nil
}

// SizeOf is CheckedSizeOf saturating to MaxSize on overflow.
func SizeOf(t types.OperandType, dims []uint32) uint32 {
	size, err := CheckedSizeOf(t, dims)
	if err != nil {
		return MaxSize
	}
	return size
}

// NumElements returns the product of dims and whether it fits in uint32.
// An empty dims slice has one element.
func NumElements(dims []uint32) (uint32, bool) {
	for _, d := range dims {
		if d == 0 {
			return 0, true
		}
	}

	n := uint32(1)
	for _, d := range dims {
		hi, lo := bits.Mul32(n, d)
		if hi != 0 {
			return 0, false
		}
		n = lo
	}
	return n, true
}

// SizeFromInts combines two 32-bit halves into a 64-bit size, as produced by
// callers that can only pass int32 values.
func SizeFromInts(lower, higher int32) uint64 {
	return uint64(uint32(lower)) | uint64(uint32(higher))<<32
}

// EndOffset returns offset+length, reporting ErrOverflow when the sum does not
// fit in uint32.
func EndOffset(offset, length uint32) (uint32, error) {
	end, carry := bits.Add32(offset, length, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return end, nil
}
