// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package layout computes tensor byte sizes and packs values into shared
// memory pools.
//
// Sizes are element width times the product of the dimensions. Scalars have
// the width of their type and zero-sized dimensions make an empty tensor:
//
//	layout.SizeOf(model.TensorFloat32, []uint32{2, 3}) // 24
//	layout.SizeOf(model.Int32, nil)                    // 4
//
// Values are aligned by length: 1 byte for values shorter than 2 bytes, 2
// bytes for values shorter than 4 bytes, 4 bytes otherwise. [Packer] applies
// that rule while appending values to a pool:
//
//	placements, size, err := layout.Pack(1, 4, 2)
//	// offsets 0, 4, 8; size 10
package layout

import (
	"github.com/born-ml/nncore/internal/layout"
	"github.com/born-ml/nncore/internal/types"
)

// MaxSize is the value SizeOf saturates to on overflow.
const MaxSize = layout.MaxSize

// ErrOverflow is returned when a size or offset does not fit in 32 bits.
var ErrOverflow = layout.ErrOverflow

// SizeOf returns the byte size of an operand of type t with the given
// dimensions, saturating to MaxSize on overflow.
func SizeOf(t types.OperandType, dims []uint32) uint32 {
	return layout.SizeOf(t, dims)
}

// CheckedSizeOf is SizeOf that reports overflow as ErrOverflow.
func CheckedSizeOf(t types.OperandType, dims []uint32) (uint32, error) {
	return layout.CheckedSizeOf(t, dims)
}

// SizeFromInts combines two 32-bit halves into a 64-bit size.
func SizeFromInts(lower, higher int32) uint64 {
	return layout.SizeFromInts(lower, higher)
}

// AlignBytesNeeded returns the padding to insert at offset before a value of
// the given length.
func AlignBytesNeeded(offset uint32, length uint64) uint32 {
	return layout.AlignBytesNeeded(offset, length)
}

// Placement is the location of one value inside a packed pool.
type Placement = layout.Placement

// Packer appends aligned values to a pool. The zero value is ready to use.
type Packer = layout.Packer

// Pack places values of the given lengths in order.
func Pack(lengths ...uint32) ([]Placement, uint32, error) {
	return layout.Pack(lengths...)
}
