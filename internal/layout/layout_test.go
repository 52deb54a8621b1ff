package layout

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/nncore/internal/types"
)

func TestSizeOf(t *testing.T) {
	tests := []struct {
		name string
		typ  types.OperandType
		dims []uint32
		want uint32
	}{
		{"float32 scalar", types.Float32, nil, 4},
		{"int32 scalar", types.Int32, nil, 4},
		{"uint32 scalar", types.Uint32, nil, 4},
		{"oem scalar", types.OEM, nil, 0},
		{"scalar with dims", types.Int32, []uint32{7, 7}, 196},
		{"float32 with dims", types.Float32, []uint32{2, 3}, 24},
		{"empty scalar", types.Float32, []uint32{0}, 0},
		{"oem scalar with dims", types.OEM, []uint32{5}, 0},
		{"rank-0 tensor", types.TensorFloat32, nil, 4},
		{"float tensor", types.TensorFloat32, []uint32{2, 3}, 24},
		{"int tensor", types.TensorInt32, []uint32{5}, 20},
		{"quant8 tensor", types.TensorQuant8Asymm, []uint32{1, 224, 224, 3}, 224 * 224 * 3},
		{"oem byte tensor", types.TensorOEMByte, []uint32{16}, 16},
		{"empty tensor", types.TensorFloat32, []uint32{4, 0, 8}, 0},
		{"unknown type", types.OperandType(42), []uint32{2}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CheckedSizeOf(tt.typ, tt.dims)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, SizeOf(tt.typ, tt.dims))
		})
	}
}

func TestSizeOf_Multiplicative(t *testing.T) {
	dims := []uint32{3, 5}
	for _, typ := range types.OperandTypes() {
		base := SizeOf(typ, dims)
		for _, n := range []uint32{0, 1, 2, 7, 1024} {
			grown := append(append([]uint32{}, dims...), n)
			assert.Equal(t, base*n, SizeOf(typ, grown), "%s %v x %d", typ, dims, n)
		}
	}
}

func TestSizeOf_ScalarWidth(t *testing.T) {
	for _, typ := range types.OperandTypes() {
		if typ.IsScalar() {
			assert.Equal(t, typ.Size(), SizeOf(typ, nil), typ.String())
		}
	}
}

func TestSizeOf_Overflow(t *testing.T) {
	tests := []struct {
		name string
		typ  types.OperandType
		dims []uint32
	}{
		{"element width pushes over", types.TensorFloat32, []uint32{1 << 30}},
		{"product of dims", types.TensorQuant8Asymm, []uint32{1 << 16, 1 << 16}},
		{"max dims", types.TensorInt32, []uint32{math.MaxUint32, math.MaxUint32}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CheckedSizeOf(tt.typ, tt.dims)
			assert.True(t, errors.Is(err, ErrOverflow))
			assert.Equal(t, uint32(MaxSize), SizeOf(tt.typ, tt.dims))
		})
	}

	// A zero dimension wins over an overflowing prefix.
	size, err := CheckedSizeOf(types.TensorFloat32, []uint32{1 << 30, 1 << 30, 0})
	require.NoError(t, err)
	assert.Zero(t, size)

	// Exactly MaxSize still fits.
	size, err = CheckedSizeOf(types.TensorQuant8Asymm, []uint32{math.MaxUint32})
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), size)
}

func TestNumElements(t *testing.T) {
	n, ok := NumElements(nil)
	assert.True(t, ok)
	assert.Equal(t, uint32(1), n)

	n, ok = NumElements([]uint32{2, 3, 4})
	assert.True(t, ok)
	assert.Equal(t, uint32(24), n)

	n, ok = NumElements([]uint32{1 << 20, 1 << 20, 0})
	assert.True(t, ok)
	assert.Zero(t, n)

	_, ok = NumElements([]uint32{1 << 20, 1 << 20})
	assert.False(t, ok)
}

func TestSizeFromInts(t *testing.T) {
	assert.Equal(t, uint64(5), SizeFromInts(5, 0))
	assert.Equal(t, uint64(1)<<32, SizeFromInts(0, 1))
	assert.Equal(t, uint64(math.MaxUint32), SizeFromInts(-1, 0))
	assert.Equal(t, uint64(math.MaxUint64), SizeFromInts(-1, -1))
}

func TestEndOffset(t *testing.T) {
	end, err := EndOffset(100, 28)
	require.NoError(t, err)
	assert.Equal(t, uint32(128), end)

	end, err = EndOffset(math.MaxUint32-4, 4)
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), end)

	_, err = EndOffset(math.MaxUint32-3, 4)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestAlignBytesNeeded(t *testing.T) {
	tests := []struct {
		offset uint32
		length uint64
		want   uint32
	}{
		{0, 0, 0},
		{7, 0, 0},
		{7, 1, 0},
		{0, 2, 0},
		{1, 2, 1},
		{3, 3, 1},
		{4, 3, 0},
		{0, 4, 0},
		{1, 4, 3},
		{2, 4, 2},
		{3, 100, 1},
		{math.MaxUint32, 8, 1},
	}

	for _, tt := range tests {
		got := AlignBytesNeeded(tt.offset, tt.length)
		assert.Equal(t, tt.want, got, "offset=%d length=%d", tt.offset, tt.length)
	}
}

func TestAlignBytesNeeded_Minimal(t *testing.T) {
	for offset := uint32(0); offset < 64; offset++ {
		for length := uint64(0); length < 12; length++ {
			align := Alignment(length)
			pad := AlignBytesNeeded(offset, length)

			assert.Zero(t, (offset+pad)%align, "offset=%d length=%d", offset, length)
			assert.Less(t, pad, align, "padding must be minimal")
		}
	}
}

func TestPack(t *testing.T) {
	placements, total, err := Pack(1, 4, 2, 3, 24, 0)
	require.NoError(t, err)

	want := []Placement{
		{Offset: 0, Length: 1},
		{Offset: 4, Length: 4, Padding: 3},
		{Offset: 8, Length: 2},
		{Offset: 10, Length: 3},
		{Offset: 16, Length: 24, Padding: 3},
		{Offset: 40, Length: 0},
	}
	if diff := cmp.Diff(want, placements); diff != "" {
		t.Errorf("placements mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, uint32(40), total)
}

func TestPacker_Overflow(t *testing.T) {
	var p Packer
	_, err := p.Add(math.MaxUint32 - 1)
	require.NoError(t, err)

	_, err = p.Add(4)
	assert.ErrorIs(t, err, ErrOverflow)
	assert.Len(t, p.Placements(), 1, "failed add must not record a placement")
	assert.Equal(t, uint32(math.MaxUint32-1), p.Size())
}
