// Package types defines the operand and operation codes understood by the runtime.
//
// Both code spaces are split into a closed core range starting at zero and a
// vendor (OEM) range starting at OEMCodeBase. A code is valid only when it falls
// inside one of the two ranges; there is no runtime registration.
package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Code space sizes.
const (
	// OEMCodeBase is the lowest code assigned to any vendor-defined type or operation.
	OEMCodeBase = 10000

	NumOperandTypes      = 6
	NumOperandTypesOEM   = 2
	NumOperationTypes    = 29
	NumOperationTypesOEM = 1
)

// IsValidCode reports whether code lies in the core range [0, coreCount) or in
// the vendor range [OEMCodeBase, OEMCodeBase+oemCount).
func IsValidCode(coreCount, oemCount, code uint32) bool {
	return code < coreCount || (code >= OEMCodeBase && code-OEMCodeBase < oemCount)
}

// OperandType identifies the element kind of an operand.
type OperandType uint32

// Operand types.
const (
	Float32           OperandType = 0
	Int32             OperandType = 1
	Uint32            OperandType = 2
	TensorFloat32     OperandType = 3
	TensorInt32       OperandType = 4
	TensorQuant8Asymm OperandType = 5

	OEM           OperandType = OEMCodeBase
	TensorOEMByte OperandType = OEMCodeBase + 1
)

// Family groups operand types that hold the same kind of element, regardless
// of whether they are scalars or tensors.
type Family uint8

// Element families.
const (
	FamilyNone Family = iota
	FamilyFloat32
	FamilyInt32
	FamilyUint32
	FamilyQuant8
	FamilyOEM
)

// TypeTrait contains metadata about an operand type.
type TypeTrait struct {
	Name      string
	Size      uint32 // Bytes per element; for scalars the size of the whole value.
	Scalar    bool
	Quantized bool
	Family    Family
}

var operandTraits = [NumOperandTypes]TypeTrait{
	Float32:           {Name: "FLOAT32", Size: 4, Scalar: true, Family: FamilyFloat32},
	Int32:             {Name: "INT32", Size: 4, Scalar: true, Family: FamilyInt32},
	Uint32:            {Name: "UINT32", Size: 4, Scalar: true, Family: FamilyUint32},
	TensorFloat32:     {Name: "TENSOR_FLOAT32", Size: 4, Family: FamilyFloat32},
	TensorInt32:       {Name: "TENSOR_INT32", Size: 4, Family: FamilyInt32},
	TensorQuant8Asymm: {Name: "TENSOR_QUANT8_ASYMM", Size: 1, Quantized: true, Family: FamilyQuant8},
}

// The OEM scalar is opaque and has no defined size.
var operandTraitsOEM = [NumOperandTypesOEM]TypeTrait{
	{Name: "OEM", Size: 0, Scalar: true, Family: FamilyOEM},
	{Name: "TENSOR_OEM_BYTE", Size: 1, Family: FamilyOEM},
}

// Valid reports whether t is a known core or OEM operand type.
func (t OperandType) Valid() bool {
	return IsValidCode(NumOperandTypes, NumOperandTypesOEM, uint32(t))
}

// Trait returns the metadata for t. Unknown types yield the zero TypeTrait.
func (t OperandType) Trait() TypeTrait {
	switch {
	case t < NumOperandTypes:
		return operandTraits[t]
	case t >= OEMCodeBase && t-OEMCodeBase < NumOperandTypesOEM:
		return operandTraitsOEM[t-OEMCodeBase]
	default:
		return TypeTrait{}
	}
}

// Size returns the byte width of one element of t.
func (t OperandType) Size() uint32 { return t.Trait().Size }

// IsScalar reports whether t is a scalar type.
func (t OperandType) IsScalar() bool { return t.Trait().Scalar }

// IsQuantized reports whether t carries scale and zero-point parameters.
func (t OperandType) IsQuantized() bool { return t.Trait().Quantized }

// Family returns the element family of t.
func (t OperandType) Family() Family { return t.Trait().Family }

func (t OperandType) String() string {
	if name := t.Trait().Name; name != "" {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint32(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t OperandType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *OperandType) UnmarshalText(text []byte) error {
	v, err := ParseOperandType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseOperandType parses an operand type from its name (case-insensitive) or
// from a decimal code. Decimal codes are accepted even when they are not valid
// so that callers can hand them to a validator.
func ParseOperandType(s string) (OperandType, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		return OperandType(n), nil
	}

	name := strings.ToUpper(s)
	for i := range operandTraits {
		if operandTraits[i].Name == name {
			return OperandType(i), nil
		}
	}
	for i := range operandTraitsOEM {
		if operandTraitsOEM[i].Name == name {
			return OperandType(OEMCodeBase + i), nil
		}
	}
	return 0, fmt.Errorf("unknown operand type %q", s)
}

// OperandTypes returns every valid operand type, core types first.
func OperandTypes() []OperandType {
	out := make([]OperandType, 0, NumOperandTypes+NumOperandTypesOEM)
	for i := range NumOperandTypes {
		out = append(out, OperandType(i))
	}
	for i := range NumOperandTypesOEM {
		out = append(out, OperandType(OEMCodeBase+i))
	}
	return out
}

func (f Family) String() string {
	switch f {
	case FamilyFloat32:
		return "float32"
	case FamilyInt32:
		return "int32"
	case FamilyUint32:
		return "uint32"
	case FamilyQuant8:
		return "quant8"
	case FamilyOEM:
		return "oem"
	default:
		return "none"
	}
}
