// Package model defines the computation graph and invocation structures that
// the validators inspect.
//
// A Model is an arena: operands and operations live in flat slices and refer
// to each other only through uint32 indices. Nothing in this package checks
// those indices; see the validation package for that.
//
// Models are constructed once (typically by a transport layer), validated
// once, and then treated as immutable. An immutable Model can be shared by any
// number of goroutines without locking.
package model

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/born-ml/nncore/internal/types"
)

// Lifetime describes where an operand's value comes from.
type Lifetime uint8

// Operand lifetimes.
const (
	// TemporaryVariable is produced by one operation and consumed by others.
	TemporaryVariable Lifetime = iota
	// ModelInput is supplied by the request.
	ModelInput
	// ModelOutput is written to the request.
	ModelOutput
	// ConstantCopy lives in Model.OperandValues.
	ConstantCopy
	// ConstantReference lives in one of Model.Pools.
	ConstantReference
	// NoValue marks an omitted optional operation input.
	NoValue

	numLifetimes
)

var lifetimeNames = [numLifetimes]string{
	TemporaryVariable: "TEMPORARY_VARIABLE",
	ModelInput:        "MODEL_INPUT",
	ModelOutput:       "MODEL_OUTPUT",
	ConstantCopy:      "CONSTANT_COPY",
	ConstantReference: "CONSTANT_REFERENCE",
	NoValue:           "NO_VALUE",
}

// Valid reports whether l is a known lifetime.
func (l Lifetime) Valid() bool { return l < numLifetimes }

// IsConstant reports whether the value is stored with the model.
func (l Lifetime) IsConstant() bool {
	return l == ConstantCopy || l == ConstantReference
}

func (l Lifetime) String() string {
	if l.Valid() {
		return lifetimeNames[l]
	}
	return fmt.Sprintf("unknown(%d)", uint8(l))
}

// MarshalText implements encoding.TextMarshaler.
func (l Lifetime) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Names are matched
// case-insensitively and dashes may stand in for underscores.
func (l *Lifetime) UnmarshalText(text []byte) error {
	name := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(string(text)), "-", "_"))
	if name == "" {
		*l = TemporaryVariable
		return nil
	}
	for i, n := range lifetimeNames {
		if n == name {
			*l = Lifetime(i)
			return nil
		}
	}
	return fmt.Errorf("unknown operand lifetime %q", string(text))
}

// DataLocation names a region of memory: a pool, a byte offset into it and a
// byte length.
type DataLocation struct {
	PoolIndex uint32 `yaml:"pool"`
	Offset    uint32 `yaml:"offset"`
	Length    uint32 `yaml:"length"`
}

// IsZero reports whether every field of d is zero.
func (d DataLocation) IsZero() bool {
	return d == DataLocation{}
}

func (d DataLocation) String() string {
	return fmt.Sprintf("{pool: %d, offset: %d, length: %d}", d.PoolIndex, d.Offset, d.Length)
}

// Shape is an ordered list of dimension sizes. An empty shape is a scalar.
type Shape []uint32

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// String renders the shape as "[2, 3]".
func (s Shape) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, d := range s {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatUint(uint64(d), 10))
	}
	b.WriteByte(']')
	return b.String()
}

// Broadcast returns the shape produced by NumPy-style broadcasting of a and b,
// or false if the shapes are incompatible. A dimension of 1 stretches to
// match the other operand, and missing leading dimensions are treated as 1.
func Broadcast(a, b Shape) (Shape, bool) {
	n := max(len(a), len(b))
	out := make(Shape, n)
	for i := 0; i < n; i++ {
		ad, bd := uint32(1), uint32(1)
		if j := len(a) - 1 - i; j >= 0 {
			ad = a[j]
		}
		if j := len(b) - 1 - i; j >= 0 {
			bd = b[j]
		}

		switch {
		case ad == bd, bd == 1:
			out[n-1-i] = ad
		case ad == 1:
			out[n-1-i] = bd
		default:
			return nil, false
		}
	}
	return out, true
}

// Operand is a typed, shaped value node in the graph.
type Operand struct {
	Type       types.OperandType `yaml:"type"`
	Dimensions Shape             `yaml:"dimensions,flow"`

	// Quantization parameters, meaningful only for quantized types.
	Scale     float32 `yaml:"scale,omitempty"`
	ZeroPoint int32   `yaml:"zeroPoint,omitempty"`

	Lifetime Lifetime `yaml:"lifetime,omitempty"`
	// Location is used by ConstantCopy (offset into Model.OperandValues)
	// and ConstantReference (region of Model.Pools[PoolIndex]) operands.
	Location DataLocation `yaml:"location,omitempty"`
}

func (o Operand) String() string {
	s := fmt.Sprintf("%s%s", o.Type, o.Dimensions)
	if o.Type.IsQuantized() {
		s += fmt.Sprintf(" scale=%g zeroPoint=%d", o.Scale, o.ZeroPoint)
	}
	if o.Lifetime != TemporaryVariable {
		s += " " + o.Lifetime.String()
	}
	if o.Lifetime.IsConstant() {
		s += " @" + o.Location.String()
	}
	return s
}

// Operation is a computation node. Inputs and Outputs index into the owning
// Model's Operands.
type Operation struct {
	Type    types.OperationType `yaml:"type"`
	Inputs  []uint32            `yaml:"inputs,flow"`
	Outputs []uint32            `yaml:"outputs,flow"`
}

func (op Operation) String() string {
	return fmt.Sprintf("%s(%s) -> %s", op.Type, Shape(op.Inputs), Shape(op.Outputs))
}

// Model is a computation graph.
type Model struct {
	Operands      []Operand   `yaml:"operands"`
	Operations    []Operation `yaml:"operations"`
	InputIndexes  []uint32    `yaml:"inputs,flow"`
	OutputIndexes []uint32    `yaml:"outputs,flow"`

	// OperandValues backs ConstantCopy operands.
	OperandValues []byte `yaml:"-"`
	// Pools holds the byte size of each memory pool referenced by
	// ConstantReference operands.
	Pools []uint64 `yaml:"pools,omitempty,flow"`
}

// OperandCount returns the number of operands in the model.
func (m *Model) OperandCount() uint32 {
	return uint32(len(m.Operands))
}

// String returns a multi-line description of the model.
func (m *Model) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "model: %d operands, %d operations\n", len(m.Operands), len(m.Operations))
	fmt.Fprintf(&b, "inputs: %s\n", Shape(m.InputIndexes))
	fmt.Fprintf(&b, "outputs: %s\n", Shape(m.OutputIndexes))
	for i, o := range m.Operands {
		fmt.Fprintf(&b, "operand[%d]: %s\n", i, o)
	}
	for i, op := range m.Operations {
		fmt.Fprintf(&b, "operation[%d]: %s\n", i, op)
	}
	if len(m.OperandValues) > 0 || len(m.Pools) > 0 {
		fmt.Fprintf(&b, "operandValues: %d bytes, pools: %v\n", len(m.OperandValues), m.Pools)
	}
	return b.String()
}

// LogValue implements slog.LogValuer.
func (m *Model) LogValue() slog.Value {
	operands := make([]any, 0, 2*len(m.Operands))
	for i, o := range m.Operands {
		operands = append(operands, strconv.Itoa(i), o.String())
	}
	operations := make([]any, 0, 2*len(m.Operations))
	for i, op := range m.Operations {
		operations = append(operations, strconv.Itoa(i), op.String())
	}

	return slog.GroupValue(
		slog.String("inputs", Shape(m.InputIndexes).String()),
		slog.String("outputs", Shape(m.OutputIndexes).String()),
		slog.Group("operands", operands...),
		slog.Group("operations", operations...),
		slog.Int("operandValues", len(m.OperandValues)),
		slog.Int("pools", len(m.Pools)),
	)
}
