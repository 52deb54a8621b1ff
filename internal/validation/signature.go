package validation

import (
	"fmt"

	"github.com/born-ml/nncore/internal/layout"
	"github.com/born-ml/nncore/internal/model"
	"github.com/born-ml/nncore/internal/types"
)

// argKind constrains the operand accepted at one input or output slot.
type argKind uint8

const (
	// argData is a float32 or quant8 value. All argData slots of one
	// operation must share the same family.
	argData argKind = iota
	argFloat
	// argOptFloat is a TENSOR_FLOAT32 that may be omitted (NO_VALUE).
	argOptFloat
	argQuant8
	argInt32Tensor
	argAnyTensor
	// argBias follows the data family: TENSOR_FLOAT32 for float32 data and
	// TENSOR_INT32 for quant8 data.
	argBias
	argInt32
	argFloat32
)

func (k argKind) String() string {
	switch k {
	case argData:
		return "TENSOR_FLOAT32 or TENSOR_QUANT8_ASYMM"
	case argFloat, argOptFloat:
		return "TENSOR_FLOAT32"
	case argQuant8:
		return "TENSOR_QUANT8_ASYMM"
	case argInt32Tensor:
		return "TENSOR_INT32"
	case argAnyTensor:
		return "tensor"
	case argBias:
		return "bias tensor"
	case argInt32:
		return "INT32"
	case argFloat32:
		return "FLOAT32"
	default:
		return "unknown"
	}
}

// shapeRule relates the dimensions of an operation's operands.
type shapeRule uint8

const (
	shapeNone shapeRule = iota
	// shapeBroadcast: output 0 is the broadcast of inputs 0 and 1.
	shapeBroadcast
	// shapeSame: output 0 has exactly the shape of input 0.
	shapeSame
	// shapeRank4: input 0 and output 0 are 4-D.
	shapeRank4
	// shapeReshape: input 0 and output 0 hold the same number of elements.
	shapeReshape
	// shapeConcat: every tensor input and output 0 have the same rank.
	shapeConcat
)

// signature is the fixed contract of one operation type.
type signature struct {
	// inputs lists the accepted input lists; the operation must match one
	// of them exactly.
	inputs [][]argKind
	// When minVariadic > 0, inputs is ignored: the operation takes at least
	// minVariadic operands of kind variadic followed by trailing.
	variadic    argKind
	minVariadic int
	trailing    []argKind

	outputs []argKind
	shape   shapeRule
}

func repeat(k argKind, n int) []argKind {
	out := make([]argKind, n)
	for i := range out {
		out[i] = k
	}
	return out
}

func cat(lists ...[]argKind) []argKind {
	var out []argKind
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

func one(k argKind) []argKind { return []argKind{k} }

var (
	elementwise = signature{
		inputs:  [][]argKind{{argData, argData}, {argData, argData, argInt32}},
		outputs: one(argData),
		shape:   shapeBroadcast,
	}
	unaryData = signature{
		inputs:  [][]argKind{{argData}},
		outputs: one(argData),
		shape:   shapeSame,
	}
	unaryFloat = signature{
		inputs:  [][]argKind{{argFloat}},
		outputs: one(argFloat),
		shape:   shapeSame,
	}
)

// pool builds the signature of a 2-D pooling operation: implicit padding
// (scheme, strides, filter, activation) or explicit padding (four paddings,
// strides, filter, activation).
func pool(data argKind) signature {
	return signature{
		inputs: [][]argKind{
			cat(one(data), repeat(argInt32, 6)),
			cat(one(data), repeat(argInt32, 9)),
		},
		outputs: one(data),
		shape:   shapeRank4,
	}
}

// conv builds a convolution signature with extra trailing scalar inputs
// (the depth multiplier for depthwise convolution).
func conv(extra int) signature {
	head := []argKind{argData, argData, argBias}
	return signature{
		inputs: [][]argKind{
			cat(head, repeat(argInt32, 4+extra)),
			cat(head, repeat(argInt32, 7+extra)),
		},
		outputs: one(argData),
		shape:   shapeRank4,
	}
}

var signatures = [types.NumOperationTypes]signature{
	types.Add:           elementwise,
	types.AveragePool2D: pool(argData),
	types.Concatenation: {
		variadic:    argData,
		minVariadic: 1,
		trailing:    one(argInt32),
		outputs:     one(argData),
		shape:       shapeConcat,
	},
	types.Conv2D:          conv(0),
	types.DepthwiseConv2D: conv(1),
	types.DepthToSpace: {
		inputs:  [][]argKind{{argData, argInt32}},
		outputs: one(argData),
		shape:   shapeRank4,
	},
	types.Dequantize: {
		inputs:  [][]argKind{{argQuant8}},
		outputs: one(argFloat),
		shape:   shapeSame,
	},
	types.EmbeddingLookup: {
		inputs:  [][]argKind{{argInt32Tensor, argAnyTensor}},
		outputs: one(argAnyTensor),
	},
	types.Floor: unaryFloat,
	types.FullyConnected: {
		inputs:  [][]argKind{{argData, argData, argBias, argInt32}},
		outputs: one(argData),
	},
	types.HashtableLookup: {
		inputs:  [][]argKind{{argInt32Tensor, argInt32Tensor, argAnyTensor}},
		outputs: []argKind{argAnyTensor, argQuant8},
	},
	types.L2Normalization: unaryFloat,
	types.L2Pool2D:        pool(argFloat),
	types.LocalResponseNormalization: {
		inputs:  [][]argKind{{argFloat, argInt32, argFloat32, argFloat32, argFloat32}},
		outputs: one(argFloat),
		shape:   shapeSame,
	},
	types.Logistic: unaryData,
	types.LSHProjection: {
		inputs:  [][]argKind{{argFloat, argAnyTensor, argOptFloat, argInt32}},
		outputs: one(argInt32Tensor),
	},
	types.LSTM: {
		// input; input-to-gate weights; recurrent weights; peepholes;
		// gate biases; projection weight and bias; output and cell state;
		// activation, cell clip, projection clip.
		inputs: [][]argKind{cat(
			one(argFloat),
			one(argOptFloat), repeat(argFloat, 3),
			one(argOptFloat), repeat(argFloat, 3),
			repeat(argOptFloat, 3),
			one(argOptFloat), repeat(argFloat, 3),
			repeat(argOptFloat, 2),
			repeat(argFloat, 2),
			[]argKind{argInt32, argFloat32, argFloat32},
		)},
		outputs: repeat(argFloat, 4),
	},
	types.MaxPool2D: pool(argData),
	types.Mul:       elementwise,
	types.Relu:      unaryData,
	types.Relu1:     unaryData,
	types.Relu6:     unaryData,
	types.Reshape: {
		inputs:  [][]argKind{{argData, argInt32Tensor}},
		outputs: one(argData),
		shape:   shapeReshape,
	},
	types.ResizeBilinear: {
		inputs:  [][]argKind{{argFloat, argInt32, argInt32}},
		outputs: one(argFloat),
		shape:   shapeRank4,
	},
	types.RNN: {
		inputs:  [][]argKind{cat(repeat(argFloat, 5), one(argInt32))},
		outputs: repeat(argFloat, 2),
	},
	types.Softmax: {
		inputs:  [][]argKind{{argData, argFloat32}},
		outputs: one(argData),
		shape:   shapeSame,
	},
	types.SpaceToDepth: {
		inputs:  [][]argKind{{argData, argInt32}},
		outputs: one(argData),
		shape:   shapeRank4,
	},
	types.SVDF: {
		inputs:  [][]argKind{cat(repeat(argFloat, 3), one(argOptFloat), one(argFloat), repeat(argInt32, 2))},
		outputs: repeat(argFloat, 2),
	},
	types.Tanh: unaryFloat,
}

// mismatch describes why an operation does not fit its signature.
type mismatch struct {
	position int // NoIndex for arity and shape failures
	details  string
}

func mismatchf(position int, format string, args ...any) *mismatch {
	return &mismatch{position: position, details: fmt.Sprintf(format, args...)}
}

// checkSignature checks arity, operand types and shapes of op against the
// signature of its type. Operand indices must already be in range.
func checkSignature(m *model.Model, op *model.Operation) *mismatch {
	if op.Type.IsOEM() {
		// Vendor operations define their own contracts; only require that
		// they consume and produce something.
		if len(op.Inputs) == 0 || len(op.Outputs) == 0 {
			return mismatchf(NoIndex, "%s needs at least one input and one output", op.Type)
		}
		return nil
	}

	sig := &signatures[op.Type]
	inputs, ok := sig.match(len(op.Inputs))
	if !ok {
		return mismatchf(NoIndex, "%s does not accept %d inputs", op.Type, len(op.Inputs))
	}
	if len(op.Outputs) != len(sig.outputs) {
		return mismatchf(NoIndex, "%s has %d outputs, want %d", op.Type, len(op.Outputs), len(sig.outputs))
	}

	var family types.Family
	for p, idx := range op.Inputs {
		if mm := checkArg(&m.Operands[idx], inputs.at(p), &family); mm != "" {
			return mismatchf(p, "input operand %d: %s", idx, mm)
		}
	}
	for p, idx := range op.Outputs {
		if mm := checkArg(&m.Operands[idx], sig.outputs[p], &family); mm != "" {
			return mismatchf(len(op.Inputs)+p, "output operand %d: %s", idx, mm)
		}
	}

	return checkShape(m, op, sig)
}

// inputKinds resolves the kind of each input slot once an input list has
// been matched.
type inputKinds struct {
	sig   *signature
	list  []argKind
	fixed int // number of variadic operands
}

func (k inputKinds) at(p int) argKind {
	if k.sig.minVariadic == 0 {
		return k.list[p]
	}
	if p < k.fixed {
		return k.sig.variadic
	}
	return k.sig.trailing[p-k.fixed]
}

// match selects the input list for an operation with n inputs.
func (s *signature) match(n int) (inputKinds, bool) {
	if s.minVariadic > 0 {
		fixed := n - len(s.trailing)
		if fixed < s.minVariadic {
			return inputKinds{}, false
		}
		return inputKinds{sig: s, fixed: fixed}, true
	}

	for _, in := range s.inputs {
		if len(in) == n {
			return inputKinds{sig: s, list: in}, true
		}
	}
	return inputKinds{}, false
}

// checkArg returns a description of why o does not fit kind, or "".
// family tracks the shared family of argData slots.
func checkArg(o *model.Operand, kind argKind, family *types.Family) string {
	if o.Lifetime == model.NoValue {
		if kind == argOptFloat {
			return ""
		}
		return "omitted operand in a required slot"
	}

	t := o.Type
	ok := true
	switch kind {
	case argData:
		f := t.Family()
		switch {
		case f != types.FamilyFloat32 && f != types.FamilyQuant8:
			ok = false
		case *family == types.FamilyNone:
			*family = f
		case *family != f:
			return fmt.Sprintf("%s does not match %s data", t, *family)
		}
	case argFloat, argOptFloat:
		ok = t == types.TensorFloat32
	case argQuant8:
		ok = t == types.TensorQuant8Asymm
	case argInt32Tensor:
		ok = t == types.TensorInt32
	case argAnyTensor:
		ok = t.Valid() && !t.IsScalar()
	case argBias:
		switch *family {
		case types.FamilyQuant8:
			ok = t == types.TensorInt32
		case types.FamilyFloat32:
			ok = t == types.TensorFloat32
		default:
			ok = t == types.TensorInt32 || t == types.TensorFloat32
		}
	case argInt32:
		ok = t == types.Int32
	case argFloat32:
		ok = t == types.Float32
	}

	if !ok {
		return fmt.Sprintf("got %s, want %s", t, kind)
	}
	return ""
}

func checkShape(m *model.Model, op *model.Operation, sig *signature) *mismatch {
	if sig.shape == shapeNone {
		return nil
	}

	in0 := m.Operands[op.Inputs[0]].Dimensions
	out := m.Operands[op.Outputs[0]].Dimensions

	switch sig.shape {
	case shapeBroadcast:
		in1 := m.Operands[op.Inputs[1]].Dimensions
		ok, equal := broadcastsTo(in0, in1, out)
		if !ok {
			return mismatchf(NoIndex, "input shapes %s and %s are not broadcastable", in0, in1)
		}
		if !equal {
			want, _ := model.Broadcast(in0, in1)
			return mismatchf(NoIndex, "output shape %s, want %s", out, want)
		}
	case shapeSame:
		if !in0.Equal(out) {
			return mismatchf(NoIndex, "output shape %s, want %s", out, in0)
		}
	case shapeRank4:
		if len(in0) != 4 || len(out) != 4 {
			return mismatchf(NoIndex, "input shape %s and output shape %s must be 4-D", in0, out)
		}
	case shapeReshape:
		a, okA := layout.NumElements(in0)
		b, okB := layout.NumElements(out)
		if !okA || !okB || a != b {
			return mismatchf(NoIndex, "cannot reshape %s into %s", in0, out)
		}
	case shapeConcat:
		for p := 0; p < len(op.Inputs)-len(sig.trailing); p++ {
			if d := m.Operands[op.Inputs[p]].Dimensions; len(d) != len(out) {
				return mismatchf(p, "input shape %s has a different rank than output shape %s", d, out)
			}
		}
	}
	return nil
}

// broadcastsTo reports whether a and b broadcast together and, if so,
// whether the result is out. Unlike model.Broadcast it does not allocate.
func broadcastsTo(a, b, out model.Shape) (ok, equal bool) {
	n := max(len(a), len(b))
	equal = len(out) == n
	for i := 0; i < n; i++ {
		ad, bd := dimFromEnd(a, i), dimFromEnd(b, i)
		var d uint32
		switch {
		case ad == bd, bd == 1:
			d = ad
		case ad == 1:
			d = bd
		default:
			return false, false
		}
		if equal && out[n-1-i] != d {
			equal = false
		}
	}
	return true, equal
}

// dimFromEnd returns the i-th dimension of s counting from the last, or 1
// past the leading edge.
func dimFromEnd(s model.Shape, i int) uint32 {
	if j := len(s) - 1 - i; j >= 0 {
		return s[j]
	}
	return 1
}
