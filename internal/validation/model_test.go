package validation

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/nncore/internal/logutil"
	"github.com/born-ml/nncore/internal/model"
	"github.com/born-ml/nncore/internal/types"
)

// addModel returns ADD(scalar, tensor) -> [2, 3] with the given shape for
// the tensor input.
func addModel(shape model.Shape) *model.Model {
	return &model.Model{
		Operands: []model.Operand{
			{Type: types.Float32, Lifetime: model.ModelInput},
			{Type: types.TensorFloat32, Dimensions: shape, Lifetime: model.ModelInput},
			{Type: types.TensorFloat32, Dimensions: model.Shape{2, 3}, Lifetime: model.ModelOutput},
		},
		Operations: []model.Operation{
			{Type: types.Add, Inputs: []uint32{0, 1}, Outputs: []uint32{2}},
		},
		InputIndexes:  []uint32{0, 1},
		OutputIndexes: []uint32{2},
	}
}

func requireCode(t *testing.T, err error, want Code) *ValidationError {
	t.Helper()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, want, ve.Code, ve.Error())
	assert.ErrorIs(t, err, want.Err())
	return ve
}

func TestValidateModel_Add(t *testing.T) {
	require.NoError(t, ValidateModel(addModel(model.Shape{2, 3}), DefaultConfig()))

	err := ValidateModel(addModel(model.Shape{2, 4}), DefaultConfig())
	ve := requireCode(t, err, ArityOrTypeMismatch)
	assert.Equal(t, SubjectOperation, ve.Subject)
	assert.Equal(t, 0, ve.Index)
}

func TestValidateModel_ScalarTypedOperands(t *testing.T) {
	scalarAdd := func(shape model.Shape) *model.Model {
		m := addModel(shape)
		m.Operands[1].Type = types.Float32
		m.Operands[2].Type = types.Float32
		return m
	}
	require.NoError(t, ValidateModel(scalarAdd(model.Shape{2, 3}), DefaultConfig()))

	ve := requireCode(t, ValidateModel(scalarAdd(model.Shape{2, 4}), DefaultConfig()), ArityOrTypeMismatch)
	assert.Equal(t, SubjectOperation, ve.Subject)
	assert.Equal(t, 0, ve.Index)
}

func TestValidateModel_Failures(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(m *model.Model)
		code     Code
		subject  Subject
		index    int
		position int
	}{
		{
			name:    "unknown operand type",
			mutate:  func(m *model.Model) { m.Operands[1].Type = types.OperandType(types.NumOperandTypes) },
			code:    InvalidTypeCode,
			subject: SubjectOperand, index: 1, position: NoIndex,
		},
		{
			name:    "type code between core and oem ranges",
			mutate:  func(m *model.Model) { m.Operands[2].Type = types.OEMCodeBase - 1 },
			code:    InvalidTypeCode,
			subject: SubjectOperand, index: 2, position: NoIndex,
		},
		{
			name: "quantized zero scale",
			mutate: func(m *model.Model) {
				m.Operands[1].Type = types.TensorQuant8Asymm
			},
			code:    InvalidOperand,
			subject: SubjectOperand, index: 1, position: NoIndex,
		},
		{
			name: "quantized infinite scale",
			mutate: func(m *model.Model) {
				m.Operands[1].Type = types.TensorQuant8Asymm
				m.Operands[1].Scale = float32(math.Inf(1))
			},
			code:    InvalidOperand,
			subject: SubjectOperand, index: 1, position: NoIndex,
		},
		{
			name: "quantized zero point out of range",
			mutate: func(m *model.Model) {
				m.Operands[1].Type = types.TensorQuant8Asymm
				m.Operands[1].Scale = 0.5
				m.Operands[1].ZeroPoint = 256
			},
			code:    InvalidOperand,
			subject: SubjectOperand, index: 1, position: NoIndex,
		},
		{
			name:    "rank over limit",
			mutate:  func(m *model.Model) { m.Operands[1].Dimensions = model.Shape{1, 1, 1, 1, 1, 1, 1, 1, 1} },
			code:    ShapeTooLarge,
			subject: SubjectOperand, index: 1, position: NoIndex,
		},
		{
			name:    "dimension over limit",
			mutate:  func(m *model.Model) { m.Operands[2].Dimensions = model.Shape{2, DefaultMaxDimension + 1} },
			code:    ShapeTooLarge,
			subject: SubjectOperand, index: 2, position: 1,
		},
		{
			name:    "size overflow",
			mutate:  func(m *model.Model) { m.Operands[1].Dimensions = model.Shape{1 << 16, 1 << 16} },
			code:    ArithmeticOverflow,
			subject: SubjectOperand, index: 1, position: NoIndex,
		},
		{
			name:    "unknown operation type",
			mutate:  func(m *model.Model) { m.Operations[0].Type = types.OperationType(types.NumOperationTypes) },
			code:    InvalidOperationCode,
			subject: SubjectOperation, index: 0, position: NoIndex,
		},
		{
			name:    "input index equals operand count",
			mutate:  func(m *model.Model) { m.Operations[0].Inputs = []uint32{0, 3} },
			code:    IndexOutOfRange,
			subject: SubjectOperation, index: 0, position: 1,
		},
		{
			name:    "output index out of range",
			mutate:  func(m *model.Model) { m.Operations[0].Outputs = []uint32{math.MaxUint32} },
			code:    IndexOutOfRange,
			subject: SubjectOperation, index: 0, position: 2,
		},
		{
			name:    "too few inputs",
			mutate:  func(m *model.Model) { m.Operations[0].Inputs = []uint32{0} },
			code:    ArityOrTypeMismatch,
			subject: SubjectOperation, index: 0, position: NoIndex,
		},
		{
			name:    "wrong input type",
			mutate:  func(m *model.Model) { m.Operands[0].Type = types.Int32 },
			code:    ArityOrTypeMismatch,
			subject: SubjectOperation, index: 0, position: 0,
		},
		{
			name:    "declared input out of range",
			mutate:  func(m *model.Model) { m.InputIndexes = []uint32{0, 5} },
			code:    IndexOutOfRange,
			subject: SubjectModelInput, index: 1, position: NoIndex,
		},
		{
			name:    "declared output repeated",
			mutate:  func(m *model.Model) { m.OutputIndexes = []uint32{2, 2} },
			code:    DuplicateOperand,
			subject: SubjectModelOutput, index: 1, position: NoIndex,
		},
		{
			name: "orphan operand",
			mutate: func(m *model.Model) {
				m.Operands = append(m.Operands, model.Operand{Type: types.TensorFloat32, Dimensions: model.Shape{2}})
			},
			code:    OrphanOperand,
			subject: SubjectOperand, index: 3, position: NoIndex,
		},
		{
			name:    "model input not declared",
			mutate:  func(m *model.Model) { m.InputIndexes = []uint32{0} },
			code:    InvalidOperand,
			subject: SubjectOperand, index: 1, position: NoIndex,
		},
		{
			name:    "declared input tagged as output",
			mutate:  func(m *model.Model) { m.Operands[1].Lifetime = model.ModelOutput },
			code:    InvalidOperand,
			subject: SubjectOperand, index: 1, position: NoIndex,
		},
		{
			name:    "declared input tagged as temporary",
			mutate:  func(m *model.Model) { m.Operands[0].Lifetime = model.TemporaryVariable },
			code:    InvalidOperand,
			subject: SubjectOperand, index: 0, position: NoIndex,
		},
		{
			name:    "model output not declared",
			mutate:  func(m *model.Model) { m.OutputIndexes = nil },
			code:    InvalidOperand,
			subject: SubjectOperand, index: 2, position: NoIndex,
		},
		{
			name:    "declared output tagged as temporary",
			mutate:  func(m *model.Model) { m.Operands[2].Lifetime = model.TemporaryVariable },
			code:    InvalidOperand,
			subject: SubjectOperand, index: 2, position: NoIndex,
		},
		{
			name: "produced operand tagged as input",
			mutate: func(m *model.Model) {
				m.Operands[2].Lifetime = model.ModelInput
			},
			code:    InvalidOperand,
			subject: SubjectOperand, index: 2, position: NoIndex,
		},
		{
			name: "two producers",
			mutate: func(m *model.Model) {
				m.Operations = append(m.Operations, m.Operations[0])
			},
			code:    DuplicateOperand,
			subject: SubjectOperation, index: 1, position: 2,
		},
		{
			name:    "operation writes model input",
			mutate:  func(m *model.Model) { m.Operations[0].Outputs = []uint32{1} },
			code:    DuplicateOperand,
			subject: SubjectOperation, index: 0, position: 2,
		},
		{
			name:    "unknown lifetime",
			mutate:  func(m *model.Model) { m.Operands[2].Lifetime = model.Lifetime(42) },
			code:    InvalidOperand,
			subject: SubjectOperand, index: 2, position: NoIndex,
		},
		{
			name: "output with location",
			mutate: func(m *model.Model) {
				m.Operands[2].Location = model.DataLocation{Length: 24}
			},
			code:    InvalidOperand,
			subject: SubjectOperand, index: 2, position: NoIndex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := addModel(model.Shape{2, 3})
			tt.mutate(m)

			ve := requireCode(t, ValidateModel(m, DefaultConfig()), tt.code)
			assert.Equal(t, tt.subject, ve.Subject)
			assert.Equal(t, tt.index, ve.Index)
			assert.Equal(t, tt.position, ve.Position)
		})
	}
}

func TestValidateModel_Limits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Limits.MaxOperands = 2

	ve := requireCode(t, ValidateModel(addModel(model.Shape{2, 3}), cfg), ShapeTooLarge)
	assert.Equal(t, SubjectModel, ve.Subject)
	assert.Equal(t, NoIndex, ve.Index)

	cfg = DefaultConfig()
	cfg.Limits.MaxRank = 1
	ve = requireCode(t, ValidateModel(addModel(model.Shape{2, 3}), cfg), ShapeTooLarge)
	assert.Equal(t, 1, ve.Index)

	// Zero limits mean defaults.
	cfg = DefaultConfig()
	cfg.Limits = Limits{}
	assert.NoError(t, ValidateModel(addModel(model.Shape{2, 3}), cfg))
}

func TestValidateModel_Empty(t *testing.T) {
	assert.NoError(t, ValidateModel(&model.Model{}, DefaultConfig()))
}

func TestValidateModel_EmptyTensor(t *testing.T) {
	m := addModel(model.Shape{0, 3})
	m.Operands[2].Dimensions = model.Shape{0, 3}
	assert.NoError(t, ValidateModel(m, DefaultConfig()))
}

func TestValidateModel_Partial(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ModePartial

	// Signature and provenance problems are tolerated.
	m := addModel(model.Shape{2, 4})
	m.InputIndexes = []uint32{0}
	m.Operations = append(m.Operations, model.Operation{Type: types.Softmax, Inputs: []uint32{0}})
	assert.NoError(t, ValidateModel(m, cfg))

	// Range and type checks still apply.
	m = addModel(model.Shape{2, 3})
	m.Operations[0].Inputs = []uint32{0, 3}
	requireCode(t, ValidateModel(m, cfg), IndexOutOfRange)

	m = addModel(model.Shape{2, 3})
	m.Operands[0].Type = types.OperandType(999)
	requireCode(t, ValidateModel(m, cfg), InvalidTypeCode)

	m = addModel(model.Shape{2, 3})
	m.InputIndexes = []uint32{1, 1}
	requireCode(t, ValidateModel(m, cfg), DuplicateOperand)
}

func TestValidateModel_InputsMayAlsoBeOutputs(t *testing.T) {
	m := addModel(model.Shape{2, 3})
	m.OutputIndexes = []uint32{2, 1}
	assert.NoError(t, ValidateModel(m, DefaultConfig()))
}

func TestValidateModel_Constants(t *testing.T) {
	constModel := func() *model.Model {
		m := addModel(model.Shape{2, 3})
		m.Operands[0].Lifetime = model.ConstantCopy
		m.Operands[0].Location = model.DataLocation{Offset: 4, Length: 4}
		m.OperandValues = make([]byte, 8)
		m.Operands[1].Lifetime = model.ConstantReference
		m.Operands[1].Location = model.DataLocation{PoolIndex: 1, Offset: 8, Length: 24}
		m.Pools = []uint64{0, 32}
		m.InputIndexes = nil
		return m
	}
	require.NoError(t, ValidateModel(constModel(), DefaultConfig()))

	tests := []struct {
		name   string
		mutate func(m *model.Model)
		code   Code
		index  int
	}{
		{"copy length short", func(m *model.Model) { m.Operands[0].Location.Length = 3 }, SizeMismatch, 0},
		{"copy past values", func(m *model.Model) { m.OperandValues = m.OperandValues[:7] }, OffsetOutOfBounds, 0},
		{"copy offset overflow", func(m *model.Model) { m.Operands[0].Location.Offset = math.MaxUint32 - 2 }, ArithmeticOverflow, 0},
		{"reference pool out of range", func(m *model.Model) { m.Operands[1].Location.PoolIndex = 2 }, IndexOutOfRange, 1},
		{"reference past pool", func(m *model.Model) { m.Pools[1] = 31 }, OffsetOutOfBounds, 1},
		{"reference length long", func(m *model.Model) { m.Operands[1].Location.Length = 25 }, SizeMismatch, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := constModel()
			tt.mutate(m)
			ve := requireCode(t, ValidateModel(m, DefaultConfig()), tt.code)
			assert.Equal(t, SubjectOperand, ve.Subject)
			assert.Equal(t, tt.index, ve.Index)
		})
	}

	t.Run("shapes are checked before locations", func(t *testing.T) {
		m := constModel()
		m.Operands[0].Location.Length = 3
		m.Operands[1].Dimensions = model.Shape{1, 1, 1, 1, 1, 1, 1, 1, 1}
		ve := requireCode(t, ValidateModel(m, DefaultConfig()), ShapeTooLarge)
		assert.Equal(t, 1, ve.Index)
	})

	t.Run("constant declared as input", func(t *testing.T) {
		m := constModel()
		m.InputIndexes = []uint32{0}
		ve := requireCode(t, ValidateModel(m, DefaultConfig()), InvalidOperand)
		assert.Equal(t, SubjectModelInput, ve.Subject)
	})

	t.Run("operation writes constant", func(t *testing.T) {
		m := constModel()
		m.Operands[2] = m.Operands[1]
		m.OutputIndexes = nil
		requireCode(t, ValidateModel(m, DefaultConfig()), DuplicateOperand)
	})
}

func TestValidateModel_NoValue(t *testing.T) {
	m := addModel(model.Shape{2, 3})
	m.Operands[0].Lifetime = model.NoValue
	m.InputIndexes = []uint32{1}
	ve := requireCode(t, ValidateModel(m, DefaultConfig()), ArityOrTypeMismatch)
	assert.Equal(t, 0, ve.Position)

	// Omitted values cannot be declared inputs, even in partial mode.
	cfg := DefaultConfig()
	cfg.Mode = ModePartial
	m.InputIndexes = []uint32{0, 1}
	ve = requireCode(t, ValidateModel(m, cfg), InvalidOperand)
	assert.Equal(t, SubjectModelInput, ve.Subject)
}

func TestValidateModel_OEMOperation(t *testing.T) {
	m := addModel(model.Shape{7})
	m.Operands[2].Type = types.TensorOEMByte
	m.Operations[0].Type = types.OEMOperation
	require.NoError(t, ValidateModel(m, DefaultConfig()))

	m.Operations[0].Outputs = nil
	m.OutputIndexes = nil
	m.Operands = m.Operands[:2]
	requireCode(t, ValidateModel(m, DefaultConfig()), ArityOrTypeMismatch)
}

func TestValidateModel_DoesNotMutate(t *testing.T) {
	m := addModel(model.Shape{2, 4})
	before := m.String()
	_ = ValidateModel(m, DefaultConfig())
	assert.Equal(t, before, m.String())
}

func TestValidateOperand(t *testing.T) {
	o := &model.Operand{Type: types.TensorQuant8Asymm, Dimensions: model.Shape{1, 4}, Scale: 0.25, ZeroPoint: 128}
	require.NoError(t, ValidateOperand(o, 0, Limits{}))

	o.ZeroPoint = -1
	requireCode(t, ValidateOperand(o, 3, Limits{}), InvalidOperand)

	o.ZeroPoint = 0
	requireCode(t, ValidateOperand(o, 3, Limits{MaxDimension: 3}), ShapeTooLarge)
}

func TestValidateOperandList(t *testing.T) {
	assert.NoError(t, ValidateOperandList([]uint32{0, 1, 2}, 3, SubjectOperation, 4))
	assert.NoError(t, ValidateOperandList(nil, 0, SubjectOperation, 4))

	ve := requireCode(t, ValidateOperandList([]uint32{0, 3}, 3, SubjectOperation, 4), IndexOutOfRange)
	assert.Equal(t, 4, ve.Index)
	assert.Equal(t, 1, ve.Position)
}

func TestValidator_Logging(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Logger = logutil.NewLogger(&buf, logutil.LevelTrace)
	cfg.FailureLevel = slog.LevelWarn
	cfg.Tags = logutil.Tags(0).With(logutil.TagModel)
	v := New(cfg)

	require.NoError(t, v.Model(addModel(model.Shape{2, 3})))
	assert.Contains(t, buf.String(), "level=TRACE msg=\"validating model\"")
	assert.Contains(t, buf.String(), "model.operations.0=\"ADD([0, 1]) -> [2]\"")
	assert.Contains(t, buf.String(), "level=DEBUG msg=\"model validated\"")

	buf.Reset()
	require.Error(t, v.Model(addModel(model.Shape{2, 4})))
	assert.Contains(t, buf.String(), "level=WARN msg=\"model validation failed\"")
	assert.Contains(t, buf.String(), "error.code=arity_or_type_mismatch")
	assert.Contains(t, buf.String(), "error.index=0")
}

func TestValidator_NilLogger(t *testing.T) {
	v := New(Config{})
	assert.Equal(t, DefaultLimits(), v.Config().Limits)
	assert.Error(t, v.Model(addModel(model.Shape{9})))
}

func TestValidateModel_ErrorsAreSentinels(t *testing.T) {
	err := ValidateModel(addModel(model.Shape{2, 4}), DefaultConfig())
	assert.True(t, errors.Is(err, ErrArityOrTypeMismatch))
	assert.False(t, errors.Is(err, ErrSizeMismatch))
	assert.Equal(t, ArityOrTypeMismatch, CodeOf(err))
}
