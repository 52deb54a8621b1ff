package validation

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"github.com/born-ml/nncore/internal/layout"
	"github.com/born-ml/nncore/internal/logutil"
	"github.com/born-ml/nncore/internal/model"
)

// Validator validates models and requests with a fixed configuration.
// It holds no per-call state and is safe for concurrent use.
type Validator struct {
	cfg    Config
	logger *slog.Logger
}

// New returns a Validator for cfg. Zero limits fall back to the defaults and
// a nil logger discards output.
func New(cfg Config) *Validator {
	cfg.Limits = cfg.Limits.withDefaults()
	logger := cfg.Logger
	if logger == nil {
		logger = logutil.Discard()
	}
	return &Validator{cfg: cfg, logger: logger}
}

// Config returns the effective configuration.
func (v *Validator) Config() Config {
	return v.cfg
}

// ValidateModel validates m with cfg. See Validator.Model.
func ValidateModel(m *model.Model, cfg Config) error {
	return New(cfg).Model(m)
}

// Model checks that m is a well-formed graph. It returns nil or a
// *ValidationError describing the first failed check.
func (v *Validator) Model(m *model.Model) error {
	if v.cfg.Tags.Has(logutil.TagModel) {
		logutil.Trace(v.logger, "validating model", "model", m)
	}

	err := v.model(m)
	if err != nil {
		v.fail("model validation failed", err)
		return err
	}
	v.logger.Debug("model validated",
		"operands", len(m.Operands),
		"operations", len(m.Operations),
		"mode", v.cfg.Mode)
	return nil
}

func (v *Validator) fail(msg string, err error) {
	v.logger.Log(context.Background(), v.cfg.FailureLevel, msg, "error", err)
}

func (v *Validator) model(m *model.Model) error {
	limits := v.cfg.Limits
	if uint64(len(m.Operands)) > uint64(limits.MaxOperands) {
		return newError(ShapeTooLarge, SubjectModel, NoIndex, NoIndex,
			"%d operands exceed the limit of %d", len(m.Operands), limits.MaxOperands)
	}
	if uint64(len(m.Operations)) > uint64(limits.MaxOperations) {
		return newError(ShapeTooLarge, SubjectModel, NoIndex, NoIndex,
			"%d operations exceed the limit of %d", len(m.Operations), limits.MaxOperations)
	}

	// Type codes first, so that later size checks only see known types.
	for i := range m.Operands {
		if err := validateOperandType(&m.Operands[i], i); err != nil {
			return err
		}
	}
	for i := range m.Operands {
		if err := validateOperandShape(&m.Operands[i], i, limits); err != nil {
			return err
		}
	}
	for i := range m.Operands {
		if err := validateOperandLocation(m, i); err != nil {
			return err
		}
	}

	for j := range m.Operations {
		if op := &m.Operations[j]; !op.Type.Valid() {
			return newError(InvalidOperationCode, SubjectOperation, j, NoIndex,
				"unknown operation type code %d", uint32(op.Type))
		}
	}

	count := m.OperandCount()
	for j := range m.Operations {
		op := &m.Operations[j]
		if err := ValidateOperandList(op.Inputs, count, SubjectOperation, j); err != nil {
			return err
		}
		if err := ValidateOperandList(op.Outputs, count, SubjectOperation, j); err != nil {
			// Output positions follow the inputs.
			var ve *ValidationError
			if errors.As(err, &ve) {
				ve.Position += len(op.Inputs)
			}
			return err
		}
	}

	if v.cfg.Mode == ModeStrict {
		for j := range m.Operations {
			if mm := checkSignature(m, &m.Operations[j]); mm != nil {
				return newError(ArityOrTypeMismatch, SubjectOperation, j, mm.position, "%s", mm.details)
			}
		}
	}

	return v.provenance(m)
}

// ValidateOperand checks a single operand in isolation: its type code,
// quantization parameters, shape against limits and byte size. Locations are
// not checked since they depend on the owning model.
func ValidateOperand(o *model.Operand, index int, limits Limits) error {
	if err := validateOperandType(o, index); err != nil {
		return err
	}
	return validateOperandShape(o, index, limits.withDefaults())
}

func validateOperandType(o *model.Operand, i int) error {
	if !o.Type.Valid() {
		return newError(InvalidTypeCode, SubjectOperand, i, NoIndex,
			"unknown operand type code %d", uint32(o.Type))
	}
	if o.Type.IsQuantized() {
		s := float64(o.Scale)
		if !(s > 0) || math.IsInf(s, 0) {
			return newError(InvalidOperand, SubjectOperand, i, NoIndex,
				"%s needs a finite positive scale, got %g", o.Type, o.Scale)
		}
		if o.ZeroPoint < 0 || o.ZeroPoint > 255 {
			return newError(InvalidOperand, SubjectOperand, i, NoIndex,
				"%s zero point %d outside [0, 255]", o.Type, o.ZeroPoint)
		}
	}
	return nil
}

func validateOperandShape(o *model.Operand, i int, limits Limits) error {
	if uint64(len(o.Dimensions)) > uint64(limits.MaxRank) {
		return newError(ShapeTooLarge, SubjectOperand, i, NoIndex,
			"rank %d exceeds the limit of %d", len(o.Dimensions), limits.MaxRank)
	}
	for p, d := range o.Dimensions {
		if d > limits.MaxDimension {
			return newError(ShapeTooLarge, SubjectOperand, i, p,
				"dimension %d exceeds the limit of %d", d, limits.MaxDimension)
		}
	}
	if _, err := layout.CheckedSizeOf(o.Type, o.Dimensions); err != nil {
		return newError(ArithmeticOverflow, SubjectOperand, i, NoIndex,
			"size of %s%s: %v", o.Type, o.Dimensions, err)
	}
	return nil
}

func validateOperandLocation(m *model.Model, i int) error {
	o := &m.Operands[i]
	loc := o.Location

	var region uint64
	switch o.Lifetime {
	case model.ConstantCopy:
		region = uint64(len(m.OperandValues))
	case model.ConstantReference:
		if uint64(loc.PoolIndex) >= uint64(len(m.Pools)) {
			return newError(IndexOutOfRange, SubjectOperand, i, NoIndex,
				"pool %d out of range, model has %d pools", loc.PoolIndex, len(m.Pools))
		}
		region = m.Pools[loc.PoolIndex]
	default:
		if !o.Lifetime.Valid() {
			return newError(InvalidOperand, SubjectOperand, i, NoIndex,
				"unknown lifetime %d", uint8(o.Lifetime))
		}
		if !loc.IsZero() {
			return newError(InvalidOperand, SubjectOperand, i, NoIndex,
				"%s operand has location %s", o.Lifetime, loc)
		}
		return nil
	}

	// Size cannot overflow here; validateOperandShape has run.
	size := layout.SizeOf(o.Type, o.Dimensions)
	if loc.Length != size {
		return newError(SizeMismatch, SubjectOperand, i, NoIndex,
			"%s location length %d, operand needs %d bytes", o.Lifetime, loc.Length, size)
	}
	return checkRegion(loc, region, SubjectOperand, i)
}

// checkRegion checks that loc fits inside a region of size bytes.
func checkRegion(loc model.DataLocation, size uint64, subject Subject, index int) error {
	end, err := layout.EndOffset(loc.Offset, loc.Length)
	if err != nil {
		return newError(ArithmeticOverflow, subject, index, NoIndex,
			"offset %d + length %d: %v", loc.Offset, loc.Length, err)
	}
	if uint64(end) > size {
		return newError(OffsetOutOfBounds, subject, index, NoIndex,
			"region [%d, %d) exceeds pool %d of %d bytes", loc.Offset, end, loc.PoolIndex, size)
	}
	return nil
}

// ValidateOperandList checks that every index in list is below operandCount.
// Failures name subject and index, with the offending list position.
func ValidateOperandList(list []uint32, operandCount uint32, subject Subject, index int) error {
	for p, idx := range list {
		if idx >= operandCount {
			return newError(IndexOutOfRange, subject, index, p,
				"operand index %d out of range, model has %d operands", idx, operandCount)
		}
	}
	return nil
}

// Per-operand marks used by the provenance checks.
const (
	markInput uint8 = 1 << iota
	markOutput
	markProduced
)

// provenance checks the declared input and output lists and, in strict mode,
// that every operand has exactly one source and a lifetime matching the
// lists it is declared in.
func (v *Validator) provenance(m *model.Model) error {
	count := m.OperandCount()
	marks := make([]uint8, count)

	declared := []struct {
		list    []uint32
		subject Subject
		mark    uint8
	}{
		{m.InputIndexes, SubjectModelInput, markInput},
		{m.OutputIndexes, SubjectModelOutput, markOutput},
	}
	for _, d := range declared {
		for p, idx := range d.list {
			if idx >= count {
				return newError(IndexOutOfRange, d.subject, p, NoIndex,
					"operand index %d out of range, model has %d operands", idx, count)
			}
			if marks[idx]&d.mark != 0 {
				return newError(DuplicateOperand, d.subject, p, NoIndex,
					"operand %d is declared twice", idx)
			}
			if lt := m.Operands[idx].Lifetime; lt.IsConstant() || lt == model.NoValue {
				return newError(InvalidOperand, d.subject, p, NoIndex,
					"operand %d is %s", idx, lt)
			}
			marks[idx] |= d.mark
		}
	}

	if v.cfg.Mode != ModeStrict {
		return nil
	}

	for j := range m.Operations {
		op := &m.Operations[j]
		for p, idx := range op.Outputs {
			pos := len(op.Inputs) + p
			o := &m.Operands[idx]
			switch {
			case o.Lifetime == model.NoValue:
				return newError(InvalidOperand, SubjectOperation, j, pos,
					"omitted operand %d used as an output", idx)
			case o.Lifetime.IsConstant():
				return newError(DuplicateOperand, SubjectOperation, j, pos,
					"operation writes constant operand %d", idx)
			case marks[idx]&markInput != 0:
				return newError(DuplicateOperand, SubjectOperation, j, pos,
					"operation writes model input %d", idx)
			case marks[idx]&markProduced != 0:
				return newError(DuplicateOperand, SubjectOperation, j, pos,
					"operand %d has more than one producer", idx)
			}
			marks[idx] |= markProduced
		}
	}

	for i := range m.Operands {
		lt := m.Operands[i].Lifetime
		if lt.IsConstant() || lt == model.NoValue {
			continue
		}
		if err := checkLifetime(lt, marks[i], i); err != nil {
			return err
		}
		if marks[i]&(markInput|markProduced) == 0 {
			return newError(OrphanOperand, SubjectOperand, i, NoIndex,
				"%s operand is neither a model input nor an operation output", lt)
		}
	}
	return nil
}

// checkLifetime checks a variable operand's lifetime against the declared
// lists it appears in. A model input may also be a declared output.
func checkLifetime(lt model.Lifetime, mark uint8, i int) error {
	switch {
	case mark&markInput != 0 && lt != model.ModelInput:
		return newError(InvalidOperand, SubjectOperand, i, NoIndex,
			"declared model input has lifetime %s", lt)
	case mark&markOutput != 0 && lt != model.ModelOutput && lt != model.ModelInput:
		return newError(InvalidOperand, SubjectOperand, i, NoIndex,
			"declared model output has lifetime %s", lt)
	case lt == model.ModelInput && mark&markInput == 0:
		return newError(InvalidOperand, SubjectOperand, i, NoIndex,
			"%s operand is not a declared model input", lt)
	case lt == model.ModelOutput && mark&markOutput == 0:
		return newError(InvalidOperand, SubjectOperand, i, NoIndex,
			"%s operand is not a declared model output", lt)
	}
	return nil
}
