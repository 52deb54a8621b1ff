package validation

import (
	"github.com/born-ml/nncore/internal/layout"
	"github.com/born-ml/nncore/internal/model"
	"github.com/born-ml/nncore/internal/parallel"
)

// ValidateRequest validates req against m with cfg. See Validator.Request.
func ValidateRequest(req *model.Request, m *model.Model, pools []uint64, cfg Config) error {
	return New(cfg).Request(req, m, pools)
}

// Request checks that req binds every declared input and output of m to a
// correctly sized region of one of pools, which lists the byte size of each
// memory pool. m must already have passed Model.
func (v *Validator) Request(req *model.Request, m *model.Model, pools []uint64) error {
	if err := v.request(req, m, pools); err != nil {
		v.fail("request validation failed", err)
		return err
	}
	v.logger.Debug("request validated",
		"inputs", len(req.Inputs),
		"outputs", len(req.Outputs),
		"pools", len(pools))
	return nil
}

func (v *Validator) request(req *model.Request, m *model.Model, pools []uint64) error {
	if len(req.Inputs) != len(m.InputIndexes) {
		return newError(ArityOrTypeMismatch, SubjectRequest, NoIndex, NoIndex,
			"%d input arguments, model declares %d inputs", len(req.Inputs), len(m.InputIndexes))
	}
	if len(req.Outputs) != len(m.OutputIndexes) {
		return newError(ArityOrTypeMismatch, SubjectRequest, NoIndex, NoIndex,
			"%d output arguments, model declares %d outputs", len(req.Outputs), len(m.OutputIndexes))
	}

	for i := range req.Inputs {
		if err := v.argument(&req.Inputs[i], m, m.InputIndexes[i], pools, SubjectRequestInput, i); err != nil {
			return err
		}
	}
	for i := range req.Outputs {
		if err := v.argument(&req.Outputs[i], m, m.OutputIndexes[i], pools, SubjectRequestOutput, i); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) argument(arg *model.Argument, m *model.Model, operand uint32, pools []uint64, subject Subject, i int) error {
	if operand >= m.OperandCount() {
		return newError(IndexOutOfRange, subject, i, NoIndex,
			"declared operand %d out of range, model has %d operands", operand, m.OperandCount())
	}
	loc := arg.Location

	if arg.HasNoValue {
		if subject != SubjectRequestInput {
			return newError(InvalidOperand, subject, i, NoIndex, "outputs cannot be omitted")
		}
		if !loc.IsZero() {
			return newError(InvalidOperand, subject, i, NoIndex,
				"omitted argument has location %s", loc)
		}
		return nil
	}

	if uint64(loc.PoolIndex) >= uint64(len(pools)) {
		return newError(IndexOutOfRange, subject, i, NoIndex,
			"pool %d out of range, request has %d pools", loc.PoolIndex, len(pools))
	}

	o := &m.Operands[operand]
	size, err := layout.CheckedSizeOf(o.Type, o.Dimensions)
	if err != nil {
		return newError(ArithmeticOverflow, subject, i, NoIndex,
			"size of operand %d: %v", operand, err)
	}
	unspecified := subject == SubjectRequestOutput && v.cfg.AllowUnspecifiedOutputs && loc.Length == 0
	if loc.Length != size && !unspecified {
		return newError(SizeMismatch, subject, i, NoIndex,
			"argument length %d, operand %d (%s%s) needs %d bytes",
			loc.Length, operand, o.Type, o.Dimensions, size)
	}

	return checkRegion(loc, pools[loc.PoolIndex], subject, i)
}

// ValidateRequests validates each of reqs against m in parallel; pools[i]
// holds the pool sizes of reqs[i]. The result has one entry per request, nil
// for those that passed.
func ValidateRequests(m *model.Model, reqs []*model.Request, pools [][]uint64, cfg Config) []error {
	return New(cfg).Requests(m, reqs, pools)
}

// Requests is the Validator form of ValidateRequests. It panics if reqs and
// pools differ in length.
func (v *Validator) Requests(m *model.Model, reqs []*model.Request, pools [][]uint64) []error {
	if len(reqs) != len(pools) {
		panic("validation: reqs and pools differ in length")
	}

	errs := make([]error, len(reqs))
	parallel.For(len(reqs), func(start, end int) {
		for i := start; i < end; i++ {
			errs[i] = v.Request(reqs[i], m, pools[i])
		}
	}, v.cfg.Parallel)
	return errs
}
