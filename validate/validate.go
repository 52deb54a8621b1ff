// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package validate decides whether a model or request is safe to execute.
//
// Validation never repairs anything: it returns nil or a [*ValidationError]
// naming the failed rule, the offending element and, where it applies, the
// position inside it.
//
//	if err := validate.Model(m, validate.DefaultConfig()); err != nil {
//	    var ve *validate.ValidationError
//	    if errors.As(err, &ve) && ve.Code == validate.ArityOrTypeMismatch {
//	        // operation ve.Index does not fit its signature
//	    }
//	    return err
//	}
//	if err := validate.Request(req, m, poolSizes, validate.DefaultConfig()); err != nil {
//	    return err
//	}
//
// Every error also unwraps to a sentinel, so errors.Is(err,
// validate.ErrSizeMismatch) works.
package validate

import (
	"github.com/born-ml/nncore/internal/model"
	"github.com/born-ml/nncore/internal/validation"
)

// Configuration.
type (
	// Config configures validation.
	Config = validation.Config
	// Limits caps the size of a model.
	Limits = validation.Limits
	// Mode selects strict or partial model validation.
	Mode = validation.Mode
	// Validator validates models and requests with a fixed Config.
	Validator = validation.Validator
)

// Validation modes.
const (
	ModeStrict  = validation.ModeStrict
	ModePartial = validation.ModePartial
)

// DefaultConfig returns a strict configuration with default limits.
func DefaultConfig() Config {
	return validation.DefaultConfig()
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	return validation.LoadConfig(path)
}

// New returns a Validator for cfg.
func New(cfg Config) *Validator {
	return validation.New(cfg)
}

// Model validates the structure of m.
func Model(m *model.Model, cfg Config) error {
	return validation.ValidateModel(m, cfg)
}

// Request validates req against m, which must already have passed Model.
// pools holds the byte size of each memory pool the request refers to.
func Request(req *model.Request, m *model.Model, pools []uint64, cfg Config) error {
	return validation.ValidateRequest(req, m, pools, cfg)
}

// Requests validates several requests against m in parallel.
func Requests(m *model.Model, reqs []*model.Request, pools [][]uint64, cfg Config) []error {
	return validation.ValidateRequests(m, reqs, pools, cfg)
}

// Errors.
type (
	// ValidationError describes the first failed check.
	ValidationError = validation.ValidationError
	// Code identifies a failed rule.
	Code = validation.Code
	// Subject names the kind of element an error points at.
	Subject = validation.Subject
)

// NoIndex marks an unused ValidationError Index or Position.
const NoIndex = validation.NoIndex

// Failure codes.
const (
	InvalidTypeCode      = validation.InvalidTypeCode
	InvalidOperationCode = validation.InvalidOperationCode
	IndexOutOfRange      = validation.IndexOutOfRange
	ShapeTooLarge        = validation.ShapeTooLarge
	ArityOrTypeMismatch  = validation.ArityOrTypeMismatch
	OrphanOperand        = validation.OrphanOperand
	SizeMismatch         = validation.SizeMismatch
	OffsetOutOfBounds    = validation.OffsetOutOfBounds
	ArithmeticOverflow   = validation.ArithmeticOverflow
	InvalidOperand       = validation.InvalidOperand
	DuplicateOperand     = validation.DuplicateOperand
)

// Sentinel errors.
var (
	ErrInvalidTypeCode      = validation.ErrInvalidTypeCode
	ErrInvalidOperationCode = validation.ErrInvalidOperationCode
	ErrIndexOutOfRange      = validation.ErrIndexOutOfRange
	ErrShapeTooLarge        = validation.ErrShapeTooLarge
	ErrArityOrTypeMismatch  = validation.ErrArityOrTypeMismatch
	ErrOrphanOperand        = validation.ErrOrphanOperand
	ErrSizeMismatch         = validation.ErrSizeMismatch
	ErrOffsetOutOfBounds    = validation.ErrOffsetOutOfBounds
	ErrArithmeticOverflow   = validation.ErrArithmeticOverflow
	ErrInvalidOperand       = validation.ErrInvalidOperand
	ErrDuplicateOperand     = validation.ErrDuplicateOperand
)

// CodeOf returns the Code carried by err, or 0.
func CodeOf(err error) Code {
	return validation.CodeOf(err)
}
