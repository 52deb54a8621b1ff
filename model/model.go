// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package model

import (
	"github.com/born-ml/nncore/internal/model"
	"github.com/born-ml/nncore/internal/types"
)

// Graph types.
type (
	// Model is a computation graph.
	Model = model.Model
	// Operand is a typed, shaped value node.
	Operand = model.Operand
	// Operation is a computation node.
	Operation = model.Operation
	// Shape lists dimension sizes; an empty shape is a scalar.
	Shape = model.Shape
	// Lifetime describes where an operand's value comes from.
	Lifetime = model.Lifetime
	// DataLocation names a region of a memory pool.
	DataLocation = model.DataLocation
	// Request is one invocation of a model.
	Request = model.Request
	// Argument binds one model input or output to memory.
	Argument = model.Argument
)

// Operand lifetimes.
const (
	TemporaryVariable = model.TemporaryVariable
	ModelInput        = model.ModelInput
	ModelOutput       = model.ModelOutput
	ConstantCopy      = model.ConstantCopy
	ConstantReference = model.ConstantReference
	NoValue           = model.NoValue
)

// Broadcast returns the NumPy-style broadcast of two shapes.
func Broadcast(a, b Shape) (Shape, bool) {
	return model.Broadcast(a, b)
}

// Type codes.
type (
	// OperandType identifies the element kind of an operand.
	OperandType = types.OperandType
	// OperationType identifies the kind of an operation.
	OperationType = types.OperationType
	// TypeTrait contains metadata about an operand type.
	TypeTrait = types.TypeTrait
)

// OEMCodeBase is the first vendor-defined type or operation code.
const OEMCodeBase = types.OEMCodeBase

// Operand types.
const (
	Float32           = types.Float32
	Int32             = types.Int32
	Uint32            = types.Uint32
	TensorFloat32     = types.TensorFloat32
	TensorInt32       = types.TensorInt32
	TensorQuant8Asymm = types.TensorQuant8Asymm
	OEM               = types.OEM
	TensorOEMByte     = types.TensorOEMByte
)

// Operation types.
const (
	Add                        = types.Add
	AveragePool2D              = types.AveragePool2D
	Concatenation              = types.Concatenation
	Conv2D                     = types.Conv2D
	DepthwiseConv2D            = types.DepthwiseConv2D
	DepthToSpace               = types.DepthToSpace
	Dequantize                 = types.Dequantize
	EmbeddingLookup            = types.EmbeddingLookup
	Floor                      = types.Floor
	FullyConnected             = types.FullyConnected
	HashtableLookup            = types.HashtableLookup
	L2Normalization            = types.L2Normalization
	L2Pool2D                   = types.L2Pool2D
	LocalResponseNormalization = types.LocalResponseNormalization
	Logistic                   = types.Logistic
	LSHProjection              = types.LSHProjection
	LSTM                       = types.LSTM
	MaxPool2D                  = types.MaxPool2D
	Mul                        = types.Mul
	Relu                       = types.Relu
	Relu1                      = types.Relu1
	Relu6                      = types.Relu6
	Reshape                    = types.Reshape
	ResizeBilinear             = types.ResizeBilinear
	RNN                        = types.RNN
	Softmax                    = types.Softmax
	SpaceToDepth               = types.SpaceToDepth
	SVDF                       = types.SVDF
	Tanh                       = types.Tanh
	OEMOperation               = types.OEMOperation
)

// ParseOperandType parses an operand type name or decimal code.
func ParseOperandType(s string) (OperandType, error) {
	return types.ParseOperandType(s)
}

// ParseOperationType parses an operation type name or decimal code.
func ParseOperationType(s string) (OperationType, error) {
	return types.ParseOperationType(s)
}

// OperandTypes lists every valid operand type.
func OperandTypes() []OperandType {
	return types.OperandTypes()
}

// OperationTypes lists every valid operation type.
func OperationTypes() []OperationType {
	return types.OperationTypes()
}
