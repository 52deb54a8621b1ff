// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package model provides the graph and invocation types handed to the
// validators.
//
// # Overview
//
// A [Model] is a computation graph stored as flat slices: operands and
// operations refer to each other only through uint32 indices. A [Request] binds
// every declared model input and output to a region of a memory pool.
//
// Operand and operation type codes are split into a core range starting at 0
// and a vendor (OEM) range starting at [OEMCodeBase]:
//
//	t := model.TensorFloat32
//	t.IsScalar()   // false
//	t.Size()       // 4 bytes per element
//	model.OperandType(6).Valid()     // false: past the core range
//	model.OperandType(10001).Valid() // true: TENSOR_OEM_BYTE
//
// # Example
//
//	m := &model.Model{
//	    Operands: []model.Operand{
//	        {Type: model.TensorFloat32, Dimensions: model.Shape{2, 3}, Lifetime: model.ModelInput},
//	        {Type: model.TensorFloat32, Dimensions: model.Shape{2, 3}, Lifetime: model.ModelInput},
//	        {Type: model.TensorFloat32, Dimensions: model.Shape{2, 3}, Lifetime: model.ModelOutput},
//	    },
//	    Operations: []model.Operation{
//	        {Type: model.Add, Inputs: []uint32{0, 1}, Outputs: []uint32{2}},
//	    },
//	    InputIndexes:  []uint32{0, 1},
//	    OutputIndexes: []uint32{2},
//	}
//
// Nothing in this package checks a model; see package validate.
package model
