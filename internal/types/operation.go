package types

import (
	"fmt"
	"strconv"
	"strings"
)

// OperationType identifies the computation an operation performs.
type OperationType uint32

// Operation types.
const (
	Add                        OperationType = 0
	AveragePool2D              OperationType = 1
	Concatenation              OperationType = 2
	Conv2D                     OperationType = 3
	DepthwiseConv2D            OperationType = 4
	DepthToSpace               OperationType = 5
	Dequantize                 OperationType = 6
	EmbeddingLookup            OperationType = 7
	Floor                      OperationType = 8
	FullyConnected             OperationType = 9
	HashtableLookup            OperationType = 10
	L2Normalization            OperationType = 11
	L2Pool2D                   OperationType = 12
	LocalResponseNormalization OperationType = 13
	Logistic                   OperationType = 14
	LSHProjection              OperationType = 15
	LSTM                       OperationType = 16
	MaxPool2D                  OperationType = 17
	Mul                        OperationType = 18
	Relu                       OperationType = 19
	Relu1                      OperationType = 20
	Relu6                      OperationType = 21
	Reshape                    OperationType = 22
	ResizeBilinear             OperationType = 23
	RNN                        OperationType = 24
	Softmax                    OperationType = 25
	SpaceToDepth               OperationType = 26
	SVDF                       OperationType = 27
	Tanh                       OperationType = 28

	OEMOperation OperationType = OEMCodeBase
)

var operationNames = [NumOperationTypes]string{
	Add:                        "ADD",
	AveragePool2D:              "AVERAGE_POOL_2D",
	Concatenation:              "CONCATENATION",
	Conv2D:                     "CONV_2D",
	DepthwiseConv2D:            "DEPTHWISE_CONV_2D",
	DepthToSpace:               "DEPTH_TO_SPACE",
	Dequantize:                 "DEQUANTIZE",
	EmbeddingLookup:            "EMBEDDING_LOOKUP",
	Floor:                      "FLOOR",
	FullyConnected:             "FULLY_CONNECTED",
	HashtableLookup:            "HASHTABLE_LOOKUP",
	L2Normalization:            "L2_NORMALIZATION",
	L2Pool2D:                   "L2_POOL_2D",
	LocalResponseNormalization: "LOCAL_RESPONSE_NORMALIZATION",
	Logistic:                   "LOGISTIC",
	LSHProjection:              "LSH_PROJECTION",
	LSTM:                       "LSTM",
	MaxPool2D:                  "MAX_POOL_2D",
	Mul:                        "MUL",
	Relu:                       "RELU",
	Relu1:                      "RELU1",
	Relu6:                      "RELU6",
	Reshape:                    "RESHAPE",
	ResizeBilinear:             "RESIZE_BILINEAR",
	RNN:                        "RNN",
	Softmax:                    "SOFTMAX",
	SpaceToDepth:               "SPACE_TO_DEPTH",
	SVDF:                       "SVDF",
	Tanh:                       "TANH",
}

var operationNamesOEM = [NumOperationTypesOEM]string{
	"OEM_OPERATION",
}

// Valid reports whether t is a known core or OEM operation type.
func (t OperationType) Valid() bool {
	return IsValidCode(NumOperationTypes, NumOperationTypesOEM, uint32(t))
}

// IsOEM reports whether t lies in the vendor range.
func (t OperationType) IsOEM() bool {
	return t >= OEMCodeBase
}

// String returns the operation name, e.g. "ADD".
func (t OperationType) String() string {
	switch {
	case t < NumOperationTypes:
		return operationNames[t]
	case t >= OEMCodeBase && t-OEMCodeBase < NumOperationTypesOEM:
		return operationNamesOEM[t-OEMCodeBase]
	default:
		return fmt.Sprintf("unknown(%d)", uint32(t))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t OperationType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *OperationType) UnmarshalText(text []byte) error {
	v, err := ParseOperationType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseOperationType parses an operation type from its name (case-insensitive)
// or from a decimal code.
func ParseOperationType(s string) (OperationType, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		return OperationType(n), nil
	}

	name := strings.ToUpper(s)
	for i, n := range operationNames {
		if n == name {
			return OperationType(i), nil
		}
	}
	for i, n := range operationNamesOEM {
		if n == name {
			return OperationType(OEMCodeBase + i), nil
		}
	}
	return 0, fmt.Errorf("unknown operation type %q", s)
}

// OperationTypes returns every valid operation type, core types first.
func OperationTypes() []OperationType {
	out := make([]OperationType, 0, NumOperationTypes+NumOperationTypesOEM)
	for i := range NumOperationTypes {
		out = append(out, OperationType(i))
	}
	for i := range NumOperationTypesOEM {
		out = append(out, OperationType(OEMCodeBase+i))
	}
	return out
}
