package validation

import (
	"errors"
	"fmt"
	"log/slog"
)

// Code identifies the rule a model or request broke.
type Code uint8

// Validation failure codes.
const (
	InvalidTypeCode Code = iota + 1
	InvalidOperationCode
	IndexOutOfRange
	ShapeTooLarge
	ArityOrTypeMismatch
	OrphanOperand
	SizeMismatch
	OffsetOutOfBounds
	ArithmeticOverflow
	InvalidOperand
	DuplicateOperand

	numCodes
)

// Sentinel errors, one per Code. A *ValidationError unwraps to the sentinel
// of its Code, so errors.Is(err, ErrSizeMismatch) works on any returned error.
var (
	ErrInvalidTypeCode      = errors.New("invalid operand type code")
	ErrInvalidOperationCode = errors.New("invalid operation type code")
	ErrIndexOutOfRange      = errors.New("index out of range")
	ErrShapeTooLarge        = errors.New("shape exceeds limits")
	ErrArityOrTypeMismatch  = errors.New("arity or type mismatch")
	ErrOrphanOperand        = errors.New("operand has no producer")
	ErrSizeMismatch         = errors.New("size mismatch")
	ErrOffsetOutOfBounds    = errors.New("region extends beyond memory pool")
	ErrArithmeticOverflow   = errors.New("arithmetic overflow")
	ErrInvalidOperand       = errors.New("invalid operand")
	ErrDuplicateOperand     = errors.New("duplicate operand")
)

var codeInfo = [numCodes]struct {
	name string
	err  error
}{
	InvalidTypeCode:      {"invalid_type_code", ErrInvalidTypeCode},
	InvalidOperationCode: {"invalid_operation_code", ErrInvalidOperationCode},
	IndexOutOfRange:      {"index_out_of_range", ErrIndexOutOfRange},
	ShapeTooLarge:        {"shape_too_large", ErrShapeTooLarge},
	ArityOrTypeMismatch:  {"arity_or_type_mismatch", ErrArityOrTypeMismatch},
	OrphanOperand:        {"orphan_operand", ErrOrphanOperand},
	SizeMismatch:         {"size_mismatch", ErrSizeMismatch},
	OffsetOutOfBounds:    {"offset_out_of_bounds", ErrOffsetOutOfBounds},
	ArithmeticOverflow:   {"arithmetic_overflow", ErrArithmeticOverflow},
	InvalidOperand:       {"invalid_operand", ErrInvalidOperand},
	DuplicateOperand:     {"duplicate_operand", ErrDuplicateOperand},
}

func (c Code) String() string {
	if c > 0 && c < numCodes {
		return codeInfo[c].name
	}
	return fmt.Sprintf("code(%d)", uint8(c))
}

// Err returns the sentinel error for c.
func (c Code) Err() error {
	if c > 0 && c < numCodes {
		return codeInfo[c].err
	}
	return nil
}

// Subject names the kind of element a ValidationError points at.
type Subject string

// Subjects.
const (
	SubjectModel         Subject = "model"
	SubjectOperand       Subject = "operand"
	SubjectOperation     Subject = "operation"
	SubjectModelInput    Subject = "model input"
	SubjectModelOutput   Subject = "model output"
	SubjectRequest       Subject = "request"
	SubjectRequestInput  Subject = "request input"
	SubjectRequestOutput Subject = "request output"
)

// NoIndex is used for Index and Position when they do not apply.
const NoIndex = -1

// ValidationError provides detailed information about validation failures.
type ValidationError struct {
	Code     Code
	Subject  Subject
	Index    int // Index of the offending element within its Subject's list.
	Position int // Position inside that element (e.g. operation input slot), or NoIndex.
	Details  string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	switch {
	case e.Index == NoIndex:
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Subject, e.Details)
	case e.Position == NoIndex:
		return fmt.Sprintf("%s: %s %d: %s", e.Code, e.Subject, e.Index, e.Details)
	default:
		return fmt.Sprintf("%s: %s %d position %d: %s", e.Code, e.Subject, e.Index, e.Position, e.Details)
	}
}

// Unwrap returns the sentinel error for the Code.
func (e *ValidationError) Unwrap() error {
	return e.Code.Err()
}

// LogValue implements slog.LogValuer.
func (e *ValidationError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("code", e.Code.String()),
		slog.String("subject", string(e.Subject)),
	}
	if e.Index != NoIndex {
		attrs = append(attrs, slog.Int("index", e.Index))
	}
	if e.Position != NoIndex {
		attrs = append(attrs, slog.Int("position", e.Position))
	}
	attrs = append(attrs, slog.String("details", e.Details))
	return slog.GroupValue(attrs...)
}

// CodeOf returns the Code carried by err, or 0 if err is not a ValidationError.
func CodeOf(err error) Code {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	return 0
}

func newError(code Code, subject Subject, index, position int, format string, args ...any) *ValidationError {
	return &ValidationError{
		Code:     code,
		Subject:  subject,
		Index:    index,
		Position: position,
		Details:  fmt.Sprintf(format, args...),
	}
}
