package model

import (
	"fmt"
	"strings"
)

// Argument binds one declared model input or output to memory.
type Argument struct {
	// HasNoValue signals that an optional input is omitted. Location must be
	// zero when it is set.
	HasNoValue bool         `yaml:"noValue,omitempty"`
	Location   DataLocation `yaml:",inline"`
}

func (a Argument) String() string {
	if a.HasNoValue {
		return "<no value>"
	}
	return a.Location.String()
}

// Request is one invocation of a model: a binding per declared model input
// and per declared model output, in declaration order. A Request is
// consumed by a single execution and must not be shared.
type Request struct {
	Inputs  []Argument `yaml:"inputs"`
	Outputs []Argument `yaml:"outputs"`
}

func (r *Request) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "request: %d inputs, %d outputs\n", len(r.Inputs), len(r.Outputs))
	for i, a := range r.Inputs {
		fmt.Fprintf(&b, "input[%d]: %s\n", i, a)
	}
	for i, a := range r.Outputs {
		fmt.Fprintf(&b, "output[%d]: %s\n", i, a)
	}
	return b.String()
}
