// Package fixture reads models and requests from YAML documents.
//
// A model document mirrors model.Model, with type, lifetime and operation
// names written out:
//
//	operands:
//	  - {type: FLOAT32, lifetime: MODEL_INPUT}
//	  - {type: TENSOR_FLOAT32, dimensions: [2, 3], lifetime: MODEL_INPUT}
//	  - {type: TENSOR_FLOAT32, dimensions: [2, 3], lifetime: MODEL_OUTPUT}
//	operations:
//	  - {type: ADD, inputs: [0, 1], outputs: [2]}
//	inputs: [0, 1]
//	outputs: [2]
//
// Constant values are not stored; valuesLength sizes a zeroed
// OperandValues buffer so CONSTANT_COPY locations can be checked.
//
// A request document lists pool sizes and one argument per declared input
// and output:
//
//	pools: [52]
//	inputs:
//	  - {pool: 0, offset: 0, length: 4}
//	  - {offset: 4, length: 24}
//	outputs:
//	  - {offset: 28, length: 24}
package fixture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/nncore/internal/model"
)

type modelDoc struct {
	model.Model  `yaml:",inline"`
	ValuesLength uint32 `yaml:"valuesLength,omitempty"`
}

// Request is a decoded request document: the request and the sizes of the
// pools it refers to.
type Request struct {
	model.Request `yaml:",inline"`
	Pools         []uint64 `yaml:"pools,flow"`
}

// decode decodes a single YAML document from r into v, rejecting unknown
// fields.
func decode(r io.Reader, v any) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty document")
		}
		return err
	}
	return nil
}

// DecodeModel reads a model document from r.
func DecodeModel(r io.Reader) (*model.Model, error) {
	var doc modelDoc
	if err := decode(r, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	m := doc.Model
	if doc.ValuesLength > 0 {
		m.OperandValues = make([]byte, doc.ValuesLength)
	}
	return &m, nil
}

// ParseModel decodes a model document.
func ParseModel(data []byte) (*model.Model, error) {
	return DecodeModel(bytes.NewReader(data))
}

// LoadModel reads a model document from a file.
func LoadModel(path string) (*model.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model: %w", err)
	}
	defer f.Close()

	m, err := DecodeModel(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// DecodeRequest reads a request document from r.
func DecodeRequest(r io.Reader) (*Request, error) {
	var req Request
	if err := decode(r, &req); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}
	return &req, nil
}

// ParseRequest decodes a request document.
func ParseRequest(data []byte) (*Request, error) {
	return DecodeRequest(bytes.NewReader(data))
}

// LoadRequest reads a request document from a file.
func LoadRequest(path string) (*Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open request: %w", err)
	}
	defer f.Close()

	req, err := DecodeRequest(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return req, nil
}

// LoadRequests reads several request files with at most limit reads in
// flight. The result is in the order of paths; the first failure cancels the
// remaining reads.
func LoadRequests(ctx context.Context, paths []string, limit int) ([]*Request, error) {
	reqs := make([]*Request, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(limit, 1))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			req, err := LoadRequest(path)
			if err != nil {
				return err
			}
			reqs[i] = req
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reqs, nil
}
