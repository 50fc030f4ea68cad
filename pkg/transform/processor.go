package transform

import (
	"errors"
	"fmt"
)

type PayloadProcessor struct {
	// Applied 0..N by PrepareOutput, N..0 by ParseInput.
	transforms []Transform
}

// NewPayloadProcessor creates a processor over a fixed pipeline.
// Use NewNoOpTransform() for an explicitly empty pipeline.
func NewPayloadProcessor(pipeline ...Transform) (*PayloadProcessor, error) {
	if len(pipeline) == 0 {
		return nil, errors.New("payload processor requires at least one transform; use NewNoOpTransform() for an empty pipeline")
	}
	s := make([]Transform, len(pipeline))
	copy(s, pipeline)
	return &PayloadProcessor{transforms: s}, nil
}

// PrepareOutput runs every transform's Apply in pipeline order.
func (p *PayloadProcessor) PrepareOutput(payload []byte) ([]byte, error) {
	var err error
	current := payload
	for i, t := range p.transforms {
		current, err = t.Apply(current)
		if err != nil {
			return nil, fmt.Errorf("prepare output: transform %d (%T) Apply failed: %w", i, t, err)
		}
	}
	return current, nil
}

// ParseInput runs every transform's Reverse in reverse pipeline order.
func (p *PayloadProcessor) ParseInput(payload []byte) ([]byte, error) {
	var err error
	current := payload
	for i := len(p.transforms) - 1; i >= 0; i-- {
		t := p.transforms[i]
		current, err = t.Reverse(current)
		if err != nil {
			return nil, fmt.Errorf("parse input: transform %d (%T) Reverse failed: %w", i, t, err)
		}
	}
	return current, nil
}
