package recognize

import (
	"context"
	"errors"

	"meetscribe/audio"
)

// Pool bounds concurrent use of recognizer instances. Checkout blocks
// until an instance is free; instances are always returned, including on
// recognition failure.
type Pool struct {
	instances chan Recognizer
}

// NewPool builds a pool from a factory, one instance per slot.
func NewPool(size int, factory func() Recognizer) (*Pool, error) {
	if size <= 0 {
		return nil, errors.New("pool size must be positive")
	}
	p := &Pool{instances: make(chan Recognizer, size)}
	for i := 0; i < size; i++ {
		r := factory()
		if r == nil {
			return nil, errors.New("recognizer factory returned nil")
		}
		p.instances <- r
	}
	return p, nil
}

// Size reports the pool capacity.
func (p *Pool) Size() int { return cap(p.instances) }

// Recognize checks out an instance, resets it, runs recognition, and
// returns the instance regardless of the result.
func (p *Pool) Recognize(ctx context.Context, seg audio.Segment, language string) (string, error) {
	var r Recognizer
	select {
	case r = <-p.instances:
	case <-ctx.Done():
		return "", &ServiceError{Op: "checkout", Err: ctx.Err()}
	}
	defer func() { p.instances <- r }()

	if resetter, ok := r.(Resetter); ok {
		resetter.Reset()
	}
	return r.Recognize(ctx, seg, language)
}
