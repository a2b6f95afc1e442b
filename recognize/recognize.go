// Package recognize converts speech segments to text through an external
// recognition service, distinguishing unusable audio from service failure.
package recognize

import (
	"context"
	"errors"
	"fmt"

	"meetscribe/audio"
)

// ErrUnintelligible marks audio the service processed but could not
// transcribe. It is an expected outcome, not a failure.
var ErrUnintelligible = errors.New("unintelligible audio")

// ServiceError wraps a recognition service failure (network, quota,
// malformed response). The capture loop surfaces these without stopping.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("recognition service: %s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Recognizer transcribes one speech segment.
type Recognizer interface {
	Recognize(ctx context.Context, seg audio.Segment, language string) (string, error)
}

// Resetter is implemented by recognizers that carry per-call state to
// clear between checkouts.
type Resetter interface {
	Reset()
}
