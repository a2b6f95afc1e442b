package audio

// Source is a stream of detected speech segments. Segments must be closed
// by the implementation when the stream ends, whether from Stop or from a
// capture failure.
type Source interface {
	// Segments returns the channel of detected speech segments.
	Segments() <-chan Segment
	// Stop requests shutdown. It must not block on in-flight reads.
	Stop()
	// Err reports the terminal capture error after Segments closes, if any.
	Err() error
}
