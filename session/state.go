package session

// State is the coordinator lifecycle phase.
type State int32

const (
	StateInitializing State = iota
	StateListening
	StateSummarizing
	StateShuttingDown
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "Initializing"
	case StateListening:
		return "Listening"
	case StateSummarizing:
		return "Summarizing"
	case StateShuttingDown:
		return "ShuttingDown"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}
