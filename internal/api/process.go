package api

// Stream tags a chunk of child process output.
type Stream string

const (
	StreamStdout Stream = "stdout"
	StreamStderr Stream = "stderr"
)

// EventType names an asynchronous event published to front ends.
type EventType string

const (
	EventServerOutput    EventType = "server-output"
	EventServerExit      EventType = "server-exit"
	EventSessionState    EventType = "session-state"
	EventProfilesChanged EventType = "profiles-changed"
)

// Event is a notification from the hosting layer to a front end. Fields are
// populated according to Type.
type Event struct {
	Type EventType `json:"type"`
	// ID is the spawned process id for server-output and server-exit, and the
	// profile id for session-state.
	ID     string `json:"id,omitempty"`
	Data   string `json:"data,omitempty"`
	Stream Stream `json:"stream,omitempty"`
	// Code is the exit code; nil when the process was killed by a signal.
	Code  *int            `json:"code,omitempty"`
	State ConnectionState `json:"state,omitempty"`
	Error string          `json:"error,omitempty"`
}

// OutputChunk is one piece of captured process output.
type OutputChunk struct {
	Stream Stream `json:"stream"`
	Data   string `json:"data"`
}

// ProcessInfo describes a registered child process.
type ProcessInfo struct {
	ID   string   `json:"id"`
	Argv []string `json:"argv"`
	PID  int      `json:"pid"`
}
