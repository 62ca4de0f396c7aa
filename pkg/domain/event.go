package domain

// EventKind distinguishes log entries from the end-of-stream marker.
type EventKind int

const (
	EventLogEntry EventKind = iota
	EventEOF
)

func (k EventKind) String() string {
	if k == EventEOF {
		return "EOF"
	}
	return "LOG_ENTRY"
}

// LogEntry is one (possibly multi-line) entry of a log source.
type LogEntry struct {
	// LineNumber is the 1-based line on which the entry starts.
	LineNumber int `json:"line_number"`
	// Timestamp is expressed in milliseconds relative to the source's epoch.
	Timestamp int64  `json:"timestamp_ms"`
	Payload   string `json:"payload"`
	// Channel is optional; empty means the default channel.
	Channel string `json:"channel,omitempty"`
}

// Event is the immutable input of a single engine call.
type Event struct {
	Kind  EventKind
	Entry LogEntry
}

// NewLogEntryEvent wraps a log entry.
func NewLogEntryEvent(entry LogEntry) Event {
	return Event{Kind: EventLogEntry, Entry: entry}
}

// EOFEvent returns the end-of-stream marker.
func EOFEvent() Event {
	return Event{Kind: EventEOF}
}

// IsEOF reports whether the event marks the end of the stream.
func (e Event) IsEOF() bool { return e.Kind == EventEOF }

// SupportsChannel reports whether channel filtering applies to this event kind.
// EOF always bypasses channel filters.
func (e Event) SupportsChannel() bool { return e.Kind == EventLogEntry }
