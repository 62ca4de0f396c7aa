package runtime

// ClockReference selects which clock field a time-interval condition measures from.
type ClockReference int

const (
	// SinceLastMicrotransition measures from the last edge taken.
	SinceLastMicrotransition ClockReference = iota
	// SinceLastTransition measures from the last event that changed the node.
	SinceLastTransition
	// SinceStart measures from the first event.
	SinceStart
	// ForEvent measures from a fixed zero, i.e. the event timestamp itself.
	ForEvent
)

func (r ClockReference) String() string {
	switch r {
	case SinceLastMicrotransition:
		return "since_last_microtransition"
	case SinceLastTransition:
		return "since_last_transition"
	case SinceStart:
		return "since_start"
	case ForEvent:
		return "for_event"
	default:
		return "unknown"
	}
}

// Clock holds the four timestamps (milliseconds) used by timing conditions.
// Only the engine advances it; conditions read it.
type Clock struct {
	Start               int64
	LastMicrotransition int64
	LastTransition      int64
	CurrentEvent        int64
}

// Seed initialises every field from the first event's time.
func (c *Clock) Seed(t int64) {
	c.Start = t
	c.LastMicrotransition = t
	c.LastTransition = t
	c.CurrentEvent = t
}

// Observe records the time of the event being processed.
func (c *Clock) Observe(t int64) {
	c.CurrentEvent = t
}

// MarkMicrotransition records that an edge was taken at the current event time.
func (c *Clock) MarkMicrotransition() {
	c.LastMicrotransition = c.CurrentEvent
}

// MarkTransition records that the current event changed the node.
func (c *Clock) MarkTransition() {
	c.LastTransition = c.CurrentEvent
}

// Reference returns the time a condition measures from.
func (c *Clock) Reference(ref ClockReference) int64 {
	switch ref {
	case SinceLastMicrotransition:
		return c.LastMicrotransition
	case SinceLastTransition:
		return c.LastTransition
	case SinceStart:
		return c.Start
	default:
		return 0
	}
}

// Elapsed returns the automaton-relative time of the current event.
func (c *Clock) Elapsed() int64 {
	return c.CurrentEvent - c.Start
}
