package domain

import "time"

// Verdict is the outcome of running one automaton against one log source.
type Verdict struct {
	ID        string `json:"id"`
	Automaton string `json:"automaton"`
	Source    string `json:"source,omitempty"`

	Succeeded bool   `json:"succeeded"`
	Defective bool   `json:"defective,omitempty"`
	Reason    string `json:"reason,omitempty"`

	// Entries is the number of log entries fed before the automaton stopped.
	Entries   int    `json:"entries"`
	FinalNode string `json:"final_node,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Result returns a short label for the verdict ("pass", "fail", "defect").
func (v Verdict) Result() string {
	switch {
	case v.Defective:
		return "defect"
	case v.Succeeded:
		return "pass"
	default:
		return "fail"
	}
}
