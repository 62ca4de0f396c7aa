package runner

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/aretw0/vigil/pkg/domain"
)

// JSONReporter writes each verdict as a JSON line.
type JSONReporter struct {
	Encoder *json.Encoder
}

// NewJSONReporter creates a reporter writing to w (stdout when nil).
func NewJSONReporter(w io.Writer) *JSONReporter {
	if w == nil {
		w = os.Stdout
	}
	return &JSONReporter{Encoder: json.NewEncoder(w)}
}

// Report encodes the verdict, with its result label, as one line.
func (j *JSONReporter) Report(_ context.Context, v domain.Verdict) error {
	return j.Encoder.Encode(struct {
		domain.Verdict
		Result string `json:"result"`
	}{v, v.Result()})
}
