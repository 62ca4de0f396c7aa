package runtime

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Bound is one side of an Interval.
type Bound struct {
	Value     time.Duration
	Inclusive bool
}

// Interval is a parsed time window such as "[10ms; 20min)". A nil bound is unbounded.
type Interval struct {
	Min *Bound
	Max *Bound
}

var units = map[string]time.Duration{
	"ms":  time.Millisecond,
	"s":   time.Second,
	"sec": time.Second,
	"min": time.Minute,
	"h":   time.Hour,
	"d":   24 * time.Hour,
}

// ParseInterval parses the interval grammar:
//
//	[10ms; 20min)   inclusive min, exclusive max
//	(;5s]           no lower bound
//	[1h;]           no upper bound
//	5s              exactly 5s, same as [5s; 5s]
func ParseInterval(s string) (*Interval, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty interval")
	}

	first, last := s[0], s[len(s)-1]
	if first != '[' && first != '(' {
		v, err := parseDuration(s)
		if err != nil {
			return nil, err
		}
		return &Interval{
			Min: &Bound{Value: v, Inclusive: true},
			Max: &Bound{Value: v, Inclusive: true},
		}, nil
	}
	if last != ']' && last != ')' {
		return nil, fmt.Errorf("interval %q: missing closing ']' or ')'", s)
	}

	parts := strings.Split(s[1:len(s)-1], ";")
	if len(parts) != 2 {
		return nil, fmt.Errorf("interval %q: expected exactly one ';' separator", s)
	}

	iv := &Interval{}
	if lo := strings.TrimSpace(parts[0]); lo != "" {
		v, err := parseDuration(lo)
		if err != nil {
			return nil, fmt.Errorf("interval %q: %w", s, err)
		}
		iv.Min = &Bound{Value: v, Inclusive: first == '['}
	}
	if hi := strings.TrimSpace(parts[1]); hi != "" {
		v, err := parseDuration(hi)
		if err != nil {
			return nil, fmt.Errorf("interval %q: %w", s, err)
		}
		iv.Max = &Bound{Value: v, Inclusive: last == ']'}
	}

	if err := iv.validate(); err != nil {
		return nil, fmt.Errorf("interval %q: %w", s, err)
	}
	return iv, nil
}

func (iv *Interval) validate() error {
	if iv.Min == nil && iv.Max == nil {
		return fmt.Errorf("no bound given")
	}
	if iv.Min == nil || iv.Max == nil {
		return nil
	}
	if iv.Min.Value > iv.Max.Value {
		return fmt.Errorf("min %s is greater than max %s", iv.Min.Value, iv.Max.Value)
	}
	if iv.Min.Value == iv.Max.Value && !(iv.Min.Inclusive && iv.Max.Inclusive) {
		return fmt.Errorf("interval is empty")
	}
	return nil
}

// Contains reports whether elapsed satisfies both bounds.
func (iv *Interval) Contains(elapsed time.Duration) bool {
	if iv.Min != nil {
		if iv.Min.Inclusive && elapsed < iv.Min.Value {
			return false
		}
		if !iv.Min.Inclusive && elapsed <= iv.Min.Value {
			return false
		}
	}
	if iv.Max != nil {
		if iv.Max.Inclusive && elapsed > iv.Max.Value {
			return false
		}
		if !iv.Max.Inclusive && elapsed >= iv.Max.Value {
			return false
		}
	}
	return true
}

// ContainsMillis is Contains for an elapsed time in milliseconds. Values too large
// for a time.Duration lie beyond every bound.
func (iv *Interval) ContainsMillis(ms int64) bool {
	const limit = math.MaxInt64 / int64(time.Millisecond)
	switch {
	case ms > limit:
		return iv.Max == nil
	case ms < -limit:
		return iv.Min == nil
	}
	return iv.Contains(time.Duration(ms) * time.Millisecond)
}

func (iv *Interval) String() string {
	var sb strings.Builder
	if iv.Min != nil && iv.Min.Inclusive {
		sb.WriteByte('[')
	} else {
		sb.WriteByte('(')
	}
	if iv.Min != nil {
		sb.WriteString(iv.Min.Value.String())
	}
	sb.WriteString("; ")
	if iv.Max != nil {
		sb.WriteString(iv.Max.Value.String())
	}
	if iv.Max != nil && iv.Max.Inclusive {
		sb.WriteByte(']')
	} else {
		sb.WriteByte(')')
	}
	return sb.String()
}

// parseDuration reads "<number><unit>", e.g. "10ms", "1.5 s", "20min".
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	i := 0
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
		i++
	}
	if i == 0 {
		return 0, fmt.Errorf("duration %q: missing value", s)
	}
	value, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, fmt.Errorf("duration %q: %w", s, err)
	}
	unitName := strings.TrimSpace(s[i:])
	if unitName == "" {
		return 0, fmt.Errorf("duration %q: missing unit", s)
	}
	unit, ok := units[strings.ToLower(unitName)]
	if !ok {
		return 0, fmt.Errorf("duration %q: unknown unit %q (use ms, s, min, h or d)", s, unitName)
	}
	d := value * float64(unit)
	if d > math.MaxInt64 {
		return 0, fmt.Errorf("duration %q: out of range", s)
	}
	return time.Duration(math.Round(d)), nil
}
