// Package logsource turns raw log text into domain.LogEntry values.
//
// A Source decodes its reader with a configurable text encoding, splits it into
// lines, and extracts timestamps (and optionally channels) with regexp2 patterns.
package logsource

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/vigil/pkg/domain"
	"github.com/dlclark/regexp2"
	"golang.org/x/text/unicode/norm"
)

// Timestamp formats understood besides Go time layouts.
const (
	// FormatMillis reads the ts group as a number of milliseconds.
	FormatMillis = "millis"
	// FormatSeconds reads the ts group as a (possibly fractional) number of seconds.
	FormatSeconds = "seconds"
)

const maxLineSize = 4 * 1024 * 1024

// Config controls how a Source splits and timestamps lines.
type Config struct {
	// Encoding of the input, "utf-8" by default. See LookupEncoding.
	Encoding string `yaml:"encoding,omitempty" json:"encoding,omitempty"`
	// TimestampPattern must contain a group named "ts". Lines without a match carry
	// the timestamp of the previous entry. Without a pattern every timestamp is 0.
	TimestampPattern string `yaml:"timestamp_pattern,omitempty" json:"timestamp_pattern,omitempty"`
	// TimestampFormat is FormatMillis, FormatSeconds or a Go time layout.
	// Layout timestamps become milliseconds since the Unix epoch.
	TimestampFormat string `yaml:"timestamp_format,omitempty" json:"timestamp_format,omitempty"`
	// ChannelPattern must contain a group named "channel".
	ChannelPattern string `yaml:"channel_pattern,omitempty" json:"channel_pattern,omitempty"`
	// Multiline appends lines without a timestamp to the previous entry.
	Multiline bool `yaml:"multiline,omitempty" json:"multiline,omitempty"`
	// Normalize converts payloads to Unicode NFC.
	Normalize bool `yaml:"normalize,omitempty" json:"normalize,omitempty"`
}

// Source implements ports.EntrySource over an io.Reader.
type Source struct {
	cfg     Config
	scanner *bufio.Scanner
	ts      *regexp2.Regexp
	channel *regexp2.Regexp

	line    int
	lastTS  int64
	pending *domain.LogEntry
	done    bool
}

// New prepares a Source. Pattern and encoding errors are reported here, before any
// line is read.
func New(r io.Reader, cfg Config) (*Source, error) {
	enc, err := LookupEncoding(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	s := &Source{cfg: cfg}

	if cfg.TimestampPattern != "" {
		if s.ts, err = compileNamed(cfg.TimestampPattern, "ts"); err != nil {
			return nil, fmt.Errorf("timestamp pattern: %w", err)
		}
	}
	if cfg.ChannelPattern != "" {
		if s.channel, err = compileNamed(cfg.ChannelPattern, "channel"); err != nil {
			return nil, fmt.Errorf("channel pattern: %w", err)
		}
	}
	if cfg.Multiline && s.ts == nil {
		return nil, errors.New("multiline requires a timestamp pattern")
	}

	s.scanner = bufio.NewScanner(enc.NewDecoder().Reader(r))
	s.scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	return s, nil
}

func compileNamed(pattern, group string) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, err
	}
	if re.GroupNumberFromName(group) < 0 {
		return nil, fmt.Errorf("pattern %q has no group named %q", pattern, group)
	}
	return re, nil
}

// Next returns the next entry, or io.EOF once the input is exhausted.
// A malformed timestamp is an error that names the offending line.
func (s *Source) Next(ctx context.Context) (domain.LogEntry, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.LogEntry{}, err
		}
		if s.done {
			return s.flush()
		}
		if !s.scanner.Scan() {
			s.done = true
			if err := s.scanner.Err(); err != nil {
				return domain.LogEntry{}, fmt.Errorf("failed to read line %d: %w", s.line+1, err)
			}
			continue
		}
		s.line++
		text := strings.TrimSuffix(s.scanner.Text(), "\r")
		if s.line == 1 {
			text = strings.TrimPrefix(text, "\uFEFF")
		}

		ts, stamped, err := s.timestamp(text)
		if err != nil {
			return domain.LogEntry{}, fmt.Errorf("line %d: %w", s.line, err)
		}

		if s.cfg.Multiline && !stamped && s.pending != nil {
			s.pending.Payload += "\n" + text
			continue
		}

		entry := domain.LogEntry{
			LineNumber: s.line,
			Timestamp:  ts,
			Payload:    text,
			Channel:    s.channelOf(text),
		}
		if !s.cfg.Multiline {
			return s.finish(entry), nil
		}
		prev := s.pending
		s.pending = &entry
		if prev != nil {
			return s.finish(*prev), nil
		}
	}
}

func (s *Source) flush() (domain.LogEntry, error) {
	if s.pending == nil {
		return domain.LogEntry{}, io.EOF
	}
	e := *s.pending
	s.pending = nil
	return s.finish(e), nil
}

func (s *Source) finish(e domain.LogEntry) domain.LogEntry {
	if s.cfg.Normalize {
		e.Payload = norm.NFC.String(e.Payload)
	}
	return e
}

// timestamp extracts the ts group of line. Lines without a match keep the last
// timestamp seen and report stamped=false.
func (s *Source) timestamp(line string) (int64, bool, error) {
	if s.ts == nil {
		return 0, false, nil
	}
	m, err := s.ts.FindStringMatch(line)
	if err != nil {
		return 0, false, err
	}
	if m == nil {
		return s.lastTS, false, nil
	}
	g := m.GroupByName("ts")
	if g == nil || len(g.Captures) == 0 {
		return s.lastTS, false, nil
	}
	ts, err := ParseTimestamp(g.String(), s.cfg.TimestampFormat)
	if err != nil {
		return 0, false, err
	}
	s.lastTS = ts
	return ts, true, nil
}

func (s *Source) channelOf(line string) string {
	if s.channel == nil {
		return ""
	}
	m, err := s.channel.FindStringMatch(line)
	if err != nil || m == nil {
		return ""
	}
	if g := m.GroupByName("channel"); g != nil && len(g.Captures) > 0 {
		return g.String()
	}
	return ""
}

// ParseTimestamp converts raw into milliseconds according to format.
// An empty format means FormatMillis.
func ParseTimestamp(raw, format string) (int64, error) {
	raw = strings.TrimSpace(raw)
	switch format {
	case "", FormatMillis:
		return parseScaled(raw, 1)
	case FormatSeconds:
		return parseScaled(raw, 1000)
	default:
		t, err := time.Parse(format, raw)
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp %q: %w", raw, err)
		}
		return t.UnixMilli(), nil
	}
}

func parseScaled(raw string, scale float64) (int64, error) {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n * int64(scale), nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid timestamp %q", raw)
	}
	return int64(math.Round(f * scale)), nil
}
