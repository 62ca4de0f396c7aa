package logsource_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/logsource"
	"github.com/aretw0/vigil/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var _ ports.EntrySource = (*logsource.Source)(nil)

func drain(t *testing.T, s *logsource.Source) []domain.LogEntry {
	t.Helper()
	var out []domain.LogEntry
	for {
		e, err := s.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, e)
	}
}

func TestSource_PlainLines(t *testing.T) {
	s, err := logsource.New(strings.NewReader("one\r\ntwo\n\nthree"), logsource.Config{})
	require.NoError(t, err)

	got := drain(t, s)
	assert.Equal(t, []domain.LogEntry{
		{LineNumber: 1, Payload: "one"},
		{LineNumber: 2, Payload: "two"},
		{LineNumber: 3, Payload: ""},
		{LineNumber: 4, Payload: "three"},
	}, got)

	_, err = s.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF, "EOF is sticky")
}

func TestSource_MillisTimestamps(t *testing.T) {
	log := "100 start\ncontinued\n350 done\n"
	s, err := logsource.New(strings.NewReader(log), logsource.Config{TimestampPattern: `^(?<ts>\d+) `})
	require.NoError(t, err)

	got := drain(t, s)
	require.Len(t, got, 3)
	assert.Equal(t, int64(100), got[0].Timestamp)
	assert.Equal(t, int64(100), got[1].Timestamp, "unstamped lines keep the previous timestamp")
	assert.Equal(t, int64(350), got[2].Timestamp)
	assert.Equal(t, "350 done", got[2].Payload)
}

func TestSource_Multiline(t *testing.T) {
	log := "preamble\n1.5 panic: boom\n\tat main.go:10\n\tat main.go:20\n2 recovered\n"
	s, err := logsource.New(strings.NewReader(log), logsource.Config{
		TimestampPattern: `^(?<ts>[\d.]+) `,
		TimestampFormat:  logsource.FormatSeconds,
		Multiline:        true,
	})
	require.NoError(t, err)

	got := drain(t, s)
	require.Len(t, got, 3)
	assert.Equal(t, domain.LogEntry{LineNumber: 1, Payload: "preamble"}, got[0])
	assert.Equal(t, domain.LogEntry{LineNumber: 2, Timestamp: 1500, Payload: "1.5 panic: boom\n\tat main.go:10\n\tat main.go:20"}, got[1])
	assert.Equal(t, domain.LogEntry{LineNumber: 5, Timestamp: 2000, Payload: "2 recovered"}, got[2])
}

func TestSource_LayoutAndChannel(t *testing.T) {
	log := "2024-03-01T10:00:00Z [db] connected\n2024-03-01T10:00:01.250Z [http] listening\n"
	s, err := logsource.New(strings.NewReader(log), logsource.Config{
		TimestampPattern: `^(?<ts>\S+)`,
		TimestampFormat:  "2006-01-02T15:04:05Z07:00",
		ChannelPattern:   `\[(?<channel>\w+)\]`,
	})
	require.NoError(t, err)

	got := drain(t, s)
	require.Len(t, got, 2)
	assert.Equal(t, "db", got[0].Channel)
	assert.Equal(t, "http", got[1].Channel)
	assert.Equal(t, int64(1250), got[1].Timestamp-got[0].Timestamp)
}

func TestSource_Encodings(t *testing.T) {
	t.Run("latin1", func(t *testing.T) {
		raw, err := charmap.ISO8859_1.NewEncoder().String("café prêt\n")
		require.NoError(t, err)
		s, err := logsource.New(strings.NewReader(raw), logsource.Config{Encoding: "latin1"})
		require.NoError(t, err)
		got := drain(t, s)
		require.Len(t, got, 1)
		assert.Equal(t, "café prêt", got[0].Payload)
	})

	t.Run("utf-16le with BOM", func(t *testing.T) {
		enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
		raw, err := enc.String("first\nsecond\n")
		require.NoError(t, err)
		s, err := logsource.New(bytes.NewReader([]byte(raw)), logsource.Config{Encoding: "UTF-16LE"})
		require.NoError(t, err)
		got := drain(t, s)
		require.Len(t, got, 2)
		assert.Equal(t, "first", got[0].Payload)
		assert.Equal(t, "second", got[1].Payload)
	})

	t.Run("utf-8 BOM is dropped", func(t *testing.T) {
		s, err := logsource.New(strings.NewReader("\uFEFFhello\n"), logsource.Config{})
		require.NoError(t, err)
		assert.Equal(t, "hello", drain(t, s)[0].Payload)
	})
}

func TestSource_Normalize(t *testing.T) {
	s, err := logsource.New(strings.NewReader("cafe\u0301\n"), logsource.Config{Normalize: true})
	require.NoError(t, err)
	assert.Equal(t, "caf\u00e9", drain(t, s)[0].Payload)
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  logsource.Config
		want string
	}{
		{"unknown encoding", logsource.Config{Encoding: "klingon"}, `unsupported encoding "klingon"`},
		{"bad pattern", logsource.Config{TimestampPattern: "("}, "timestamp pattern"},
		{"missing ts group", logsource.Config{TimestampPattern: `^\d+`}, `no group named "ts"`},
		{"missing channel group", logsource.Config{ChannelPattern: `\[\w+\]`}, `no group named "channel"`},
		{"multiline without pattern", logsource.Config{Multiline: true}, "multiline requires"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := logsource.New(strings.NewReader(""), tt.cfg)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestSource_BadTimestamp(t *testing.T) {
	s, err := logsource.New(strings.NewReader("ok 1\nbad x\n"), logsource.Config{TimestampPattern: `^\w+ (?<ts>\S+)`})
	require.NoError(t, err)

	_, err = s.Next(context.Background())
	require.NoError(t, err)
	_, err = s.Next(context.Background())
	assert.ErrorContains(t, err, `line 2: invalid timestamp "x"`)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		raw, format string
		want        int64
	}{
		{"42", "", 42},
		{"42.6", logsource.FormatMillis, 43},
		{"3", logsource.FormatSeconds, 3000},
		{"0.25", logsource.FormatSeconds, 250},
		{"1970-01-01 00:00:02", "2006-01-02 15:04:05", 2000},
	}
	for _, tt := range tests {
		got, err := logsource.ParseTimestamp(tt.raw, tt.format)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}

	_, err := logsource.ParseTimestamp("NaN", logsource.FormatSeconds)
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("10 a\n20 b\n"), 0o600))

	f, err := logsource.Open(path, logsource.Config{TimestampPattern: `^(?<ts>\d+)`})
	require.NoError(t, err)
	defer f.Close()

	var _ io.Closer = f
	got := drain(t, f.Source)
	require.Len(t, got, 2)
	assert.Equal(t, int64(20), got[1].Timestamp)

	_, err = logsource.Open(filepath.Join(t.TempDir(), "missing.log"), logsource.Config{})
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = logsource.Open(path, logsource.Config{Encoding: "nope"})
	assert.Error(t, err)
}
