package runner

import (
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxReasonSize is 4KB (conservative default)
	DefaultMaxReasonSize = 4096
	// EnvMaxReasonSize is the environment variable to override the default
	EnvMaxReasonSize = "VIGIL_MAX_REASON_SIZE"
)

// Sanitize prepares text that may quote log payloads for a terminal: invalid
// UTF-8 and control characters (ANSI escapes, NUL, BEL) are dropped and overly
// long text is truncated. Newlines and tabs are kept.
func Sanitize(s string) string {
	if limit := maxReasonSize(); len(s) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "…"
	}

	// Fast path: if nothing to strip, return as is.
	clean := utf8.ValidString(s)
	if clean {
		for _, r := range s {
			if unicode.IsControl(r) && !isSafeControl(r) {
				clean = false
				break
			}
		}
	}
	if clean {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == utf8.RuneError || (unicode.IsControl(r) && !isSafeControl(r)) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t'
}

func maxReasonSize() int {
	if val := os.Getenv(EnvMaxReasonSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxReasonSize
}
