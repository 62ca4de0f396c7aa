package runner_test

import (
	"strings"
	"testing"

	"github.com/aretw0/vigil/pkg/runner"
	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain", "reached FAILURE node", "reached FAILURE node"},
		{"keeps newlines and tabs", "a\n\tb", "a\n\tb"},
		{"drops ANSI escape", "\x1b[31mred\x1b[0m", "[31mred[0m"},
		{"drops NUL and BEL", "a\x00b\x07c", "abc"},
		{"drops invalid UTF-8", "ok\xffok", "okok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, runner.Sanitize(tt.in))
		})
	}
}

func TestSanitize_Truncates(t *testing.T) {
	t.Setenv(runner.EnvMaxReasonSize, "7")
	assert.Equal(t, "abcdefg…", runner.Sanitize(strings.Repeat("abcdefgh", 3)))
	assert.Equal(t, "ééé…", runner.Sanitize(strings.Repeat("é", 10)), "never splits a rune")
}
