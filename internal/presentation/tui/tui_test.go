package tui_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/vigil/internal/presentation/tui"
	"github.com/aretw0/vigil/pkg/domain"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStyler(t *testing.T) {
	var buf bytes.Buffer

	plain := tui.NewStyler(&buf, termenv.WithProfile(termenv.Ascii))
	assert.Equal(t, "PASS", plain("pass", "PASS"))
	assert.Equal(t, "x", plain("unknown", "x"))

	colored := tui.NewStyler(&buf, termenv.WithProfile(termenv.TrueColor))
	out := colored("fail", "FAIL")
	assert.Contains(t, out, "FAIL")
	assert.NotEqual(t, "FAIL", out)
	assert.Equal(t, "x", colored("unknown", "x"))
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, termenv.WithProfile(termenv.Ascii))
	assert.Contains(t, buf.String(), "|___/")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func login() *domain.Definition {
	eof := true
	return &domain.Definition{
		Name:        "login",
		Description: "A session must open.",
		Parameters:  map[string]string{"user": "string", "limit": "duration"},
		Nodes: []domain.NodeDef{
			{ID: "idle", Type: domain.NodeTypeInitial},
			{ID: "open", Type: domain.NodeTypeSuccess, SuccessCheck: "ok"},
			{ID: "lost", Type: domain.NodeTypeFailure, Wait: true},
		},
		Edges: []domain.EdgeDef{
			{ID: "login", SourceID: "idle", DestinationID: "open", Regex: "session opened"},
			{ID: "eof", Name: "gave up", SourceID: "idle", DestinationID: "lost", TriggerOnEOF: &eof},
		},
	}
}

func TestDescribe(t *testing.T) {
	md := tui.Describe(login())

	assert.Contains(t, md, "# login\n\nA session must open.")
	assert.Contains(t, md, "Parameters:\n\n- `limit`: duration\n- `user`: string\n")
	assert.Contains(t, md, "## idle (initial)")
	assert.Contains(t, md, "## open (success)")
	assert.Contains(t, md, "Passes only if `ok` holds.")
	assert.Contains(t, md, "Waits for the next entry once entered.")
	assert.Contains(t, md, "- **login** to `open` when line matches `session opened`")
	assert.Contains(t, md, "- **gave up** to `lost` when at end of log")
}

func TestDescribe_Unnamed(t *testing.T) {
	md := tui.Describe(&domain.Definition{Nodes: []domain.NodeDef{{ID: "a"}}})
	assert.Contains(t, md, "# automaton")
	assert.Contains(t, md, "## a\n")
}

func TestRenderer(t *testing.T) {
	render, err := tui.NewRenderer(glamour.WithStandardStyle("ascii"))
	require.NoError(t, err)

	out, err := render(tui.Describe(login()))
	require.NoError(t, err)
	assert.Contains(t, out, "login")
	assert.Contains(t, out, "session opened")
}
