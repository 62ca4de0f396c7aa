package dsl_test

import (
	"context"
	"testing"

	"github.com/aretw0/vigil"
	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bootContract() *dsl.Builder {
	b := dsl.New("boot").Describe("service boots within ${limit}")

	b.Add("down").Initial().Name("waiting").
		To("up", "ready").Match(`listening on :(\d+)`).SinceStart("(;${limit}]").OnWalk("port = group(1)").Done().
		To("late", "timeout").SinceStart("(${limit};]").Always()

	b.Add("ready").Success(`port == "8080"`)
	b.Add("timeout").Failure().Describe("service did not start in time")
	return b
}

func TestBuilder_Definition(t *testing.T) {
	def := bootContract().Definition()

	assert.Equal(t, "boot", def.Name)
	assert.Equal(t, "service boots within ${limit}", def.Description)
	require.Len(t, def.Nodes, 3)
	assert.Equal(t, []string{"down", "ready", "timeout"}, []string{def.Nodes[0].ID, def.Nodes[1].ID, def.Nodes[2].ID})
	assert.Equal(t, domain.NodeTypeInitial, def.Nodes[0].Type)
	assert.Equal(t, `port == "8080"`, def.Nodes[1].SuccessCheck)

	require.Len(t, def.Edges, 2)
	up := def.Edges[0]
	assert.Equal(t, "down", up.SourceID)
	assert.Equal(t, "ready", up.DestinationID)
	assert.Equal(t, "(;${limit}]", up.TimeSinceStart)
	assert.True(t, def.Edges[1].TriggerAlways)
}

func TestBuilder_AddReturnsExistingNode(t *testing.T) {
	b := dsl.New("x")
	b.Add("a").Initial()
	b.Add("a").Wait()

	def := b.Definition()
	require.Len(t, def.Nodes, 1)
	assert.Equal(t, domain.NodeTypeInitial, def.Nodes[0].Type)
	assert.True(t, def.Nodes[0].Wait)
}

func TestBuilder_EdgeOptions(t *testing.T) {
	b := dsl.New("x").Language(domain.ScriptLanguageExpr).OnLoad("true")
	e := b.Add("a").Initial().To("e", "a").
		Name("loop").Describe("d").Check("true").OnEOF(false).AnyOf().Channel("db").
		SinceLastTransition("1s").SinceLastMicrotransition("2s").ForEvent("[0ms;]").
		Build()

	assert.Equal(t, "loop", e.Name)
	assert.Equal(t, "true", e.CheckExp)
	require.NotNil(t, e.TriggerOnEOF)
	assert.False(t, *e.TriggerOnEOF)
	assert.Equal(t, "ONE", e.RequiredConditions)
	assert.Equal(t, "db", e.Channel)
	assert.Equal(t, "1s", e.TimeSinceLastTransition)
	assert.Equal(t, "2s", e.TimeSinceLastMicrotransition)
	assert.Equal(t, "[0ms;]", e.TimeForEvent)

	def := b.Definition()
	assert.Equal(t, domain.ScriptLanguageExpr, def.ScriptLanguage)
	assert.Equal(t, "true", def.OnLoad)
}

func TestBuilder_BuildErrors(t *testing.T) {
	_, err := dsl.New("empty").Build()
	assert.ErrorIs(t, err, domain.ErrNoDefinition)

	b := dsl.New("dangling")
	b.Add("a").Initial().To("e", "nowhere").Always()
	_, err = b.Build()
	assert.ErrorContains(t, err, `edge "e" points to unknown node "nowhere"`)
}

func TestBuilder_RunsThroughEngine(t *testing.T) {
	ctx := context.Background()
	loader, err := bootContract().Build()
	require.NoError(t, err)

	a := vigil.Load(ctx, loader, map[string]string{"limit": "5s"})
	defer a.Close()
	require.False(t, a.IsDefective(), "%v", a.Defect())
	assert.Equal(t, "service boots within 5s", a.Description())

	require.NoError(t, a.ProceedWithLogEntry(ctx, domain.LogEntry{LineNumber: 1, Timestamp: 0, Payload: "starting"}))
	require.NoError(t, a.ProceedWithLogEntry(ctx, domain.LogEntry{LineNumber: 2, Timestamp: 1200, Payload: "listening on :8080"}))
	assert.True(t, a.Succeeded())
}

func TestBuilder_TimeoutPath(t *testing.T) {
	ctx := context.Background()
	loader, err := bootContract().Build()
	require.NoError(t, err)

	a := vigil.Load(ctx, loader, map[string]string{"limit": "5s"})
	defer a.Close()

	require.NoError(t, a.ProceedWithLogEntry(ctx, domain.LogEntry{LineNumber: 1, Timestamp: 0, Payload: "starting"}))
	require.NoError(t, a.ProceedWithLogEntry(ctx, domain.LogEntry{LineNumber: 2, Timestamp: 7000, Payload: "still starting"}))
	assert.False(t, a.Succeeded())
	reason, _ := a.ErrorReason()
	assert.Contains(t, reason, `reached FAILURE node "timeout": service did not start in time`)
}

func TestBuilder_TypedParameters(t *testing.T) {
	b := bootContract().Param("limit", "duration")
	assert.Equal(t, map[string]string{"limit": "duration"}, b.Definition().Parameters)

	loader, err := b.Build()
	require.NoError(t, err)

	ctx := context.Background()
	ok := vigil.Load(ctx, loader, map[string]string{"limit": "2s"})
	defer ok.Close()
	assert.False(t, ok.IsDefective())

	bad := vigil.Load(ctx, loader, map[string]string{"limit": "a while"})
	defer bad.Close()
	assert.ErrorContains(t, bad.Defect(), `parameter "limit"`)
}
