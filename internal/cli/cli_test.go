package cli_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/vigil/internal/cli"
	"github.com/aretw0/vigil/pkg/adapters/redis"
	"github.com/aretw0/vigil/pkg/logsource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contract = `
description: ${user} logs in within two seconds
nodes:
  - id: anonymous
    type: INITIAL
  - id: session
    type: SUCCESS
  - id: timeout
    type: FAILURE
    description: nobody logged in
edges:
  - id: login
    source_id: anonymous
    destination_id: session
    regex: 'user ${user} logged in'
    time_interval_since_start: "(;2s]"
  - id: late
    source_id: anonymous
    destination_id: timeout
    trigger_always: true
    time_interval_since_start: "(2s;]"
`

var stamped = logsource.Config{TimestampPattern: `^(?<ts>\d+) `}

// workspace writes the login contract and two logs, one passing and one failing.
func workspace(t *testing.T) (dir string) {
	t.Helper()
	dir = t.TempDir()
	write(t, dir, "login.yaml", contract)
	write(t, dir, "ok.log", "0 boot\n1500 user alice logged in\n")
	write(t, dir, "slow.log", "0 boot\n3000 user alice logged in\n")
	return dir
}

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseParams(t *testing.T) {
	params, err := cli.ParseParams([]string{"user=alice", "query=a=b", " spaced =x"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"user": "alice", "query": "a=b", "spaced": "x"}, params)

	params, err = cli.ParseParams(nil)
	require.NoError(t, err)
	assert.Nil(t, params)

	_, err = cli.ParseParams([]string{"novalue"})
	assert.ErrorContains(t, err, `invalid parameter "novalue"`)
	_, err = cli.ParseParams([]string{"=x"})
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "jobs.yaml", `
workers: 3
source:
  timestamp_pattern: '^(?<ts>\d+) '
params:
  user: alice
jobs:
  - automaton: login.yaml
    log: /var/log/ok.log
    params: {user: bob}
  - name: custom
    automaton: login.yaml
    log: logs/slow.log
    source:
      multiline: true
      timestamp_pattern: '^(?<ts>\d+) '
`)

	cfg, err := cli.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, `^(?<ts>\d+) `, cfg.Source.TimestampPattern)
	require.Len(t, cfg.Jobs, 2)
	assert.Equal(t, filepath.Join(dir, "login.yaml"), cfg.Jobs[0].Automaton)
	assert.Equal(t, "/var/log/ok.log", cfg.Jobs[0].Log)
	assert.Equal(t, "bob", cfg.Jobs[0].Params["user"])
	assert.Equal(t, filepath.Join(dir, "logs", "slow.log"), cfg.Jobs[1].Log)
	require.NotNil(t, cfg.Jobs[1].Source)
	assert.True(t, cfg.Jobs[1].Source.Multiline)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := cli.LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = cli.LoadConfig(write(t, dir, "unknown.yaml", "jobz: []\n"))
	assert.ErrorContains(t, err, "failed to parse config")

	_, err = cli.LoadConfig(write(t, dir, "partial.yaml", "jobs:\n  - automaton: a.yaml\n"))
	assert.ErrorContains(t, err, "job 1 needs both automaton and log")

	cfg, err := cli.LoadConfig(write(t, dir, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Empty(t, cfg.Jobs)
}

func TestRun_Text(t *testing.T) {
	dir := workspace(t)
	var out, errOut bytes.Buffer

	passed, err := cli.Run(context.Background(), cli.RunOptions{
		Automata: []string{filepath.Join(dir, "login.yaml")},
		Logs:     []string{filepath.Join(dir, "ok.log"), filepath.Join(dir, "slow.log")},
		Params:   map[string]string{"user": "alice"},
		Source:   stamped,
		Workers:  1,
		Out:      &out,
		Err:      &errOut,
	})
	require.NoError(t, err)
	assert.False(t, passed)

	text := out.String()
	assert.Contains(t, text, "PASS   login "+filepath.Join(dir, "ok.log")+" (2 entries, node session)")
	assert.Contains(t, text, "FAIL   login "+filepath.Join(dir, "slow.log"))
	assert.Contains(t, text, `reached FAILURE node "timeout": nobody logged in`)
	assert.Empty(t, errOut.String())
}

func TestRun_JSONAndDebug(t *testing.T) {
	dir := workspace(t)
	var out, errOut bytes.Buffer

	passed, err := cli.Run(context.Background(), cli.RunOptions{
		Automata: []string{filepath.Join(dir, "login.yaml")},
		Logs:     []string{filepath.Join(dir, "ok.log")},
		Params:   map[string]string{"user": "alice"},
		Source:   stamped,
		JSON:     true,
		Debug:    true,
		Out:      &out,
		Err:      &errOut,
	})
	require.NoError(t, err)
	assert.True(t, passed)

	var v map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &v))
	assert.Equal(t, "pass", v["result"])
	assert.Equal(t, "login", v["automaton"])
	assert.Equal(t, "session", v["final_node"])

	assert.Contains(t, errOut.String(), `"msg":"transition"`)
}

func TestRun_Config(t *testing.T) {
	dir := workspace(t)
	cfgPath := write(t, dir, "jobs.yaml", `
source:
  timestamp_pattern: '^(?<ts>\d+) '
params:
  user: alice
jobs:
  - name: fast-login
    automaton: login.yaml
    log: ok.log
  - automaton: login.yaml
    log: ok.log
    params: {user: bob}
`)
	var out bytes.Buffer

	passed, err := cli.Run(context.Background(), cli.RunOptions{Config: cfgPath, JSON: true, Out: &out, Err: &out})
	require.NoError(t, err)
	assert.False(t, passed)

	results := map[string]string{}
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var v map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &v))
		results[v["automaton"].(string)] = v["result"].(string)
	}
	assert.Equal(t, map[string]string{"fast-login": "pass", "login": "fail"}, results)
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := cli.Run(ctx, cli.RunOptions{Out: &bytes.Buffer{}})
	assert.ErrorIs(t, err, cli.ErrNoJobs)

	_, err = cli.Run(ctx, cli.RunOptions{Config: filepath.Join(t.TempDir(), "none.yaml")})
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = cli.Run(ctx, cli.RunOptions{
		Automata: []string{"a.yaml"},
		Logs:     []string{"b.log"},
		RedisURL: "not a url",
	})
	assert.ErrorContains(t, err, "failed to connect to redis")
}

func TestRun_MissingFilesAreDefects(t *testing.T) {
	dir := workspace(t)
	var out bytes.Buffer

	passed, err := cli.Run(context.Background(), cli.RunOptions{
		Automata: []string{filepath.Join(dir, "nope.yaml"), filepath.Join(dir, "login.yaml")},
		Logs:     []string{filepath.Join(dir, "missing.log")},
		Params:   map[string]string{"user": "alice"},
		Out:      &out,
	})
	require.NoError(t, err)
	assert.False(t, passed)
	assert.Equal(t, 2, strings.Count(out.String(), "DEFECT"))
	assert.Contains(t, out.String(), "failed to load definition")
	assert.Contains(t, out.String(), "failed to open source")
}

func TestRun_SavesToRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	dir := workspace(t)

	passed, err := cli.Run(context.Background(), cli.RunOptions{
		Automata: []string{filepath.Join(dir, "login.yaml")},
		Logs:     []string{filepath.Join(dir, "ok.log")},
		Params:   map[string]string{"user": "alice"},
		Source:   stamped,
		RedisURL: "redis://" + mr.Addr(),
		Out:      &bytes.Buffer{},
	})
	require.NoError(t, err)
	assert.True(t, passed)

	store, err := redis.NewFromURL("redis://" + mr.Addr())
	require.NoError(t, err)
	defer store.Close()

	saved, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.True(t, saved[0].Succeeded)
	assert.Equal(t, "login", saved[0].Automaton)
}

func TestValidate(t *testing.T) {
	dir := workspace(t)
	ctx := context.Background()
	var out bytes.Buffer

	ok, err := cli.Validate(ctx, filepath.Join(dir, "login.yaml"), map[string]string{"user": "x"}, &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "login is valid! ✅\n", out.String())

	out.Reset()
	ok, err = cli.Validate(ctx, filepath.Join(dir, "login.yaml"), nil, &out)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, out.String(), "login is invalid:\n")
	assert.Contains(t, out.String(), `undefined parameter "user"`)

	_, err = cli.Validate(ctx, filepath.Join(dir, "missing.yaml"), nil, &out)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate_Warnings(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "island.yaml", `
nodes:
  - id: start
    type: INITIAL
  - id: done
    type: SUCCESS
  - id: island
edges:
  - id: go
    source_id: start
    destination_id: done
    trigger_always: true
`)
	var out bytes.Buffer

	ok, err := cli.Validate(context.Background(), path, nil, &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, out.String(), "warning: ")
	assert.Contains(t, out.String(), "island")
	assert.Contains(t, out.String(), "island is valid! ✅")
}

func TestGraph(t *testing.T) {
	dir := workspace(t)
	ctx := context.Background()
	var out bytes.Buffer

	require.NoError(t, cli.Graph(ctx, cli.GraphOptions{Path: filepath.Join(dir, "login.yaml")}, &out))
	assert.True(t, strings.HasPrefix(out.String(), "graph TD\n"))
	assert.Contains(t, out.String(), `anonymous(("anonymous"))`)
	assert.NotContains(t, out.String(), "Overlay")

	out.Reset()
	require.NoError(t, cli.Graph(ctx, cli.GraphOptions{
		Path:   filepath.Join(dir, "login.yaml"),
		Params: map[string]string{"user": "alice"},
		Log:    filepath.Join(dir, "slow.log"),
		Source: stamped,
	}, &out))
	assert.Contains(t, out.String(), "class anonymous visited;")
	assert.Contains(t, out.String(), "class timeout visited;")
	assert.Contains(t, out.String(), "class timeout current;")
	assert.NotContains(t, out.String(), "class session")

	err := cli.Graph(ctx, cli.GraphOptions{Path: filepath.Join(dir, "login.yaml"), Log: filepath.Join(dir, "slow.log")}, &out)
	assert.ErrorContains(t, err, `undefined parameter "user"`)
}

func TestDescribe(t *testing.T) {
	dir := workspace(t)
	var out bytes.Buffer

	require.NoError(t, cli.Describe(context.Background(), filepath.Join(dir, "login.yaml"), true, &out))
	assert.Contains(t, out.String(), "# login\n")
	assert.Contains(t, out.String(), "## anonymous (initial)")
	assert.Contains(t, out.String(), "- **late** to `timeout` when always, since start in `(2s;]`")
}

func TestRun_ProtectsStoredVerdicts(t *testing.T) {
	mr := miniredis.RunT(t)
	dir := workspace(t)
	key := bytes.Repeat([]byte{7}, 32)

	passed, err := cli.Run(context.Background(), cli.RunOptions{
		Automata:      []string{filepath.Join(dir, "login.yaml")},
		Logs:          []string{filepath.Join(dir, "slow.log")},
		Params:        map[string]string{"user": "alice"},
		Source:        stamped,
		RedisURL:      "redis://" + mr.Addr(),
		Redact:        []string{`slow`},
		EncryptionKey: key,
		Out:           &bytes.Buffer{},
	})
	require.NoError(t, err)
	assert.False(t, passed)

	store, err := redis.NewFromURL("redis://" + mr.Addr())
	require.NoError(t, err)
	defer store.Close()

	saved, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.True(t, strings.HasPrefix(saved[0].Reason, "enc:v1:"))
	assert.Empty(t, saved[0].Source)
	assert.Equal(t, "timeout", saved[0].FinalNode)

	_, err = cli.Run(context.Background(), cli.RunOptions{
		Automata:      []string{filepath.Join(dir, "login.yaml")},
		Logs:          []string{filepath.Join(dir, "slow.log")},
		RedisURL:      "redis://" + mr.Addr(),
		EncryptionKey: []byte("short"),
		Out:           &bytes.Buffer{},
	})
	assert.ErrorContains(t, err, "encryption key must be 32 bytes")
}

func TestRun_Tools(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on sh")
	}
	dir := t.TempDir()
	write(t, dir, "vip.yaml", `
nodes:
  - id: waiting
    type: INITIAL
  - id: vip
    type: SUCCESS
edges:
  - id: vip-login
    source_id: waiting
    destination_id: vip
    regex: 'user (\w+) logged in'
    check_exp: 'is_vip(group(1)) == "yes"'
`)
	write(t, dir, "tools.yaml", `
tools:
  - name: is_vip
    command: sh
    args: ["-c", "if [ \"$VIGIL_ARG_1\" = carol ]; then echo yes; else echo no; fi"]
`)
	write(t, dir, "users.log", "user alice logged in\nuser carol logged in\n")
	var out bytes.Buffer

	passed, err := cli.Run(context.Background(), cli.RunOptions{
		Automata: []string{filepath.Join(dir, "vip.yaml")},
		Logs:     []string{filepath.Join(dir, "users.log")},
		Tools:    filepath.Join(dir, "tools.yaml"),
		Out:      &out,
	})
	require.NoError(t, err)
	assert.True(t, passed, out.String())
	assert.Contains(t, out.String(), "(2 entries, node vip)")
}
