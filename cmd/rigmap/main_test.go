// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/katalvlaran/rigmap/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	forwardDef = filepath.Join("testdata", "forward.yaml")
	inverseDef = filepath.Join("testdata", "inverse.yaml")
)

// run executes a fresh command tree and returns what it wrote to stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()

	return out.String(), err
}

// writeFile writes body under a fresh temp dir.
func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	return path
}

// TestRoot_Commands verifies the command tree and the persistent log flag.
func TestRoot_Commands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"validate", "inspect", "eval", "watch"} {
		sub, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
	f := root.PersistentFlags().Lookup(flagLogLevel)
	require.NotNil(t, f)
	assert.Equal(t, "warn", f.DefValue)

	_, err := run(t, "", "--log-level", "shouty", "inspect", forwardDef)
	assert.ErrorIs(t, err, config.ErrBadLogLevel)
}

// TestValidate reports each file and the chain.
func TestValidate(t *testing.T) {
	out, err := run(t, "", "validate", forwardDef, inverseDef)
	require.NoError(t, err)
	assert.Contains(t, out, "ok   "+forwardDef+" (3 inputs, 2 features, 2 outputs)")
	assert.Contains(t, out, "ok   chain of 2 stages")

	out, err = run(t, "", "validate", forwardDef, forwardDef)
	assert.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, "FAIL chain")
	assert.Contains(t, out, `"a"`)

	broken := writeFile(t, "broken.json", `{"inputs": ["a"], "outputs": {"x": "ghost"}}`)
	out, err = run(t, "", "validate", broken)
	assert.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, "FAIL "+broken)
	assert.Contains(t, out, "output links to unknown name")

	_, err = run(t, "", "validate")
	assert.Error(t, err, "at least one file is required")
}

// TestInspect prints node counts and output resolution.
func TestInspect(t *testing.T) {
	out, err := run(t, "", "inspect", forwardDef)
	require.NoError(t, err)
	assert.Contains(t, out, "forward.yaml")
	assert.Contains(t, out, "weighted_sum[0]")
	assert.Contains(t, out, "weighted_sum[1]")
	assert.Contains(t, out, "null outputs")

	dropped := writeFile(t, "dropped.json", `{"inputs": ["a"], "outputs": {"x": "a", "y": "ghost"}}`)
	out, err = run(t, "", "inspect", dropped)
	require.NoError(t, err)
	assert.Contains(t, out, "(dropped)")
	assert.Contains(t, out, "input[0]")
}

// TestEval_Pose round-trips a pose through the forward and inverse stages.
func TestEval_Pose(t *testing.T) {
	out, err := run(t, `{"a": 0.2, "b": 0.4, "c": 0.9}`, "eval", "--def", forwardDef, "--def", inverseDef)
	require.NoError(t, err)

	var got map[string]float64
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, map[string]float64{"a": 0.2, "b": 0.4, "c": 0}, got, "c was nulled by the first stage")

	out, err = run(t, `{"a": 0.2, "b": 0.4}`, "eval", "--def", forwardDef, "--def", inverseDef, "--skip-unset")
	require.NoError(t, err)
	got = nil
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, map[string]float64{"a": 0.2, "b": 0.4}, got)
}

// TestEval_Config takes stages and skip_unset from a config file.
func TestEval_Config(t *testing.T) {
	out, err := run(t, `{"a": 1}`, "eval", "--config", filepath.Join("testdata", "rigmap.yaml"))
	require.NoError(t, err)

	var got map[string]float64
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, map[string]float64{"a": 1}, got)
}

// TestEval_Batch evaluates the positional form from a file.
func TestEval_Batch(t *testing.T) {
	frames := writeFile(t, "frames.json", `{"names": ["a", "b"], "frames": [[1, null], [0.5, 0.25]]}`)
	out, err := run(t, "", "eval", "--def", forwardDef, "--def", inverseDef, "--frames", frames)
	require.NoError(t, err)

	var got struct {
		Names  []string     `json:"names"`
		Frames [][]*float64 `json:"frames"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"a", "b", "c"}, got.Names)
	require.Len(t, got.Frames, 2)

	require.NotNil(t, got.Frames[0][0])
	assert.Equal(t, 1.0, *got.Frames[0][0])
	assert.Nil(t, got.Frames[0][1])
	assert.Nil(t, got.Frames[0][2])
	require.NotNil(t, got.Frames[1][1])
	assert.Equal(t, 0.25, *got.Frames[1][1])

	// a short row fails that frame only
	_, err = run(t, `{"names": ["a", "b"], "frames": [[1]]}`, "eval", "--def", forwardDef)
	assert.ErrorIs(t, err, errFrames)
}

// TestEval_Errors covers missing stages and malformed input.
func TestEval_Errors(t *testing.T) {
	_, err := run(t, `{}`, "eval")
	assert.ErrorIs(t, err, errNoStages)

	_, err = run(t, `[1, 2]`, "eval", "--def", forwardDef)
	assert.Error(t, err)

	_, err = run(t, `{}`, "eval", "--def", forwardDef, "--def", forwardDef)
	assert.Error(t, err, "chain validation is on by default")
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

// TestWatch reports the initial build, then a broken rewrite, until cancelled.
func TestWatch(t *testing.T) {
	path := writeFile(t, "face.json", `{"inputs": ["a"], "outputs": {"x": "a"}}`)

	var out syncBuffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"watch", path})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "ok   "+path+" (1 outputs)")
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(`{"inputs": ["a"], "outputs": {"x": "ghost"}}`), 0o644))
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "FAIL "+path)
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
