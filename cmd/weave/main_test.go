package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/weave"
	"github.com/aretw0/weave/pkg/domain"
)

const countdownYAML = `
id: countdown
nodes:
  - id: open
    class: WhileLoopOpen
    inputs:
      initial_value0: 3
  - id: sub
    class: IntMath
    inputs:
      operation: subtract
      a: {from: open, output: 1}
      b: 1
  - id: cond
    class: ToBool
    inputs:
      value: {from: sub, output: 0}
  - id: close
    class: WhileLoopClose
    inputs:
      flow_control: {from: open, output: 0}
      condition: {from: cond, output: 0}
      initial_value0: {from: sub, output: 0}
`

const mismatchYAML = `
nodes:
  - id: flag
    class: ToBool
    inputs: {value: 1}
  - id: math
    class: IntMath
    inputs:
      a: {from: flag, output: 0}
`

func writePrompt(t *testing.T, name, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRun(t *testing.T) {
	path := writePrompt(t, "countdown.yaml", countdownYAML)

	out, err := execute(t, "run", path)
	require.NoError(t, err)
	assert.Contains(t, out, "status: completed")
	assert.Contains(t, out, "expansions: 2")
	assert.Contains(t, out, "close [0] (x3)")
}

func TestRun_MaxExpansions(t *testing.T) {
	path := writePrompt(t, "countdown.yaml", countdownYAML)

	_, err := execute(t, "run", "--max-expansions", "1", path)
	assert.ErrorIs(t, err, domain.ErrExpansionLimit)
}

func TestRun_JSON(t *testing.T) {
	path := writePrompt(t, "countdown.json", `{"nodes":[{"id":"sum","class":"IntMath","inputs":{"a":3,"b":4}}]}`)

	out, err := execute(t, "run", "--json", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"run_id"`)
	assert.Contains(t, out, `"sum": [`)
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "validate", writePrompt(t, "countdown.yaml", countdownYAML))
	require.NoError(t, err)
	assert.Equal(t, "OK\n", out)

	out, err = execute(t, "validate", writePrompt(t, "bad.yaml", mismatchYAML))
	assert.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, `FAIL node "math": socket "a"`)
}

func TestGraph(t *testing.T) {
	path := writePrompt(t, "countdown.yaml", countdownYAML)

	out, err := execute(t, "graph", path)
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "subgraph loop_close")

	out, err = execute(t, "graph", "--run", path)
	require.NoError(t, err)
	assert.Contains(t, out, "x3")

	out, err = execute(t, "graph", "--format", "yaml", path)
	require.NoError(t, err)
	assert.Contains(t, out, "class: WhileLoopClose")

	_, err = execute(t, "graph", "--format", "dot", path)
	assert.Error(t, err)
}

func TestClassesAndResolve(t *testing.T) {
	out, err := execute(t, "classes")
	require.NoError(t, err)
	assert.Contains(t, out, "MakeList\n")
	assert.Contains(t, out, "WhileLoopClose\n")

	out, err = execute(t, "classes", "MakeList")
	require.NoError(t, err)
	assert.Contains(t, out, "MakeList")

	_, err = execute(t, "classes", "Nope")
	assert.ErrorIs(t, err, domain.ErrUnknownClass)

	out, err = execute(t, "resolve", "--class", "MakeList", "--input", "value1=INT", "--input", "value2=INT")
	require.NoError(t, err)
	assert.Contains(t, out, "LIST<INT>")
	assert.Contains(t, out, "value3")

	out, err = execute(t, "resolve", writePrompt(t, "countdown.yaml", countdownYAML))
	require.NoError(t, err)
	assert.Contains(t, out, "close (WhileLoopClose)")
}

func TestVersionAndFlags(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "weave version "+weave.Version+"\n", out)

	_, err = execute(t, "classes", "--log-level", "loud")
	assert.Error(t, err)
}
