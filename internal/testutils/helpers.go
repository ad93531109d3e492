// Package testutils holds fixtures shared by tests that need a Loam vault.
package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/require"
)

// SetupTestRepo creates a temporary directory and initializes a Loam repository in it.
// It returns the absolute path to the temp dir and the initialized repository.
// It fails the test immediately on error.
func SetupTestRepo(t *testing.T, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	if len(opts) == 0 {
		opts = []loam.Option{loam.WithVersioning(false)}
	}
	repo, err := loam.Init(absPath, opts...)
	require.NoError(t, err, "Failed to init loam repo")

	return absPath, repo
}

// WriteFiles seeds dir with the given file name to content pairs.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// CountdownVault is a while loop pair that counts 3 down to 0, laid out as
// one document per node.
var CountdownVault = map[string]string{
	"open.md": `---
class: WhileLoopOpen
inputs:
  initial_value0: 3
---
`,
	"sub.md": `---
class: IntMath
inputs:
  operation: subtract
  a: {from: open, output: 1}
  b: 1
---
`,
	"cond.md": `---
class: ToBool
inputs:
  value: [sub, 0]
---
`,
	"close.md": `---
class: WhileLoopClose
inputs:
  flow_control: {from: open, output: 0}
  condition: {from: cond, output: 0}
  initial_value0: {from: sub, output: 0}
---
`,
}
