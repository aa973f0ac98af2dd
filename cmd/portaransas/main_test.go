package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInitThenValidate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "content")

	out, err := execute(t, newInitCmd(), dir)
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "site.yaml"))

	out, err = execute(t, newValidateCmd(), "--content", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "content OK")
	assert.Contains(t, out, "comparison")
}

func TestInitRefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, newInitCmd(), dir)
	require.NoError(t, err)

	_, err = execute(t, newInitCmd(), dir)
	assert.ErrorContains(t, err, "already exists")

	_, err = execute(t, newInitCmd(), "--force", dir)
	assert.NoError(t, err)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, newInitCmd(), dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "places.yaml"), []byte(`
- category: dining
  slug: the-gaff
  name: The Gaff
  description: Island bar.
- category: dining
  slug: the-gaff
  name: The Gaff Again
  description: Duplicate.
- category: shopping
  slug: tackle
  name: Tackle
  description: ""
`), 0o644))

	out, err := execute(t, newValidateCmd(), "--content", dir)
	require.Error(t, err)
	assert.Contains(t, out, "duplicate key")
	assert.Contains(t, out, "empty description")
	assert.GreaterOrEqual(t, strings.Count(out, "  - "), 2)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, newVersionCmd())
	require.NoError(t, err)
	assert.Equal(t, "portaransas dev\n", out)
}
