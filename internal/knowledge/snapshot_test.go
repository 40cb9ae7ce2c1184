package knowledge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeKB(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "knowledge_base.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FailsOnUnparsableFile(t *testing.T) {
	path := writeKB(t, t.TempDir(), "no markers here")
	_, err := Load(path, zap.NewNop())
	require.Error(t, err)
}

func TestLoad_FailsOnMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.md"), zap.NewNop())
	require.Error(t, err)
}

func TestReload_SwapsCorpus(t *testing.T) {
	dir := t.TempDir()
	path := writeKB(t, dir, "Q: One?\nA: Yes.")

	snap, err := Load(path, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, 1, snap.Current().Len())

	writeKB(t, dir, "Q: One?\nA: Yes.\nQ: Two?\nA: Also yes.")
	require.NoError(t, snap.Reload())
	assert.Equal(t, 2, snap.Current().Len())
}

func TestReload_KeepsPreviousCorpusOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeKB(t, dir, "Q: One?\nA: Yes.")

	snap, err := Load(path, zap.NewNop())
	require.NoError(t, err)
	before := snap.Current()

	writeKB(t, dir, "this no longer parses")
	require.Error(t, snap.Reload())
	assert.Same(t, before, snap.Current())
}
