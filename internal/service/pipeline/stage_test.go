package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var errDiskFull = errors.New("disk full")

// stageFiles creates a staging directory inside dir holding the given files.
func stageFiles(t *testing.T, dir string, files map[string]string) string {
	t.Helper()

	staging, err := os.MkdirTemp(dir, stagingPrefix)
	require.NoError(t, err)

	for name, contents := range files {
		require.NoError(t, os.WriteFile(filepath.Join(staging, name), []byte(contents), 0o600))
	}

	return staging
}

// listOutputs returns the file contents of dir, ignoring staging directories.
func listOutputs(t *testing.T, dir string) map[string]string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	out := make(map[string]string)

	for _, e := range entries {
		require.False(t, strings.HasPrefix(e.Name(), backupPrefix), e.Name())

		if e.IsDir() {
			continue
		}

		data, readErr := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, readErr)

		out[e.Name()] = string(data)
	}

	return out
}

func TestCommit_ReplacesPreviousOutputs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hazard.asc"), []byte("old"), 0o600))

	staging := stageFiles(t, dir, map[string]string{"hazard.asc": "new", "paths.geojson": "lines"})
	require.NoError(t, commit(staging, dir, os.Rename))

	require.Equal(t, map[string]string{"hazard.asc": "new", "paths.geojson": "lines"}, listOutputs(t, dir))
}

func TestCommit_FailedMoveRestoresPreviousOutputs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hazard.asc"), []byte("old"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.json"), []byte("old report"), 0o600))

	staging := stageFiles(t, dir, map[string]string{
		"a_transit.asc": "new transit",
		"hazard.asc":    "new",
		"report.json":   "new report",
		"z_paths.json":  "lines",
	})

	// The last staged file cannot be moved.
	failing := func(from, to string) error {
		if filepath.Base(from) == "z_paths.json" {
			return errDiskFull
		}

		return os.Rename(from, to)
	}

	err := commit(staging, dir, failing)
	require.ErrorIs(t, err, errDiskFull)

	require.Equal(t, map[string]string{"hazard.asc": "old", "report.json": "old report"}, listOutputs(t, dir))
}
