package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveSaveListShow(t *testing.T) {
	docPath := runDocument(t)
	dbPath := filepath.Join(t.TempDir(), "archive.db")

	out, err := execute(t, "archive", "save", docPath, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Archived ")

	// Saving the same document again is a no-op.
	out, err = execute(t, "archive", "save", docPath, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "= Already archived")

	out, err = execute(t, "--format", "json", "archive", "list", "--db", dbPath)
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   []struct {
			ID       string `json:"id"`
			DeviceID string `json:"device_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "aer_simulator", resp.Data[0].DeviceID)

	out, err = execute(t, "archive", "show", resp.Data[0].ID, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, `"model_version"`)
}

func TestArchiveShow_NotFound(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "archive.db")

	_, err := execute(t, "archive", "show", "no_such_document", "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestArchiveLineage(t *testing.T) {
	docPath := runDocument(t)
	dbPath := filepath.Join(t.TempDir(), "archive.db")

	_, err := execute(t, "archive", "save", docPath, "--db", dbPath)
	require.NoError(t, err)

	// Pull the circuit ID from the archive listing's companion document.
	out, err := execute(t, "--format", "json", "archive", "list", "--db", dbPath)
	require.NoError(t, err)
	var resp struct {
		Data []struct {
			CircuitID string `json:"circuit_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)

	out, err = execute(t, "archive", "lineage", resp.Data[0].CircuitID, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "wasDerivedFrom")
	assert.Contains(t, out, "Derived entities:")
}

func TestArchiveSave_RejectsInvalidDocument(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "archive.db")
	docPath := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(docPath, []byte(`{"model_version":""}`), 0o644))

	_, err := execute(t, "archive", "save", docPath, "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
