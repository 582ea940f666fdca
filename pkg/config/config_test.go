package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultPassesValidate(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lsupd.yaml")
	contents := `
rdf_store:
  location: /data/rdf
binary_store:
  path: /data/bin
  pairtree_branch_length: 2
  pairtree_branches: 3
digest:
  algo: sha256
referential_integrity: strict
legacy_pairtree_split: true
workers: 8
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/data/rdf", cfg.RDFStore.Location)
	require.Equal(t, "/data/bin", cfg.BinaryStore.Path)
	require.Equal(t, 2, cfg.BinaryStore.PairtreeBranchLength)
	require.Equal(t, 3, cfg.BinaryStore.PairtreeBranches)
	require.Equal(t, RefIntStrict, cfg.ReferentialIntegrity)
	require.True(t, cfg.LegacyPairtreeSplit)
	require.Equal(t, 8, cfg.Workers)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadPartialFileKeepsRemainingDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lsupd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 4\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 4, cfg.Workers)
	require.Equal(t, Default().BinaryStore.Path, cfg.BinaryStore.Path)
}

func TestValidateRejectsBadReferentialIntegrity(t *testing.T) {
	cfg := Default()
	cfg.ReferentialIntegrity = "bogus"
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveWorkers(t *testing.T) {
	cfg := Default()
	cfg.Workers = 0
	require.Error(t, cfg.Validate())
}
