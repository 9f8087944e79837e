package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/pgmeta/internal/catalog"
	"github.com/koustreak/pgmeta/internal/errs"
	"github.com/koustreak/pgmeta/internal/typegen/typegentest"
)

func writeSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meta.json")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, catalog.Encode(f, typegentest.Metadata()))
	require.NoError(t, f.Close())
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestGenerate_Stdout(t *testing.T) {
	snap := writeSnapshot(t)
	out, _, err := run(t, "generate", "typescript", "--snapshot", snap, "--included-schemas", "public", "--postgrest-version", "12")
	require.NoError(t, err)
	assert.Contains(t, out, "export type Database = {")
	assert.Contains(t, out, `PostgrestVersion: "12"`)
	assert.NotContains(t, out, "auth: {")
}

func TestGenerate_File(t *testing.T) {
	snap := writeSnapshot(t)
	path := filepath.Join(t.TempDir(), "lib", "database.go")
	_, _, err := run(t, "generate", "go", "--snapshot", snap, "--go-package", "models", "--out", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "package models")
}

func TestGenerate_All(t *testing.T) {
	snap := writeSnapshot(t)
	dir := t.TempDir()
	_, status, err := run(t, "generate", "all", "--snapshot", snap, "--out", dir)
	require.NoError(t, err)

	for _, name := range []string{"database.ts", "database.dart", "database.go"} {
		assert.FileExists(t, filepath.Join(dir, name))
		assert.Contains(t, status, name)
	}
}

func TestGenerate_Errors(t *testing.T) {
	snap := writeSnapshot(t)
	_, _, err := run(t, "generate", "cobol", "--snapshot", snap)
	assert.True(t, errs.IsNotFound(err))

	_, _, err = run(t, "generate", "dart", "--snapshot", filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errs.IsNotFound(err))

	t.Setenv("PGMETA_DB_URL", "")
	_, _, err = run(t, "generate", "dart")
	assert.True(t, errs.IsInvalidInput(err), "no snapshot and no database url")

	_, _, err = run(t, "generate")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "pgmeta dev (unknown)\n", out)
}
