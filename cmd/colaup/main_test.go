package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orderDO = `<?php

namespace App\Order\Infra\DataObject;

use MaliBoot\Cola\Annotation\DataObject;

#[DataObject(table: 'orders')]
class OrderDO
{
    #[Column(name: 'order_id', desc: 'order identifier')]
    private string $orderId;
}
`

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCommand(&out, &errOut)
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeModule(t *testing.T, base string) string {
	t.Helper()
	path := filepath.Join(base, "module", "Order", "Infra", "DataObject", "OrderDO.php")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(orderDO), 0o644))
	return path
}

func TestHelp(t *testing.T) {
	out, _, err := execute(t, "--help")
	require.NoError(t, err)

	for _, flag := range []string{"--dir", "--base", "--dry-run", "--keep-going", "--respect-gitignore", "--log-json", "--config"} {
		assert.Contains(t, out, flag)
	}
}

func TestRejectsArguments(t *testing.T) {
	_, _, err := execute(t, "extra")
	assert.Error(t, err)
}

func TestMigratesModule(t *testing.T) {
	base := t.TempDir()
	path := writeModule(t, base)

	out, _, err := execute(t, "--base", base)
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(got), "#[Database(table: 'orders')]")
	assert.Contains(t, string(got), "use MaliBoot\\Cola\\Annotation\\ORM;")
	assert.Contains(t, out, "Rewritten: 1")
	assert.Contains(t, out, "1 of 1 files migrated")
}

func TestDryRunLeavesFilesAlone(t *testing.T) {
	base := t.TempDir()
	path := writeModule(t, base)

	out, _, err := execute(t, "--base", base, "--dry-run")
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, orderDO, string(got))
	assert.Contains(t, out, "+#[Database(table: 'orders')]")
}

func TestConfigFileSelectsDir(t *testing.T) {
	base := t.TempDir()
	writeModule(t, base)
	require.NoError(t, os.Rename(filepath.Join(base, "module"), filepath.Join(base, "src")))
	require.NoError(t, os.WriteFile(filepath.Join(base, "colaup.yml"), []byte("dir: src\n"), 0o644))

	out, _, err := execute(t, "--base", base)
	require.NoError(t, err)
	assert.Contains(t, out, "Rewritten: 1")
}

func TestFlagOverridesConfigFile(t *testing.T) {
	base := t.TempDir()
	writeModule(t, base)
	require.NoError(t, os.WriteFile(filepath.Join(base, "colaup.yml"), []byte("dir: nope\n"), 0o644))

	out, _, err := execute(t, "--base", base, "--dir", "module")
	require.NoError(t, err)
	assert.Contains(t, out, "Rewritten: 1")
}

func TestMissingDir(t *testing.T) {
	_, errOut, err := execute(t, "--base", t.TempDir(), "--dir", "nope")
	require.Error(t, err)
	assert.Contains(t, errOut, "the dir does not exist")
	assert.Contains(t, errOut, "Type: File System Error")
}

func TestInterruptedRun(t *testing.T) {
	base := t.TempDir()
	writeModule(t, base)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out, errOut bytes.Buffer
	cmd := newRootCommand(&out, &errOut)
	cmd.SetArgs([]string{"--base", base})
	err := cmd.ExecuteContext(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, errOut.String(), "interrupted after 0 of 1 files")
	assert.NotContains(t, errOut.String(), "Migration Failed")
}

func TestQuietJSONLogging(t *testing.T) {
	base := t.TempDir()
	writeModule(t, base)

	out, errOut, err := execute(t, "--base", base, "--quiet", "--log-json")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NotContains(t, errOut, "file processed", "quiet drops info events")
}
