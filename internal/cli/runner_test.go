package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maliboot/colaup/internal/errors"
	"github.com/maliboot/colaup/internal/upgrade"
	"github.com/maliboot/colaup/internal/utils"
)

const userVO = `<?php

namespace App\User\Client\ViewObject;

#[ViewObject]
class UserVO
{
    #[Field(name: 'user name')]
    public string $name;
}
`

const userService = `<?php

namespace App\User\App;

class UserService
{
}
`

const brokenDO = `<?php

#[DataObject]
class BrokenDO
{
    public $id;
    public $ID;
}
`

type runnerFixture struct {
	base   string
	cfg    *Config
	out    *bytes.Buffer
	errOut *bytes.Buffer
	log    *bytes.Buffer
}

func newRunnerFixture(t *testing.T, files map[string]string) *runnerFixture {
	t.Helper()
	base := t.TempDir()
	writeFiles(t, filepath.Join(base, "module"), files)

	cfg := DefaultConfig()
	cfg.BasePath = base
	return &runnerFixture{
		base:   base,
		cfg:    &cfg,
		out:    &bytes.Buffer{},
		errOut: &bytes.Buffer{},
		log:    &bytes.Buffer{},
	}
}

func (f *runnerFixture) runner() *Runner {
	diagnostics := utils.NewDiagnosticSystem(utils.DiagnosticInfo).WithOutput(f.out, f.errOut)
	logger := utils.NewLogger(f.log, utils.LoggerOptions{JSON: true, Level: utils.DiagnosticVerbose})
	return NewRunner(f.cfg, diagnostics, logger)
}

func (f *runnerFixture) read(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(f.base, "module", filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(b)
}

func TestRunnerRewritesFiles(t *testing.T) {
	f := newRunnerFixture(t, map[string]string{
		"User/Client/ViewObject/UserVO.php": userVO,
		"User/Domain/Model/UserService.php": userService,
		"User/App/Skipped.php":              userVO,
	})
	require.NoError(t, os.Chmod(filepath.Join(f.base, "module", "User/Client/ViewObject/UserVO.php"), 0o600))

	summary, err := f.runner().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Scanned)
	assert.Equal(t, 1, summary.Rewritten)
	assert.Equal(t, 1, summary.Unchanged)
	assert.Equal(t, 0, summary.Failed)

	got := f.read(t, "User/Client/ViewObject/UserVO.php")
	assert.Contains(t, got, "class UserVO implements WeakSetterInterface")
	assert.Contains(t, got, "     * user name.\n")
	assert.Equal(t, userService, f.read(t, "User/Domain/Model/UserService.php"))
	assert.Equal(t, userVO, f.read(t, "User/App/Skipped.php"), "outside the role paths")

	info, err := os.Stat(filepath.Join(f.base, "module", "User/Client/ViewObject/UserVO.php"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	assert.Contains(t, f.out.String(), "✓ User/Client/ViewObject/UserVO.php")
	assert.Contains(t, f.log.String(), `"status":"rewritten"`)
	assert.Contains(t, f.log.String(), `"file":"User/Client/ViewObject/UserVO.php"`)

	// A second run finds nothing left to do.
	summary, err = f.runner().Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Rewritten)
	assert.Equal(t, 2, summary.Unchanged)
}

func TestRunnerDryRun(t *testing.T) {
	f := newRunnerFixture(t, map[string]string{
		"User/Client/ViewObject/UserVO.php": userVO,
	})
	f.cfg.DryRun = true

	r := f.runner()
	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Rewritten)

	assert.Equal(t, userVO, f.read(t, "User/Client/ViewObject/UserVO.php"), "dry run never writes")

	out := f.out.String()
	assert.Contains(t, out, "--- a/User/Client/ViewObject/UserVO.php\n")
	assert.Contains(t, out, "+++ b/User/Client/ViewObject/UserVO.php\n")
	assert.Contains(t, out, "-class UserVO\n")
	assert.Contains(t, out, "+class UserVO implements WeakSetterInterface\n")
	assert.Contains(t, out, "✏ User/Client/ViewObject/UserVO.php")

	r.PrintSummary(summary)
	assert.Contains(t, f.out.String(), "   Would rewrite: 1\n")
}

func TestRunnerFailFast(t *testing.T) {
	f := newRunnerFixture(t, map[string]string{
		"A/Infra/DataObject/BrokenDO.php": brokenDO,
		"B/Client/ViewObject/UserVO.php":  userVO,
	})

	summary, err := f.runner().Run(context.Background())
	require.Error(t, err)

	var dup *errors.DuplicateFieldError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "A/Infra/DataObject/BrokenDO.php", dup.Location().File)

	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 0, summary.Rewritten)
	assert.Equal(t, userVO, f.read(t, "B/Client/ViewObject/UserVO.php"), "run stopped before the second file")
	assert.Contains(t, f.errOut.String(), "✗ A/Infra/DataObject/BrokenDO.php")
	assert.Contains(t, f.log.String(), `"code":"DuplicateFieldError"`)
}

func TestRunnerKeepGoing(t *testing.T) {
	f := newRunnerFixture(t, map[string]string{
		"A/Infra/DataObject/BrokenDO.php": brokenDO,
		"B/Client/ViewObject/UserVO.php":  userVO,
		"C/Domain/Model/Bad.php":          "<?php\nclass Bad {\n",
	})
	f.cfg.KeepGoing = true

	summary, err := f.runner().Run(context.Background())
	require.Error(t, err)

	var multi *errors.MultipleErrors
	require.True(t, errors.As(err, &multi))
	assert.Equal(t, 2, multi.Count())
	assert.True(t, multi.HasCode(errors.DuplicateFieldErrorCode))
	assert.True(t, multi.HasCode(errors.SyntaxErrorCode))

	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, 1, summary.Rewritten)
	assert.NotEqual(t, userVO, f.read(t, "B/Client/ViewObject/UserVO.php"))
	assert.Equal(t, "<?php\nclass Bad {\n", f.read(t, "C/Domain/Model/Bad.php"))
}

func TestRunnerMissingDir(t *testing.T) {
	f := newRunnerFixture(t, nil)
	f.cfg.Dir = "nope"

	_, err := f.runner().Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "the dir does not exist")
	assert.Equal(t, errors.FileSystemErrorCode, errors.CodeOf(err))
}

func TestRunnerCancelled(t *testing.T) {
	f := newRunnerFixture(t, map[string]string{
		"Client/ViewObject/UserVO.php": userVO,
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := f.runner().Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, summary.Scanned)
	assert.Empty(t, summary.Files)
	assert.Equal(t, userVO, f.read(t, "Client/ViewObject/UserVO.php"))
}

func TestRunSummaryCounts(t *testing.T) {
	var s RunSummary
	s.add(FileResult{Status: upgrade.Rewritten})
	s.add(FileResult{Status: upgrade.Unchanged})
	s.add(FileResult{Status: upgrade.Unchanged})
	s.add(FileResult{Status: upgrade.Failed})

	assert.Equal(t, 1, s.Rewritten)
	assert.Equal(t, 2, s.Unchanged)
	assert.Equal(t, 1, s.Failed)
	assert.Len(t, s.Files, 4)
}

func TestUnifiedDiff(t *testing.T) {
	diff, err := unifiedDiff("a.php", "one\ntwo\n", "one\n2\n")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(diff, "--- a/a.php\n+++ b/a.php\n@@ -1,2 +1,2 @@\n"))
	assert.Contains(t, diff, "-two\n+2\n")
}

func TestRunnerWarnsWhenNothingFound(t *testing.T) {
	f := newRunnerFixture(t, map[string]string{
		"User/App/UserService.php": userService,
	})

	summary, err := f.runner().Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Scanned)
	assert.Contains(t, f.out.String(), "[WARN] no PHP files found under")
}
