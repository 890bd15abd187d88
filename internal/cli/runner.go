package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/rs/zerolog"

	"github.com/maliboot/colaup/internal/errors"
	"github.com/maliboot/colaup/internal/upgrade"
	"github.com/maliboot/colaup/internal/utils"
	"github.com/maliboot/colaup/internal/utils/fileops"
)

// FileResult is the outcome for one file of a run.
type FileResult struct {
	Path     string
	Status   upgrade.Status
	Err      error
	Duration time.Duration
}

// RunSummary counts what a run did.
type RunSummary struct {
	Scanned   int
	Rewritten int
	Unchanged int
	Failed    int
	Files     []FileResult
}

func (s *RunSummary) add(r FileResult) {
	s.Files = append(s.Files, r)
	switch r.Status {
	case upgrade.Rewritten:
		s.Rewritten++
	case upgrade.Unchanged:
		s.Unchanged++
	case upgrade.Failed:
		s.Failed++
	}
}

// Runner migrates every discovered file of a directory, one file at a time.
type Runner struct {
	cfg         *Config
	engine      *upgrade.Engine
	scanner     *DirectoryScanner
	files       *fileops.FileOps
	diagnostics *utils.DiagnosticSystem
	logger      zerolog.Logger
}

// NewRunner creates a runner for cfg.
func NewRunner(cfg *Config, diagnostics *utils.DiagnosticSystem, logger zerolog.Logger) *Runner {
	return &Runner{
		cfg:         cfg,
		engine:      upgrade.NewEngine(),
		scanner:     NewDirectoryScanner(cfg.Paths, cfg.RespectGitignore),
		files:       fileops.NewFileOps(),
		diagnostics: diagnostics,
		logger:      logger,
	}
}

// Run migrates the configured directory. It stops at the first failed file
// unless KeepGoing is set, in which case every failure is returned together
// once all files were tried. Cancelling ctx stops the run between files.
func (r *Runner) Run(ctx context.Context) (*RunSummary, error) {
	summary := &RunSummary{}

	root, err := r.cfg.SourceDir()
	if err != nil {
		return summary, err
	}
	if !r.files.IsDir(root) {
		return summary, errors.FileSystemError("open", root, "the dir does not exist").
			WithSuggestion("pass the module directory with --dir, relative to --base")
	}
	r.diagnostics.SourcePath(root)

	files, err := r.scanner.Scan(root)
	if err != nil {
		return summary, err
	}
	summary.Scanned = len(files)
	if len(files) == 0 {
		r.diagnostics.Warn("no PHP files found under %v", r.cfg.Paths)
	}
	r.logger.Debug().Str("dir", root).Int("files", len(files)).Msg("discovered files")

	var failures *errors.MultipleErrors
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		res := r.processFile(root, path)
		summary.add(res)
		if res.Err == nil {
			continue
		}
		if !r.cfg.KeepGoing {
			return summary, res.Err
		}
		errors.AddToMultiple(&failures, res.Err)
	}
	return summary, failures.ErrOrNil()
}

func (r *Runner) processFile(root, path string) FileResult {
	start := time.Now()
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	res := r.migrate(path, rel)
	res.Duration = time.Since(start)
	r.report(res, rel)
	return res
}

func (r *Runner) migrate(path, rel string) FileResult {
	src, mode, err := r.files.ReadFile(path)
	if err != nil {
		return FileResult{Path: path, Status: upgrade.Failed, Err: err}
	}

	out := r.engine.Transform(src, rel)
	res := FileResult{Path: path, Status: out.Status, Err: out.Err}
	if out.Status != upgrade.Rewritten {
		return res
	}

	if r.cfg.DryRun {
		diff, err := unifiedDiff(rel, src, out.Text)
		if err != nil {
			res.Status, res.Err = upgrade.Failed, errors.WrapWithOperation("diff", rel, err)
			return res
		}
		r.diagnostics.Diff(diff)
		return res
	}

	if err := r.files.WriteFile(path, []byte(out.Text), mode); err != nil {
		res.Status, res.Err = upgrade.Failed, err
	}
	return res
}

func (r *Runner) report(res FileResult, rel string) {
	var event *zerolog.Event
	switch res.Status {
	case upgrade.Failed:
		event = r.logger.Error().Err(res.Err).Str("code", errors.CodeOf(res.Err).String())
	case upgrade.Rewritten:
		event = r.logger.Info()
	default:
		event = r.logger.Debug()
	}
	event.Str("file", rel).
		Str("status", res.Status.String()).
		Bool("dry_run", r.cfg.DryRun).
		Dur("duration", res.Duration).
		Msg("file processed")

	status := res.Status.String()
	if res.Status == upgrade.Rewritten && r.cfg.DryRun {
		status = "would rewrite"
	}
	r.diagnostics.FileResult(status, rel)
}

// PrintSummary writes the run counters.
func (r *Runner) PrintSummary(s *RunSummary) {
	rewritten := "Rewritten"
	if r.cfg.DryRun {
		rewritten = "Would rewrite"
	}
	r.diagnostics.Summary("Migration complete", []utils.Stat{
		{Name: "Scanned", Value: s.Scanned},
		{Name: rewritten, Value: s.Rewritten},
		{Name: "Unchanged", Value: s.Unchanged},
		{Name: "Failed", Value: s.Failed},
	})
}

func unifiedDiff(name, before, after string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  3,
	})
}
