package utils

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captured(level DiagnosticLevel) (*DiagnosticSystem, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewDiagnosticSystem(level).WithOutput(&out, &errOut), &out, &errOut
}

func TestLevelFromFlags(t *testing.T) {
	assert.Equal(t, DiagnosticInfo, LevelFromFlags(false, false))
	assert.Equal(t, DiagnosticVerbose, LevelFromFlags(true, false))
	assert.Equal(t, DiagnosticError, LevelFromFlags(false, true))
	assert.Equal(t, DiagnosticError, LevelFromFlags(true, true))
}

func TestDiagnosticLevels(t *testing.T) {
	d, out, errOut := captured(DiagnosticInfo)

	d.Info("scanning %s", "module")
	d.Verbose("hidden")
	d.Warn("no files")
	d.Error("boom")

	assert.Equal(t, "[INFO] scanning module\n[WARN] no files\n", out.String())
	assert.Equal(t, "[ERROR] boom\n", errOut.String())

	q, out, errOut := captured(DiagnosticError)
	q.Info("hidden")
	q.Success("hidden")
	q.Error("shown")
	assert.Empty(t, out.String())
	assert.Equal(t, "[ERROR] shown\n", errOut.String())
}

func TestDiagnosticFileResult(t *testing.T) {
	d, out, errOut := captured(DiagnosticInfo)

	d.FileResult("rewritten", "a.php")
	d.FileResult("unchanged", "b.php")
	d.FileResult("would rewrite", "c.php")
	d.FileResult("failed", "d.php")

	assert.Equal(t, "✓ a.php\n✏ c.php\n", out.String())
	assert.Equal(t, "✗ d.php\n", errOut.String())

	v, out, _ := captured(DiagnosticVerbose)
	v.FileResult("unchanged", "b.php")
	assert.Equal(t, "- b.php\n", out.String())
}

func TestDiagnosticSummaryKeepsOrder(t *testing.T) {
	d, out, _ := captured(DiagnosticInfo)

	d.Summary("Done", []Stat{{"Scanned", 3}, {"Rewritten", 1}, {"Failed", 0}})

	assert.Equal(t, "\nDone\n   Scanned: 3\n   Rewritten: 1\n   Failed: 0\n\n", out.String())
}

func TestDiagnosticDiff(t *testing.T) {
	diff := "--- a.php\n+++ a.php\n@@ -1 +1 @@\n-old\n+new\n"

	d, out, _ := captured(DiagnosticError)
	d.Diff(diff)
	assert.Equal(t, diff, out.String())

	s, out, _ := captured(DiagnosticSilent)
	s.Diff(diff)
	assert.Empty(t, out.String())
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LoggerOptions{JSON: true, Level: DiagnosticInfo})

	logger.Debug().Msg("hidden")
	logger.Info().Str("file", "a.php").Str("status", "rewritten").Msg("file processed")

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "info", event["level"])
	assert.Equal(t, "a.php", event["file"])
	assert.Equal(t, "rewritten", event["status"])
	assert.Equal(t, "file processed", event["message"])
}

func TestNewLoggerConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LoggerOptions{Level: DiagnosticVerbose, NoColor: true})

	logger.Debug().Str("file", "a.php").Msg("file processed")

	assert.Contains(t, buf.String(), "file processed")
	assert.Contains(t, buf.String(), "file=a.php")
}

func TestNewLoggerSilent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LoggerOptions{JSON: true, Level: DiagnosticSilent})

	logger.Error().Msg("hidden")
	assert.Empty(t, buf.String())
}
