package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

// DiagnosticLevel represents the level of diagnostic output
type DiagnosticLevel int

const (
	DiagnosticSilent DiagnosticLevel = iota
	DiagnosticError
	DiagnosticWarn
	DiagnosticInfo
	DiagnosticVerbose
	DiagnosticDebug
)

// LevelFromFlags maps the --quiet and --verbose flags to a level. Quiet wins.
func LevelFromFlags(verbose, quiet bool) DiagnosticLevel {
	switch {
	case quiet:
		return DiagnosticError
	case verbose:
		return DiagnosticVerbose
	default:
		return DiagnosticInfo
	}
}

// DiagnosticSystem writes the human-facing output of a run, filtered by level.
type DiagnosticSystem struct {
	level     DiagnosticLevel
	useColors bool
	showTime  bool
	output    io.Writer
	errorOut  io.Writer
}

// NewDiagnosticSystem writes to stdout and stderr. Timestamps are shown from
// the verbose level up.
func NewDiagnosticSystem(level DiagnosticLevel) *DiagnosticSystem {
	return &DiagnosticSystem{
		level:     level,
		useColors: shouldUseColors(),
		showTime:  level >= DiagnosticVerbose,
		output:    os.Stdout,
		errorOut:  os.Stderr,
	}
}

// WithOutput redirects regular and error output. Timestamps and colors are
// turned off, which keeps captured output stable.
func (d *DiagnosticSystem) WithOutput(out, errOut io.Writer) *DiagnosticSystem {
	d.output = out
	d.errorOut = errOut
	d.useColors = false
	d.showTime = false
	return d
}

// Error outputs error messages (always shown unless silent)
func (d *DiagnosticSystem) Error(format string, args ...any) {
	if d.level >= DiagnosticError {
		d.writeMessage(d.errorOut, "ERROR", color.FgRed, format, args...)
	}
}

// Warn outputs warning messages
func (d *DiagnosticSystem) Warn(format string, args ...any) {
	if d.level >= DiagnosticWarn {
		d.writeMessage(d.output, "WARN", color.FgYellow, format, args...)
	}
}

// Info outputs informational messages
func (d *DiagnosticSystem) Info(format string, args ...any) {
	if d.level >= DiagnosticInfo {
		d.writeMessage(d.output, "INFO", color.FgBlue, format, args...)
	}
}

// Success outputs success messages with emphasis
func (d *DiagnosticSystem) Success(format string, args ...any) {
	if d.level >= DiagnosticInfo {
		d.writeMessage(d.output, "SUCCESS", color.FgGreen, format, args...)
	}
}

// Verbose outputs detailed messages (verbose mode only)
func (d *DiagnosticSystem) Verbose(format string, args ...any) {
	if d.level >= DiagnosticVerbose {
		d.writeMessage(d.output, "VERBOSE", color.FgHiBlack, format, args...)
	}
}

// Section creates a prominent section header
func (d *DiagnosticSystem) Section(title string) {
	if d.level >= DiagnosticInfo {
		fmt.Fprintf(d.output, "%s\n", d.paint(color.FgCyan, title))
	}
}

// Stat is one line of a summary.
type Stat struct {
	Name  string
	Value any
}

// Summary outputs a final summary. Stats print in the order given.
func (d *DiagnosticSystem) Summary(title string, stats []Stat) {
	if d.level >= DiagnosticInfo {
		fmt.Fprintf(d.output, "\n%s\n", title)
		for _, s := range stats {
			fmt.Fprintf(d.output, "   %s: %v\n", s.Name, s.Value)
		}
		fmt.Fprintln(d.output)
	}
}

// SourcePath outputs the directory being migrated
func (d *DiagnosticSystem) SourcePath(path string) {
	if d.level >= DiagnosticInfo {
		fmt.Fprintf(d.output, "Source Path: %s\n\n", path)
	}
}

// FileResult outputs one line per processed file. Unchanged files only show
// in verbose mode; failures go to the error output.
func (d *DiagnosticSystem) FileResult(status, path string) {
	switch status {
	case "rewritten":
		if d.level >= DiagnosticInfo {
			fmt.Fprintf(d.output, "%s %s\n", d.paint(color.FgGreen, "✓"), path)
		}
	case "would rewrite":
		if d.level >= DiagnosticInfo {
			fmt.Fprintf(d.output, "%s %s\n", d.paint(color.FgMagenta, "✏"), path)
		}
	case "failed":
		if d.level >= DiagnosticError {
			fmt.Fprintf(d.errorOut, "%s %s\n", d.paint(color.FgRed, "✗"), path)
		}
	default:
		if d.level >= DiagnosticVerbose {
			fmt.Fprintf(d.output, "- %s\n", d.paint(color.FgHiBlack, path))
		}
	}
}

// Diff writes a colored unified diff. It shows at every level but silent.
func (d *DiagnosticSystem) Diff(diff string) {
	if d.level < DiagnosticError || diff == "" {
		return
	}
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			line = d.paint(color.Bold, line)
		case strings.HasPrefix(line, "@@"):
			line = d.paint(color.FgCyan, line)
		case strings.HasPrefix(line, "+"):
			line = d.paint(color.FgGreen, line)
		case strings.HasPrefix(line, "-"):
			line = d.paint(color.FgRed, line)
		}
		fmt.Fprint(d.output, line)
	}
}

func (d *DiagnosticSystem) writeMessage(writer io.Writer, level string, attr color.Attribute, format string, args ...any) {
	message := fmt.Sprintf(format, args...)

	var output strings.Builder
	if d.showTime {
		output.WriteString(time.Now().Format("15:04:05 "))
	}

	output.WriteString(d.paint(attr, "["+level+"]"))
	output.WriteString(" ")
	output.WriteString(message)
	output.WriteString("\n")

	fmt.Fprint(writer, output.String())
}

// paint colors s when colors are enabled. Colors are forced on or off per
// call so the process-wide color.NoColor detection does not leak into
// redirected output.
func (d *DiagnosticSystem) paint(attr color.Attribute, s string) string {
	c := color.New(attr)
	if d.useColors {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	// Keep the trailing newline outside the escape codes.
	if body, ok := strings.CutSuffix(s, "\n"); ok {
		return c.Sprint(body) + "\n"
	}
	return c.Sprint(s)
}

// shouldUseColors honors NO_COLOR, then FORCE_COLOR, then falls back to TERM.
func shouldUseColors() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}

	term := os.Getenv("TERM")
	return term != "" && term != "dumb"
}
