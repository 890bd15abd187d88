package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/maliboot/colaup/internal/errors"
)

// DiagnosticReporter explains a failed run to the user: what kind of error,
// where, and what to do about it.
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
}

// NewDiagnosticReporter creates a new diagnostic reporter writing to stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose: verbose,
		out:     os.Stderr,
	}
}

// WithOutput redirects the report.
func (r *DiagnosticReporter) WithOutput(out io.Writer) *DiagnosticReporter {
	r.out = out
	return r
}

// ReportWarning prints a one-line warning
func (r *DiagnosticReporter) ReportWarning(message string) {
	warn := color.New(color.FgYellow, color.Bold)
	warn.Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", message)
}

// ReportError prints err. A keep-going run reports every collected failure.
func (r *DiagnosticReporter) ReportError(err error) {
	var multi *errors.MultipleErrors
	if errors.As(err, &multi) && multi.Count() > 1 {
		fmt.Fprintf(r.out, "\nERROR: %d files could not be migrated\n", multi.Count())
		fmt.Fprintf(r.out, "==================================\n")
		for _, e := range multi.Errors {
			fmt.Fprintln(r.out)
			r.reportOne(e)
		}
		fmt.Fprintln(r.out)
		return
	}

	fmt.Fprintf(r.out, "\nERROR: Migration Failed\n")
	fmt.Fprintf(r.out, "=======================\n\n")
	r.reportOne(err)
	fmt.Fprintln(r.out)
}

func (r *DiagnosticReporter) reportOne(err error) {
	var ue errors.UpgradeError
	if !errors.As(err, &ue) {
		fmt.Fprintf(r.out, "Message: %s\n", err.Error())
		return
	}

	r.printErrorHeader(ue.ErrorCode())
	fmt.Fprintf(r.out, "Message: %s\n", err.Error())

	if loc := ue.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.out, "Location: %s\n", loc)
	}

	if r.verbose && ue.Unwrap() != nil {
		fmt.Fprintf(r.out, "Underlying cause: %s\n", ue.Unwrap().Error())
	}

	if ctx := ue.Context(); len(ctx) > 0 {
		r.printContext(ctx)
	}

	if hints := ue.Suggestions(); len(hints) > 0 {
		r.printSuggestions(hints)
	}

	r.printAdditionalHelp(ue.ErrorCode())
}

// printErrorHeader prints a formatted error header based on error type
func (r *DiagnosticReporter) printErrorHeader(code errors.ErrorCode) {
	var title string
	switch code {
	case errors.SyntaxErrorCode:
		title = "PHP Syntax Error"
	case errors.DuplicateFieldErrorCode:
		title = "Duplicate Field Error"
	case errors.UnsupportedConstructErrorCode:
		title = "Unsupported Attribute Argument"
	case errors.FileSystemErrorCode:
		title = "File System Error"
	case errors.ConfigurationErrorCode:
		title = "Configuration Error"
	default:
		title = "Unknown Error"
	}

	fmt.Fprintf(r.out, "Type: %s\n", title)
	fmt.Fprintf(r.out, "%s\n", strings.Repeat("-", len(title)+6))
}

// printContext prints context information sorted by key
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	keys := make([]string, 0, len(context))
	for k := range context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(r.out, "Context:\n")
	for _, k := range keys {
		fmt.Fprintf(r.out, "   %s: %v\n", formatContextKey(k), context[k])
	}
}

// formatContextKey turns snake_case keys into Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

// printSuggestions prints actionable suggestions
func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.out, "Suggestions:\n")
	for i, s := range suggestions {
		fmt.Fprintf(r.out, "   %d. %s\n", i+1, s)
	}
}

// printAdditionalHelp prints additional help based on error type
func (r *DiagnosticReporter) printAdditionalHelp(code errors.ErrorCode) {
	switch code {
	case errors.SyntaxErrorCode:
		fmt.Fprintf(r.out, "The file was left untouched. Check that it passes 'php -l'.\n")
	case errors.DuplicateFieldErrorCode:
		fmt.Fprintf(r.out, "Generated accessors are case-insensitive in PHP; rename one of the properties.\n")
	case errors.UnsupportedConstructErrorCode:
		fmt.Fprintf(r.out, "Only literal strings, numbers, constants and Foo::class are migrated; replace the expression with a literal.\n")
	case errors.ConfigurationErrorCode:
		fmt.Fprintf(r.out, "Check colaup.yml, COLAUP_* environment variables and the command-line flags.\n")
	}
}
