// Package upgrade is the text-in/text-out boundary of the migration engine.
package upgrade

import (
	"github.com/maliboot/colaup/internal/php"
	"github.com/maliboot/colaup/internal/rules"
	"github.com/maliboot/colaup/internal/traverse"
)

// Status is the outcome of a transform.
type Status int

const (
	Unchanged Status = iota
	Rewritten
	Failed
)

func (s Status) String() string {
	switch s {
	case Unchanged:
		return "unchanged"
	case Rewritten:
		return "rewritten"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is what a transform returns. Text holds the source to persist: the
// input for Unchanged, the rewritten source for Rewritten, and nothing for
// Failed, in which case Err says why.
type Result struct {
	Status Status
	Text   string
	Err    error
}

// Engine runs the parse, rewrite and print pipeline over one source text at a
// time. It keeps no state between calls.
type Engine struct {
	visitor traverse.Visitor
}

// NewEngine returns an engine applying the migration rule set.
func NewEngine() *Engine {
	return &Engine{visitor: rules.New()}
}

// Transform rewrites src. file identifies the source in error locations.
func (e *Engine) Transform(src, file string) Result {
	f, err := php.Parse(file, src)
	if err != nil {
		return Result{Status: Failed, Err: err}
	}

	if err := traverse.Walk(f, e.visitor); err != nil {
		return Result{Status: Failed, Err: err}
	}

	// An untouched tree prints back as src.
	out := php.Print(f)
	if out == src {
		return Result{Status: Unchanged, Text: src}
	}
	return Result{Status: Rewritten, Text: out}
}

var defaultEngine = NewEngine()

// Transform rewrites src with the default engine.
func Transform(src, file string) Result {
	return defaultEngine.Transform(src, file)
}
