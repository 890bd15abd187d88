package rules

import (
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/VKCOM/php-parser/pkg/token"

	"github.com/maliboot/colaup/internal/php"
	"github.com/maliboot/colaup/internal/traverse"
)

// importsApply reports whether s is the block declaring an eligible primary
// class. Import rules touch no other block.
func importsApply(s traverse.Scope) bool {
	return s.Imports != nil && s.Block == s.Imports && Eligible(s.Primary)
}

func leaveUse(u *ast.StmtUseList, s traverse.Scope) (ast.Vertex, error) {
	if !importsApply(s) || len(u.Uses) == 0 {
		return u, nil
	}

	clause, ok := u.Uses[0].(*ast.StmtUse)
	if !ok {
		return u, nil
	}
	name := php.NameOf(clause.Use)
	bare := strings.TrimPrefix(name, `\`)
	if importRemovals[bare] {
		return nil, nil
	}
	if to, ok := importRenames[bare]; ok {
		if bare != name {
			to = `\` + to
		}
		clause.Use = php.Rename(clause.Use, to)
	}
	return u, nil
}

// addImports adds the required imports that are not already present.
func addImports(b *php.Block, s traverse.Scope) error {
	if !importsApply(s) {
		return nil
	}

	present := make(map[string]bool)
	for _, stmt := range b.Stmts {
		if u, ok := stmt.(*ast.StmtUseList); ok {
			for _, name := range php.UseNames(u) {
				present[strings.ToLower(strings.TrimPrefix(name, `\`))] = true
			}
		}
	}

	var added []ast.Vertex
	for _, imp := range requiredImports {
		if imp.applies(s.Primary) && !present[strings.ToLower(imp.name)] {
			added = append(added, php.NewUse(imp.name))
		}
	}
	if len(added) == 0 {
		return nil
	}

	at := insertionPoint(b.Stmts)
	head, gap, tail := splitLead(b.Stmts, at)
	indent := php.Indent(gap)

	for i, n := range added {
		if i == 0 {
			php.SetLead(n, append(append([]*token.Token(nil), head...), gap...))
			continue
		}
		php.SetLead(n, []*token.Token{php.Whitespace("\n" + indent)})
	}
	if at < len(b.Stmts) {
		next := b.Stmts[at]
		switch {
		case is[*ast.StmtUseList](next) && php.IsBlank(tail):
			tail = []*token.Token{php.Whitespace("\n" + indent)}
		case len(tail) == 0:
			tail = []*token.Token{php.Whitespace("\n")}
		}
		php.SetLead(next, tail)
	}

	stmts := make([]ast.Vertex, 0, len(b.Stmts)+len(added))
	stmts = append(stmts, b.Stmts[:at]...)
	stmts = append(stmts, added...)
	stmts = append(stmts, b.Stmts[at:]...)
	b.Stmts = stmts
	return nil
}

// splitLead divides the lead of the statement the imports go in front of. head
// is the open tag, if the lead holds it; gap is the whitespace right after it,
// which the first import takes over; tail is the rest, which stays with the
// statement. Past the last statement the imports get a blank line.
func splitLead(stmts []ast.Vertex, at int) (head, gap, tail []*token.Token) {
	if at >= len(stmts) {
		return nil, []*token.Token{php.Whitespace("\n\n")}, nil
	}

	lead := php.Lead(stmts[at])
	for i := len(lead) - 1; i >= 0; i-- {
		if lead[i].ID == token.T_OPEN_TAG || strings.HasPrefix(string(lead[i].Value), "<?") {
			head, lead = lead[:i+1], lead[i+1:]
			break
		}
	}

	if len(lead) > 0 && php.IsBlank(lead[:1]) {
		gap = php.CloneLead(lead[:1])
	}
	if len(gap) == 0 {
		gap = []*token.Token{php.Whitespace("\n")}
	}
	return head, gap, lead
}

// insertionPoint skips declare statements, inline HTML and stray semicolons,
// which must stay ahead of any import.
func insertionPoint(stmts []ast.Vertex) int {
	at := 0
	for at < len(stmts) {
		switch stmts[at].(type) {
		case *ast.StmtDeclare, *ast.StmtInlineHtml, *ast.StmtNop:
			at++
			continue
		}
		break
	}
	return at
}

func is[T ast.Vertex](n ast.Vertex) bool {
	_, ok := n.(T)
	return ok
}
