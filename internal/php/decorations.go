package php

import (
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/VKCOM/php-parser/pkg/token"
)

// A declaration is printed as its lead (whitespace, comments, doc comment),
// its attribute groups, and its head: the modifiers and keyword. Comments
// between the last group and the head ride on the head token, so they survive
// any change to the groups.

func isDoc(t *token.Token) bool {
	if t.ID == token.T_DOC_COMMENT {
		return true
	}
	v := string(t.Value)
	return strings.HasPrefix(v, "/**") && v != "/**/"
}

// DocComment returns the doc comment token of a declaration, or nil.
func DocComment(decl ast.Vertex) *token.Token {
	lead := Lead(decl)
	for i := len(lead) - 1; i >= 0; i-- {
		if isDoc(lead[i]) {
			return lead[i]
		}
	}
	return nil
}

// SetDocComment replaces the doc comment of decl with text, or adds one at the
// end of its lead. Lines after the first are indented to the declaration.
func SetDocComment(decl ast.Vertex, text string) {
	lead := Lead(decl)
	indent := Indent(lead)
	text = strings.ReplaceAll(text, "\n", "\n"+indent)

	if doc := DocComment(decl); doc != nil {
		doc.Value = []byte(text)
		return
	}
	lead = append(lead, &token.Token{ID: token.T_DOC_COMMENT, Value: []byte(text)}, Whitespace("\n"+indent))
	SetLead(decl, lead)
}

// AttrGroups returns the attribute groups of a class or property list.
func AttrGroups(decl ast.Vertex) []ast.Vertex {
	switch d := decl.(type) {
	case *ast.StmtClass:
		return d.AttrGroups
	case *ast.StmtPropertyList:
		return d.AttrGroups
	}
	return nil
}

func headToken(decl ast.Vertex) *token.Token {
	switch d := decl.(type) {
	case *ast.StmtClass:
		if t := firstOf(d.Modifiers); t != nil {
			return t
		}
		return d.ClassTkn
	case *ast.StmtPropertyList:
		if t := firstOf(d.Modifiers); t != nil {
			return t
		}
		if t := FirstToken(d.Type); t != nil {
			return t
		}
		return firstOf(d.Props)
	}
	return nil
}

func firstOf(list []ast.Vertex) *token.Token {
	for _, n := range list {
		if t := FirstToken(n); t != nil {
			return t
		}
	}
	return nil
}

// SetAttrGroups replaces the attribute groups of a class or property list.
// New groups go one per line at the declaration's indentation. The lead of
// the declaration stays in front, and comments between the old groups and the
// head are kept.
func SetAttrGroups(decl ast.Vertex, groups []ast.Vertex) {
	head := headToken(decl)
	if head == nil {
		return
	}
	old := AttrGroups(decl)
	lead := Lead(decl)
	indent := Indent(lead)

	switch d := decl.(type) {
	case *ast.StmtClass:
		d.AttrGroups = groups
	case *ast.StmtPropertyList:
		d.AttrGroups = groups
	default:
		return
	}

	if len(groups) == 0 {
		if len(old) > 0 {
			head.FreeFloating = joinLeads(lead, head.FreeFloating, indent)
		}
		return
	}

	for i, g := range groups {
		if i == 0 {
			SetLead(g, lineBreak(lead, indent))
			continue
		}
		SetLead(g, []*token.Token{Whitespace("\n" + indent)})
	}
	if len(old) == 0 {
		head.FreeFloating = []*token.Token{Whitespace("\n" + indent)}
	}
}

// lineBreak makes sure lead ends by starting a new line when it holds
// anything besides whitespace.
func lineBreak(lead []*token.Token, indent string) []*token.Token {
	if len(lead) == 0 || isWhitespace(lead[len(lead)-1]) || endsLine(lead[len(lead)-1]) {
		return lead
	}
	return append(lead, Whitespace("\n"+indent))
}

// joinLeads concatenates two leads that become adjacent when the node between
// them goes away. Of two whitespace runs meeting in the middle, the one
// spanning more lines is kept.
func joinLeads(a, b []*token.Token, indent string) []*token.Token {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}

	last, first := a[len(a)-1], b[0]
	out := make([]*token.Token, 0, len(a)+len(b)+1)
	switch {
	case isWhitespace(last) && isWhitespace(first):
		if newlines(last) > newlines(first) {
			out = append(append(out, a...), b[1:]...)
			break
		}
		out = append(out, a[:len(a)-1]...)
		if len(out) > 0 && endsLine(out[len(out)-1]) {
			// A line comment before the run already broke the line.
			v := string(first.Value)
			first = Whitespace(v[strings.IndexByte(v, '\n')+1:])
		}
		out = append(append(out, first), b[1:]...)
	case endsLine(last):
		out = append(append(out, a...), b...)
	case !isWhitespace(last) && isWhitespace(first) && newlines(first) == 0:
		out = append(append(append(out, a...), Whitespace("\n"+indent)), b[1:]...)
	case !isWhitespace(last) && !isWhitespace(first):
		out = append(append(append(out, a...), Whitespace("\n"+indent)), b...)
	default:
		out = append(append(out, a...), b...)
	}
	return out
}

func endsLine(t *token.Token) bool {
	return strings.HasSuffix(string(t.Value), "\n")
}

func newlines(t *token.Token) int {
	return strings.Count(string(t.Value), "\n")
}
