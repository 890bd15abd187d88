package php

import (
	"reflect"
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/VKCOM/php-parser/pkg/token"
)

// Tok creates a token printed as lead followed by value.
func Tok(value string, lead ...*token.Token) *token.Token {
	return &token.Token{Value: []byte(value), FreeFloating: lead}
}

// Whitespace creates a free-floating whitespace token.
func Whitespace(s string) *token.Token {
	return &token.Token{ID: token.T_WHITESPACE, Value: []byte(s)}
}

// Space is the lead of a node printed one space after its predecessor.
func Space() []*token.Token {
	return []*token.Token{Whitespace(" ")}
}

func isWhitespace(t *token.Token) bool {
	return t.ID == token.T_WHITESPACE || strings.TrimSpace(string(t.Value)) == ""
}

// IsBlank reports whether lead holds nothing but whitespace.
func IsBlank(lead []*token.Token) bool {
	for _, t := range lead {
		if !isWhitespace(t) {
			return false
		}
	}
	return true
}

// Indent returns the indentation that lead leaves before the node, or ""
// when lead does not end a line.
func Indent(lead []*token.Token) string {
	for i := len(lead) - 1; i >= 0; i-- {
		v := string(lead[i].Value)
		if j := strings.LastIndexByte(v, '\n'); j >= 0 {
			return v[j+1:]
		}
		if !isWhitespace(lead[i]) {
			return ""
		}
	}
	return ""
}

// CloneLead copies lead so it can be attached to a second node.
func CloneLead(lead []*token.Token) []*token.Token {
	out := make([]*token.Token, len(lead))
	for i, t := range lead {
		out[i] = &token.Token{ID: t.ID, Value: append([]byte(nil), t.Value...)}
	}
	return out
}

var (
	tokenType  = reflect.TypeOf((*token.Token)(nil))
	vertexType = reflect.TypeOf((*ast.Vertex)(nil)).Elem()
)

// FirstToken returns the token n starts with. The trivia before n lives on
// that token.
func FirstToken(n ast.Vertex) *token.Token {
	switch n := n.(type) {
	case nil:
		return nil
	case *ast.Identifier:
		return n.IdentifierTkn
	case *ast.NamePart:
		return n.StringTkn
	case *ast.Name:
		if len(n.Parts) > 0 {
			return FirstToken(n.Parts[0])
		}
	case *ast.NameFullyQualified:
		return n.NsSeparatorTkn
	case *ast.StmtUseList:
		return n.UseTkn
	case *ast.StmtTraitUse:
		return n.UseTkn
	case *ast.AttributeGroup:
		return n.OpenAttributeTkn
	case *ast.StmtClass, *ast.StmtPropertyList:
		if t := firstOf(AttrGroups(n)); t != nil {
			return t
		}
		return headToken(n)
	}
	return firstField(reflect.ValueOf(n))
}

// firstField scans the fields of a node in declaration order, which follows
// source order for every node kind of the parser.
func firstField(v reflect.Value) *token.Token {
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil
	}
	v = v.Elem()
	for i := 0; i < v.NumField(); i++ {
		if t := firstIn(v.Field(i)); t != nil {
			return t
		}
	}
	return nil
}

func firstIn(f reflect.Value) *token.Token {
	switch {
	case f.Type() == tokenType:
		if !f.IsNil() {
			return f.Interface().(*token.Token)
		}
	case f.Type() == vertexType:
		if !f.IsNil() {
			return FirstToken(f.Interface().(ast.Vertex))
		}
	case f.Kind() == reflect.Slice && (f.Type().Elem() == tokenType || f.Type().Elem() == vertexType):
		for i := 0; i < f.Len(); i++ {
			if t := firstIn(f.Index(i)); t != nil {
				return t
			}
		}
	}
	return nil
}

// Lead returns the whitespace and comments printed before n.
func Lead(n ast.Vertex) []*token.Token {
	if t := FirstToken(n); t != nil {
		return t.FreeFloating
	}
	return nil
}

// SetLead replaces the trivia printed before n.
func SetLead(n ast.Vertex, lead []*token.Token) {
	if t := FirstToken(n); t != nil {
		t.FreeFloating = lead
	}
}

// NameOf renders a name node as written, with a leading backslash for fully
// qualified names. Identifiers render as their value.
func NameOf(n ast.Vertex) string {
	switch n := n.(type) {
	case *ast.Name:
		return joinParts(n.Parts)
	case *ast.NameFullyQualified:
		return `\` + joinParts(n.Parts)
	case *ast.NameRelative:
		return `namespace\` + joinParts(n.Parts)
	case *ast.Identifier:
		return string(n.Value)
	}
	return ""
}

func joinParts(parts []ast.Vertex) string {
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p, ok := p.(*ast.NamePart); ok {
			names = append(names, string(p.Value))
		}
	}
	return strings.Join(names, `\`)
}

// NewName builds a name node. A leading backslash makes it fully qualified.
func NewName(name string) ast.Vertex {
	bare := strings.TrimPrefix(name, `\`)
	segs := strings.Split(bare, `\`)
	parts := make([]ast.Vertex, len(segs))
	for i, s := range segs {
		parts[i] = &ast.NamePart{StringTkn: Tok(s), Value: []byte(s)}
	}
	seps := make([]*token.Token, len(segs)-1)
	for i := range seps {
		seps[i] = Tok(`\`)
	}
	if bare != name {
		return &ast.NameFullyQualified{NsSeparatorTkn: Tok(`\`), Parts: parts, SeparatorTkns: seps}
	}
	return &ast.Name{Parts: parts, SeparatorTkns: seps}
}

// Rename returns a name node for name that keeps the lead of old.
func Rename(old ast.Vertex, name string) ast.Vertex {
	n := NewName(name)
	SetLead(n, Lead(old))
	return n
}

// NewIdentifier builds an identifier such as an argument name.
func NewIdentifier(s string) *ast.Identifier {
	return &ast.Identifier{IdentifierTkn: Tok(s), Value: []byte(s)}
}

// NewString builds a string literal printed with quote, or single quotes when
// quote is zero.
func NewString(value string, quote byte) *ast.ScalarString {
	lit := quoteString(value, quote)
	return &ast.ScalarString{StringTkn: Tok(lit), Value: []byte(lit)}
}

// NewConst builds a constant fetch such as true or null.
func NewConst(name string) *ast.ExprConstFetch {
	return &ast.ExprConstFetch{Const: NewName(name)}
}

// NewClassConstFetch builds a Class::Const fetch.
func NewClassConstFetch(class, constant string) *ast.ExprClassConstFetch {
	return &ast.ExprClassConstFetch{
		Class:          NewName(class),
		DoubleColonTkn: Tok("::"),
		Const:          NewIdentifier(constant),
	}
}

// NewArg builds a named argument "name: value".
func NewArg(name string, value ast.Vertex) *ast.Argument {
	SetLead(value, Space())
	return &ast.Argument{Name: NewIdentifier(name), ColonTkn: Tok(":"), Expr: value}
}

// NewAttribute builds an attribute. Parentheses are printed only around a
// non-empty argument list.
func NewAttribute(name string, args ...*ast.Argument) *ast.Attribute {
	a := &ast.Attribute{Name: NewName(name)}
	vs := make([]ast.Vertex, len(args))
	for i, arg := range args {
		vs[i] = arg
	}
	SetArgs(a, vs)
	return a
}

// NewAttributeGroup builds "#[...]" holding attrs.
func NewAttributeGroup(attrs ...*ast.Attribute) *ast.AttributeGroup {
	g := &ast.AttributeGroup{
		OpenAttributeTkn:  Tok("#["),
		SeparatorTkns:     separators(len(attrs), false),
		CloseAttributeTkn: Tok("]"),
	}
	for i, a := range attrs {
		if i > 0 {
			SetLead(a, Space())
		}
		g.Attrs = append(g.Attrs, a)
	}
	return g
}

// NewUse builds "use Name;".
func NewUse(name string) *ast.StmtUseList {
	use := &ast.StmtUse{Use: NewName(name)}
	SetLead(use.Use, Space())
	return &ast.StmtUseList{
		UseTkn:       Tok("use"),
		Uses:         []ast.Vertex{use},
		SemiColonTkn: Tok(";"),
	}
}

// UseNames returns the imported names of a use statement as written.
func UseNames(u *ast.StmtUseList) []string {
	var names []string
	for _, v := range u.Uses {
		if clause, ok := v.(*ast.StmtUse); ok {
			names = append(names, NameOf(clause.Use))
		}
	}
	return names
}

// AttrName returns the name of an attribute as written.
func AttrName(a *ast.Attribute) string {
	return NameOf(a.Name)
}

// FirstAttr returns the first attribute of a group, or nil for "#[]".
func FirstAttr(g ast.Vertex) *ast.Attribute {
	group, ok := g.(*ast.AttributeGroup)
	if !ok || len(group.Attrs) == 0 {
		return nil
	}
	a, _ := group.Attrs[0].(*ast.Attribute)
	return a
}

// ArgName returns the name of a named argument, or "" for a positional one.
func ArgName(arg *ast.Argument) string {
	return NameOf(arg.Name)
}

// Arg returns the argument of a called name, or nil.
func Arg(a *ast.Attribute, name string) *ast.Argument {
	for _, v := range a.Args {
		if arg, ok := v.(*ast.Argument); ok && ArgName(arg) == name {
			return arg
		}
	}
	return nil
}

// SetArgs replaces the argument list of a, laying the new list out the way
// the old one was: the first argument keeps the old first lead, a trailing
// comma survives and each added argument follows its predecessor's spacing.
func SetArgs(a *ast.Attribute, args []ast.Vertex) {
	firstLead := []*token.Token(nil)
	if len(a.Args) > 0 {
		firstLead = Lead(a.Args[0])
	}
	trailing := len(a.Args) > 0 && len(a.SeparatorTkns) >= len(a.Args)
	old := make(map[ast.Vertex]bool, len(a.Args))
	for _, v := range a.Args {
		old[v] = true
	}

	var next []*token.Token
	for i, arg := range args {
		switch {
		case i == 0:
			SetLead(arg, firstLead)
		case !old[arg]:
			SetLead(arg, CloneLead(next))
		}
		next = Space()
		if strings.Contains(tokensText(Lead(arg)), "\n") {
			next = Lead(arg)
		}
	}

	a.Args = args
	a.SeparatorTkns = separators(len(args), trailing)
	if len(args) > 0 && a.OpenParenthesisTkn == nil {
		a.OpenParenthesisTkn, a.CloseParenthesisTkn = Tok("("), Tok(")")
	}
}

// SetAttrs replaces the attributes of a group. An attribute moved to the
// front takes the lead of the old first attribute.
func SetAttrs(g *ast.AttributeGroup, attrs []ast.Vertex) {
	trailing := len(g.Attrs) > 0 && len(g.SeparatorTkns) >= len(g.Attrs)
	if len(attrs) > 0 && len(g.Attrs) > 0 && attrs[0] != g.Attrs[0] {
		SetLead(attrs[0], Lead(g.Attrs[0]))
	}
	g.Attrs = attrs
	g.SeparatorTkns = separators(len(attrs), trailing)
}

// SetTraits replaces the traits of a trait use. A trait moved to the front
// takes the lead of the old first trait.
func SetTraits(tu *ast.StmtTraitUse, traits []ast.Vertex) {
	if len(traits) > 0 && len(tu.Traits) > 0 && traits[0] != tu.Traits[0] {
		SetLead(traits[0], Lead(tu.Traits[0]))
	}
	tu.Traits = traits
	tu.SeparatorTkns = separators(len(traits), false)
}

// separators builds the comma list for n items. Its capacity is exact: the
// printer reads a separator past the last item as a trailing comma.
func separators(n int, trailing bool) []*token.Token {
	count := n - 1
	if trailing {
		count = n
	}
	if count < 0 {
		count = 0
	}
	seps := make([]*token.Token, count)
	for i := range seps {
		seps[i] = Tok(",")
	}
	return seps
}

func tokensText(toks []*token.Token) string {
	var b strings.Builder
	for _, t := range toks {
		b.Write(t.Value)
	}
	return b.String()
}

// TraitNames returns the trait names of a trait use without leading
// backslashes.
func TraitNames(tu *ast.StmtTraitUse) []string {
	names := make([]string, 0, len(tu.Traits))
	for _, t := range tu.Traits {
		names = append(names, strings.TrimPrefix(NameOf(t), `\`))
	}
	return names
}

// PropertyNames returns the declared names of a property list without "$".
func PropertyNames(p *ast.StmtPropertyList) []string {
	names := make([]string, 0, len(p.Props))
	for _, v := range p.Props {
		prop, ok := v.(*ast.StmtProperty)
		if !ok {
			continue
		}
		if variable, ok := prop.Var.(*ast.ExprVariable); ok {
			names = append(names, strings.TrimPrefix(NameOf(variable.Name), "$"))
		}
	}
	return names
}
