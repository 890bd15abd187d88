package rules

import (
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"

	"github.com/maliboot/colaup/internal/errors"
	"github.com/maliboot/colaup/internal/php"
	"github.com/maliboot/colaup/internal/traverse"
)

var docReplacer = strings.NewReplacer("\n", "；", `\"`, `"`, `\'`, "")

// leaveProperty replaces the Column/Field attributes of a property with their
// ORM/Of equivalents and moves the description into the doc comment.
func leaveProperty(p *ast.StmtPropertyList, s traverse.Scope) (ast.Vertex, error) {
	if !Eligible(s.Class) || migrated(p.AttrGroups) {
		return p, nil
	}

	var orm, of *ast.AttributeGroup
	for _, g := range p.AttrGroups {
		attr := php.FirstAttr(g)
		if attr == nil {
			continue
		}

		var err error
		name := php.AttrName(attr)
		switch name {
		case columnAttribute:
			if orm == nil {
				orm, err = ormFromColumn(attr, s.File)
			}
		case fieldAttribute:
			if of == nil {
				of, err = ofFromField(attr, s.File)
			}
		}
		if err != nil {
			return nil, err
		}

		if argName, ok := docArguments[name]; ok {
			text, _, err := stringArg(attr, argName, s.File)
			if err != nil {
				return nil, err
			}
			if text != "" {
				php.SetDocComment(p, docComment(text))
			}
			break
		}
	}

	groups := make([]ast.Vertex, 0, 2)
	if orm != nil {
		groups = append(groups, orm)
	}
	if of != nil {
		groups = append(groups, of)
	}
	php.SetAttrGroups(p, groups)
	return p, nil
}

// migrated reports whether every group is already ORM or Of. A property
// without attributes counts as migrated.
func migrated(groups []ast.Vertex) bool {
	for _, g := range groups {
		if attr := php.FirstAttr(g); attr == nil || !migratedAttributes[php.AttrName(attr)] {
			return false
		}
	}
	return true
}

// ormFromColumn maps a Column whose name has a segment starting in upper case,
// which the ORM cannot derive from the property name.
func ormFromColumn(attr *ast.Attribute, f *php.File) (*ast.AttributeGroup, error) {
	name, quote, err := stringArg(attr, "name", f)
	if err != nil || !hasUpperSegment(name) {
		return nil, err
	}
	return php.NewAttributeGroup(
		php.NewAttribute(ormAttribute, php.NewArg("name", php.NewString(name, quote))),
	), nil
}

func ofFromField(attr *ast.Attribute, f *php.File) (*ast.AttributeGroup, error) {
	typ, _, err := stringArg(attr, "type", f)
	if err != nil {
		return nil, err
	}
	ref, quote, err := stringArg(attr, "ref", f)
	if err != nil {
		return nil, err
	}
	if typ != "array" || ref == "" {
		return nil, nil
	}

	var value ast.Vertex = php.NewString(ref, quote)
	if bare := strings.TrimPrefix(ref, `\`); bare != "" && isUpper(bare[0]) {
		value = php.NewClassConstFetch(ref, "class")
	}
	return php.NewAttributeGroup(
		php.NewAttribute(ofAttribute, php.NewArg("arrayValue", value)),
	), nil
}

// stringArg reads the named argument of attr as text. A missing argument
// reads as "". Class constant fetches read as their class name.
func stringArg(attr *ast.Attribute, name string, f *php.File) (string, byte, error) {
	arg := php.Arg(attr, name)
	if arg == nil {
		return "", 0, nil
	}

	if value, quote, ok := php.StringValue(arg.Expr); ok {
		return value, quote, nil
	}
	switch v := arg.Expr.(type) {
	case *ast.ExprClassConstFetch:
		return php.NameOf(v.Class), 0, nil
	case *ast.ScalarLnumber:
		return string(v.Value), 0, nil
	case *ast.ScalarDnumber:
		return string(v.Value), 0, nil
	case *ast.ExprConstFetch:
		return "", 0, nil
	}
	return "", 0, errors.NewUnsupportedConstructError(php.AttrName(attr), name, f.Describe(arg.Expr)).
		WithLocation(f.Location(arg.Expr))
}

func hasUpperSegment(name string) bool {
	for _, seg := range strings.Split(name, "_") {
		if seg != "" && isUpper(seg[0]) {
			return true
		}
	}
	return false
}

func isUpper(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

// docComment renders a one-line summary doc comment. The printer indents it
// to the property.
func docComment(text string) string {
	text = strings.Trim(docReplacer.Replace(text), " \t\n\r\x00\x0B")
	text = strings.ReplaceAll(text, "*/", `*\/`)
	return "/**\n * " + text + ".\n */"
}
