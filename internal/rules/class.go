package rules

import (
	"regexp"
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"

	"github.com/maliboot/colaup/internal/errors"
	"github.com/maliboot/colaup/internal/php"
	"github.com/maliboot/colaup/internal/traverse"
)

// methodTags matches everything from the first @method tag to the end of a doc
// comment. The line break before the tag is not part of the match.
var methodTags = regexp.MustCompile(`(?s)\s\*\s*@method.*?\*/`)

// checkDuplicateFields rejects classes declaring property names that differ
// only in case. It runs for every class, eligible or not.
func checkDuplicateFields(c *ast.StmtClass, s traverse.Scope) error {
	seen := make(map[string]int)
	var dups []string
	for _, member := range c.Stmts {
		p, ok := member.(*ast.StmtPropertyList)
		if !ok {
			continue
		}
		for _, name := range php.PropertyNames(p) {
			key := strings.ToLower(name)
			seen[key]++
			if seen[key] == 2 {
				dups = append(dups, key)
			}
		}
	}
	if len(dups) == 0 {
		return nil
	}
	return errors.NewDuplicateFieldError(s.Class.QualifiedName(), dups).
		WithLocation(s.File.Location(c.Name))
}

func leaveClass(c *ast.StmtClass, s traverse.Scope) (ast.Vertex, error) {
	if !Eligible(s.Class) {
		return c, nil
	}

	for _, g := range c.AttrGroups {
		attr := php.FirstAttr(g)
		if attr == nil {
			continue
		}
		if rewrite, ok := classAnnotations[php.AttrName(attr)]; ok {
			rewrite(attr, s.Class)
		}
	}

	if c.Extends != nil {
		c.ExtendsTkn, c.Extends = nil, nil
	}
	if !implementsOnly(c, weakSetterName) {
		iface := php.NewName(weakSetterName)
		php.SetLead(iface, php.Space())
		c.ImplementsTkn = php.Tok("implements", php.Whitespace(" "))
		c.Implements = []ast.Vertex{iface}
		c.ImplementsSeparatorTkns = nil
	}

	if doc := php.DocComment(c); doc != nil {
		doc.Value = methodTags.ReplaceAll(doc.Value, []byte(" */"))
	}
	return c, nil
}

func implementsOnly(c *ast.StmtClass, name string) bool {
	return len(c.Implements) == 1 && php.NameOf(c.Implements[0]) == name
}

// leaveTraitUse prunes traits from the trait uses of eligible classes and drops
// uses left empty.
func leaveTraitUse(tu *ast.StmtTraitUse, s traverse.Scope) (ast.Vertex, error) {
	if !Eligible(s.Class) {
		return tu, nil
	}

	kept := make([]ast.Vertex, 0, len(tu.Traits))
	for _, t := range tu.Traits {
		if !prunedTraits[strings.TrimPrefix(php.NameOf(t), `\`)] {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return nil, nil
	}
	if len(kept) != len(tu.Traits) {
		php.SetTraits(tu, kept)
	}
	return tu, nil
}

// toDatabase turns DataObject into Database, keeping the storage arguments and
// recording soft deletes, which the class loses with its trait.
func toDatabase(attr *ast.Attribute, c *traverse.ClassInfo) {
	attr.Name = php.Rename(attr.Name, "Database")

	var args []ast.Vertex
	for _, v := range attr.Args {
		if arg, ok := v.(*ast.Argument); ok && databaseArgs[php.ArgName(arg)] {
			args = append(args, arg)
		}
	}
	if c.HasTrait(softDeletesTrait) {
		args = append(args, php.NewArg("softDeletes", php.NewConst("true")))
	}
	php.SetArgs(attr, args)
}

// toPageQuery marks the DataTransferObject of a page query class.
func toPageQuery(attr *ast.Attribute, c *traverse.ClassInfo) {
	if c.Extends != abstractPageQuery {
		return
	}
	for _, v := range attr.Args {
		arg, ok := v.(*ast.Argument)
		if !ok || php.ArgName(arg) != "type" {
			continue
		}
		quote := byte('\'')
		if value, q, ok := php.StringValue(arg.Expr); ok {
			if value == pageQueryType {
				continue
			}
			if q != 0 {
				quote = q
			}
		}
		str := php.NewString(pageQueryType, quote)
		php.SetLead(str, php.Lead(arg.Expr))
		arg.Expr = str
	}
}
