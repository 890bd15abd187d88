package rules

import (
	"github.com/VKCOM/php-parser/pkg/ast"

	"github.com/maliboot/colaup/internal/php"
	"github.com/maliboot/colaup/internal/traverse"
)

// RuleSet applies the migration rules as a traverse.Visitor. It holds no state
// between files.
type RuleSet struct{}

// New returns the migration rule set.
func New() *RuleSet {
	return &RuleSet{}
}

func (r *RuleSet) BeforeTraverse(s traverse.Scope) error {
	return nil
}

func (r *RuleSet) Enter(n ast.Vertex, s traverse.Scope) error {
	if c, ok := n.(*ast.StmtClass); ok {
		return checkDuplicateFields(c, s)
	}
	return nil
}

func (r *RuleSet) Leave(n ast.Vertex, s traverse.Scope) (ast.Vertex, error) {
	switch n := n.(type) {
	case *ast.StmtUseList:
		return leaveUse(n, s)
	case *ast.StmtClass:
		return leaveClass(n, s)
	case *ast.StmtTraitUse:
		return leaveTraitUse(n, s)
	case *ast.StmtPropertyList:
		return leaveProperty(n, s)
	}
	return n, nil
}

func (r *RuleSet) LeaveBlock(b *php.Block, s traverse.Scope) error {
	return addImports(b, s)
}
