// Package traverse walks a parsed PHP file depth-first and lets a Visitor
// mutate, replace or delete nodes on the way back up. It knows nothing about
// what the visitor rewrites.
package traverse

import (
	"reflect"
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/VKCOM/php-parser/pkg/token"
	"github.com/VKCOM/php-parser/pkg/visitor"
	"github.com/VKCOM/php-parser/pkg/visitor/traverser"

	"github.com/maliboot/colaup/internal/errors"
	"github.com/maliboot/colaup/internal/php"
)

// ClassInfo is a snapshot of a class declaration taken before any of its nodes
// are visited.
type ClassInfo struct {
	Name       string
	Namespace  string
	Extends    string   // without leading backslash
	Implements []string // as written
	Traits     []string // without leading backslash
	AttrNames  []string // name of the first attribute of each group, as written
	Node       *ast.StmtClass
}

// Describe captures the facts of c. namespace is the name of the enclosing
// namespace, if any.
func Describe(c *ast.StmtClass, namespace string) *ClassInfo {
	info := &ClassInfo{
		Name:      php.NameOf(c.Name),
		Namespace: namespace,
		Extends:   strings.TrimPrefix(php.NameOf(c.Extends), `\`),
		Node:      c,
	}
	for _, iface := range c.Implements {
		info.Implements = append(info.Implements, php.NameOf(iface))
	}
	for _, member := range c.Stmts {
		if tu, ok := member.(*ast.StmtTraitUse); ok {
			info.Traits = append(info.Traits, php.TraitNames(tu)...)
		}
	}
	for _, g := range c.AttrGroups {
		if first := php.FirstAttr(g); first != nil {
			info.AttrNames = append(info.AttrNames, php.AttrName(first))
		}
	}
	return info
}

// QualifiedName returns the namespaced class name.
func (c *ClassInfo) QualifiedName() string {
	if c.Namespace == "" {
		return c.Name
	}
	return c.Namespace + `\` + c.Name
}

// HasTrait reports whether the class uses the named trait.
func (c *ClassInfo) HasTrait(name string) bool {
	for _, t := range c.Traits {
		if t == name {
			return true
		}
	}
	return false
}

// Scope is the read-only context handed to every visitor call.
type Scope struct {
	File  *php.File
	Block *php.Block // block holding the current statement

	// Primary is the first class declared in the file and Imports the block
	// that declares it. Both are nil for files without classes.
	Primary *ClassInfo
	Imports *php.Block

	// Class is the enclosing class, nil outside class bodies.
	Class *ClassInfo
}

// Visitor receives the traversal callbacks.
//
// Leave is called after all children of n have been left. It returns n to keep
// it (possibly mutated in place), another node to replace it, or nil to delete
// it from its parent. LeaveBlock is called once the statements of a block have
// all been left.
type Visitor interface {
	BeforeTraverse(s Scope) error
	Enter(n ast.Vertex, s Scope) error
	Leave(n ast.Vertex, s Scope) (ast.Vertex, error)
	LeaveBlock(b *php.Block, s Scope) error
}

// Walk runs v over f. The first error returned by a callback stops the walk.
func Walk(f *php.File, v Visitor) error {
	s := Scope{File: f}
	s.Primary, s.Imports = primaryClass(f)

	if err := v.BeforeTraverse(s); err != nil {
		return err
	}

	w := &walker{v: v}
	for _, b := range f.Blocks {
		bs := s
		bs.Block = b
		stmts, _, err := walkList(w, b.Stmts, bs, isStatement, true)
		if err != nil {
			return err
		}
		b.Stmts = stmts
		if err := v.LeaveBlock(b, bs); err != nil {
			return err
		}
	}
	return nil
}

// classCollector records named class declarations in source order.
type classCollector struct {
	visitor.Null
	classes []*ast.StmtClass
}

func (c *classCollector) StmtClass(n *ast.StmtClass) {
	if n.Name != nil {
		c.classes = append(c.classes, n)
	}
}

// primaryClass finds the first class declared directly in a block. Classes
// nested in function bodies do not count.
func primaryClass(f *php.File) (*ClassInfo, *php.Block) {
	owner := make(map[ast.Vertex]*php.Block)
	for _, b := range f.Blocks {
		for _, stmt := range b.Stmts {
			owner[stmt] = b
		}
	}

	collector := &classCollector{}
	traverser.NewTraverser(collector).Traverse(f.Root)
	for _, c := range collector.classes {
		if b, ok := owner[c]; ok {
			return Describe(c, b.Namespace), b
		}
	}
	return nil, nil
}

type walker struct {
	v Visitor
}

func (w *walker) walk(n ast.Vertex, s Scope) (ast.Vertex, error) {
	if c, ok := n.(*ast.StmtClass); ok {
		s.Class = Describe(c, s.Block.Namespace)
	}

	if err := w.v.Enter(n, s); err != nil {
		return nil, err
	}

	switch n := n.(type) {
	case *ast.StmtClass:
		if err := w.attrGroups(n, s); err != nil {
			return nil, err
		}
		members, _, err := walkList(w, n.Stmts, s, isStatement, true)
		if err != nil {
			return nil, err
		}
		n.Stmts = members
	case *ast.StmtPropertyList:
		if err := w.attrGroups(n, s); err != nil {
			return nil, err
		}
	case *ast.AttributeGroup:
		attrs, changed, err := walkList(w, n.Attrs, s, is[*ast.Attribute], false)
		if err != nil {
			return nil, err
		}
		if changed {
			php.SetAttrs(n, attrs)
		}
	case *ast.Attribute:
		args, changed, err := walkList(w, n.Args, s, is[*ast.Argument], false)
		if err != nil {
			return nil, err
		}
		if changed {
			php.SetArgs(n, args)
		}
	}

	return w.v.Leave(n, s)
}

func (w *walker) attrGroups(decl ast.Vertex, s Scope) error {
	groups, changed, err := walkList(w, php.AttrGroups(decl), s, is[*ast.AttributeGroup], false)
	if err != nil {
		return err
	}
	if changed {
		php.SetAttrGroups(decl, groups)
	}
	return nil
}

// walkList visits nodes in order and rebuilds the list from the results.
// accepts restricts what a node may be replaced with. With carryLead, when
// leading nodes are deleted the first survivor inherits the whitespace that
// preceded them, so the list keeps its place in the surrounding layout.
func walkList(w *walker, nodes []ast.Vertex, s Scope, accepts func(ast.Vertex) bool, carryLead bool) ([]ast.Vertex, bool, error) {
	out := make([]ast.Vertex, 0, len(nodes))
	changed := false
	var pendingLead []*token.Token
	pending := false
	for _, n := range nodes {
		res, err := w.walk(n, s)
		if err != nil {
			return nil, false, err
		}
		if res == nil {
			changed = true
			if carryLead && len(out) == 0 && !pending {
				pendingLead, pending = php.Lead(n), true
			}
			continue
		}
		if res != n {
			changed = true
			if !accepts(res) {
				return nil, false, errors.Newf(errors.UnknownErrorCode, "cannot replace %s node with %s node",
					kindOf(n), kindOf(res))
			}
		}
		if pending {
			inheritLead(res, pendingLead)
			pending = false
		}
		out = append(out, res)
	}
	return out, changed, nil
}

// inheritLead gives n the blank lead of a deleted predecessor in place of
// the whitespace n starts with. Comments and doc comments of n stay.
func inheritLead(n ast.Vertex, lead []*token.Token) {
	if !php.IsBlank(lead) {
		return
	}
	own := php.Lead(n)
	rest := own
	if len(own) > 0 && php.IsBlank(own[:1]) {
		rest = own[1:]
	} else if len(own) > 0 {
		return
	}
	php.SetLead(n, append(php.CloneLead(lead), rest...))
}

func is[T ast.Vertex](n ast.Vertex) bool {
	_, ok := n.(T)
	return ok
}

func isStatement(n ast.Vertex) bool {
	return strings.HasPrefix(kindOf(n), "Stmt")
}

// kindOf names the node type, such as StmtClass.
func kindOf(n ast.Vertex) string {
	t := reflect.TypeOf(n)
	if t == nil {
		return "nil"
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
