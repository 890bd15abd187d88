// Package php parses PHP source into a VKCOM/php-parser syntax tree and prints
// it back. Whitespace and comments ride on the tokens as free-floating trivia,
// so a tree nobody edited prints back byte for byte.
package php

import (
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/VKCOM/php-parser/pkg/conf"
	phperrors "github.com/VKCOM/php-parser/pkg/errors"
	"github.com/VKCOM/php-parser/pkg/parser"
	"github.com/VKCOM/php-parser/pkg/version"

	"github.com/maliboot/colaup/internal/errors"
)

// Version is the PHP grammar the parser accepts.
var Version = &version.Version{Major: 8, Minor: 0}

// File is a parsed source file.
type File struct {
	Name string
	Src  string
	Root *ast.Root

	// Blocks splits the top-level statements by namespace. Rewrites edit the
	// blocks; Print writes them back into Root.
	Blocks []*Block
}

// Block is a run of statements governed by one namespace declaration, or by
// none for code outside any namespace.
type Block struct {
	Namespace string
	Decl      *ast.StmtNamespace
	Stmts     []ast.Vertex
}

// Braced reports whether the block is a "namespace Foo { }" body.
func (b *Block) Braced() bool {
	return b.Decl != nil && b.Decl.OpenCurlyBracketTkn != nil
}

// Parse parses src. It returns an *errors.SyntaxError and no tree when the
// parser reports any error, even one it recovered from.
func Parse(filename, src string) (*File, error) {
	var reported []*phperrors.Error
	root, err := parser.Parse([]byte(src), conf.Config{
		Version: Version,
		ErrorHandlerFunc: func(e *phperrors.Error) {
			reported = append(reported, e)
		},
	})
	if err != nil {
		return nil, errors.NewSyntaxErrorAt(errors.SourceLocation{File: filename}, "", err.Error())
	}

	f := &File{Name: filename, Src: src}
	if len(reported) > 0 {
		return nil, f.syntaxError(reported[0])
	}

	r, ok := root.(*ast.Root)
	if !ok {
		return nil, errors.NewSyntaxErrorAt(errors.SourceLocation{File: filename}, "", "no syntax tree produced")
	}
	f.Root = r
	f.Blocks = splitBlocks(r.Stmts)
	return f, nil
}

func (f *File) syntaxError(e *phperrors.Error) error {
	loc := errors.SourceLocation{File: f.Name}
	if e.Pos != nil {
		loc.Line = e.Pos.StartLine
		_, loc.Column = f.Position(e.Pos.StartPos)
	}
	return errors.NewSyntaxErrorAt(loc, "", e.Msg)
}

func splitBlocks(stmts []ast.Vertex) []*Block {
	var blocks []*Block
	cur := &Block{}
	flush := func() {
		if cur.Decl != nil || len(cur.Stmts) > 0 {
			blocks = append(blocks, cur)
		}
	}

	for _, stmt := range stmts {
		ns, ok := stmt.(*ast.StmtNamespace)
		if !ok {
			cur.Stmts = append(cur.Stmts, stmt)
			continue
		}
		flush()
		b := &Block{Namespace: NameOf(ns.Name), Decl: ns}
		if b.Braced() {
			b.Stmts = ns.Stmts
			blocks = append(blocks, b)
			cur = &Block{}
			continue
		}
		cur = b
	}
	flush()
	return blocks
}

// sync writes the blocks back into the root statement list.
func (f *File) sync() {
	var stmts []ast.Vertex
	for _, b := range f.Blocks {
		if b.Decl != nil {
			stmts = append(stmts, b.Decl)
		}
		if b.Braced() {
			b.Decl.Stmts = b.Stmts
			continue
		}
		stmts = append(stmts, b.Stmts...)
	}
	f.Root.Stmts = stmts
}

// Position converts a byte offset into a 1-based line and column.
func (f *File) Position(offset int) (line, col int) {
	if offset < 0 {
		return 0, 0
	}
	if offset > len(f.Src) {
		offset = len(f.Src)
	}
	return lineCol(f.Src, offset)
}

func lineCol(src string, offset int) (line, col int) {
	before := src[:offset]
	line = strings.Count(before, "\n") + 1
	col = offset - strings.LastIndexByte(before, '\n')
	return line, col
}

// Location points at the start of n.
func (f *File) Location(n ast.Vertex) errors.SourceLocation {
	loc := errors.SourceLocation{File: f.Name}
	if n == nil {
		return loc
	}
	if pos := n.GetPosition(); pos != nil {
		loc.Line = pos.StartLine
		_, loc.Column = f.Position(pos.StartPos)
	}
	return loc
}

// Text returns the source text of n, or "" for nodes built by a rewrite.
func (f *File) Text(n ast.Vertex) string {
	if n == nil {
		return ""
	}
	pos := n.GetPosition()
	if pos == nil || pos.StartPos < 0 || pos.EndPos > len(f.Src) || pos.StartPos > pos.EndPos {
		return ""
	}
	return f.Src[pos.StartPos:pos.EndPos]
}
