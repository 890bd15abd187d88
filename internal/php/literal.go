package php

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/alecthomas/participle/v2/lexer"
)

// escapes splits the body of a double-quoted string or heredoc into escape
// sequences and literal text. Every byte matches some rule.
var escapes = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Unicode", Pattern: `\\u\{[0-9a-fA-F]+\}`},
	{Name: "Hex", Pattern: `\\x[0-9a-fA-F]{1,2}`},
	{Name: "Octal", Pattern: `\\[0-7]{1,3}`},
	{Name: "Escape", Pattern: `\\[nrtvef\\$"]`},
	{Name: "Text", Pattern: `[^\\]+|\\`},
})

var (
	unicodeEscape = escapes.Symbols()["Unicode"]
	hexEscape     = escapes.Symbols()["Hex"]
	octalEscape   = escapes.Symbols()["Octal"]
	simpleEscape  = escapes.Symbols()["Escape"]
)

var simpleEscapes = map[byte]byte{
	'n': '\n', 'r': '\r', 't': '\t', 'v': '\v', 'e': 0x1b, 'f': '\f',
	'\\': '\\', '$': '$', '"': '"',
}

// StringValue decodes a string literal argument: a quoted string, a heredoc
// or a nowdoc. quote is the quote character of a quoted string and zero for
// the others. ok is false for any other expression, including strings with
// interpolated variables.
func StringValue(n ast.Vertex) (value string, quote byte, ok bool) {
	switch n := n.(type) {
	case *ast.ScalarString:
		raw := string(n.Value)
		if n.StringTkn != nil {
			raw = string(n.StringTkn.Value)
		}
		raw = strings.TrimLeft(raw, "bB")
		if len(raw) < 2 {
			return "", 0, false
		}
		if raw[0] == '"' {
			return unescape(raw[1:len(raw)-1], false), '"', true
		}
		return unquoteSingle(raw), '\'', true
	case *ast.ScalarHeredoc:
		value, ok := heredocValue(n)
		return value, 0, ok
	}
	return "", 0, false
}

func heredocValue(h *ast.ScalarHeredoc) (string, bool) {
	var full strings.Builder
	for _, p := range h.Parts {
		part, ok := p.(*ast.ScalarEncapsedStringPart)
		if !ok {
			return "", false
		}
		full.Write(part.Value)
	}
	open := ""
	if h.OpenHeredocTkn != nil {
		open = string(h.OpenHeredocTkn.Value)
	}
	if h.CloseHeredocTkn != nil {
		full.WriteString(tokensText(h.CloseHeredocTkn.FreeFloating))
		full.Write(h.CloseHeredocTkn.Value)
	}

	text := full.String()
	if !strings.HasSuffix(open, "\n") {
		text = strings.TrimPrefix(strings.TrimPrefix(text, "\r"), "\n")
	}

	// The closing label sits on the last line; its indentation is removed
	// from every body line.
	end := strings.LastIndexByte(text, '\n')
	if end < 0 {
		return "", true
	}
	closing := text[end+1:]
	indent := closing[:len(closing)-len(strings.TrimLeft(closing, " \t"))]
	body := strings.TrimSuffix(text[:end], "\r")

	if indent != "" {
		lines := strings.Split(body, "\n")
		for i, line := range lines {
			lines[i] = strings.TrimPrefix(line, indent)
		}
		body = strings.Join(lines, "\n")
	}

	if strings.Contains(open, "'") {
		return body, true
	}
	return unescape(body, true), true
}

// unescape decodes the escape sequences of a double-quoted string body. In a
// heredoc a backslash before a double quote is kept as written.
func unescape(body string, heredoc bool) string {
	if !strings.Contains(body, `\`) {
		return body
	}

	lx, err := escapes.LexString("", body)
	if err != nil {
		return body
	}
	var b strings.Builder
	for {
		tok, err := lx.Next()
		if err != nil || tok.EOF() {
			break
		}
		switch tok.Type {
		case unicodeEscape:
			v, err := strconv.ParseUint(tok.Value[3:len(tok.Value)-1], 16, 32)
			if err != nil || !utf8.ValidRune(rune(v)) {
				b.WriteString(tok.Value)
				continue
			}
			b.WriteRune(rune(v))
		case hexEscape:
			v, _ := strconv.ParseUint(tok.Value[2:], 16, 8)
			b.WriteByte(byte(v))
		case octalEscape:
			v, _ := strconv.ParseUint(tok.Value[1:], 8, 16)
			b.WriteByte(byte(v))
		case simpleEscape:
			if heredoc && tok.Value[1] == '"' {
				b.WriteString(tok.Value)
				continue
			}
			b.WriteByte(simpleEscapes[tok.Value[1]])
		default:
			b.WriteString(tok.Value)
		}
	}
	return b.String()
}

// unquoteSingle decodes a single-quoted literal including its quotes.
func unquoteSingle(lit string) string {
	body := lit[1 : len(lit)-1]
	if !strings.Contains(body, `\`) {
		return body
	}
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) && (body[i+1] == '\\' || body[i+1] == '\'') {
			i++
		}
		b.WriteByte(body[i])
	}
	return b.String()
}

// quoteString renders value as a PHP string literal using quote.
func quoteString(value string, quote byte) string {
	var b strings.Builder
	if quote == '"' {
		b.WriteByte('"')
		for _, r := range value {
			switch r {
			case '\\':
				b.WriteString(`\\`)
			case '"':
				b.WriteString(`\"`)
			case '$':
				b.WriteString(`\$`)
			case '\n':
				b.WriteString(`\n`)
			case '\r':
				b.WriteString(`\r`)
			case '\t':
				b.WriteString(`\t`)
			default:
				b.WriteRune(r)
			}
		}
		b.WriteByte('"')
		return b.String()
	}

	b.WriteByte('\'')
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case '\\', '\'':
			b.WriteByte('\\')
		}
		b.WriteByte(value[i])
	}
	b.WriteByte('\'')
	return b.String()
}

// Describe names an expression for error messages by its source text.
func (f *File) Describe(n ast.Vertex) string {
	text := strings.TrimSpace(f.Text(n))
	if text == "" {
		return "unknown expression"
	}
	if len(text) > 40 {
		text = text[:40] + "..."
	}
	return "expression " + strconv.Quote(text)
}
