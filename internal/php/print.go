package php

import (
	"bytes"

	"github.com/VKCOM/php-parser/pkg/visitor/printer"
)

// Print renders f back to PHP source. Every token is printed after the
// trivia it carries, so untouched code comes back as written.
func Print(f *File) string {
	f.sync()
	var buf bytes.Buffer
	f.Root.Accept(printer.NewPrinter(&buf))
	return buf.String()
}
