// Package assemble implements the two-pass PicoBlaze assembler: pass 1
// collects labels, constants, aliases and occupied addresses; pass 2
// resolves Word tokens against those tables and emits instructions via
// token-shape dispatch (see signature.go and operands.go).
package assemble

import (
	"github.com/lookbusy1344/picosim/reader"
	"github.com/lookbusy1344/picosim/token"
)

// Assemble runs both passes over source text and returns the resulting
// Program, or a non-empty ErrorList describing the problems found. Each
// pass scans every line and collects an error for each bad line rather
// than stopping at the first one. A lexical error stops assembly at once,
// and errors from pass 1 stop it before pass 2 runs.
func Assemble(source string) (*Program, *ErrorList) {
	lines, err := reader.ReadString(source)
	if err != nil {
		errs := &ErrorList{}
		errs.add(0, ErrBadDirective, "reading source: %v", err)
		return nil, errs
	}

	toks, lexErr, _ := token.Tokenize(lines)
	errs := &ErrorList{}
	if lexErr != nil {
		errs.add(lexErr.Line, ErrUnrecognizedShape, "%s: %q", lexErr.Message, lexErr.Lexeme)
		return nil, errs
	}

	tokLines := splitLines(toks)

	labels := newLabelTable()
	constants := newConstantTable()
	aliases := newAliasTable()

	res := runPass1(tokLines, labels, constants, aliases, errs)
	if errs.HasErrors() {
		return nil, errs
	}

	prog := runPass2(tokLines, res, labels, constants, aliases, errs)
	if errs.HasErrors() {
		return nil, errs
	}

	return prog, nil
}

// AssembleFile reads path and assembles it, per Assemble.
func AssembleFile(path string) (*Program, *ErrorList) {
	lines, err := reader.ReadFile(path)
	if err != nil {
		errs := &ErrorList{}
		errs.add(0, ErrBadDirective, "reading %s: %v", path, err)
		return nil, errs
	}

	toks, lexErr, _ := token.Tokenize(lines)
	errs := &ErrorList{}
	if lexErr != nil {
		errs.add(lexErr.Line, ErrUnrecognizedShape, "%s: %q", lexErr.Message, lexErr.Lexeme)
		return nil, errs
	}

	tokLines := splitLines(toks)

	labels := newLabelTable()
	constants := newConstantTable()
	aliases := newAliasTable()

	res := runPass1(tokLines, labels, constants, aliases, errs)
	if errs.HasErrors() {
		return nil, errs
	}

	prog := runPass2(tokLines, res, labels, constants, aliases, errs)
	if errs.HasErrors() {
		return nil, errs
	}

	return prog, nil
}
