// Package tools provides static-analysis helpers for PicoBlaze source that
// sit above the assembler proper: a linter that flags style and reachability
// issues the two-pass assembler doesn't care about, and a cross-reference
// generator for browsing a program's label graph. Grounded on the teacher's
// tools.Linter/XRefGenerator, re-pointed at the token/reader/assemble
// front end instead of an ARM parser.Program.
package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lookbusy1344/picosim/assemble"
	"github.com/lookbusy1344/picosim/reader"
	"github.com/lookbusy1344/picosim/token"
)

// LintLevel is the severity of a lint finding.
type LintLevel int

const (
	LintError LintLevel = iota
	LintWarning
	LintInfo
)

func (l LintLevel) String() string {
	switch l {
	case LintError:
		return "error"
	case LintWarning:
		return "warning"
	case LintInfo:
		return "info"
	default:
		return "unknown"
	}
}

// LintIssue is a single lint finding tied to a source line.
type LintIssue struct {
	Level   LintLevel
	Line    int
	Message string
	Code    string
}

func (i *LintIssue) String() string {
	return fmt.Sprintf("line %d: %s: %s [%s]", i.Line, i.Level, i.Message, i.Code)
}

// LintOptions controls which optional checks run.
type LintOptions struct {
	CheckUnused bool // warn about labels never referenced
	CheckReach  bool // warn about code after an unconditional JUMP/RETURN
}

// DefaultLintOptions returns the linter's default check set.
func DefaultLintOptions() *LintOptions {
	return &LintOptions{CheckUnused: true, CheckReach: true}
}

// sourceLine is one tokenized line, with leading label stripped off.
type sourceLine struct {
	num      int
	label    string
	mnemonic string
	hasCond  bool
	words    []string // Word tokens on this line: unresolved label/constant/alias refs
}

// Linter analyzes PicoBlaze assembly for issues beyond what the assembler
// itself rejects.
type Linter struct {
	options *LintOptions
	issues  []*LintIssue
}

// NewLinter creates a linter with the given options, or DefaultLintOptions
// if options is nil.
func NewLinter(options *LintOptions) *Linter {
	if options == nil {
		options = DefaultLintOptions()
	}
	return &Linter{options: options}
}

// Lint analyzes source and returns every issue found, sorted by source
// line.
func (l *Linter) Lint(source, filename string) []*LintIssue {
	l.issues = nil

	_, errs := assemble.Assemble(source)
	if errs.HasErrors() {
		for _, e := range errs.Errors {
			l.issues = append(l.issues, &LintIssue{
				Level:   LintError,
				Line:    e.Line,
				Message: e.Message,
				Code:    e.Kind.String(),
			})
		}
		// Structural checks below assume a tokenizable program; an
		// assembler error doesn't prevent that, so keep going.
	}

	lines, err := reader.ReadString(source)
	if err != nil {
		l.issues = append(l.issues, &LintIssue{Level: LintError, Line: 0, Message: err.Error(), Code: "READ_ERROR"})
		return l.issues
	}

	toks, lexErr, _ := token.Tokenize(lines)
	if lexErr != nil {
		l.issues = append(l.issues, &LintIssue{Level: LintError, Line: lexErr.Line, Message: lexErr.Message, Code: "LEX_ERROR"})
		return l.issues
	}

	srcLines := splitSourceLines(toks)

	defined, referenced := l.collectLabels(srcLines)

	if l.options.CheckUnused {
		l.checkUnusedLabels(defined, referenced)
	}
	if l.options.CheckReach {
		l.checkUnreachableCode(srcLines)
	}

	sort.Slice(l.issues, func(i, j int) bool { return l.issues[i].Line < l.issues[j].Line })
	return l.issues
}

func splitSourceLines(toks []token.Token) []sourceLine {
	var out []sourceLine
	var cur sourceLine
	cur.num = 1

	flush := func() {
		if cur.mnemonic != "" || cur.label != "" {
			out = append(out, cur)
		}
	}

	for _, t := range toks {
		switch t.Kind {
		case token.EndOfLine:
			flush()
			cur = sourceLine{num: t.Line + 1}
		case token.Label:
			cur.label = t.Text
			cur.num = t.Line
		case token.Instruction:
			cur.mnemonic = strings.ToLower(t.Text)
			cur.num = t.Line
		case token.Condition:
			cur.hasCond = true
		case token.Word:
			cur.words = append(cur.words, t.Text)
		}
	}
	flush()

	return out
}

func (l *Linter) collectLabels(lines []sourceLine) (defined map[string]int, referenced map[string]bool) {
	defined = make(map[string]int)
	referenced = make(map[string]bool)

	for _, ln := range lines {
		if ln.label != "" {
			if _, exists := defined[ln.label]; exists {
				l.issues = append(l.issues, &LintIssue{
					Level: LintWarning, Line: ln.num,
					Message: fmt.Sprintf("duplicate label %q", ln.label), Code: "DUPLICATE_LABEL",
				})
			} else {
				defined[ln.label] = ln.num
			}
		}
		for _, w := range ln.words {
			referenced[w] = true
		}
	}

	return defined, referenced
}

func (l *Linter) checkUnusedLabels(defined map[string]int, referenced map[string]bool) {
	for label, line := range defined {
		if isSpecialLabel(label) {
			continue
		}
		if !referenced[label] {
			l.issues = append(l.issues, &LintIssue{
				Level: LintWarning, Line: line,
				Message: fmt.Sprintf("label %q defined but never referenced", label), Code: "UNUSED_LABEL",
			})
		}
	}
}

// checkUnreachableCode warns about a line following an unconditional JUMP,
// CALL's sibling RETURN/RETURNI, with no intervening label to justify it as
// a branch target.
func (l *Linter) checkUnreachableCode(lines []sourceLine) {
	for i, ln := range lines {
		unconditional := (ln.mnemonic == "jump" || ln.mnemonic == "jump@" ||
			ln.mnemonic == "return" || ln.mnemonic == "returni") && !ln.hasCond
		if !unconditional {
			continue
		}
		if i+1 >= len(lines) {
			continue
		}
		next := lines[i+1]
		if next.label == "" && next.mnemonic != "" {
			l.issues = append(l.issues, &LintIssue{
				Level: LintWarning, Line: next.num,
				Message: "unreachable code after unconditional " + strings.ToUpper(ln.mnemonic),
				Code:    "UNREACHABLE_CODE",
			})
		}
	}
}

// isSpecialLabel reports whether label is a conventional entry point that
// a host may jump to without any JUMP/CALL referencing it in-source.
func isSpecialLabel(label string) bool {
	switch strings.ToLower(label) {
	case "main", "start", "isr", "reset":
		return true
	default:
		return false
	}
}
