package token

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lookbusy1344/picosim/reader"
)

// Error is a lexical error tied to a source line, per spec §7.
type Error struct {
	Line    int
	Lexeme  string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Message, e.Lexeme)
}

// Warning is a non-fatal lexical diagnostic (e.g. an oversized literal).
type Warning struct {
	Line    int
	Lexeme  string
	Message string
}

func (w *Warning) String() string {
	return fmt.Sprintf("line %d: warning: %s: %q", w.Line, w.Message, w.Lexeme)
}

// mnemonics is the closed set of instruction keywords recognized by the
// tokenizer, per spec §3.
var mnemonics = map[string]bool{
	"add": true, "addcy": true, "sub": true, "subcy": true,
	"and": true, "or": true, "xor": true, "test": true, "testcy": true,
	"compare": true, "comparecy": true,
	"load": true, "load&return": true, "star": true,
	"fetch": true, "store": true,
	"input": true, "output": true, "outputk": true,
	"sl0": true, "sl1": true, "sla": true, "slx": true,
	"sr0": true, "sr1": true, "sra": true, "srx": true,
	"rl": true, "rr": true,
	"jump": true, "jump@": true, "call": true, "call@": true,
	"return": true, "returni": true,
	"hwbuild": true, "regbank": true,
	"enable": true, "disable": true, "interrupt": true,
}

// Tokenize classifies a lexeme matrix into a flat token stream, appending
// an EndOfLine after every source line, per spec §4.2.
func Tokenize(lines []reader.Line) ([]Token, *Error, []*Warning) {
	var out []Token
	var warnings []*Warning

	for i, line := range lines {
		lineNum := i + 1
		for _, word := range line {
			tok, warn, err := classify(word, lineNum)
			if err != nil {
				return nil, err, warnings
			}
			if warn != nil {
				warnings = append(warnings, warn)
			}
			out = append(out, tok)
		}
		out = append(out, Token{Kind: EndOfLine, Line: lineNum})
	}

	return out, nil, warnings
}

func classify(word string, line int) (Token, *Warning, *Error) {
	base := Token{Line: line}

	switch word {
	case ",":
		base.Kind = Comma
		return base, nil, nil
	case "~":
		base.Kind = Tilde
		return base, nil, nil
	case "(":
		base.Kind = Paren
		base.Paren = LParen
		return base, nil, nil
	case ")":
		base.Kind = Paren
		base.Paren = RParen
		return base, nil, nil
	}

	switch word {
	case "z":
		base.Kind = Condition
		base.Cond = CondZ
		return base, nil, nil
	case "nz":
		base.Kind = Condition
		base.Cond = CondNZ
		return base, nil, nil
	case "c":
		base.Kind = Condition
		base.Cond = CondC
		return base, nil, nil
	case "nc":
		base.Kind = Condition
		base.Cond = CondNC
		return base, nil, nil
	}

	switch word {
	case "constant":
		base.Kind = ConstantDirective
		return base, nil, nil
	case "address":
		base.Kind = AddressDirective
		return base, nil, nil
	case "namereg":
		base.Kind = NameregDirective
		return base, nil, nil
	}

	if mnemonics[word] {
		base.Kind = Instruction
		base.Text = word
		return base, nil, nil
	}

	if strings.HasSuffix(word, ":") && len(word) > 1 {
		base.Kind = Label
		base.Text = word[:len(word)-1]
		return base, nil, nil
	}

	if len(word) == 2 && isHexDigits(word) {
		v, _ := strconv.ParseUint(word, 16, 8)
		base.Kind = Number
		base.NumberValue = uint32(v)
		base.NumberBase = BaseHex
		return base, nil, nil
	}

	if len(word) == 3 && isHexDigits(word) {
		v, _ := strconv.ParseUint(word, 16, 32)
		if v <= 0x3FF {
			base.Kind = Address
			base.AddressValue = uint32(v)
			return base, nil, nil
		}
		// Falls through to Word per spec §4.2.
	}

	if strings.HasSuffix(word, "'b") {
		digits := word[:len(word)-2]
		if len(digits) == 8 && isBinaryDigits(digits) {
			v, err := strconv.ParseUint(digits, 2, 32)
			if err != nil {
				return base, nil, &Error{Line: line, Lexeme: word, Message: "malformed binary literal"}
			}
			base.Kind = Number
			base.NumberValue = uint32(v)
			base.NumberBase = BaseBin
			var warn *Warning
			if v > 255 {
				warn = &Warning{Line: line, Lexeme: word, Message: "literal overflows a byte"}
			}
			return base, warn, nil
		}
	}

	if strings.HasSuffix(word, "'d") {
		digits := word[:len(word)-2]
		if len(digits) > 0 && isDecimalDigits(digits) {
			v, err := strconv.ParseUint(digits, 10, 32)
			if err != nil {
				return base, nil, &Error{Line: line, Lexeme: word, Message: "malformed decimal literal"}
			}
			base.Kind = Number
			base.NumberValue = uint32(v)
			base.NumberBase = BaseDec
			var warn *Warning
			if v > 255 {
				warn = &Warning{Line: line, Lexeme: word, Message: "literal overflows a byte"}
			}
			return base, warn, nil
		}
	}

	if len(word) == 2 && (word[0] == 's') && isHexDigit(word[1]) {
		v, _ := strconv.ParseUint(word[1:], 16, 8)
		base.Kind = Register
		base.RegisterIndex = byte(v)
		return base, nil, nil
	}

	base.Kind = Word
	base.Text = word
	return base, nil, nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
}

func isHexDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return false
		}
	}
	return true
}

func isBinaryDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '0' && s[i] != '1' {
			return false
		}
	}
	return true
}

func isDecimalDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
