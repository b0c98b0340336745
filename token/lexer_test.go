package token

import (
	"testing"

	"github.com/lookbusy1344/picosim/reader"
)

func tokenizeString(t *testing.T, src string) []Token {
	t.Helper()
	lines, err := reader.ReadString(src)
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	toks, lexErr, _ := Tokenize(lines)
	if lexErr != nil {
		t.Fatalf("Tokenize: %v", lexErr)
	}
	return toks
}

func TestTokenizeBasics(t *testing.T) {
	toks := tokenizeString(t, "LOAD s0, 01'd")

	want := []Type{Instruction, Register, Comma, Number, EndOfLine}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %#v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Fatalf("token %d kind = %s, want %s", i, toks[i].Kind, k)
		}
	}
	if toks[1].RegisterIndex != 0 {
		t.Fatalf("register index = %d, want 0", toks[1].RegisterIndex)
	}
	if toks[3].NumberValue != 1 || toks[3].NumberBase != BaseDec {
		t.Fatalf("number = %+v, want value 1 base dec", toks[3])
	}
}

func TestTokenizeAddressVsHexByte(t *testing.T) {
	toks := tokenizeString(t, "JUMP 100\nLOAD s0, FF")

	if toks[1].Kind != Address || toks[1].AddressValue != 0x100 {
		t.Fatalf("expected 3-hex-digit 100 to be an Address, got %+v", toks[1])
	}
	// toks: jump(0) 100(1) eol(2) load(3) s0(4) comma(5) FF(6)
	if toks[6].Kind != Number || toks[6].NumberValue != 0xFF {
		t.Fatalf("expected 2-hex-digit FF to be a Number, got %+v", toks[6])
	}
}

func TestTokenizeOutOfRangeThreeHexFallsBackToWord(t *testing.T) {
	// "fed" is 3 hex digits with value 0xFED > 0x3FF, so it must not become
	// an Address; it falls through to Word per spec §4.2.
	toks := tokenizeString(t, "fed")
	if toks[0].Kind != Word || toks[0].Text != "fed" {
		t.Fatalf("expected Word(fed), got %+v", toks[0])
	}
}

func TestTokenizeLabelCondDirectives(t *testing.T) {
	toks := tokenizeString(t, "loop: jump z, loop\nconstant foo, 05\nnamereg s3, bar\naddress 3ff")

	if toks[0].Kind != Label || toks[0].Text != "loop" {
		t.Fatalf("label = %+v", toks[0])
	}
	if toks[2].Kind != Condition || toks[2].Cond != CondZ {
		t.Fatalf("condition = %+v", toks[2])
	}
	var kinds []Type
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	foundConstant, foundNamereg, foundAddrDir := false, false, false
	for _, k := range kinds {
		switch k {
		case ConstantDirective:
			foundConstant = true
		case NameregDirective:
			foundNamereg = true
		case AddressDirective:
			foundAddrDir = true
		}
	}
	if !foundConstant || !foundNamereg || !foundAddrDir {
		t.Fatalf("missing a directive token among: %v", kinds)
	}
}

func TestTokenizeRegisterPairAndDeref(t *testing.T) {
	toks := tokenizeString(t, "jump@ (s1,s2)\nfetch s0,(s1)\nadd s0, ~s1")

	wantKinds := []Type{
		Instruction, Paren, Register, Comma, Register, Paren, EndOfLine,
		Instruction, Register, Comma, Paren, Register, Paren, EndOfLine,
		Instruction, Register, Comma, Tilde, Register, EndOfLine,
	}
	if len(toks) != len(wantKinds) {
		t.Fatalf("got %d tokens, want %d: %#v", len(toks), len(wantKinds), toks)
	}
	for i, k := range wantKinds {
		if toks[i].Kind != k {
			t.Fatalf("token %d kind = %s, want %s (%#v)", i, toks[i].Kind, k, toks[i])
		}
	}
}

func TestTokenizeLiteralOverflowWarns(t *testing.T) {
	lines, _ := reader.ReadString("load s0, 11111111'b")
	_, lexErr, warnings := Tokenize(lines)
	if lexErr != nil {
		t.Fatalf("unexpected lex error: %v", lexErr)
	}
	if len(warnings) != 0 {
		t.Fatalf("11111111'b is exactly 255, should not warn: %v", warnings)
	}

	lines, _ = reader.ReadString("load s0, 999'd")
	_, lexErr, warnings = Tokenize(lines)
	if lexErr != nil {
		t.Fatalf("unexpected lex error: %v", lexErr)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one overflow warning, got %v", warnings)
	}
}
