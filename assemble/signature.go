package assemble

import "github.com/lookbusy1344/picosim/token"

// splitLines groups a flat token stream (as produced by token.Tokenize)
// back into per-line slices, dropping the EndOfLine markers.
func splitLines(toks []token.Token) [][]token.Token {
	var lines [][]token.Token
	var cur []token.Token
	for _, t := range toks {
		if t.Kind == token.EndOfLine {
			lines = append(lines, cur)
			cur = nil
			continue
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 {
		lines = append(lines, cur)
	}
	return lines
}

// signature renders a line's token kinds into the short dispatch string
// described in spec §4.3 and §9 ("Token-shape strings"): one character per
// token, e.g. an ADD of two registers is "ir,r", ADD with an immediate is
// "ir,n", and a conditional JUMP to a resolved address is "ic,a".
func signature(line []token.Token) string {
	b := make([]byte, 0, len(line))
	for _, t := range line {
		switch t.Kind {
		case token.Word:
			b = append(b, 'w')
		case token.Instruction:
			b = append(b, 'i')
		case token.Register:
			b = append(b, 'r')
		case token.Number:
			b = append(b, 'n')
		case token.Address:
			b = append(b, 'a')
		case token.Condition:
			b = append(b, 'c')
		case token.Comma:
			b = append(b, ',')
		case token.Tilde:
			b = append(b, '~')
		case token.Paren:
			if t.Paren == token.LParen {
				b = append(b, '(')
			} else {
				b = append(b, ')')
			}
		}
	}
	return string(b)
}
