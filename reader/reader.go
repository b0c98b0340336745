// Package reader normalizes raw PicoBlaze assembly source into a matrix of
// per-line lexemes. It performs no semantic validation; later stages
// (token, assemble) are responsible for classifying and interpreting the
// lexemes this package produces.
package reader

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// separators are the single-character punctuation lexemes that survive as
// their own entries even when they appear glued to an adjacent word, e.g.
// "(s3,s4)" splits into "(", "s3", ",", "s4", ")".
const separators = ",()~"

// Line is the lexeme sequence produced from a single physical source line.
type Line []string

// ReadAll reads every line from r and returns the lexeme matrix.
func ReadAll(r io.Reader) ([]Line, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)

	var lines []Line
	for scanner.Scan() {
		if line := splitLine(scanner.Text()); len(line) > 0 {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// ReadFile reads and normalizes an assembly source file.
func ReadFile(path string) ([]Line, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided assembly file path
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadAll(f)
}

// ReadString normalizes an in-memory assembly source string. Useful for
// tests and for hosts that already hold the source text (e.g. the HTTP API).
func ReadString(source string) ([]Line, error) {
	return ReadAll(strings.NewReader(source))
}

// splitLine applies the full per-line normalization described in spec §4.1:
// strip a trailing line comment, collapse whitespace inside balanced
// parentheses, lowercase, split on whitespace, then split-preserving on the
// punctuation separators so they survive as standalone lexemes.
func splitLine(raw string) Line {
	raw = stripComment(raw)
	raw = collapseParenWhitespace(raw)
	raw = strings.ToLower(raw)

	words := strings.Fields(raw)

	var out Line
	for _, w := range words {
		out = append(out, splitSeparators(w)...)
	}
	return out
}

// stripComment drops everything from the first ';' to the end of the line.
func stripComment(line string) string {
	if idx := strings.IndexByte(line, ';'); idx >= 0 {
		return line[:idx]
	}
	return line
}

// collapseParenWhitespace removes whitespace inside balanced "( ... )"
// regions so that "( s1 , s2 )" becomes "(s1,s2)" before the whitespace
// split runs. Text outside parentheses is left untouched.
func collapseParenWhitespace(line string) string {
	if !strings.ContainsRune(line, '(') {
		return line
	}

	var b strings.Builder
	depth := 0
	for _, r := range line {
		switch {
		case r == '(':
			depth++
			b.WriteRune(r)
		case r == ')':
			if depth > 0 {
				depth--
			}
			b.WriteRune(r)
		case depth > 0 && (r == ' ' || r == '\t'):
			// drop interior whitespace
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// splitSeparators splits word on any occurrence of the characters in
// separators, keeping each separator as its own lexeme, in the style of
// the original reader's split_inclusive helper (which only special-cased
// the comma; this generalizes it to every punctuation character the
// grammar needs, per spec §4.1(e)).
func splitSeparators(word string) []string {
	var out []string
	start := 0
	for i := 0; i < len(word); i++ {
		if strings.IndexByte(separators, word[i]) >= 0 {
			if start < i {
				out = append(out, word[start:i])
			}
			out = append(out, word[i:i+1])
			start = i + 1
		}
	}
	if start < len(word) {
		out = append(out, word[start:])
	}
	return out
}
