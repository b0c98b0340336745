package assemble

import (
	"fmt"
	"strings"
)

// Kind categorizes an assembly-time error, per spec §7.
type Kind int

const (
	ErrDuplicateLabel Kind = iota
	ErrDuplicateConstant
	ErrDuplicateAlias
	ErrUndefinedSymbol
	ErrDuplicateAddress
	ErrUnrecognizedShape
	ErrImmediateRange
	ErrAddressRange
	ErrRegisterRange
	ErrBadDirective
)

func (k Kind) String() string {
	switch k {
	case ErrDuplicateLabel:
		return "duplicate label"
	case ErrDuplicateConstant:
		return "duplicate constant"
	case ErrDuplicateAlias:
		return "duplicate alias"
	case ErrUndefinedSymbol:
		return "undefined symbol"
	case ErrDuplicateAddress:
		return "duplicate instruction address"
	case ErrUnrecognizedShape:
		return "unrecognized instruction shape"
	case ErrImmediateRange:
		return "immediate out of range"
	case ErrAddressRange:
		return "address out of range"
	case ErrRegisterRange:
		return "register out of range"
	case ErrBadDirective:
		return "malformed directive"
	default:
		return "error"
	}
}

// Error is a single assembly diagnostic, tied to the source line it came
// from so a host can report a full list rather than stopping at the first
// problem (spec §7: "the assembler emits at most one error per malformed
// line then continues scanning").
type Error struct {
	Line    int
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s: %s", e.Line, e.Kind, e.Message)
}

// ErrorList collects every error produced while assembling a program.
type ErrorList struct {
	Errors []*Error
}

func (el *ErrorList) add(line int, kind Kind, format string, args ...interface{}) {
	el.Errors = append(el.Errors, &Error{
		Line:    line,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	})
}

// HasErrors reports whether any error was recorded.
func (el *ErrorList) HasErrors() bool {
	return el != nil && len(el.Errors) > 0
}

// Error implements the error interface so an *ErrorList can be returned
// directly from Assemble.
func (el *ErrorList) Error() string {
	var b strings.Builder
	for _, e := range el.Errors {
		b.WriteString(e.Error())
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
