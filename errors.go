package jsona

import "fmt"

// ErrorKind identifies which of the closed syntax/DOM error families a
// SyntaxError or Error belongs to, matching the kinds spec.md §6.4 and §7
// name for JSON-serialized error payloads.
type ErrorKind string

const (
	ErrInvalidSyntax         ErrorKind = "InvalidSyntax"
	ErrUnexpectedSyntax      ErrorKind = "UnexpectedSyntax"
	ErrInvalidEscapeSequence ErrorKind = "InvalidEscapeSequence"
	ErrInvalidNumber         ErrorKind = "InvalidNumber"
	ErrConflictingKeys       ErrorKind = "ConflictingKeys"
)

// SyntaxError is a single lexer/parser diagnostic: a byte range plus message.
// Syntax errors are never fatal; they accumulate on Parse and downstream
// components treat their ranges as opaque (formatter) or ignore them (DOM).
type SyntaxError struct {
	Kind    ErrorKind
	Start   int
	End     int
	Message string
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("%s at [%d:%d): %s", e.Kind, e.Start, e.End, e.Message)
}

// Payload renders the error in the wire shape from spec.md §6.4.
func (e SyntaxError) Payload(m *Mapper) ErrorPayload {
	r := m.Range(e.Start, e.End)
	return ErrorPayload{Kind: e.Kind, Message: e.Message, Range: &r}
}

// ErrorPayload is the serializable error shape from spec.md §6.4.
type ErrorPayload struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Range   *Range    `json:"range,omitempty"`
}

// Error is a DOM-level error: ConflictingKeys, UnexpectedSyntax,
// InvalidEscapeSequence, InvalidNumber — surfaced on demand via
// dom.Node.Validate(), never thrown during construction.
type Error struct {
	Kind    ErrorKind
	Range   [2]int // byte range of the offending syntax element
	Other   *[2]int // second range, only set for ConflictingKeys
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("%s at [%d:%d): %s", e.Kind, e.Range[0], e.Range[1], e.Message)
}
