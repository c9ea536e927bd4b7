// Package token defines the lexical units produced by a template tokenizer.
//
// A [Token] never copies template text. It records a [Type] and a half-open
// range of byte offsets into the source string it was produced from, and the
// text is recovered lazily with [Token.Text].
package token

import (
	"log/slog"
	"strconv"
)

// Type identifies the kind of source span a token covers.
type Type int

const (
	// Text is literal template text copied verbatim to the output.
	Text Type = iota

	// Expression is the path or expression inside an expression delimiter.
	Expression

	// Command is the name and raw argument text of a command tag.
	Command

	// CommandBody marks the span of a command's body. It always immediately
	// follows the Command token it belongs to. An empty span (Start == Stop)
	// means the command has no body.
	CommandBody
)

// String returns a string representation of the token type.
func (t Type) String() string {
	switch t {
	case Text:
		return "Text"

	case Expression:
		return "Expression"

	case Command:
		return "Command"

	case CommandBody:
		return "CommandBody"

	default:
		return "Type(" + strconv.Itoa(int(t)) + ")"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// NoSource is the offset carried by synthetic tokens that do not refer to any
// span of the source text.
const NoSource = -1

// Token is an immutable typed span [Start, Stop) of a source string.
type Token struct {
	Type  Type `json:"type"  yaml:"type"`
	Start int  `json:"start" yaml:"start"`
	Stop  int  `json:"stop"  yaml:"stop"`
}

// Make returns a token of type t spanning [start, stop).
func Make(t Type, start, stop int) Token {
	return Token{Type: t, Start: start, Stop: stop}
}

// Synthetic returns a token of type t with no source reference.
func Synthetic(t Type) Token {
	return Token{Type: t, Start: NoSource, Stop: NoSource}
}

// IsSynthetic reports whether the token refers to no source text.
func (t Token) IsSynthetic() bool {
	return t.Start == NoSource && t.Stop == NoSource
}

// IsEmpty reports whether the token spans zero bytes.
func (t Token) IsEmpty() bool { return t.Start == t.Stop }

// Len returns the number of bytes spanned by the token.
func (t Token) Len() int {
	if t.IsSynthetic() {
		return 0
	}

	return t.Stop - t.Start
}

// Valid reports whether the token's offsets lie within a source of length n.
// Synthetic tokens are always valid.
func (t Token) Valid(n int) bool {
	if t.IsSynthetic() {
		return true
	}

	return 0 <= t.Start && t.Start <= t.Stop && t.Stop <= n
}

// Text returns the span of src covered by the token. Synthetic tokens and
// tokens with offsets outside src return the empty string.
func (t Token) Text(src string) string {
	if !t.Valid(len(src)) || t.IsSynthetic() {
		return ""
	}

	return src[t.Start:t.Stop]
}

// String returns a compact representation such as "Command[4:18]".
func (t Token) String() string {
	return t.Type.String() +
		"[" + strconv.Itoa(t.Start) + ":" + strconv.Itoa(t.Stop) + "]"
}

// LogValue implements slog.LogValuer.
func (t Token) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", t.Type.String()),
		slog.Int("start", t.Start),
		slog.Int("stop", t.Stop),
	)
}
