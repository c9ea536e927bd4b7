// Package lexer converts template source text into the flat, ordered token
// stream consumed by the template interpreter.
//
// # Syntax
//
//	Hello ${user.name}!                       expression
//	\${literal}                               escaped expression delimiter
//	<c:if test="$admin">...</c:if>            command with a body
//	<c:set var="n" value="len(items)"/>       command without a body
//
// For every command the lexer emits a [token.Command] token spanning the
// command name and its raw argument text, immediately followed by a
// [token.CommandBody] marker. The marker of a non-empty body starts where the
// body starts and stops where the last token of the body stops, so a consumer
// can find the end of a body by comparing stop offsets. A command without a
// body gets an empty marker (Start == Stop).
//
// The lexer never fails. Malformed constructs degrade to literal text:
//   - an unterminated expression or tag is copied as text,
//   - a close tag matching no open command is copied as text,
//   - a close tag naming an enclosing command also closes the inner bodies,
//   - a body left open at end of input ends there.
package lexer

import (
	"slices"
	"strings"

	"github.com/ardnew/stencil/template/token"
)

// Default delimiters.
const (
	DefaultExpressionOpen  = "${"
	DefaultExpressionClose = "}"
	DefaultCommandPrefix   = "c:"
)

// Lexer tokenizes template text. The zero value is not usable; create one
// with [New].
type Lexer struct {
	exprOpen  string
	exprClose string
	openTag   string // "<" + prefix
	closeTag  string // "</" + prefix
}

// Option configures a [Lexer].
type Option func(*Lexer)

// WithExpressionDelims sets the strings that open and close an expression.
// Empty values are ignored.
func WithExpressionDelims(open, close string) Option {
	return func(l *Lexer) {
		if open != "" && close != "" {
			l.exprOpen, l.exprClose = open, close
		}
	}
}

// WithCommandPrefix sets the namespace prefix that distinguishes command tags
// from ordinary markup, e.g. "c:" for <c:if>.
func WithCommandPrefix(prefix string) Option {
	return func(l *Lexer) {
		l.openTag = "<" + prefix
		l.closeTag = "</" + prefix
	}
}

// New returns a Lexer using the default delimiters overridden by opts.
func New(opts ...Option) *Lexer {
	l := &Lexer{
		exprOpen:  DefaultExpressionOpen,
		exprClose: DefaultExpressionClose,
	}

	WithCommandPrefix(DefaultCommandPrefix)(l)

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Tokenize parses src with the default delimiters.
func Tokenize(src string) []token.Token {
	return New().Parse(src)
}

// Parse returns the tokens of src in source order.
func (l *Lexer) Parse(src string) []token.Token {
	s := &scanner{Lexer: l, src: src}
	s.lexBody()

	return s.toks
}

// scanner holds the state of one Parse call.
type scanner struct {
	*Lexer

	src  string
	pos  int
	toks []token.Token
	open []string // names of enclosing commands, innermost last
}

func (s *scanner) emit(t token.Type, start, stop int) {
	s.toks = append(s.toks, token.Make(t, start, stop))
}

// lexBody scans until the close tag of an open command or end of input.
func (s *scanner) lexBody() {
	textStart := s.pos

	flush := func(end int) {
		if end > textStart {
			s.emit(token.Text, textStart, end)
		}
	}

	for s.pos < len(s.src) {
		rest := s.src[s.pos:]

		switch {
		case strings.HasPrefix(rest, `\`+s.exprOpen):
			flush(s.pos)
			textStart = s.pos + 1
			s.pos += 1 + len(s.exprOpen)

		case strings.HasPrefix(rest, s.exprOpen):
			start := s.pos + len(s.exprOpen)

			stop, ok := s.scanExpression(start)
			if !ok {
				s.pos = start

				continue
			}

			flush(s.pos)
			s.emit(token.Expression, start, stop)
			s.pos = stop + len(s.exprClose)
			textStart = s.pos

		case strings.HasPrefix(rest, s.closeTag):
			name, end, ok := s.scanCloseTag(s.pos)
			if !ok || !slices.Contains(s.open, name) {
				s.pos += len(s.closeTag)

				continue
			}

			flush(s.pos)

			if s.open[len(s.open)-1] == name {
				s.pos = end
			}

			// An ancestor's close tag is left in place for the ancestor.
			return

		case strings.HasPrefix(rest, s.openTag):
			tag, ok := s.scanOpenTag(s.pos)
			if !ok {
				s.pos += len(s.openTag)

				continue
			}

			flush(s.pos)
			s.lexCommand(tag)
			textStart = s.pos

		default:
			s.pos++
		}
	}

	flush(len(s.src))
}

// lexCommand emits the command token, its body marker, and the body tokens.
func (s *scanner) lexCommand(tag openTag) {
	s.emit(token.Command, tag.nameStart, tag.argsStop)

	marker := len(s.toks)
	s.emit(token.CommandBody, tag.end, tag.end)
	s.pos = tag.end

	if tag.selfClosing {
		return
	}

	s.open = append(s.open, tag.name)
	first := len(s.toks)

	s.lexBody()

	s.open = s.open[:len(s.open)-1]

	if len(s.toks) > first {
		s.toks[marker].Stop = s.toks[len(s.toks)-1].Stop
	}
}

// openTag describes a scanned command open tag.
type openTag struct {
	name        string
	nameStart   int
	argsStop    int
	end         int
	selfClosing bool
}

// scanOpenTag scans "<prefix" name [args] ("/>" | ">") starting at pos.
func (s *scanner) scanOpenTag(pos int) (openTag, bool) {
	var tag openTag

	i := pos + len(s.openTag)
	tag.nameStart = i

	for i < len(s.src) && isNameByte(s.src[i]) {
		i++
	}

	if i == tag.nameStart || i >= len(s.src) {
		return tag, false
	}

	if c := s.src[i]; c != '>' && c != '/' && !isSpace(c) {
		return tag, false
	}

	tag.name = s.src[tag.nameStart:i]
	nameStop := i

	for i < len(s.src) {
		switch c := s.src[i]; c {
		case '"', '\'':
			end, ok := skipQuoted(s.src, i)
			if !ok {
				return tag, false
			}

			i = end

			continue

		case '>':
			tag.end = i + 1
			tag.argsStop = i

			if tag.argsStop > nameStop && s.src[tag.argsStop-1] == '/' {
				tag.selfClosing = true
				tag.argsStop--
			}

			for tag.argsStop > nameStop && isSpace(s.src[tag.argsStop-1]) {
				tag.argsStop--
			}

			return tag, true
		}

		i++
	}

	return tag, false
}

// scanCloseTag scans "</prefix" name ">" starting at pos.
func (s *scanner) scanCloseTag(pos int) (name string, end int, ok bool) {
	i := pos + len(s.closeTag)
	start := i

	for i < len(s.src) && isNameByte(s.src[i]) {
		i++
	}

	if i == start {
		return "", 0, false
	}

	name = s.src[start:i]

	for i < len(s.src) && isSpace(s.src[i]) {
		i++
	}

	if i >= len(s.src) || s.src[i] != '>' {
		return "", 0, false
	}

	return name, i + 1, true
}

// scanExpression returns the offset of the closing delimiter matching an
// expression that starts at start. Brackets must balance and quoted strings
// are skipped.
func (s *scanner) scanExpression(start int) (int, bool) {
	depth := 0

	for i := start; i < len(s.src); {
		if depth == 0 && strings.HasPrefix(s.src[i:], s.exprClose) {
			return i, true
		}

		switch c := s.src[i]; c {
		case '"', '\'', '`':
			end, ok := skipQuoted(s.src, i)
			if !ok {
				return 0, false
			}

			i = end

			continue

		case '{', '(', '[':
			depth++

		case '}', ')', ']':
			if depth > 0 {
				depth--
			}
		}

		i++
	}

	return 0, false
}

// skipQuoted returns the offset just past the string literal starting at i.
func skipQuoted(src string, i int) (int, bool) {
	quote := src[i]

	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			if quote != '`' {
				j++
			}

		case quote:
			return j + 1, true
		}
	}

	return 0, false
}

func isNameByte(c byte) bool {
	return c == '_' || c == '-' || c == '.' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
