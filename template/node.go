package template

import (
	"log/slog"
	"strings"
	"unicode"

	"github.com/ardnew/stencil/template/token"
)

// node is one element of a nested template: a text or expression leaf, or a
// command with the nodes of its body.
type node struct {
	tok  token.Token
	name string  // command name
	args string  // raw command argument text
	body []*node // command body
	stop int     // source offset compared against enclosing body markers
}

// nest arranges the flat token stream of src into a tree of command bodies.
//
// A Command token must be followed by a CommandBody marker. An empty marker
// means the command has no body. Otherwise the body consists of the nodes
// that follow, up to and including the first one whose stop offset equals
// the marker's stop offset. Nested commands take their own bodies before the
// enclosing body sees the next token.
func nest(src string, toks []token.Token) ([]*node, error) {
	b := &nester{src: src, toks: toks}

	var nodes []*node

	for b.pos < len(b.toks) {
		n, err := b.next()
		if err != nil {
			return nil, err
		}

		nodes = append(nodes, n)
	}

	return nodes, nil
}

type nester struct {
	src  string
	toks []token.Token
	pos  int
}

func (b *nester) next() (*node, error) {
	tok := b.toks[b.pos]
	if !tok.Valid(len(b.src)) {
		return nil, ErrTokenRange.With(
			slog.Int("index", b.pos),
			slog.Any("token", tok),
			slog.Int("source_length", len(b.src)),
		)
	}

	b.pos++

	n := &node{tok: tok, stop: tok.Stop}

	if tok.Type != token.Command {
		return n, nil
	}

	n.name, n.args = splitCommand(tok.Text(b.src))

	if b.pos >= len(b.toks) || b.toks[b.pos].Type != token.CommandBody {
		return nil, ErrMissingBody.With(
			slog.Int("index", b.pos-1),
			slog.Any("token", tok),
			slog.String("command", n.name),
		)
	}

	marker := b.toks[b.pos]
	if !marker.Valid(len(b.src)) {
		return nil, ErrTokenRange.With(
			slog.Int("index", b.pos),
			slog.Any("token", marker),
			slog.Int("source_length", len(b.src)),
		)
	}

	b.pos++
	n.stop = marker.Stop

	if marker.IsEmpty() {
		return n, nil
	}

	for {
		if b.pos >= len(b.toks) {
			return nil, ErrUnclosedBody.With(
				slog.String("command", n.name),
				slog.Any("marker", marker),
			)
		}

		child, err := b.next()
		if err != nil {
			return nil, err
		}

		n.body = append(n.body, child)

		if child.stop == marker.Stop {
			return n, nil
		}
	}
}

// splitCommand separates a command's name from its argument text at the
// first white space.
func splitCommand(s string) (name, args string) {
	s = strings.TrimSpace(s)

	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}

	return s[:i], strings.TrimSpace(s[i:])
}
