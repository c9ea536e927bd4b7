package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/stencil/resolve"
	"github.com/ardnew/stencil/template"
	"github.com/ardnew/stencil/template/lexer"
)

// position classifies the template syntax surrounding the cursor.
type position int

const (
	inText        position = iota // literal template text
	inExpr                        // between expression delimiters
	inCommandName                 // after a command tag prefix
	inCommandArgs                 // after a command name, before the tag end
)

//nolint:gochecknoglobals
var (
	openTagPrefix  = "<" + lexer.DefaultCommandPrefix
	closeTagPrefix = "</" + lexer.DefaultCommandPrefix
)

// locate classifies the text before cursor. For [inCommandArgs] it also
// returns the name of the command being written.
func locate(input string, cursor int) (pos position, command string) {
	if cursor > len(input) {
		cursor = len(input)
	}

	prefix := input[:cursor]

	expr := strings.LastIndex(prefix, lexer.DefaultExpressionOpen)
	if (expr > 0 && prefix[expr-1] == '\\') ||
		(expr >= 0 && strings.Contains(prefix[expr:], lexer.DefaultExpressionClose)) {
		expr = -1
	}

	tag := max(
		strings.LastIndex(prefix, openTagPrefix),
		strings.LastIndex(prefix, closeTagPrefix),
	)
	if tag >= 0 && strings.Contains(prefix[tag:], ">") {
		tag = -1
	}

	switch {
	case expr > tag:
		return inExpr, ""

	case tag >= 0:
		_, rest, _ := strings.Cut(prefix[tag:], lexer.DefaultCommandPrefix)

		name, _, hasArgs := strings.Cut(rest, " ")
		if !hasArgs {
			return inCommandName, ""
		}

		return inCommandArgs, name
	}

	return inText, ""
}

// isWordBoundary returns true if the rune is a word delimiter for completion
// purposes. This includes whitespace, the member-access dot, template
// delimiters and expr-lang operator/punctuation characters.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'(', ')', '[', ']', '{', '}',
		'+', '-', '*', '/', '%',
		'<', '>', '=', '!',
		'&', '|', ',', '?', ':', ';',
		'$', '"', '\'':
		return true
	}

	return false
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input.
// Returns an empty word when the cursor sits on a boundary (after a space,
// between dots, start of line, etc.).
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	// Walk backward from cursor to find word start.
	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	// Walk forward from cursor to find word end.
	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the dot-separated prefix path leading up to the current
// word, considering only the contiguous member-access chain. For input
// "${x + user.address.ci" with the word "ci", the parent path is
// "user.address". Returns "" for top-level words.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimRight(prefix, ".")
	end := len(prefix)
	pos := end

	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return strings.TrimSpace(prefix[pos:end])
}

// completionCandidates returns the completions valid at wordStart.
func (m model) completionCandidates(input string, wordStart int) []string {
	pos, command := locate(input, wordStart)

	switch pos {
	case inCommandName:
		return template.Commands()

	case inCommandArgs:
		if parent := parentPath(input, wordStart); parent != "" {
			return m.members(parent)
		}

		return append(template.Arguments(command), m.names()...)

	case inExpr:
		if parent := parentPath(input, wordStart); parent != "" {
			return m.members(parent)
		}

		return append(m.names(), exprLangBuiltinNames()...)
	}

	return nil
}

// names returns the top-level names visible to a template: root object
// members and the default loop variables.
func (m model) names() []string {
	names := append(m.scope.Names(),
		template.DefaultLoopVar,
		template.DefaultLoopStatus,
		template.DefaultLoopIndex,
	)

	slices.Sort(names)

	return slices.Compact(names)
}

// members returns the member names of the value at parent. The default loop
// status variable completes to the members of [template.LoopStatus] when no
// root defines it.
func (m model) members(parent string) []string {
	v := m.scope.Lookup(parent)
	if v == nil && parent == template.DefaultLoopStatus {
		v = &template.LoopStatus{}
	}

	names := resolve.Members(v)
	slices.Sort(names)

	return names
}

// computeMatches calculates the fuzzy match results for the word at the cursor.
// It returns the matches (ranked best-first), the candidate list, and the word
// boundaries. When the current word is empty at the top level, it returns nil
// matches. When the word is empty after a dot (member access), it returns all
// children as matches.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := m.input.Position()

	if strings.HasPrefix(input, ctrlPrefix) {
		word, ws, we := wordBounds(input, cursor)
		if word == "" || ws != len(ctrlPrefix) {
			return nil, nil, ws, we
		}

		return fuzzy.Find(word, ctrlCommands), ctrlCommands, ws, we
	}

	word, ws, we := wordBounds(input, cursor)
	wordStart, wordEnd = ws, we
	candidates = m.completionCandidates(input, wordStart)

	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	if word == "" {
		if parentPath(input, wordStart) == "" {
			return nil, nil, wordStart, wordEnd
		}

		// After a dot, list every member unfiltered.
		matches = make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, candidates, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. Each candidate is rendered with its matched
// characters highlighted. The selected candidate (when tabbing) uses the
// selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		selected := tabActive && i == suggIdx
		rendered := renderCandidate(match, selected)
		candidateWidth := lipgloss.Width(rendered)

		entryWidth := candidateWidth
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted. Builtin functions are displayed with a "()" suffix.
func renderCandidate(match fuzzy.Match, selected bool) string {
	baseStyle := suggestionStyle
	highlightStyle := matchStyle

	if selected {
		baseStyle = selectedStyle
		highlightStyle = selectedMatchStyle
	}

	matchSet := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matchSet[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		ch := string(r)
		if matchSet[i] {
			b.WriteString(highlightStyle.Render(ch))
		} else {
			b.WriteString(baseStyle.Render(ch))
		}
	}

	if _, ok := exprLangBuiltins[match.Str]; ok {
		b.WriteString(baseStyle.Render("()"))
	}

	return b.String()
}
