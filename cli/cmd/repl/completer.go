package repl

import (
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/press/lang"
)

// ctrlCommands are the available commands, entered with a leading colon.
var ctrlCommands = []string{":clear", ":help", ":list", ":quit"}

// completion is the tab-completion state of the input line.
type completion struct {
	matches    fuzzy.Matches // ranked best first
	candidates []string
	start, end int  // byte bounds of the word being completed
	selected   int  // index into matches, or -1
	cycling    bool // Tab has been pressed since the last edit
	saved      string
	savedPos   int // input and cursor before cycling began, restored by Esc
}

// begin starts cycling through n matches, selecting the first for a forward
// step and the last for a backward one.
func (c *completion) begin(input string, cursor, step, n int) {
	c.cycling = true
	c.saved, c.savedPos = input, cursor

	c.selected = 0
	if step < 0 {
		c.selected = n - 1
	}
}

// stop accepts the current word and closes the candidate bar.
func (c *completion) stop() {
	c.cycling = false
	c.selected = -1
	c.matches = nil
}

// isWordBoundary reports whether r delimits completion words: whitespace,
// the member-access dot, and the parameter bar. Hyphens and slashes are part
// of words because metadata keys may contain them.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t', '|', '{', '}', '[', ']', ',':
		return true
	}

	return false
}

// wordBounds returns the word at the cursor and its byte boundaries within
// input. The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

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

// parentPath returns the dotted path leading up to the word starting at
// wordStart. For "page.au" with the word "au" it is "page"; for a top-level
// word it is empty.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimRight(prefix, ".")

	pos := len(prefix)
	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return prefix[pos:]
}

// childCandidates returns the names that complete a word under parent: the
// visible bindings for an empty parent, or the keys of the mapping parent
// reduces to.
func childCandidates(scope *lang.Scope, parent string) []string {
	if parent == "" {
		return scope.Names()
	}

	m, ok := lang.Reduce(lang.Var(parent), scope).AsMap()
	if !ok {
		return nil
	}

	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// computeMatches calculates the fuzzy matches for the word at the cursor,
// ranked best first, along with the candidates and the word boundaries.
// An empty top-level word has no matches so the hint stays visible; an empty
// word after a dot lists every member.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())

	if strings.HasPrefix(input, ":") {
		if wordStart != 0 {
			return nil, nil, wordStart, wordEnd
		}

		return fuzzy.Find(word, ctrlCommands), ctrlCommands, wordStart, wordEnd
	}

	// Only the path before the parameter bar completes against the scope.
	if bar := strings.IndexByte(input, '|'); bar >= 0 && wordStart > bar {
		return nil, nil, wordStart, wordEnd
	}

	parent := parentPath(input, wordStart)
	candidates = childCandidates(m.scope, parent)

	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	if word == "" {
		if parent == "" {
			return nil, nil, wordStart, wordEnd
		}

		matches = make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, candidates, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within width. Matched characters are highlighted, and the selected
// candidate uses the selected style while tab-cycling.
func (m model) renderCandidateBar() string {
	if len(m.comp.matches) == 0 || m.width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range m.comp.matches {
		rendered := m.renderCandidate(match, m.comp.cycling && i == m.comp.selected)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if i > 0 && used+entryWidth+ellipsisWidth > m.width {
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

// renderCandidate renders one candidate with its matched characters
// highlighted. Callable bindings are displayed with a "|" suffix to show
// they take a parameter.
func (m model) renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if m.isCallable(match.Str) {
		b.WriteString(base.Render(" |"))
	}

	return b.String()
}

// isCallable reports whether the top-level binding name holds a callable.
// Nested candidates are never marked.
func (m model) isCallable(name string) bool {
	if parentPath(m.input.Value(), m.comp.start) != "" {
		return false
	}

	v, ok := m.scope.Lookup(name)

	return ok && v.Kind() == lang.KindCallable
}

// preview returns a one-line summary of a value for the :list command.
func preview(v lang.Value) string {
	const maxPreview = 40

	switch v.Kind() {
	case lang.KindCallable:
		return "<callable>"

	case lang.KindMap:
		m, _ := v.AsMap()

		return "{ " + itemCount(len(m)) + " }"

	case lang.KindList:
		l, _ := v.AsList()

		return "[ " + itemCount(len(l)) + " ]"
	}

	s := v.String()
	if utf8.RuneCountInString(s) > maxPreview {
		s = string([]rune(s)[:maxPreview-3]) + "..."
	}

	return s
}

func itemCount(n int) string {
	if n == 1 {
		return "1 item"
	}

	return strconv.Itoa(n) + " items"
}
