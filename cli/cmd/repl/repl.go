package repl

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/press/cli/cmd"
	"github.com/ardnew/press/helper"
	"github.com/ardnew/press/lang"
	"github.com/ardnew/press/log"
	"github.com/ardnew/press/pkg"
	"github.com/ardnew/press/tree"
)

const evalPrompt = "➜ "

func helpMessage() string {
	return `
Enter a dotted path to reduce and format it, optionally followed by a
format parameter after a bar:

  page.title
  page.price | N2
  now | %Y-%m-%d
  upper | {var: page.title}

Commands:

  :help    Print this help
  :list    List visible bindings
  :clear   Clear screen
  :quit    Exit REPL

Keys:
  Tab / Shift-Tab   cycle through completions
  Space             accept the current completion
  Esc               revert the completion
  Up / Down         history navigation
  Ctrl+C on an empty line or Ctrl+D exits
`
}

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

// formatCommand formats the echo line with prompt and input styled.
func formatCommand(input string) string {
	return promptStyle.Render(evalPrompt) + inputStyle.Render(input)
}

// Repl evaluates paths interactively against metadata.
type Repl struct {
	Metadata []string `help:"Metadata document(s), merged left to right." name:"meta" short:"m" type:"existingfile"`
	Lang     string   `help:"Locale for number formatting (e.g. de-DE)."  name:"lang"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.FromContext(ctx).With(slog.String("command", "repl"))

	opts, err := cmd.LanguageOption(r.Lang)
	if err != nil {
		return err
	}

	meta, err := cmd.LoadMetadata(ctx, r.Metadata)
	if err != nil {
		return err
	}

	scope := lang.ScopeOf(meta, append(opts, lang.WithLogger(logger))...)
	defer scope.Release()

	helper.Register(scope, helper.WithLogger(logger))

	history := NewHistory(pkg.CachePath(baseHistory))
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	logger.TraceContext(ctx, "repl start",
		slog.Int("bindings", len(scope.Names())),
		slog.Int("history", history.Len()),
	)

	p := tea.NewProgram(newModel(ctx, scope, history, logger), tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

const defaultWidth = 80

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc    func() context.Context
	input      textinput.Model
	scope      *lang.Scope
	logger     log.Logger
	history    *History
	historyIdx int
	comp       completion
	width      int // terminal width for ellipsization
	quitting   bool
}

func newModel(
	ctx context.Context,
	scope *lang.Scope,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		scope:      scope,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		comp:       completion{selected: -1},
		width:      defaultWidth,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch input := m.input.Value(); {
	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(input) == "":
		b.WriteString(hintStyle.Render("Type a path, or :help for commands"))

	case len(m.comp.matches) > 0:
		b.WriteString(m.renderCandidateBar())
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl keypress",
		slog.String("key", msg.String()),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.comp.cycling = false
		m.historyIdx = m.history.Len()
		m.refresh(false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.comp.cycling || len(m.comp.matches) == 0 {
			return m.executeInput()
		}
		// Lock in the current tab candidate without executing.
		m.comp.cycling = false
		m.refresh(true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyMove(-1), nil

	case tea.KeyDown:
		return m.historyMove(1), nil

	case tea.KeyEsc:
		if m.comp.cycling {
			m.comp.cycling = false
			m.input.SetValue(m.comp.saved)
			m.input.SetCursor(m.comp.savedPos)
			m.refresh(false)
		}

		return m, nil

	case tea.KeyRunes, tea.KeySpace:
		// Space is a "breaking" key while tab-cycling.
		if m.comp.cycling && msg.String() == " " {
			m.comp.cycling = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		m.refresh(true)

		return m, cmd
	}

	// Any other key (backspace, delete, arrows, etc.) edits the input and
	// recomputes matches without auto-confirm.
	var cmd tea.Cmd

	m.comp.cycling = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refresh(false)

	return m, cmd
}

// cycle moves the selection by step (1 for Tab, -1 for Shift-Tab) and
// writes the selected candidate into the input. A lone candidate is
// completed and accepted at once.
func (m model) cycle(step int) model {
	c := &m.comp

	switch n := len(c.matches); {
	case n == 0:
		return m

	case n == 1:
		m.replaceWord(c.matches[0].Str)
		c.stop()

		return m

	case c.cycling:
		c.selected = (c.selected + step + n) % n

	default:
		c.begin(m.input.Value(), m.input.Position(), step, n)
	}

	m.replaceWord(c.matches[c.selected].Str)

	return m
}

// replaceWord substitutes text for the word being completed and moves the
// cursor behind it.
func (m *model) replaceWord(text string) {
	input := m.input.Value()
	cursor := m.comp.start + len(text)

	m.input.SetValue(input[:m.comp.start] + text + input[m.comp.end:])
	m.input.SetCursor(cursor)

	m.comp.end = cursor
}

// refresh recomputes the matches for the current input. With accept set, a
// word that already equals its only candidate is accepted, so typing a full
// name closes the candidate bar. Edits other than typing pass false.
func (m *model) refresh(accept bool) {
	c := &m.comp
	c.matches, c.candidates, c.start, c.end = m.computeMatches()

	if !c.cycling {
		c.selected = -1
	}

	if accept && len(c.matches) == 1 &&
		m.input.Value()[c.start:c.end] == c.matches[0].Str {
		c.stop()
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.input.SetValue("")
	m.comp.matches = nil

	if err := m.history.Add(input); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not save history", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	echo := tea.Println(formatCommand(input))

	if strings.HasPrefix(input, ":") {
		return m.executeCommand(echo, input)
	}

	text, err := m.eval(input)
	if err != nil {
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	return m, tea.Sequence(echo, tea.Println(text))
}

// eval reduces and formats one input line of the form "path [| param]" and
// returns the styled result.
func (m model) eval(input string) (string, error) {
	ctx := m.ctxFunc()

	path, spec, _ := strings.Cut(input, "|")
	path = strings.TrimSpace(path)

	param, err := tree.ParseParam(ctx, strings.TrimSpace(spec))
	if err != nil {
		return "", err
	}

	text, ok, err := cmd.Evaluate(ctx, m.scope, path, param)
	if err != nil {
		return "", err
	}

	m.logger.TraceContext(ctx, "repl eval",
		slog.String("path", path),
		slog.Bool("resolved", ok),
	)

	if !ok {
		return hintStyle.Render("unresolved: " + text), nil
	}

	return resultStyle.Render(text), nil
}

func (m model) executeCommand(echo tea.Cmd, input string) (model, tea.Cmd) {
	name, _, _ := strings.Cut(input, " ")

	m.logger.TraceContext(m.ctxFunc(), "repl command", slog.String("command", name))

	switch name {
	case ":q", ":quit", ":exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case ":h", ":help":
		return m, tea.Sequence(echo, tea.Println(helpMessage()))

	case ":l", ":list":
		return m, tea.Sequence(echo, tea.Println(m.listBindings()))

	case ":c", ":clear":
		return m, tea.ClearScreen

	default:
		err := ErrUnknownCmd.With(slog.String("command", name))

		return m, tea.Sequence(echo,
			tea.Println(errorStyle.Render(err.Error()+" (try :help)")))
	}
}

func (m model) listBindings() string {
	var b strings.Builder

	for _, name := range m.scope.Names() {
		v, _ := m.scope.Lookup(name)
		fmt.Fprintf(&b, "  %s %s\n", name, hintStyle.Render(preview(v)))
	}

	return b.String()
}

// historyMove steps through history by delta. Moving past the newest entry
// clears the input.
func (m model) historyMove(delta int) model {
	idx := m.historyIdx + delta
	if idx < 0 {
		return m
	}

	m.comp.cycling = false

	line, err := m.history.Entry(idx)
	if err != nil {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
	} else {
		m.historyIdx = idx
		m.input.SetValue(line)
		m.input.SetCursor(len(line))
	}

	m.refresh(false)

	return m
}
