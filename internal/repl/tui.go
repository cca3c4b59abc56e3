package repl

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	tuiHeaderHeight = 2
	tuiFooterHeight = 3
)

// tuiModel is the bubbletea model of the full-screen shell.
type tuiModel struct {
	ctx     context.Context
	session *Session
	prompt  string

	input    textinput.Model
	viewport viewport.Model
	ready    bool

	lines []string
}

func newTUIModel(ctx context.Context, session *Session, prompt string) tuiModel {
	ti := textinput.New()
	ti.Placeholder = `program, e.g. _[0:3] + "..."`
	ti.Prompt = prompt
	ti.CharLimit = 4096
	ti.Focus()

	return tuiModel{
		ctx:     ctx,
		session: session,
		prompt:  prompt,
		input:   ti,
		lines:   []string{modeStyle.Render(Banner)},
	}
}

func (m tuiModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}

	case tea.WindowSizeMsg:
		height := msg.Height - tuiHeaderHeight - tuiFooterHeight
		if height < 1 {
			height = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.viewport.YPosition = tuiHeaderHeight
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.input.Width = msg.Width - len(m.prompt) - 1
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit hands the current line to the session.
func (m tuiModel) submit() (tea.Model, tea.Cmd) {
	line := m.input.Value()
	m.input.Reset()

	m.lines = append(m.lines, echoStyle.Render(m.input.Prompt+line))
	for _, o := range m.session.Handle(m.ctx, line) {
		m.lines = append(m.lines, styleFor(o.Kind).Render(o.String()))
	}
	if m.session.Done() {
		return m, tea.Quit
	}

	if m.session.Mode() == ModeInput {
		m.input.Prompt = InputPrompt
		m.input.Placeholder = "input (empty line for a new program)"
	} else {
		m.input.Prompt = m.prompt
		m.input.Placeholder = ""
	}
	m.refresh()
	return m, nil
}

func (m *tuiModel) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

func (m tuiModel) View() string {
	if !m.ready {
		return "Starting stringed..."
	}

	var b strings.Builder
	b.WriteString(logoStyle.Render("stringed"))
	b.WriteString("  ")
	b.WriteString(modeStyle.Render(m.session.Mode().String() + " mode"))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: submit • :ast :history :quit • esc: exit"))
	return b.String()
}

// RunTUI runs session in a full-screen terminal UI.
func RunTUI(ctx context.Context, session *Session, prompt string) error {
	p := tea.NewProgram(newTUIModel(ctx, session, prompt), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
