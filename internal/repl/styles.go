package repl

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#8B5CF6") // Violet
	colorSuccess = lipgloss.Color("#10B981") // Emerald
	colorError   = lipgloss.Color("#EF4444") // Red
	colorAccent  = lipgloss.Color("#F59E0B") // Amber
	colorMuted   = lipgloss.Color("#94A3B8") // Slate 400
)

var (
	logoStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	modeStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	echoStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	resultStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	astStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
)

func styleFor(kind OutputKind) lipgloss.Style {
	switch kind {
	case OutputResult:
		return resultStyle
	case OutputError:
		return errorStyle
	case OutputAST:
		return astStyle
	default:
		return modeStyle
	}
}
