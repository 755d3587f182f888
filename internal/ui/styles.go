package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	Primary    = lipgloss.Color("#818cf8") // Indigo accent
	Secondary  = lipgloss.Color("#7C3AED") // Violet
	Success    = lipgloss.Color("#10B981") // Emerald
	Warning    = lipgloss.Color("#F59E0B") // Amber
	Error      = lipgloss.Color("#EF4444") // Red
	Muted      = lipgloss.Color("#6B7280") // Gray
	Foreground = lipgloss.Color("#F9FAFB") // Light gray
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Warning)

	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)

	BoldStyle = lipgloss.NewStyle().
			Bold(true)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Primary)
)

// Chat styles
var (
	AuthorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Secondary)

	SelfAuthorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	TimestampStyle = lipgloss.NewStyle().
			Foreground(Muted)

	TypingStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(Muted)

	CallBannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Success)

	RingingBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(Primary).
			Padding(1, 2)
)

// Icons
const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconCall    = "📞"
	IconImage   = "🖼"
	IconMuted   = "🔇"
)

// PrintError prints an error line to stdout.
func PrintError(message string) {
	fmt.Printf("%s %s\n", ErrorStyle.Render(IconError), message)
}

// PrintSuccessf prints a success line to stdout.
func PrintSuccessf(format string, args ...any) {
	fmt.Printf("%s %s\n", SuccessStyle.Render(IconSuccess), fmt.Sprintf(format, args...))
}
