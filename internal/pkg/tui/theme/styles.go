package theme

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Styles contains all shared TUI styles
type Styles struct {
	// Text styles
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style

	// Interactive elements
	Cursor   lipgloss.Style
	Selected lipgloss.Style
	Active   lipgloss.Style
	Inactive lipgloss.Style

	// Help and hints
	Help    lipgloss.Style
	HelpKey lipgloss.Style

	// Layout
	Container lipgloss.Style
	Card      lipgloss.Style
	FocusCard lipgloss.Style

	// Progress indicators
	ProgressActive   lipgloss.Style
	ProgressInactive lipgloss.Style

	// Status indicators
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

var (
	defaultStyles *Styles
	once          sync.Once
)

// Default returns the singleton default Styles instance
func Default() *Styles {
	once.Do(func() {
		defaultStyles = newStyles()
	})
	return defaultStyles
}

func newStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(White),

		Subtitle: lipgloss.NewStyle().
			Foreground(Teal).
			Bold(true),

		Body: lipgloss.NewStyle().
			Foreground(LightGray),

		Muted: lipgloss.NewStyle().
			Foreground(DimGray),

		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(White),

		Cursor: lipgloss.NewStyle().
			Foreground(BrightTeal).
			Bold(true),

		Selected: lipgloss.NewStyle().
			Foreground(Teal),

		Active: lipgloss.NewStyle().
			Foreground(BrightTeal).
			Bold(true),

		Inactive: lipgloss.NewStyle().
			Foreground(DimGray),

		Help: lipgloss.NewStyle().
			Foreground(DimGray).
			MarginTop(1),

		HelpKey: lipgloss.NewStyle().
			Foreground(LightGray).
			Bold(true),

		Container: lipgloss.NewStyle().
			Padding(1, 2),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DarkGray).
			Padding(0, 1),

		FocusCard: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Teal).
			Padding(0, 1),

		ProgressActive: lipgloss.NewStyle().
			Foreground(Teal),

		ProgressInactive: lipgloss.NewStyle().
			Foreground(DimGray),

		Success: lipgloss.NewStyle().
			Foreground(Success),

		Warning: lipgloss.NewStyle().
			Foreground(Warning),

		Error: lipgloss.NewStyle().
			Foreground(Error),
	}
}
