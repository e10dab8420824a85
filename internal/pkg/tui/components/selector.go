package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/emiliopalmerini/modelcraft/internal/pkg/tui/theme"
)

// Option represents a selectable option
type Option struct {
	Label string
	Value string
}

// SelectedMsg is emitted when the user confirms an option.
type SelectedMsg struct {
	ID    string
	Value string
}

// Selector is a single-select list component
type Selector struct {
	ID          string
	Label       string
	Options     []Option
	Value       string
	Cursor      int
	Focused     bool
	Placeholder string
	styles      *theme.Styles
}

// NewSelector creates a new single-select selector
func NewSelector(id, label string, options []Option) Selector {
	return Selector{
		ID:      id,
		Label:   label,
		Options: options,
		styles:  theme.Default(),
	}
}

// Focus sets the selector as focused
func (s *Selector) Focus() {
	s.Focused = true
}

// Blur removes focus from the selector
func (s *Selector) Blur() {
	s.Focused = false
}

// SetOptions replaces the options and selected value, keeping the cursor on the value when present.
func (s *Selector) SetOptions(options []Option, value string) {
	s.Options = options
	s.Value = value
	if s.Cursor >= len(options) {
		s.Cursor = 0
	}
	for i, opt := range options {
		if opt.Value == value {
			s.Cursor = i
			return
		}
	}
}

// Update handles key events for the selector
func (s Selector) Update(msg tea.Msg) (Selector, tea.Cmd) {
	if !s.Focused || len(s.Options) == 0 {
		return s, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "k", "up":
			if s.Cursor > 0 {
				s.Cursor--
			}
		case "j", "down":
			if s.Cursor < len(s.Options)-1 {
				s.Cursor++
			}
		case " ", "enter":
			value := s.Options[s.Cursor].Value
			s.Value = value
			id := s.ID
			return s, func() tea.Msg {
				return SelectedMsg{ID: id, Value: value}
			}
		}
	}

	return s, nil
}

// View renders the selector
func (s Selector) View() string {
	var b strings.Builder

	b.WriteString(s.styles.Subtitle.Render(s.Label))
	b.WriteString("\n")

	if len(s.Options) == 0 {
		b.WriteString("  " + s.styles.Muted.Render(s.Placeholder) + "\n")
		return b.String()
	}

	for i, opt := range s.Options {
		isSelected := opt.Value == s.Value
		isCursor := s.Focused && i == s.Cursor

		indicator := " "
		if isCursor {
			indicator = s.styles.Active.Render(">")
		}

		bullet := s.styles.Muted.Render("( )")
		if isSelected {
			bullet = s.styles.Selected.Render("(*)")
		}

		var label string
		switch {
		case isCursor:
			label = s.styles.Cursor.Render(opt.Label)
		case isSelected:
			label = s.styles.Selected.Render(opt.Label)
		default:
			label = s.styles.Muted.Render(opt.Label)
		}

		b.WriteString(fmt.Sprintf("%s %s %s\n", indicator, bullet, label))
	}

	return b.String()
}
