package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/modelcraft/internal/pkg/tui/theme"
)

// NavItem represents a focusable panel
type NavItem struct {
	Label  string
	Active bool
}

// NavBar renders the panel tabs
type NavBar struct {
	Items  []NavItem
	styles *theme.Styles
}

// NewNavBar creates a new navigation bar
func NewNavBar(items []NavItem) *NavBar {
	return &NavBar{
		Items:  items,
		styles: theme.Default(),
	}
}

// View renders the navigation bar as toggle-style tabs
func (n NavBar) View() string {
	var items []string

	for _, item := range n.Items {
		if item.Active {
			items = append(items, n.styles.Active.Render(item.Label))
		} else {
			items = append(items, n.styles.Inactive.Render(item.Label))
		}
	}

	sep := lipgloss.NewStyle().
		Foreground(theme.DarkGray).
		Render("  /  ")

	return strings.Join(items, sep)
}
