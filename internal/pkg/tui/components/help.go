package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/emiliopalmerini/modelcraft/internal/pkg/tui/theme"
)

// HelpBar renders a horizontal help bar with key bindings
type HelpBar struct {
	Bindings []key.Binding
	styles   *theme.Styles
}

// NewHelpBar creates a new help bar
func NewHelpBar(bindings ...key.Binding) HelpBar {
	return HelpBar{
		Bindings: bindings,
		styles:   theme.Default(),
	}
}

// SetBindings updates the key bindings
func (h *HelpBar) SetBindings(bindings ...key.Binding) {
	h.Bindings = bindings
}

// View renders the enabled bindings
func (h HelpBar) View() string {
	var parts []string
	for _, kb := range h.Bindings {
		if !kb.Enabled() {
			continue
		}
		help := kb.Help()
		parts = append(parts,
			h.styles.HelpKey.Render(help.Key)+
				h.styles.Muted.Render(":"+help.Desc))
	}
	return strings.Join(parts, " ")
}
