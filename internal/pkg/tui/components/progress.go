package components

import (
	"strings"

	"github.com/emiliopalmerini/modelcraft/internal/pkg/tui/theme"
)

// Stepper shows a row of named steps with the completed ones highlighted.
type Stepper struct {
	Steps   []string
	Current int
	styles  *theme.Styles
}

// NewStepper creates a stepper positioned at current.
func NewStepper(steps []string, current int) Stepper {
	return Stepper{
		Steps:   steps,
		Current: current,
		styles:  theme.Default(),
	}
}

// SetCurrent updates the current step
func (p *Stepper) SetCurrent(current int) {
	p.Current = current
}

// View renders the steps
func (p Stepper) View() string {
	var b strings.Builder

	for i, step := range p.Steps {
		switch {
		case i < p.Current:
			b.WriteString(p.styles.ProgressActive.Render("* " + step))
		case i == p.Current:
			b.WriteString(p.styles.Active.Render("o " + step))
		default:
			b.WriteString(p.styles.ProgressInactive.Render("- " + step))
		}
		if i < len(p.Steps)-1 {
			b.WriteString(p.styles.Muted.Render("  /  "))
		}
	}

	return b.String()
}
