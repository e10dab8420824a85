package theme

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	// Primary colors
	Teal       = lipgloss.Color("#14B8A6")
	BrightTeal = lipgloss.Color("#5EEAD4")
	DarkTeal   = lipgloss.Color("#0F766E")

	// Neutrals
	White     = lipgloss.Color("#FFFFFF")
	LightGray = lipgloss.Color("#9CA3AF")
	DimGray   = lipgloss.Color("#6B7280")
	DarkGray  = lipgloss.Color("#374151")

	// Semantic colors
	Success = lipgloss.Color("#22C55E")
	Warning = lipgloss.Color("#F59E0B")
	Error   = lipgloss.Color("#EF4444")
)
