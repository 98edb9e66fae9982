package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines a color scheme for UI output.
// Each ANSI field contains an escape code for the corresponding color category;
// the Accent and Muted fields drive lipgloss table styling.
type Theme struct {
	// Name is the identifier of the theme.
	Name string
	// Primary is the main accent color for important elements.
	Primary string
	// Success indicates positive outcomes or completed operations.
	Success string
	// Warning is used for caution messages or non-critical issues.
	Warning string
	// Error indicates failures or critical issues.
	Error string
	// Info is used for informational messages.
	Info string
	// Reset clears all formatting.
	Reset string

	// Accent colors table headers and borders.
	Accent lipgloss.TerminalColor
	// Muted colors secondary table cells.
	Muted lipgloss.TerminalColor
	// Danger colors failed rows in tables.
	Danger lipgloss.TerminalColor
}

var (
	// DarkTheme is optimized for dark terminal backgrounds.
	DarkTheme = Theme{
		Name:    "dark",
		Primary: "\033[38;5;39m",  // Bright blue
		Success: "\033[38;5;82m",  // Bright green
		Warning: "\033[38;5;220m", // Yellow
		Error:   "\033[38;5;196m", // Red
		Info:    "\033[38;5;141m", // Purple
		Reset:   "\033[0m",
		Accent:  lipgloss.Color("#FF8C00"),
		Muted:   lipgloss.Color("#A0A0A0"),
		Danger:  lipgloss.Color("#FF5555"),
	}

	// LightTheme is optimized for light terminal backgrounds.
	LightTheme = Theme{
		Name:    "light",
		Primary: "\033[38;5;27m",  // Dark blue
		Success: "\033[38;5;28m",  // Dark green
		Warning: "\033[38;5;130m", // Orange
		Error:   "\033[38;5;124m", // Dark red
		Info:    "\033[38;5;54m",  // Dark purple
		Reset:   "\033[0m",
		Accent:  lipgloss.Color("#1F4E99"),
		Muted:   lipgloss.Color("#505050"),
		Danger:  lipgloss.Color("#B00020"),
	}

	// NoColorTheme disables all color output.
	// Used when NO_COLOR is set or --no-color flag is provided.
	NoColorTheme = Theme{
		Name:   "none",
		Accent: lipgloss.NoColor{},
		Muted:  lipgloss.NoColor{},
		Danger: lipgloss.NoColor{},
	}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// GetCurrentTheme returns the currently active theme in a thread-safe manner.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme sets the currently active theme in a thread-safe manner.
// This is primarily used for testing purposes to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// ThemeNames lists the names accepted by SetTheme.
var ThemeNames = []string{"dark", "light", "none"}

// SetTheme changes the active theme by name.
// Unknown names default to dark.
func SetTheme(name string) {
	switch name {
	case "light":
		SetCurrentTheme(LightTheme)
	case "none":
		SetCurrentTheme(NoColorTheme)
	default:
		SetCurrentTheme(DarkTheme)
	}
}

// InitTheme activates the named theme unless colors are disabled, either by
// noColor or by the NO_COLOR environment variable (https://no-color.org/):
// any value, even empty, disables colors.
func InitTheme(name string, noColor bool) {
	if noColor {
		SetCurrentTheme(NoColorTheme)
		return
	}
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		SetCurrentTheme(NoColorTheme)
		return
	}
	SetTheme(name)
}

// ColorPrimary returns the primary escape code of the current theme.
func ColorPrimary() string { return GetCurrentTheme().Primary }

// ColorGreen returns the success escape code of the current theme.
func ColorGreen() string { return GetCurrentTheme().Success }

// ColorYellow returns the warning escape code of the current theme.
func ColorYellow() string { return GetCurrentTheme().Warning }

// ColorRed returns the error escape code of the current theme.
func ColorRed() string { return GetCurrentTheme().Error }

// ColorCyan returns the info escape code of the current theme.
func ColorCyan() string { return GetCurrentTheme().Info }

// ColorReset returns the reset escape code of the current theme.
func ColorReset() string { return GetCurrentTheme().Reset }

// HeaderStyle returns the lipgloss style for table headers.
func HeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(GetCurrentTheme().Accent).Padding(0, 1)
}

// CellStyle returns the lipgloss style for table cells; muted cells are
// used for secondary columns.
func CellStyle(muted bool) lipgloss.Style {
	s := lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
	if muted {
		s = s.Foreground(GetCurrentTheme().Muted)
	}
	return s
}

// FailureStyle returns the lipgloss style for failed table cells.
func FailureStyle() lipgloss.Style {
	return lipgloss.NewStyle().Padding(0, 1).Foreground(GetCurrentTheme().Danger)
}

// BorderStyle returns the lipgloss style for table borders.
func BorderStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(GetCurrentTheme().Accent)
}
