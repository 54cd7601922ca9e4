package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/prodwatch/internal/logtail"
	"github.com/five82/prodwatch/internal/monitor"
	"github.com/five82/prodwatch/internal/prefs"
)

// Theme defines colors for the UI.
type Theme struct {
	Name string

	Background string
	Surface    string
	SurfaceAlt string

	Border      string
	BorderFocus string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	BarEmpty string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Surface: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)),

		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		FaintText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Faint)),

		AccentText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)),

		SuccessText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).
			Bold(true),

		WarningText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		InfoText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Info)),

		Logo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)).
			Bold(true),

		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.BorderFocus)).
			Padding(0, 1),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(1, 2),

		theme: t,
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Surface lipgloss.Style

	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Logo  lipgloss.Style
	Input lipgloss.Style
	Panel lipgloss.Style

	theme Theme
}

// KindColor returns the accent color for a panel kind.
func (t Theme) KindColor(k monitor.Kind) string {
	switch k {
	case monitor.KindSuccess:
		return t.Success
	case monitor.KindError:
		return t.Danger
	case monitor.KindInfo:
		return t.Info
	default:
		return t.Warning
	}
}

// TierColor returns the progress bar fill for a tier.
func (t Theme) TierColor(tier monitor.Tier) string {
	switch tier {
	case monitor.TierLow:
		return t.Danger
	case monitor.TierMid:
		return t.Warning
	default:
		return t.Success
	}
}

// PanelStyle returns the result panel frame for a kind.
func (s Styles) PanelStyle(k monitor.Kind) lipgloss.Style {
	return s.Panel.BorderForeground(lipgloss.Color(s.theme.KindColor(k)))
}

// TitleStyle returns the heading style for a kind.
func (s Styles) TitleStyle(k monitor.Kind) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.theme.KindColor(k))).
		Bold(true)
}

// LogLineStyle colors a captured backend log line by severity.
func (s Styles) LogLineStyle(level logtail.Level) lipgloss.Style {
	switch level {
	case logtail.LevelError:
		return s.DangerText
	case logtail.LevelWarn:
		return s.WarningText
	case logtail.LevelDebug:
		return s.FaintText
	default:
		return s.MutedText
	}
}

// GetTheme returns a theme by name. Unknown names get the dark theme.
func GetTheme(name string) Theme {
	if prefs.NormalizeTheme(name) == prefs.ThemeLight {
		return lightTheme()
	}
	return darkTheme()
}

// NextTheme returns the theme name the toggle switches to.
func NextTheme(current string) string {
	return prefs.ToggleTheme(current)
}

func darkTheme() Theme {
	// Nightfox palette: https://github.com/EdenEast/nightfox.nvim
	return Theme{
		Name: prefs.ThemeDark,

		Background: "#131a24", // bg0
		Surface:    "#192330", // bg1
		SurfaceAlt: "#212e3f", // bg2

		Border:      "#39506d", // bg4
		BorderFocus: "#719cd6", // blue

		Text:    "#cdcecf", // fg1
		Muted:   "#738091", // comment
		Faint:   "#71839b", // fg3
		Accent:  "#719cd6", // blue
		Success: "#10b981",
		Warning: "#f59e0b",
		Danger:  "#ef4444",
		Info:    "#63cdcf", // cyan

		BarEmpty: "#29394f", // bg3
	}
}

func lightTheme() Theme {
	// Dayfox palette: https://github.com/EdenEast/nightfox.nvim
	return Theme{
		Name: prefs.ThemeLight,

		Background: "#f6f2ee", // bg0
		Surface:    "#e4dcd4", // bg1
		SurfaceAlt: "#dbd1dd", // bg2

		Border:      "#aab0ad", // bg4
		BorderFocus: "#2848a9", // blue

		Text:    "#3d2b5a", // fg1
		Muted:   "#837a72", // comment
		Faint:   "#824d5b", // fg3
		Accent:  "#2848a9", // blue
		Success: "#059669",
		Warning: "#d97706",
		Danger:  "#dc2626",
		Info:    "#287980", // cyan

		BarEmpty: "#d3c7bb", // bg3
	}
}
