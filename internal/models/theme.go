package models

// Theme identifies one of the invitation color schemes
type Theme string

const (
	ThemeClassic  Theme = "classic"
	ThemePink     Theme = "pink"
	ThemeBlue     Theme = "blue"
	ThemeGreen    Theme = "green"
	ThemeLavender Theme = "lavender"
	ThemeRed      Theme = "red"
)

// DefaultTheme is used when no valid theme has been chosen.
const DefaultTheme = ThemeClassic

// Themes lists every selectable theme in display order.
var Themes = []Theme{ThemeClassic, ThemePink, ThemeBlue, ThemeGreen, ThemeLavender, ThemeRed}

// Valid reports whether t is one of the known themes
func (t Theme) Valid() bool {
	for _, known := range Themes {
		if t == known {
			return true
		}
	}
	return false
}

// ThemeSetting is the content of theme.json
type ThemeSetting struct {
	Theme Theme `json:"theme"`
}
