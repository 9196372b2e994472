// Package prefs persists local display preferences. These are not security
// relevant and sit outside the session's ordering guarantees.
package prefs

// Theme is the display-theme flag persisted across sessions.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

type Repo interface {
	Get() (Theme, error)
	Set(theme Theme) error
}
