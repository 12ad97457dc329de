package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/bellring/internal/ui/theme"
)

// ErrorBanner renders a dismissable error message. The session it reports on
// stays usable underneath; the banner is advisory, not modal.
func ErrorBanner(msg string, width int) string {
	if msg == "" {
		return ""
	}
	inner := width - 4
	if inner < 10 {
		inner = 10
	}
	return theme.Banner.
		Width(inner).
		Render(msg + "  " + lipgloss.NewStyle().Foreground(theme.TextDim).Render("(esc to dismiss)"))
}
