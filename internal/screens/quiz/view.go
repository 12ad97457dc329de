package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/bellring/internal/quiz"
	"github.com/abhisek/bellring/internal/ui/components"
	"github.com/abhisek/bellring/internal/ui/theme"
)

func (s *QuizScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render(fmt.Sprintf("\n\n\n  %s\n\n  Press any key to go back.", s.errMsg))
	}
	if s.session == nil {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("\n\n\n  Loading quiz...")
	}
	if s.confirmQuit {
		return renderQuitConfirm(width)
	}
	if s.completing {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("\n\n\n  Scoring your quiz...")
	}
	return s.renderQuestion(width)
}

func (s *QuizScreen) renderQuestion(width int) string {
	sess := s.session
	slot := sess.CurrentSlot()

	var b strings.Builder

	// Progress line.
	progress := components.NewProgressBar(
		fmt.Sprintf("  Question %d of %d", sess.Current+1, sess.Len()),
		float64(sess.SubmittedCount())/float64(sess.Len()),
		false,
		width-8,
	)
	b.WriteString(progress.View())
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	if sess.ErrorMsg != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			components.ErrorBanner(sess.ErrorMsg, min(width, 76))))
		b.WriteString("\n\n")
	}

	// Prompt.
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render(slot.Prompt))
	b.WriteString("\n\n")

	// Answer area.
	switch {
	case slot.Type.ChoiceBearing() && len(slot.Choices) == 0:
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("Loading choices..."))
	case slot.Type.ChoiceBearing():
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.choices.View()))
		if slot.Type == quiz.TypeMultiSelect {
			b.WriteString("\n")
			b.WriteString(lipgloss.NewStyle().
				Width(width).
				Align(lipgloss.Center).
				Foreground(theme.TextDim).
				Render("Space toggles, Enter submits"))
		}
	default:
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			"Answer: "+s.input.View()))
	}
	b.WriteString("\n\n")

	if s.submitting {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("Submitting..."))
		b.WriteString("\n")
	}

	// Submitted marker and free-text verdict.
	if sess.Submitted(slot.ID) {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Success).
			Render("Answer locked in."))
		b.WriteString("\n")
		if sc := slot.Scoring; sc != nil {
			verdict := lipgloss.NewStyle().Foreground(theme.Error).Bold(true).Render("Not quite")
			if sc.Correct {
				verdict = lipgloss.NewStyle().Foreground(theme.Success).Bold(true).Render("Correct!")
			}
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, verdict))
			b.WriteString("\n")
			if sc.Feedback != "" {
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
					lipgloss.NewStyle().
						Width(min(width-8, 70)).
						Foreground(theme.TextDim).
						Render(sc.Feedback)))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render("Leave this quiz?"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("Your progress is saved; you can resume from the home menu."))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Success).
		Render("[Y] Yes, leave"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Render("[N] No, keep going"))

	return b.String()
}
