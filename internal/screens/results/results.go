// Package results shows the outcome of a finished quiz and offers to retry
// it or start a fresh one.
package results

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/bellring/internal/api"
	"github.com/abhisek/bellring/internal/quiz"
	"github.com/abhisek/bellring/internal/router"
	"github.com/abhisek/bellring/internal/screen"
	"github.com/abhisek/bellring/internal/ui/components"
	"github.com/abhisek/bellring/internal/ui/layout"
	"github.com/abhisek/bellring/internal/ui/theme"
)

// MakeQuizScreen builds a quiz screen for a regenerated payload. Injected by
// the creating screen to keep navigation acyclic.
type MakeQuizScreen func(payload *quiz.Payload, retry quiz.RetryRequest) screen.Screen

// MakeSetupScreen builds a setup screen, optionally prefilled with a past
// quiz's settings.
type MakeSetupScreen func(prefill *quiz.RetryRequest) screen.Screen

// retryReadyMsg is sent when the retry flow has assembled a new payload for
// the same quiz under a fresh attempt.
type retryReadyMsg struct {
	Payload *quiz.Payload
	Err     error
}

// ResultsScreen displays the final score.
type ResultsScreen struct {
	client    *api.Client
	outcome   quiz.Outcome
	retry     quiz.RetryRequest
	quizID    int64
	makeQuiz  MakeQuizScreen
	makeSetup MakeSetupScreen

	menu     components.Menu
	retrying bool
	errMsg   string
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)

// New creates a ResultsScreen.
func New(client *api.Client, outcome quiz.Outcome, retry quiz.RetryRequest, quizID int64, makeQuiz MakeQuizScreen, makeSetup MakeSetupScreen) *ResultsScreen {
	s := &ResultsScreen{
		client:    client,
		outcome:   outcome,
		retry:     retry,
		quizID:    quizID,
		makeQuiz:  makeQuiz,
		makeSetup: makeSetup,
	}

	var items []components.MenuItem
	if quizID != 0 {
		items = append(items, components.MenuItem{Label: "RETRY THIS QUIZ", Action: func() tea.Cmd {
			return s.retryCmd()
		}})
	}
	items = append(items,
		components.MenuItem{Label: "NEW QUIZ", Action: func() tea.Cmd {
			return func() tea.Msg {
				prefill := s.retry
				return router.ReplaceScreenMsg{Screen: s.makeSetup(&prefill)}
			}
		}},
		components.MenuItem{Label: "HOME", Action: func() tea.Cmd {
			return func() tea.Msg { return router.PopScreenMsg{} }
		}},
	)
	s.menu = components.NewMenu(items)
	return s
}

func (s *ResultsScreen) Init() tea.Cmd {
	return nil
}

func (s *ResultsScreen) Title() string {
	return "Results"
}

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Esc", Description: "Home"},
	}
}

// retryCmd re-runs the same quiz: a fresh attempt is opened server-side,
// then the quiz's question list is re-fetched question by question. Any
// failure falls back to the setup screen prefilled with the old settings.
func (s *ResultsScreen) retryCmd() tea.Cmd {
	s.retrying = true
	client := s.client
	quizID := s.quizID
	return func() tea.Msg {
		ctx := context.Background()

		attempt, err := client.RetryAttempt(ctx, quizID)
		if err != nil {
			return retryReadyMsg{Err: err}
		}
		detail, err := client.QuizDetail(ctx, quizID)
		if err != nil {
			return retryReadyMsg{Err: err}
		}

		questions := make([]api.Question, 0, len(detail.QuestionIDs))
		for _, qid := range detail.QuestionIDs {
			q, err := client.Question(ctx, qid)
			if err != nil {
				return retryReadyMsg{Err: err}
			}
			questions = append(questions, *q)
		}

		p := &quiz.Payload{
			QuizID:    quizID,
			AttemptID: attempt.ID,
			Questions: quiz.NormalizeQuestions(questions),
		}
		if len(p.Questions) == 0 {
			return retryReadyMsg{Err: fmt.Errorf("quiz %d has no questions", quizID)}
		}
		return retryReadyMsg{Payload: p}
	}
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case retryReadyMsg:
		s.retrying = false
		if msg.Err != nil {
			// The old quiz may be gone; regenerating with the same
			// settings is the next best thing.
			s.errMsg = ""
			prefill := s.retry
			return s, func() tea.Msg {
				return router.ReplaceScreenMsg{Screen: s.makeSetup(&prefill)}
			}
		}
		payload := msg.Payload
		retry := s.retry
		return s, func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: s.makeQuiz(payload, retry)}
		}

	case tea.KeyMsg:
		if s.retrying {
			return s, nil
		}
		if msg.String() == "esc" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *ResultsScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n\n")

	if s.retrying {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("Setting up a fresh attempt..."))
		return b.String()
	}

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render("Quiz complete!"))
	b.WriteString("\n\n")

	scoreStyle := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Bold(true)
	if s.outcome.Total > 0 && s.outcome.Score*2 >= s.outcome.Total {
		scoreStyle = scoreStyle.Foreground(theme.Success)
	} else {
		scoreStyle = scoreStyle.Foreground(theme.Error)
	}
	b.WriteString(scoreStyle.Render(fmt.Sprintf("%d / %d", s.outcome.Score, s.outcome.Total)))
	b.WriteString("\n")

	if !s.outcome.Authoritative {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Italic(true).
			Render("Server results unavailable; this is a local estimate."))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.menu.View()))
	return b.String()
}
