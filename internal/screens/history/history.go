// Package history lists the user's past attempts with their aggregate
// stats, straight from the server. Nothing here is cached locally.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/bellring/internal/api"
	"github.com/abhisek/bellring/internal/router"
	"github.com/abhisek/bellring/internal/screen"
	"github.com/abhisek/bellring/internal/ui/layout"
	"github.com/abhisek/bellring/internal/ui/theme"
)

type historyLoadedMsg struct {
	Stats   *api.UserStats
	Results []api.AttemptScore
	Err     error
}

// HistoryScreen displays past attempts and aggregate stats.
type HistoryScreen struct {
	client   *api.Client
	stats    *api.UserStats
	results  []api.AttemptScore
	selected int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(client *api.Client) *HistoryScreen {
	return &HistoryScreen{client: client}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		user, err := s.client.Me(ctx)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		stats, err := s.client.UserStats(ctx, user.ID)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		results, err := s.client.UserResults(ctx, user.ID)
		if err != nil {
			return historyLoadedMsg{Stats: stats, Err: err}
		}
		return historyLoadedMsg{Stats: stats, Results: results}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		}
		s.stats = msg.Stats
		s.results = msg.Results
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.results)-1 {
				s.selected++
			}
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}

	var b strings.Builder
	b.WriteString("\n")

	if s.stats != nil {
		statsLine := fmt.Sprintf("%d attempts  %d completed  %.0f%% completion  %.0f%% success",
			s.stats.TotalAttempts,
			s.stats.CompletedAttempts,
			s.stats.CompletionRate*100,
			s.stats.SuccessRate*100,
		)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(statsLine)))
		b.WriteString("\n\n")
	}

	if len(s.results) == 0 {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("No quizzes taken yet."))
		return b.String()
	}

	for i, r := range s.results {
		dateStr := "in progress"
		if r.CompletedAt != nil {
			dateStr = r.CompletedAt.Format("Jan 02, 2006 15:04")
		}

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		line := fmt.Sprintf("%s%s  quiz #%d  %d/%d correct  %.0f%%",
			prefix, dateStr, r.QuizID, r.CorrectAnswers, r.TotalQuestions, r.SuccessRate*100)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}

	return b.String()
}
