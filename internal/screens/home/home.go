package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/bellring/internal/api"
	"github.com/abhisek/bellring/internal/cache"
	"github.com/abhisek/bellring/internal/config"
	"github.com/abhisek/bellring/internal/quiz"
	"github.com/abhisek/bellring/internal/router"
	"github.com/abhisek/bellring/internal/screen"
	"github.com/abhisek/bellring/internal/screens/history"
	quizscreen "github.com/abhisek/bellring/internal/screens/quiz"
	"github.com/abhisek/bellring/internal/screens/setup"
	"github.com/abhisek/bellring/internal/ui/components"
	"github.com/abhisek/bellring/internal/ui/theme"
)

// HomeScreen is the main menu of the application.
type HomeScreen struct {
	menu      components.Menu
	resumable bool
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen. The resume cache is probed once here so the
// menu can offer to pick up an unfinished quiz.
func New(client *api.Client, store *cache.Store, cfg *config.Config) *HomeScreen {
	resumable := false
	var savedRetry quiz.RetryRequest
	if store != nil {
		ctx := context.Background()
		if raw, err := store.Get(ctx, cache.SlotActiveQuiz); err == nil && raw != nil {
			if _, err := quiz.ParsePayload(raw); err == nil {
				resumable = true
			}
		}
		// The selection settings that produced the quiz ride along so the
		// results screen can offer retry and prefilled new-quiz after a
		// restart. An unreadable slot just means no prefill.
		if raw, err := store.Get(ctx, cache.SlotQuizConfig); err == nil && raw != nil {
			if r, err := quiz.ParseRetryRequest(raw); err == nil {
				savedRetry = *r
			}
		}
	}

	makeSetup := func(prefill *quiz.RetryRequest) screen.Screen {
		return setup.New(client, store, cfg, prefill)
	}

	var items []components.MenuItem
	if resumable {
		items = append(items, components.MenuItem{Label: "RESUME QUIZ", Action: func() tea.Cmd {
			return func() tea.Msg {
				// No navigation payload: the quiz view falls back to the cache.
				return router.PushScreenMsg{Screen: quizscreen.New(client, store, nil, savedRetry, makeSetup)}
			}
		}})
	}
	items = append(items,
		components.MenuItem{Label: "START QUIZ", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: setup.New(client, store, cfg, nil)}
			}
		}},
		components.MenuItem{Label: "HISTORY", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(client)}
			}
		}},
		components.MenuItem{Label: "QUIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	)

	return &HomeScreen{
		menu:      components.NewMenu(items),
		resumable: resumable,
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render("BELL RINGER"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("Quiz yourself before the bell rings"))
	b.WriteString("\n\n")

	if h.resumable {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Accent).
			Render("You have an unfinished quiz."))
		b.WriteString("\n\n")
	}

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, h.menu.View()))
	return b.String()
}

func (h *HomeScreen) Title() string {
	return "Home"
}
