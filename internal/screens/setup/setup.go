// Package setup walks the user from topic selection to a freshly generated
// quiz: pick a root category, optionally narrow to a child, choose how many
// questions, then hand the generated quiz to the quiz view.
package setup

import (
	"context"
	"encoding/json"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/bellring/internal/api"
	"github.com/abhisek/bellring/internal/cache"
	"github.com/abhisek/bellring/internal/config"
	"github.com/abhisek/bellring/internal/quiz"
	"github.com/abhisek/bellring/internal/router"
	"github.com/abhisek/bellring/internal/screen"
	quizscreen "github.com/abhisek/bellring/internal/screens/quiz"
	"github.com/abhisek/bellring/internal/ui/components"
	"github.com/abhisek/bellring/internal/ui/layout"
	"github.com/abhisek/bellring/internal/ui/theme"
)

type phase int

const (
	phaseLoading phase = iota
	phaseRoot
	phaseChild
	phaseCount
	phaseGenerating
)

type setupLoadedMsg struct {
	User  *api.User
	Roots []api.Category
	Err   error
}

type childrenMsg struct {
	Children []api.Category
	Err      error
}

type generatedMsg struct {
	Payload *quiz.Payload
	Retry   quiz.RetryRequest
	Err     error
}

// SetupScreen drives quiz configuration and generation.
type SetupScreen struct {
	client *api.Client
	store  *cache.Store
	cfg    *config.Config

	// prefill, when set, re-generates with a past quiz's settings instead
	// of walking the selection steps.
	prefill *quiz.RetryRequest

	phase    phase
	user     *api.User
	roots    []api.Category
	children []api.Category
	selected quiz.RetryRequest
	cursor   int
	count    components.TextInput
	errMsg   string
}

var _ screen.Screen = (*SetupScreen)(nil)
var _ screen.KeyHintProvider = (*SetupScreen)(nil)

// New creates a SetupScreen. A non-nil prefill skips straight to generation.
func New(client *api.Client, store *cache.Store, cfg *config.Config, prefill *quiz.RetryRequest) *SetupScreen {
	return &SetupScreen{
		client:  client,
		store:   store,
		cfg:     cfg,
		prefill: prefill,
		count:   components.NewTextInput("5", true, 2),
	}
}

func (s *SetupScreen) Init() tea.Cmd {
	return s.loadCmd()
}

func (s *SetupScreen) Title() string {
	return "New Quiz"
}

func (s *SetupScreen) KeyHints() []layout.KeyHint {
	switch s.phase {
	case phaseCount:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Generate"},
			{Key: "Esc", Description: "Back"},
		}
	default:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Esc", Description: "Back"},
		}
	}
}

// loadCmd resolves the signed-in user and the root categories.
func (s *SetupScreen) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		user, err := s.client.Me(ctx)
		if err != nil {
			return setupLoadedMsg{Err: err}
		}
		roots, err := s.client.RootCategories(ctx)
		if err != nil {
			return setupLoadedMsg{User: user, Err: err}
		}
		return setupLoadedMsg{User: user, Roots: roots}
	}
}

func (s *SetupScreen) childrenCmd(categoryID int64) tea.Cmd {
	return func() tea.Msg {
		children, err := s.client.ChildCategories(context.Background(), categoryID)
		return childrenMsg{Children: children, Err: err}
	}
}

// generateCmd requests a quiz for the chosen settings and normalizes the
// response into a session payload.
func (s *SetupScreen) generateCmd(req quiz.RetryRequest) tea.Cmd {
	userID := ""
	if s.user != nil {
		userID = s.user.ID
	}
	mode := s.cfg.Quiz.ModeOverride
	return func() tea.Msg {
		categoryID := req.CategoryID
		if req.ChildCategoryID != 0 {
			categoryID = req.ChildCategoryID
		}
		gen, err := s.client.GenerateQuiz(context.Background(), api.GenerateRequest{
			UserID:       userID,
			CategoryID:   categoryID,
			Total:        req.QuestionCount,
			ModeOverride: mode,
		})
		if err != nil {
			return generatedMsg{Err: err}
		}
		p := &quiz.Payload{
			QuizID:    gen.QuizID,
			AttemptID: gen.AttemptID,
			Questions: quiz.NormalizeQuestions(gen.Questions),
		}
		return generatedMsg{Payload: p, Retry: req}
	}
}

func (s *SetupScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case setupLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.user = msg.User
		s.roots = msg.Roots
		if s.prefill != nil {
			s.phase = phaseGenerating
			return s, s.generateCmd(*s.prefill)
		}
		if len(s.roots) == 0 {
			s.errMsg = "no categories available"
			return s, nil
		}
		s.phase = phaseRoot
		return s, nil

	case childrenMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			s.phase = phaseRoot
			return s, nil
		}
		if len(msg.Children) == 0 {
			// Leaf category; go straight to the count step.
			s.phase = phaseCount
			return s, s.count.Init()
		}
		s.children = msg.Children
		s.cursor = 0
		s.phase = phaseChild
		return s, nil

	case generatedMsg:
		return s.handleGenerated(msg)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.phase == phaseCount {
		var cmd tea.Cmd
		s.count, cmd = s.count.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *SetupScreen) handleGenerated(msg generatedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = "Could not generate quiz: " + msg.Err.Error()
		if s.prefill != nil {
			// Let the user adjust settings manually instead of looping.
			s.prefill = nil
		}
		if len(s.roots) > 0 {
			s.phase = phaseRoot
		}
		return s, nil
	}

	// Remember the settings so the finished quiz can be retried.
	if s.store != nil {
		if raw, err := json.Marshal(msg.Retry); err == nil {
			_ = s.store.Put(context.Background(), cache.SlotQuizConfig, raw)
		}
	}

	payload := msg.Payload
	retry := msg.Retry
	client := s.client
	store := s.store
	cfg := s.cfg
	makeSetup := func(prefill *quiz.RetryRequest) screen.Screen {
		return New(client, store, cfg, prefill)
	}
	return s, func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: quizscreen.New(client, store, payload, retry, makeSetup)}
	}
}

func (s *SetupScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" && key == "esc" {
		s.errMsg = ""
		if s.phase == phaseLoading {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil
	}

	switch s.phase {
	case phaseRoot:
		switch key {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.roots)-1 {
				s.cursor++
			}
		case "enter":
			root := s.roots[s.cursor]
			s.selected = quiz.RetryRequest{CategoryID: root.ID}
			return s, s.childrenCmd(root.ID)
		}

	case phaseChild:
		switch key {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.children) {
				s.cursor++
			}
		case "enter":
			// Index 0 is "all of this category", children follow.
			if s.cursor > 0 && s.cursor <= len(s.children) {
				s.selected.ChildCategoryID = s.children[s.cursor-1].ID
			}
			s.phase = phaseCount
			return s, s.count.Init()
		case "esc":
			s.phase = phaseRoot
			s.cursor = 0
			return s, nil
		}

	case phaseCount:
		switch key {
		case "enter":
			n, err := s.count.NumericValue()
			if err != nil || n <= 0 {
				n = s.cfg.Quiz.DefaultCount
			}
			s.selected.QuestionCount = n
			s.phase = phaseGenerating
			return s, s.generateCmd(s.selected)
		case "esc":
			s.phase = phaseRoot
			s.cursor = 0
			return s, nil
		default:
			var cmd tea.Cmd
			s.count, cmd = s.count.Update(msg)
			return s, cmd
		}
	}
	return s, nil
}

func (s *SetupScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n\n")

	if s.errMsg != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			components.ErrorBanner(s.errMsg, min(width, 70))))
		b.WriteString("\n\n")
	}

	switch s.phase {
	case phaseLoading:
		b.WriteString(centered(width, theme.TextDim, "Loading categories..."))

	case phaseRoot:
		b.WriteString(centered(width, theme.Text, "Pick a topic"))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			renderList(categoryNames(s.roots), s.cursor)))

	case phaseChild:
		b.WriteString(centered(width, theme.Text, "Narrow it down?"))
		b.WriteString("\n\n")
		options := append([]string{"All of this topic"}, categoryNames(s.children)...)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			renderList(options, s.cursor)))

	case phaseCount:
		b.WriteString(centered(width, theme.Text, "How many questions?"))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.count.View()))

	case phaseGenerating:
		b.WriteString(centered(width, theme.TextDim, "Generating your quiz..."))
	}

	return b.String()
}

func categoryNames(cats []api.Category) []string {
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.Name)
	}
	return names
}

func renderList(options []string, cursor int) string {
	var b strings.Builder
	for i, opt := range options {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == cursor {
			prefix = "▸ "
			style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(style.Render(prefix + opt))
		b.WriteString("\n")
	}
	return b.String()
}

func centered(width int, fg color.Color, text string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(fg).
		Bold(true).
		Render(text)
}
