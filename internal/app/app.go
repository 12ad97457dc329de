package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/bellring/internal/api"
	"github.com/abhisek/bellring/internal/auth"
	"github.com/abhisek/bellring/internal/cache"
	"github.com/abhisek/bellring/internal/config"
	"github.com/abhisek/bellring/internal/router"
	"github.com/abhisek/bellring/internal/screen"
	"github.com/abhisek/bellring/internal/screens/home"
	"github.com/abhisek/bellring/internal/ui/layout"
)

// Options carries the wired dependencies into the TUI.
type Options struct {
	API      *api.Client
	Identity auth.Identity
	Cache    *cache.Store
	Config   *config.Config
	Version  string
}

// userResolvedMsg carries the signed-in user's display label for the header.
type userResolvedMsg struct {
	Label string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	opts      Options
	router    *router.Router
	width     int
	height    int
	userLabel string
}

// newAppModel creates a new AppModel with the home screen.
func newAppModel(opts Options) AppModel {
	homeScreen := home.New(opts.API, opts.Cache, opts.Config)
	return AppModel{
		opts:   opts,
		router: router.New(homeScreen),
	}
}

func (m AppModel) Init() tea.Cmd {
	ident := m.opts.Identity
	client := m.opts.API
	return func() tea.Msg {
		ctx := context.Background()
		// Prefer the server-side record; fall back to token claims.
		if client != nil {
			if user, err := client.Me(ctx); err == nil && user.Email != "" {
				return userResolvedMsg{Label: user.Email}
			}
		}
		if ident != nil {
			if u, err := ident.CurrentUser(ctx); err == nil {
				if u.Email != "" {
					return userResolvedMsg{Label: u.Email}
				}
				return userResolvedMsg{Label: u.Subject}
			}
		}
		return userResolvedMsg{}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case userResolvedMsg:
		m.userLabel = msg.Label
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.userLabel, m.width)

	var footerHints []layout.KeyHint
	if provider, ok := active.(screen.KeyHintProvider); ok {
		footerHints = provider.KeyHints()
	}
	if footerHints == nil {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
