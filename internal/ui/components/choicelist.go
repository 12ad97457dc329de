package components

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/bellring/internal/ui/theme"
)

// ChoiceList is a selectable list of answer choices. In multi mode, space
// toggles choices and any number may be checked; in single mode the cursor
// position is the selection.
type ChoiceList struct {
	Options []string
	Multi   bool
	Cursor  int
	checked map[int]bool
	Locked  bool
}

// NewChoiceList creates a choice list over the given option labels.
func NewChoiceList(options []string, multi bool) ChoiceList {
	return ChoiceList{
		Options: options,
		Multi:   multi,
		checked: make(map[int]bool),
	}
}

// Update handles keyboard navigation and toggling.
func (c ChoiceList) Update(msg tea.Msg) (ChoiceList, tea.Cmd) {
	if c.Locked {
		return c, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if c.Cursor > 0 {
			c.Cursor--
		}
	case "down", "j":
		if c.Cursor < len(c.Options)-1 {
			c.Cursor++
		}
	case "space", " ":
		if c.Multi {
			if c.checked == nil {
				c.checked = make(map[int]bool)
			}
			c.checked[c.Cursor] = !c.checked[c.Cursor]
		}
	}
	return c, nil
}

// Selections returns the labels of the chosen options: the checked set in
// multi mode, the cursor row otherwise.
func (c ChoiceList) Selections() []string {
	if !c.Multi {
		if c.Cursor >= 0 && c.Cursor < len(c.Options) {
			return []string{c.Options[c.Cursor]}
		}
		return nil
	}
	var out []string
	for i, opt := range c.Options {
		if c.checked[i] {
			out = append(out, opt)
		}
	}
	return out
}

// SetSelections restores a prior selection by label, used when re-visiting
// an answered question.
func (c *ChoiceList) SetSelections(labels []string) {
	want := make(map[string]bool, len(labels))
	for _, l := range labels {
		want[l] = true
	}
	if c.checked == nil {
		c.checked = make(map[int]bool)
	}
	for i, opt := range c.Options {
		if want[opt] {
			c.checked[i] = true
			if !c.Multi {
				c.Cursor = i
			}
		}
	}
}

// View renders the choice list.
func (c ChoiceList) View() string {
	var s string
	for i, opt := range c.Options {
		marker := ""
		if c.Multi {
			if c.checked[i] {
				marker = "[x] "
			} else {
				marker = "[ ] "
			}
		}

		prefix := "  "
		if i == c.Cursor && !c.Locked {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s%s", prefix, marker, opt)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case c.Locked:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == c.Cursor, c.Multi && c.checked[i]:
			style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		}
		s += style.Render(line) + "\n"
	}
	return s
}
