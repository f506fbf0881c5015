package installer

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// ModelStep selects the reasoning model from a curated shortlist. All
// entries must support tool calling; that is not negotiable for this bot.
type ModelStep struct {
	list list.Model
}

func NewModelStep() Step {
	items := []list.Item{
		item{id: "openai/gpt-4o-mini", title: "GPT-4o mini", desc: "Fast and cheap, good default"},
		item{id: "openai/gpt-4o", title: "GPT-4o", desc: "Stronger reasoning, higher cost"},
		item{id: "anthropic/claude-3.5-sonnet", title: "Claude 3.5 Sonnet", desc: "Strong tool use"},
		item{id: "google/gemini-flash-1.5", title: "Gemini Flash 1.5", desc: "Large context, low latency"},
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select reasoning model"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return &ModelStep{list: l}
}

func (s *ModelStep) Init() tea.Cmd {
	return nil
}

func (s *ModelStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	s.list.SetSize(width, height-4)

	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" {
			wasFiltering := s.list.FilterState() == list.Filtering
			s.list, cmd = s.list.Update(msg)

			if wasFiltering || s.list.FilterState() == list.Filtering {
				return s, cmd
			}

			if i, ok := s.list.SelectedItem().(item); ok {
				state.EnvVars["VENUEBOT_ENGINE_MODEL"] = i.id
				return nil, nil
			}
			return s, cmd
		}
	}

	s.list, cmd = s.list.Update(msg)
	return s, cmd
}

func (s *ModelStep) View(state *InstallState) string {
	return s.list.View()
}
