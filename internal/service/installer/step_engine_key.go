package installer

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// EngineKeyStep collects the reasoning endpoint API key
type EngineKeyStep struct {
	input textinput.Model
}

func NewEngineKeyStep() Step {
	ti := textinput.New()
	ti.Placeholder = "sk-or-v1-..."
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 40
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'

	return &EngineKeyStep{input: ti}
}

func (s *EngineKeyStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *EngineKeyStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" && s.input.Value() != "" {
			state.EnvVars["VENUEBOT_ENGINE_API_KEY"] = s.input.Value()
			return nil, nil
		}
	}
	return s, cmd
}

func (s *EngineKeyStep) View(state *InstallState) string {
	return fmt.Sprintf("Enter your OpenRouter API key:\n\n%s\n\n(press enter to confirm)\n", s.input.View())
}
