package installer

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// YelpKeyStep collects the venue search API key
type YelpKeyStep struct {
	input textinput.Model
}

func NewYelpKeyStep() Step {
	ti := textinput.New()
	ti.Placeholder = "Fusion API key"
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 40
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'

	return &YelpKeyStep{input: ti}
}

func (s *YelpKeyStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *YelpKeyStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" && s.input.Value() != "" {
			state.EnvVars["VENUEBOT_YELP_API_KEY"] = s.input.Value()
			return nil, nil
		}
	}
	return s, cmd
}

func (s *YelpKeyStep) View(state *InstallState) string {
	return fmt.Sprintf("Enter your Yelp Fusion API key:\n\n%s\n\n(press enter to confirm)\n", s.input.View())
}
