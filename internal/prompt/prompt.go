// Package prompt reads a single line from the terminal, optionally masked.
package prompt

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrCancelled = errors.New("prompt cancelled")

type model struct {
	label     string
	input     textinput.Model
	done      bool
	cancelled bool
}

func newModel(label string, secret bool) model {
	input := textinput.New()
	input.Prompt = ""
	input.CharLimit = 256
	if secret {
		input.EchoMode = textinput.EchoPassword
		input.EchoCharacter = '•'
	}
	input.Focus()
	return model{label: label, input: input}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return fmt.Sprintf("%s%s\n", m.label, m.input.View())
}

// Password reads a masked value from the terminal.
func Password(label string) (string, error) {
	return run(label, true, nil, nil)
}

func Line(label string) (string, error) {
	return run(label, false, nil, nil)
}

func run(label string, secret bool, in io.Reader, out io.Writer) (string, error) {
	opts := []tea.ProgramOption{}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}

	final, err := tea.NewProgram(newModel(label, secret), opts...).Run()
	if err != nil {
		return "", fmt.Errorf("run prompt: %w", err)
	}
	result := final.(model)
	if result.cancelled {
		return "", ErrCancelled
	}
	return result.input.Value(), nil
}
