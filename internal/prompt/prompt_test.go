package prompt

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func typeText(m tea.Model, text string) tea.Model {
	for _, r := range text {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestPasswordIsMasked(t *testing.T) {
	var m tea.Model = newModel("Password: ", true)
	m = typeText(m, "secret")

	view := m.View()
	if strings.Contains(view, "secret") {
		t.Fatalf("expected masked input, got %q", view)
	}
	if !strings.HasPrefix(view, "Password: ") {
		t.Fatalf("expected label, got %q", view)
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected quit command on enter")
	}
	result := m.(model)
	if !result.done || result.input.Value() != "secret" {
		t.Fatalf("unexpected result: done=%v value=%q", result.done, result.input.Value())
	}
	if m.View() != "" {
		t.Fatalf("expected empty view after submit")
	}
}

func TestEscCancels(t *testing.T) {
	var m tea.Model = newModel("Name: ", false)
	m = typeText(m, "Ada")
	if !strings.Contains(m.View(), "Ada") {
		t.Fatalf("expected plain input to echo, got %q", m.View())
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !m.(model).cancelled {
		t.Fatalf("expected cancelled prompt")
	}
}
