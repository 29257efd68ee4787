package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestSettingsInitialValues(t *testing.T) {
	m := newSettingsModel("https://api.example.com", "tok")
	if m.urlInput.Value() != "https://api.example.com" {
		t.Errorf("urlInput = %q", m.urlInput.Value())
	}
	if m.tokenInput.Value() != "tok" {
		t.Errorf("tokenInput = %q", m.tokenInput.Value())
	}
	if m.inputFocused != 0 {
		t.Errorf("inputFocused = %d, want 0 (URL first)", m.inputFocused)
	}
}

func TestSettingsTabSwitchesFocus(t *testing.T) {
	m := newSettingsModel("", "")

	updated, _ := m.Update(keyMsg("tab"))
	m = updated.(settingsModel)
	if m.inputFocused != 1 {
		t.Errorf("inputFocused after tab = %d, want 1", m.inputFocused)
	}
	if !m.tokenInput.Focused() {
		t.Error("token input should be focused after tab")
	}

	updated, _ = m.Update(keyMsg("tab"))
	m = updated.(settingsModel)
	if m.inputFocused != 0 {
		t.Errorf("inputFocused after second tab = %d, want 0", m.inputFocused)
	}
}

func TestSettingsTypingGoesToFocusedField(t *testing.T) {
	m := newSettingsModel("", "")

	updated, _ := m.Update(keyMsg("x"))
	m = updated.(settingsModel)
	if m.urlInput.Value() != "x" {
		t.Errorf("urlInput = %q, want x", m.urlInput.Value())
	}

	updated, _ = m.Update(keyMsg("tab"))
	m = updated.(settingsModel)
	updated, _ = m.Update(keyMsg("y"))
	m = updated.(settingsModel)
	if m.tokenInput.Value() != "y" {
		t.Errorf("tokenInput = %q, want y", m.tokenInput.Value())
	}
	if m.urlInput.Value() != "x" {
		t.Errorf("urlInput changed to %q after switching focus", m.urlInput.Value())
	}
}

func TestSettingsSubmit(t *testing.T) {
	m := newSettingsModel("https://old", "old-tok")
	m.urlInput.SetValue("https://new")
	m.tokenInput.SetValue("new-tok")

	_, cmd := m.Update(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("enter produced no command")
	}
	msg, ok := cmd().(settingsSubmittedMsg)
	if !ok {
		t.Fatalf("command produced %T, want settingsSubmittedMsg", cmd())
	}
	if msg.apiURL != "https://new" || msg.token != "new-tok" {
		t.Errorf("submitted = (%q, %q)", msg.apiURL, msg.token)
	}
}

func TestSettingsCancel(t *testing.T) {
	m := newSettingsModel("https://old", "")
	_, cmd := m.Update(keyMsg("esc"))
	if cmd == nil {
		t.Fatal("esc produced no command")
	}
	if _, ok := cmd().(settingsCancelledMsg); !ok {
		t.Fatalf("command produced %T, want settingsCancelledMsg", cmd())
	}
}

func TestSettingsTokenFieldMasked(t *testing.T) {
	m := newSettingsModel("", "secret")
	m.width = 80
	if strings.Contains(m.View(), "secret") {
		t.Error("token rendered in cleartext")
	}
}
