package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// settingsSubmittedMsg carries the edited connection settings. They apply
// only to the running session and trigger an immediate refresh.
type settingsSubmittedMsg struct {
	apiURL string
	token  string
}

type settingsCancelledMsg struct{}

type settingsModel struct {
	urlInput      textinput.Model
	tokenInput    textinput.Model
	inputFocused  int // 0 = API URL, 1 = bearer token
	width, height int
}

func newSettingsModel(apiURL, token string) settingsModel {
	urlInput := textinput.New()
	urlInput.Placeholder = "https://queue.example.com"
	urlInput.CharLimit = 200
	urlInput.Width = 60
	urlInput.SetValue(apiURL)
	urlInput.Focus()

	tokenInput := textinput.New()
	tokenInput.Placeholder = "bearer token (leave empty for none)"
	tokenInput.CharLimit = 500
	tokenInput.Width = 60
	tokenInput.EchoMode = textinput.EchoPassword
	tokenInput.SetValue(token)

	return settingsModel{
		urlInput:   urlInput,
		tokenInput: tokenInput,
	}
}

func (m settingsModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m settingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			return m, func() tea.Msg {
				return settingsCancelledMsg{}
			}
		case "tab", "shift+tab":
			m.urlInput.Blur()
			m.tokenInput.Blur()
			m.inputFocused = (m.inputFocused + 1) % 2
			if m.inputFocused == 0 {
				m.urlInput.Focus()
			} else {
				m.tokenInput.Focus()
			}
			return m, nil
		case "enter":
			apiURL := m.urlInput.Value()
			token := m.tokenInput.Value()
			return m, func() tea.Msg {
				return settingsSubmittedMsg{apiURL: apiURL, token: token}
			}
		}
	}

	var cmd tea.Cmd
	if m.inputFocused == 0 {
		m.urlInput, cmd = m.urlInput.Update(msg)
	} else {
		m.tokenInput, cmd = m.tokenInput.Update(msg)
	}
	return m, cmd
}

func (m settingsModel) View() string {
	var sb strings.Builder

	header := headerStyle.Width(m.width - 2).Render("queuescope")
	sb.WriteString(header)
	sb.WriteString("\n\n")

	sb.WriteString(fieldNameStyle.Render("  Connection settings"))
	sb.WriteString("\n\n")

	sb.WriteString("  ")
	sb.WriteString(mutedStyle.Render("API URL: "))
	sb.WriteString(m.urlInput.View())
	sb.WriteString("\n\n")

	sb.WriteString("  ")
	sb.WriteString(mutedStyle.Render("Token:   "))
	sb.WriteString(m.tokenInput.View())
	sb.WriteString("\n\n")

	sb.WriteString(helpStyle.Render("  Tab to switch fields, enter to update and refresh, esc to cancel"))

	return sb.String()
}
