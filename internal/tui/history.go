package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/epalmerini/queuescope/internal/api"
	"github.com/epalmerini/queuescope/internal/config"
	"github.com/epalmerini/queuescope/internal/db"
)

// Tea messages for the history browser
type fetchesLoadedMsg struct {
	fetches []db.Fetch
}

type fetchDeletedMsg struct {
	fetchID int64
}

// replayFetchMsg asks the app to show an archived fetch in the dashboard.
type replayFetchMsg struct {
	fetch  db.Fetch
	events []api.Event
}

type historyModel struct {
	store  db.Store
	config config.Config

	width, height int

	fetches     []db.Fetch
	selectedIdx int
	scrollOff   int

	confirmDelete bool

	spinner spinner.Model
	loading bool
	err     error

	statusMsg     string
	statusMsgTime time.Time
}

func newHistoryModel(cfg config.Config, store db.Store) historyModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return historyModel{
		store:   store,
		config:  cfg,
		spinner: sp,
		loading: true,
	}
}

func (m historyModel) Init() tea.Cmd {
	return tea.Batch(
		m.loadFetches(),
		m.spinner.Tick,
	)
}

func (m historyModel) loadFetches() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		if store == nil {
			return errorMsg{err: fmt.Errorf("no event archive")}
		}
		fetches, err := store.ListRecentFetches(context.Background(), 100)
		if err != nil {
			return errorMsg{err: fmt.Errorf("failed to load history: %w", err)}
		}
		return fetchesLoadedMsg{fetches: fetches}
	}
}

func (m historyModel) replayFetch(fetch db.Fetch) tea.Cmd {
	store := m.store
	limit := int64(m.config.EventLimit())
	return func() tea.Msg {
		stored, err := store.ListEventsByFetch(context.Background(), fetch.ID, limit, 0)
		if err != nil {
			return errorMsg{err: fmt.Errorf("failed to load archived events: %w", err)}
		}
		events := make([]api.Event, len(stored))
		for i, e := range stored {
			events[i] = storedToEvent(e)
		}
		return replayFetchMsg{fetch: fetch, events: events}
	}
}

func (m historyModel) deleteFetch(fetchID int64) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		if err := store.DeleteFetch(context.Background(), fetchID); err != nil {
			return errorMsg{err: fmt.Errorf("failed to delete fetch: %w", err)}
		}
		return fetchDeletedMsg{fetchID: fetchID}
	}
}

func (m historyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case fetchesLoadedMsg:
		m.loading = false
		m.err = nil
		m.fetches = msg.fetches
		if m.selectedIdx >= len(m.fetches) {
			m.selectedIdx = 0
			m.scrollOff = 0
		}

	case fetchDeletedMsg:
		m.statusMsg = "Deleted"
		m.statusMsgTime = time.Now()
		return m, m.loadFetches()

	case errorMsg:
		m.loading = false
		m.err = msg.err

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case tea.KeyMsg:
		if m.confirmDelete {
			switch msg.String() {
			case "y":
				m.confirmDelete = false
				if m.selectedIdx < len(m.fetches) {
					return m, m.deleteFetch(m.fetches[m.selectedIdx].ID)
				}
			default:
				m.confirmDelete = false
			}
			return m, nil
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.selectedIdx > 0 {
				m.selectedIdx--
				if m.selectedIdx < m.scrollOff {
					m.scrollOff = m.selectedIdx
				}
			}
		case "down", "j":
			if m.selectedIdx < len(m.fetches)-1 {
				m.selectedIdx++
				visibleItems := m.height - 9
				if visibleItems > 0 && m.selectedIdx >= m.scrollOff+visibleItems {
					m.scrollOff++
				}
			}
		case "d":
			if len(m.fetches) > 0 {
				m.confirmDelete = true
			}
		case "enter":
			if m.selectedIdx < len(m.fetches) {
				return m, m.replayFetch(m.fetches[m.selectedIdx])
			}
		}
	}

	return m, nil
}

func (m historyModel) View() string {
	var sb strings.Builder

	header := headerStyle.Width(m.width - 2).Render("queuescope · history")
	sb.WriteString(header)
	sb.WriteString("\n\n")

	switch {
	case m.loading:
		sb.WriteString("  " + m.spinner.View() + " Loading history...")
	case m.err != nil:
		sb.WriteString("  " + errorStyle.Render(m.err.Error()))
	case len(m.fetches) == 0:
		sb.WriteString("  " + mutedStyle.Render("No archived fetches yet"))
	default:
		visibleItems := m.height - 9
		if visibleItems < 1 {
			visibleItems = 1
		}
		end := m.scrollOff + visibleItems
		if end > len(m.fetches) {
			end = len(m.fetches)
		}
		for i := m.scrollOff; i < end; i++ {
			f := m.fetches[i]
			cursor := "  "
			if i == m.selectedIdx {
				cursor = "> "
			}
			line := fmt.Sprintf("%s%s  %4d events  %s",
				cursor,
				f.FetchedAt.Local().Format("2006-01-02 15:04:05"),
				f.EventCount,
				mutedStyle.Render(f.APIURL),
			)
			if i == m.selectedIdx {
				line = selectedEventStyle.Render(fmt.Sprintf("%s%s  %4d events  %s",
					cursor, f.FetchedAt.Local().Format("2006-01-02 15:04:05"), f.EventCount, f.APIURL))
			}
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	if m.confirmDelete {
		sb.WriteString(errorStyle.Render("  Delete this fetch and its events? (y/n)"))
	} else {
		sb.WriteString(helpStyle.Render(
			lipgloss.JoinHorizontal(lipgloss.Left,
				helpKeyStyle.Render("j/k")+" navigate",
				"  │  ",
				helpKeyStyle.Render("enter")+" view",
				"  │  ",
				helpKeyStyle.Render("d")+" delete",
				"  │  ",
				helpKeyStyle.Render("b")+" back",
				"  │  ",
				helpKeyStyle.Render("q")+" quit",
			),
		))
	}

	if m.statusMsg != "" && time.Since(m.statusMsgTime) < 3*time.Second {
		sb.WriteString("  " + confirmationStyle.Render(m.statusMsg))
	}

	return sb.String()
}

// storedToEvent converts an archived row back into a display event.
func storedToEvent(e db.Event) api.Event {
	ev := api.Event{
		MessageID: e.MessageID,
		State:     e.State,
		URL:       e.URL,
	}
	if e.QueueName.Valid {
		ev.QueueName = e.QueueName.String
	}
	if e.Method.Valid {
		ev.Method = e.Method.String
	}
	if e.MaxRetries.Valid {
		ev.MaxRetries = int(e.MaxRetries.Int64)
	}
	if e.Body.Valid {
		ev.Body = e.Body.String
	}
	if e.EventTime.Valid {
		ev.Time = e.EventTime.Time.UnixMilli()
	}
	if e.Headers.Valid {
		var h map[string][]string
		if err := json.Unmarshal([]byte(e.Headers.String), &h); err == nil {
			ev.Header = h
		}
	}
	return ev
}
