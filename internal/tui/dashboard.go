package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/epalmerini/queuescope/internal/api"
	"github.com/epalmerini/queuescope/internal/config"
	"github.com/epalmerini/queuescope/internal/db"
	"github.com/epalmerini/queuescope/internal/payload"
	"github.com/epalmerini/queuescope/internal/randutil"
)

type dashboardModel struct {
	config config.Config
	client *api.Client

	events      []api.Event
	selectedIdx int
	loading     bool
	fetchErr    error
	lastFetchAt time.Time

	width, height int
	showRaw       bool

	// Replay: read-only view of an archived fetch
	replayMode  bool
	replayLabel string

	// Persistence (nil when the archive is unavailable)
	store db.Store

	// Vim command state
	vimKeys VimKeyState

	// Search
	searchMode      bool
	searchQuery     string
	searchInput     textinput.Model
	searchResults   []int
	searchResultIdx int

	// Filter (hides non-matching events)
	filterMode  bool
	filterQuery string
	filterInput textinput.Model
	filtered    []int // nil = no filter active

	// UI state
	splitRatio   float64
	compactMode  bool
	showHelp     bool
	timestampRel bool

	// Components
	spinner        spinner.Model
	detailViewport viewport.Model

	// Status messages (brief confirmations and failures)
	statusMsg     string
	statusMsgTime time.Time
	statusErr     bool
}

// Tea messages
type eventsLoadedMsg struct {
	events []api.Event
}

type fetchFailedMsg struct {
	err error
}

type clearStatusMsg struct{}

type errorMsg struct {
	err error
}

// Messages asking the app to switch views.
type openSettingsMsg struct{}
type openHistoryMsg struct{}
type backMsg struct{}

func newDashboardModel(cfg config.Config, store db.Store) dashboardModel {
	si := textinput.New()
	si.Placeholder = "Search..."
	si.CharLimit = 100
	si.Width = 30

	fi := textinput.New()
	fi.Placeholder = "Filter (state:, queue:, url:, id:, body:, re:)..."
	fi.CharLimit = 100
	fi.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	splitRatio := cfg.DefaultSplitRatio
	if splitRatio == 0 {
		splitRatio = 0.5
	}

	return dashboardModel{
		config:         cfg,
		store:          store,
		client:         api.NewClient(cfg.APIURL, cfg.Token),
		events:         make([]api.Event, 0, cfg.EventLimit()),
		loading:        true,
		detailViewport: viewport.New(80, 20),
		vimKeys:        NewVimKeyState(),
		splitRatio:     splitRatio,
		compactMode:    cfg.CompactMode,
		searchInput:    si,
		filterInput:    fi,
		spinner:        sp,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		m.fetchCmd(),
		m.spinner.Tick,
	)
}

// fetchCmd issues one refresh against the log endpoint. Overlapping
// refreshes are not coalesced or cancelled; the last one to resolve wins.
func (m dashboardModel) fetchCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		events, err := client.FetchEvents(context.Background())
		if err != nil {
			return fetchFailedMsg{err: err}
		}
		return eventsLoadedMsg{events: events}
	}
}

// archiveCmd records a completed fetch in the event archive, best-effort.
func (m dashboardModel) archiveCmd(events []api.Event) tea.Cmd {
	store := m.store
	apiURL := m.config.APIURL
	if store == nil || len(events) == 0 {
		return nil
	}
	return func() tea.Msg {
		fetchID, err := store.RecordFetch(context.Background(), apiURL, len(events))
		if err != nil {
			return nil
		}
		w := db.NewAsyncWriter(store, fetchID)
		for i := range events {
			w.Save(eventRecord(&events[i]))
		}
		w.Close()
		return nil
	}
}

func eventRecord(ev *api.Event) *db.EventRecord {
	return &db.EventRecord{
		MessageID:  ev.MessageID,
		State:      ev.State,
		URL:        ev.URL,
		QueueName:  ev.QueueName,
		Method:     ev.Method,
		MaxRetries: ev.MaxRetries,
		Header:     ev.Header,
		Body:       ev.Body,
		EventTime:  ev.Timestamp(),
	}
}

// applySettings points the dashboard at a new API origin and token and
// triggers a refresh. The edited values live only in this session.
func (m *dashboardModel) applySettings(apiURL, token string) tea.Cmd {
	m.config.APIURL = apiURL
	m.config.Token = token
	m.client = api.NewClient(apiURL, token)
	m.replayMode = false
	m.replayLabel = ""
	m.loading = true
	return tea.Batch(m.fetchCmd(), m.spinner.Tick)
}

// loadReplay swaps in an archived event list, read-only.
func (m *dashboardModel) loadReplay(label string, events []api.Event) {
	m.replayMode = true
	m.replayLabel = label
	m.events = events
	m.selectedIdx = 0
	m.detailViewport.YOffset = 0
	m.loading = false
	m.fetchErr = nil
	m.filtered = nil
	m.filterQuery = ""
	m.searchResults = nil
	m.searchQuery = ""
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Handle search mode input
		if m.searchMode {
			switch msg.String() {
			case "esc":
				m.searchMode = false
				m.searchQuery = ""
				m.searchResults = nil
				m.searchInput.Blur()
				return m, nil
			case "enter":
				m.searchMode = false
				m.searchQuery = m.searchInput.Value()
				m.searchInput.Blur()
				m.performSearch()
				return m, nil
			default:
				var cmd tea.Cmd
				m.searchInput, cmd = m.searchInput.Update(msg)
				return m, cmd
			}
		}

		// Handle filter mode input
		if m.filterMode {
			switch msg.String() {
			case "esc":
				m.filterMode = false
				m.filterQuery = ""
				m.filtered = nil
				m.filterInput.Blur()
				return m, nil
			case "enter":
				m.filterMode = false
				m.filterQuery = m.filterInput.Value()
				m.filterInput.Blur()
				m.applyFilter()
				return m, nil
			default:
				var cmd tea.Cmd
				m.filterInput, cmd = m.filterInput.Update(msg)
				return m, cmd
			}
		}

		// Handle help overlay
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
				m.showHelp = false
				return m, nil
			}
			return m, nil
		}

		// Handle special keys that bypass the vim handler
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+u":
			m.moveBy(-m.visibleItems() / 2)
			return m, nil
		case "ctrl+d":
			m.moveBy(m.visibleItems() / 2)
			return m, nil
		case "ctrl+f":
			m.moveBy(m.visibleItems())
			return m, nil
		case "ctrl+b":
			m.moveBy(-m.visibleItems())
			return m, nil
		case "ctrl+j":
			m.detailViewport.YOffset++
			return m, nil
		case "ctrl+k":
			if m.detailViewport.YOffset > 0 {
				m.detailViewport.YOffset--
			}
			return m, nil
		case "up":
			m.moveBy(-1)
			return m, nil
		case "down":
			m.moveBy(1)
			return m, nil
		}

		// Process through vim key handler
		result := m.vimKeys.ProcessKey(msg.String())
		if result.Action == "pending" {
			return m, nil
		}

		switch result.Action {
		case "move_down":
			m.moveBy(result.Count)
		case "move_up":
			m.moveBy(-result.Count)
		case "go_top":
			m.jumpTo(0)
		case "go_bottom":
			if len(m.events) > 0 {
				m.jumpTo(len(m.events) - 1)
			}
		case "search_start":
			m.searchMode = true
			m.searchInput.SetValue("")
			m.searchInput.Focus()
			return m, textinput.Blink
		case "search_next":
			m.nextSearchResult()
		case "search_prev":
			m.prevSearchResult()
		case "filter_start":
			m.filterMode = true
			m.filterInput.SetValue(m.filterQuery)
			m.filterInput.Focus()
			return m, textinput.Blink
		case "refresh":
			if !m.replayMode {
				m.loading = true
				return m, tea.Batch(m.fetchCmd(), m.spinner.Tick)
			}
		case "yank":
			return m, m.yankEvent()
		case "export":
			return m, m.exportEvents()
		case "settings":
			if !m.replayMode {
				return m, func() tea.Msg { return openSettingsMsg{} }
			}
		case "history":
			if m.store != nil {
				return m, func() tea.Msg { return openHistoryMsg{} }
			}
		case "toggle_compact":
			m.compactMode = !m.compactMode
		case "toggle_timestamp":
			m.timestampRel = !m.timestampRel
		case "toggle_raw":
			m.showRaw = !m.showRaw
		case "toggle_help":
			m.showHelp = !m.showHelp
		case "resize_left":
			if m.splitRatio > 0.2 {
				m.splitRatio -= 0.05
				_ = config.SaveSplitRatio(m.config.ConfigDir, m.splitRatio)
			}
		case "resize_right":
			if m.splitRatio < 0.8 {
				m.splitRatio += 0.05
				_ = config.SaveSplitRatio(m.config.ConfigDir, m.splitRatio)
			}
		case "clear":
			m.events = m.events[:0]
			m.selectedIdx = 0
			m.filtered = nil
			m.searchResults = nil
		case "back":
			if m.replayMode {
				return m, func() tea.Msg { return backMsg{} }
			}
		case "quit":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		contentHeight := m.height - 5 // header(3) + status(1) + help(1)
		if contentHeight < 3 {
			contentHeight = 3
		}
		listWidth := int(float64(m.width) * m.splitRatio)
		if listWidth < 20 {
			listWidth = 20
		}
		detailWidth := m.width - listWidth - 1
		if detailWidth < 20 {
			detailWidth = 20
		}

		m.detailViewport.Width = detailWidth - 4
		m.detailViewport.Height = contentHeight - 2

	case eventsLoadedMsg:
		if m.replayMode {
			// A refresh resolving after entering the archive must not
			// clobber it
			return m, nil
		}
		m.loading = false
		m.fetchErr = nil
		m.lastFetchAt = time.Now()
		m.events = msg.events
		if limit := m.config.EventLimit(); len(m.events) > limit {
			// Already sorted newest first; keep the newest
			m.events = m.events[:limit]
		}
		if m.selectedIdx >= len(m.events) {
			m.selectedIdx = 0
		}
		m.detailViewport.YOffset = 0
		m.searchResults = nil
		m.applyFilter()
		cmds = append(cmds, m.archiveCmd(m.events))
		cmds = append(cmds, m.setStatusMsg(fmt.Sprintf("Fetched %d events", len(m.events)), false))

	case fetchFailedMsg:
		m.loading = false
		m.fetchErr = msg.err
		cmds = append(cmds, m.setStatusMsg("Fetch failed: "+msg.err.Error(), true))

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case clearStatusMsg:
		m.statusMsg = ""
	}

	return m, tea.Batch(cmds...)
}

// jumpTo selects idx, snapping to the nearest visible event when a filter
// is active.
func (m *dashboardModel) jumpTo(idx int) {
	if m.filtered != nil && !isVisible(m.filtered, idx) {
		idx = nextVisible(m.filtered, idx-1)
	}
	if idx != m.selectedIdx {
		m.detailViewport.YOffset = 0
	}
	m.selectedIdx = idx
}

func (m *dashboardModel) moveBy(delta int) {
	if len(m.events) == 0 {
		m.selectedIdx = 0
		return
	}

	newIdx := m.selectedIdx
	if m.filtered != nil {
		steps := delta
		if steps < 0 {
			steps = -steps
		}
		for i := 0; i < steps; i++ {
			if delta > 0 {
				newIdx = nextVisible(m.filtered, newIdx)
			} else {
				newIdx = prevVisible(m.filtered, newIdx)
			}
		}
	} else {
		newIdx += delta
		if newIdx < 0 {
			newIdx = 0
		}
		if newIdx >= len(m.events) {
			newIdx = len(m.events) - 1
		}
	}

	if newIdx != m.selectedIdx {
		m.detailViewport.YOffset = 0
	}
	m.selectedIdx = newIdx
}

func (m dashboardModel) visibleItems() int {
	// Account for borders (2) in event list
	items := m.height - 6
	if items < 1 {
		return 1
	}
	return items
}

// visibleIndices returns indices of events shown in the list pane.
func (m dashboardModel) visibleIndices() []int {
	if m.filtered != nil {
		return m.filtered
	}
	indices := make([]int, len(m.events))
	for i := range m.events {
		indices[i] = i
	}
	return indices
}

func (m *dashboardModel) applyFilter() {
	if m.filterQuery == "" {
		m.filtered = nil
		return
	}
	m.filtered = computeFilteredIndices(m.events, m.filterQuery)
	if m.filtered == nil {
		m.filtered = []int{}
	}
	if len(m.filtered) > 0 && !isVisible(m.filtered, m.selectedIdx) {
		m.selectedIdx = m.filtered[0]
		m.detailViewport.YOffset = 0
	}
}

func (m *dashboardModel) performSearch() {
	m.searchResults = nil
	m.searchResultIdx = 0
	if m.searchQuery == "" {
		return
	}

	field, query := parseSearchQuery(m.searchQuery)

	var re *regexp.Regexp
	if field == "re" {
		var err error
		re, err = compileSearchRegex(query)
		if err != nil {
			return
		}
	} else {
		query = strings.ToLower(query)
	}

	for _, i := range m.visibleIndices() {
		if matchesSearch(m.events[i], field, query, re) {
			m.searchResults = append(m.searchResults, i)
		}
	}

	// Jump to first result
	if len(m.searchResults) > 0 {
		m.selectedIdx = m.searchResults[0]
		m.detailViewport.YOffset = 0
	}
}

func (m *dashboardModel) nextSearchResult() {
	if len(m.searchResults) == 0 {
		return
	}
	m.searchResultIdx = (m.searchResultIdx + 1) % len(m.searchResults)
	m.selectedIdx = m.searchResults[m.searchResultIdx]
	m.detailViewport.YOffset = 0
}

func (m *dashboardModel) prevSearchResult() {
	if len(m.searchResults) == 0 {
		return
	}
	m.searchResultIdx--
	if m.searchResultIdx < 0 {
		m.searchResultIdx = len(m.searchResults) - 1
	}
	m.selectedIdx = m.searchResults[m.searchResultIdx]
	m.detailViewport.YOffset = 0
}

func (m *dashboardModel) yankEvent() tea.Cmd {
	if len(m.events) == 0 || m.selectedIdx >= len(m.events) {
		return nil
	}

	ev := m.events[m.selectedIdx]

	type yankEvent struct {
		MessageID  string              `json:"messageId"`
		State      string              `json:"state"`
		URL        string              `json:"url"`
		QueueName  string              `json:"queueName,omitempty"`
		Method     string              `json:"method,omitempty"`
		MaxRetries int                 `json:"maxRetries,omitempty"`
		Time       time.Time           `json:"time"`
		Header     map[string][]string `json:"header,omitempty"`
		Body       any                 `json:"body,omitempty"`
	}

	yank := yankEvent{
		MessageID:  ev.MessageID,
		State:      ev.State,
		URL:        ev.URL,
		QueueName:  ev.QueueName,
		Method:     ev.Method,
		MaxRetries: ev.MaxRetries,
		Time:       ev.Timestamp(),
		Header:     ev.Header,
		Body:       payload.Decode(ev.Body),
	}

	content, _ := json.MarshalIndent(yank, "", "  ")

	if err := clipboard.WriteAll(string(content)); err != nil {
		return m.setStatusMsg("Copy failed: "+err.Error(), true)
	}
	return m.setStatusMsg("Copied to clipboard", false)
}

func (m *dashboardModel) exportEvents() tea.Cmd {
	indices := m.visibleIndices()
	if len(indices) == 0 {
		return m.setStatusMsg("No events to export", true)
	}

	type exportEvent struct {
		MessageID  string              `json:"messageId"`
		State      string              `json:"state"`
		URL        string              `json:"url"`
		QueueName  string              `json:"queueName,omitempty"`
		Method     string              `json:"method,omitempty"`
		MaxRetries int                 `json:"maxRetries,omitempty"`
		Time       time.Time           `json:"time"`
		Header     map[string][]string `json:"header,omitempty"`
		Body       any                 `json:"body,omitempty"`
		RawBody    string              `json:"rawBody,omitempty"`
	}

	exports := make([]exportEvent, 0, len(indices))
	for _, i := range indices {
		ev := m.events[i]
		ee := exportEvent{
			MessageID:  ev.MessageID,
			State:      ev.State,
			URL:        ev.URL,
			QueueName:  ev.QueueName,
			Method:     ev.Method,
			MaxRetries: ev.MaxRetries,
			Time:       ev.Timestamp(),
			Header:     ev.Header,
			RawBody:    ev.Body,
		}
		if decoded := payload.Decode(ev.Body); decoded != nil {
			if _, isRaw := decoded.(string); !isRaw {
				ee.Body = decoded
			}
		}
		exports = append(exports, ee)
	}

	filename := fmt.Sprintf("queuescope-export-%s-%s.json",
		time.Now().Format("20060102-150405"), randutil.RandomSuffix())
	data, _ := json.MarshalIndent(exports, "", "  ")
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return m.setStatusMsg("Export failed: "+err.Error(), true)
	}
	return m.setStatusMsg(fmt.Sprintf("Exported to %s", filename), false)
}

func (m *dashboardModel) setStatusMsg(msg string, isErr bool) tea.Cmd {
	m.statusMsg = msg
	m.statusErr = isErr
	m.statusMsgTime = time.Now()
	return tea.Tick(3*time.Second, func(_ time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return m.spinner.View() + " Loading..."
	}

	if m.showHelp {
		return m.renderHelpOverlay()
	}

	contentHeight := m.height - 5
	if contentHeight < 3 {
		contentHeight = 3
	}

	listWidth := int(float64(m.width) * m.splitRatio)
	if listWidth < 20 {
		listWidth = 20
	}
	detailWidth := m.width - listWidth - 1
	if detailWidth < 20 {
		detailWidth = 20
	}

	title := "queuescope"
	if m.replayMode {
		title = "queuescope · archive " + m.replayLabel
	}
	header := headerStyle.Width(m.width - 2).Render(title)

	status := m.renderStatusBar()

	eventList := m.renderEventList(listWidth, contentHeight)
	detailPanel := m.renderDetailPanel(detailWidth, contentHeight)

	content := lipgloss.JoinHorizontal(lipgloss.Top, eventList, detailPanel)

	var bottomBar string
	switch {
	case m.searchMode:
		bottomBar = helpStyle.Render("Search: ") + m.searchInput.View() + helpStyle.Render("  (Enter to search, Esc to cancel)")
	case m.filterMode:
		bottomBar = helpStyle.Render("Filter: ") + m.filterInput.View() + helpStyle.Render("  (Enter to apply, Esc to clear)")
	default:
		bottomBar = m.renderHelpBar()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, status, content, bottomBar)
}

func (m dashboardModel) renderStatusBar() string {
	var connStatus string
	switch {
	case m.loading:
		connStatus = statusBarStyle.Render(m.spinner.View() + " Fetching...")
	case m.fetchErr != nil:
		connStatus = failStyle.Render("○ " + m.fetchErr.Error())
	case m.replayMode:
		connStatus = mutedStyle.Render("◆ Archive")
	default:
		connStatus = okStyle.Render("● Live")
	}

	counters := statusBarStyle.Render(fmt.Sprintf("%d events", len(m.events))) +
		"  │  " + statusBarStyle.Render(fmt.Sprintf("%d active", activeCount(m.events))) +
		"  │  " + statusBarStyle.Render(fmt.Sprintf("%d queues", uniqueQueueCount(m.events)))

	target := statusBarStyle.Render(m.config.APIURL)

	filterStatus := ""
	if m.filterQuery != "" {
		filterStatus = mutedStyle.Render(fmt.Sprintf(" [filter %d/%d]", len(m.filtered), len(m.events)))
	}

	searchStatus := ""
	if m.searchQuery != "" {
		if len(m.searchResults) > 0 {
			searchStatus = statusBarStyle.Render(fmt.Sprintf(" [%d/%d]", m.searchResultIdx+1, len(m.searchResults)))
		} else {
			searchStatus = mutedStyle.Render(" (no matches)")
		}
	}

	statusMsgDisplay := ""
	if m.statusMsg != "" && time.Since(m.statusMsgTime) < 3*time.Second {
		if m.statusErr {
			statusMsgDisplay = "  " + errorStyle.Render(m.statusMsg)
		} else {
			statusMsgDisplay = "  " + confirmationStyle.Render(m.statusMsg)
		}
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		connStatus,
		filterStatus,
		searchStatus,
		statusMsgDisplay,
		"  │  ",
		counters,
		"  │  ",
		target,
	)
}

func (m dashboardModel) renderEventList(width, height int) string {
	innerHeight := height - 2
	if innerHeight < 1 {
		innerHeight = 1
	}

	indices := m.visibleIndices()

	if len(indices) == 0 {
		var hint string
		if m.filterQuery != "" {
			hint = fmt.Sprintf("No events match %q", m.filterQuery)
		} else {
			hint = "Press r to refresh"
		}
		emptyContent := strings.Join([]string{
			"",
			emptyStateStyle.Render("No events"),
			"",
			mutedStyle.Render(fmt.Sprintf("Watching: %s", m.config.APIURL)),
			mutedStyle.Render(hint),
			"",
			mutedStyle.Render("Press ? for help"),
		}, "\n")
		return eventListStyle.Width(width).Height(height).Render(emptyContent)
	}

	// Position of the selection within the visible list
	selectedPos := 0
	for p, i := range indices {
		if i == m.selectedIdx {
			selectedPos = p
			break
		}
	}

	startPos := 0
	if selectedPos >= innerHeight {
		startPos = selectedPos - innerHeight + 1
	}
	endPos := startPos + innerHeight
	if endPos > len(indices) {
		endPos = len(indices)
	}

	items := make([]string, 0, innerHeight)
	innerWidth := width - 4 // Account for border and padding

	for p := startPos; p < endPos; p++ {
		i := indices[p]
		ev := m.events[i]

		prefix := "  "
		if i == m.selectedIdx {
			prefix = "> "
		}

		glyph := stateStyle(ev.State).Render("●")

		var line string
		if m.compactMode {
			label := truncate(eventLabel(ev), innerWidth-5)
			line = fmt.Sprintf("%s%s %s", prefix, glyph, label)
		} else {
			var ts string
			if m.timestampRel {
				ts = formatRelativeTime(ev.Timestamp())
			} else {
				ts = ev.Timestamp().Local().Format("15:04:05")
			}
			label := truncate(eventLabel(ev), innerWidth-14)
			line = fmt.Sprintf("%s%s %s %s", prefix, glyph, ts, label)
		}

		if i == m.selectedIdx {
			line = selectedEventStyle.Render(line)
		}

		items = append(items, line)
	}

	content := strings.Join(items, "\n")
	return eventListStyle.Width(width).Height(height).Render(content)
}

// eventLabel is the one-line identity of an event in the list pane.
func eventLabel(ev api.Event) string {
	if ev.QueueName != "" {
		return ev.QueueName + " → " + ev.URL
	}
	return ev.URL
}

func (m dashboardModel) renderDetailPanel(width, height int) string {
	innerHeight := height - 2
	if innerHeight < 1 {
		innerHeight = 1
	}

	if len(m.events) == 0 || m.selectedIdx >= len(m.events) {
		return detailPanelStyle.Width(width).Height(height).Render(
			mutedStyle.Render("Select an event to view details"),
		)
	}

	ev := m.events[m.selectedIdx]
	innerWidth := width - 4
	var lines []string

	// EVENT section
	lines = append(lines, fieldNameStyle.Render("EVENT"))
	lines = append(lines, dividerStyle.Render(strings.Repeat("─", innerWidth)))
	lines = append(lines, fieldNameStyle.Render("Message ID: ")+ev.MessageID)
	lines = append(lines, fieldNameStyle.Render("State: ")+stateStyle(ev.State).Render(ev.State))
	if ev.QueueName != "" {
		lines = append(lines, fieldNameStyle.Render("Queue: ")+ev.QueueName)
	}
	destination := ev.URL
	if ev.Method != "" {
		destination = ev.Method + " " + ev.URL
	}
	lines = append(lines, fieldNameStyle.Render("Destination: ")+destination)
	lines = append(lines, fieldNameStyle.Render("Time: ")+ev.Timestamp().Local().Format(time.RFC3339))
	if ev.MaxRetries > 0 {
		lines = append(lines, fieldNameStyle.Render("Max retries: ")+fmt.Sprintf("%d", ev.MaxRetries))
	}
	if ev.Body != "" {
		size := int64(len(ev.Body))
		if raw := payload.Raw(ev.Body); raw != nil {
			size = int64(len(raw))
		}
		lines = append(lines, fieldNameStyle.Render("Payload size: ")+formatBytes(size))
	}
	lines = append(lines, "")

	// HEADERS section
	if len(ev.Header) > 0 {
		lines = append(lines, fieldNameStyle.Render("HEADERS"))
		lines = append(lines, dividerStyle.Render(strings.Repeat("─", innerWidth)))
		headerKeys := make([]string, 0, len(ev.Header))
		for k := range ev.Header {
			headerKeys = append(headerKeys, k)
		}
		sort.Strings(headerKeys)
		for _, k := range headerKeys {
			lines = append(lines, fmt.Sprintf("%s: %s", fieldNameStyle.Render(k), strings.Join(ev.Header[k], ", ")))
		}
		lines = append(lines, "")
	}

	// PAYLOAD section
	if ev.Body != "" {
		lines = append(lines, fieldNameStyle.Render("PAYLOAD"))
		lines = append(lines, dividerStyle.Render(strings.Repeat("─", innerWidth)))
		lines = append(lines, m.renderPayload(ev)...)
	}

	allLines := strings.Split(strings.Join(lines, "\n"), "\n")

	scrollOffset := m.detailViewport.YOffset
	if scrollOffset < 0 {
		scrollOffset = 0
	}
	if scrollOffset > len(allLines)-innerHeight {
		scrollOffset = len(allLines) - innerHeight
		if scrollOffset < 0 {
			scrollOffset = 0
		}
	}

	endIdx := scrollOffset + innerHeight
	if endIdx > len(allLines) {
		endIdx = len(allLines)
	}

	visibleLines := allLines[scrollOffset:endIdx]
	for len(visibleLines) < innerHeight {
		visibleLines = append(visibleLines, "")
	}

	content := strings.Join(visibleLines, "\n")
	return detailPanelStyle.Width(width).Height(height).Render(content)
}

// renderPayload shows the decoded body. Decoding is lazy and best-effort:
// base64 + JSON first, then the proto decoder if one is loaded, and the raw
// encoded string as the fallback.
func (m dashboardModel) renderPayload(ev api.Event) []string {
	raw := payload.Raw(ev.Body)

	if m.showRaw {
		if raw != nil {
			return []string{formatHex(raw)}
		}
		return []string{ev.Body}
	}

	decoded := payload.Decode(ev.Body)
	if s, isRaw := decoded.(string); isRaw {
		// Not base64 JSON; try protobuf before giving up
		if decoder != nil && raw != nil {
			if fields, err := decoder.DecodeWithQueueHint(raw, ev.QueueName); err == nil {
				return []string{formatJSONSyntax(fields)}
			}
		}
		return []string{s}
	}
	return []string{formatJSONSyntax(decoded)}
}

func (m dashboardModel) renderHelpBar() string {
	keys := []struct{ key, desc string }{
		{"j/k", "nav"},
		{"r", "refresh"},
		{"/", "search"},
		{"f", "filter"},
		{"y", "copy"},
		{"v", "raw"},
		{"s", "settings"},
		{"h", "history"},
		{"?", "help"},
		{"q", "quit"},
	}

	var parts []string
	for _, k := range keys {
		parts = append(parts, helpKeyStyle.Render(k.key)+" "+k.desc)
	}

	return helpStyle.Render(strings.Join(parts, " │ "))
}

func (m dashboardModel) renderHelpOverlay() string {
	var lines []string

	lines = append(lines, fieldNameStyle.Render("Keybindings"))
	lines = append(lines, "")

	sections := []struct {
		name string
		keys []struct{ key, desc string }
	}{
		{
			name: "Navigation",
			keys: []struct{ key, desc string }{
				{"j / k", "Move down / up"},
				{"5j / 10k", "Move 5 down / 10 up"},
				{"gg", "Go to top"},
				{"G", "Go to bottom"},
				{"Ctrl+U / Ctrl+D", "Half page up / down"},
				{"Ctrl+F / Ctrl+B", "Full page up / down"},
				{"Ctrl+J / Ctrl+K", "Scroll detail pane"},
			},
		},
		{
			name: "Search & filter",
			keys: []struct{ key, desc string }{
				{"/", "Start search"},
				{"n / N", "Next / previous result"},
				{"f", "Filter event list"},
				{"Esc", "Clear search / filter"},
			},
		},
		{
			name: "Actions",
			keys: []struct{ key, desc string }{
				{"r", "Refresh event log"},
				{"y", "Copy event to clipboard"},
				{"e", "Export events to JSON"},
				{"s", "Connection settings"},
				{"h", "Fetch history"},
				{"c", "Clear event list"},
			},
		},
		{
			name: "View",
			keys: []struct{ key, desc string }{
				{"v", "Toggle raw/decoded payload"},
				{"t", "Toggle compact mode"},
				{"T", "Toggle timestamp format"},
				{"H / L", "Resize panes left / right"},
				{"?", "Toggle this help"},
			},
		},
		{
			name: "Control",
			keys: []struct{ key, desc string }{
				{"b", "Back (from archive view)"},
				{"q / Ctrl+C", "Quit"},
			},
		},
	}

	for _, section := range sections {
		lines = append(lines, helpCategoryStyle.Render(section.name))
		for _, k := range section.keys {
			lines = append(lines, fmt.Sprintf("  %-18s %s", helpKeyStyle.Render(k.key), k.desc))
		}
		lines = append(lines, "")
	}

	lines = append(lines, mutedStyle.Render("Press ? or Esc to close"))

	content := strings.Join(lines, "\n")

	overlayWidth := 50
	overlayHeight := len(lines) + 4
	if overlayHeight > m.height-4 {
		overlayHeight = m.height - 4
	}

	overlay := helpOverlayStyle.Width(overlayWidth).Render(content)

	hPad := (m.width - overlayWidth) / 2
	vPad := (m.height - overlayHeight) / 2
	if hPad < 0 {
		hPad = 0
	}
	if vPad < 0 {
		vPad = 0
	}

	return lipgloss.NewStyle().
		PaddingLeft(hPad).
		PaddingTop(vPad).
		Render(overlay)
}

func truncate(s string, max int) string {
	if max <= 3 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

func formatHex(data []byte) string {
	var sb strings.Builder
	for i, b := range data {
		if i > 0 && i%16 == 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%02x ", b))
		if i > 500 {
			sb.WriteString("...")
			break
		}
	}
	return sb.String()
}

func formatRelativeTime(t time.Time) string {
	d := time.Since(t)
	if d < time.Second {
		return "now"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%dd", int(d.Hours()/24))
}

// formatJSONSyntax formats a decoded payload with syntax highlighting
func formatJSONSyntax(data any) string {
	var sb strings.Builder
	formatValueSyntax(&sb, data, 0)
	return sb.String()
}

func formatValueSyntax(sb *strings.Builder, v any, indent int) {
	indentStr := strings.Repeat("  ", indent)

	switch val := v.(type) {
	case map[string]any:
		sb.WriteString("{\n")
		// Sort keys for stable output
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for i, k := range keys {
			sb.WriteString(indentStr)
			sb.WriteString("  ")
			sb.WriteString(jsonKeyStyle.Render(fmt.Sprintf("%q", k)))
			sb.WriteString(": ")
			formatValueSyntax(sb, val[k], indent+1)
			if i < len(keys)-1 {
				sb.WriteString(",")
			}
			sb.WriteString("\n")
		}
		sb.WriteString(indentStr)
		sb.WriteString("}")
	case []any:
		sb.WriteString("[\n")
		for i, item := range val {
			sb.WriteString(indentStr)
			sb.WriteString("  ")
			formatValueSyntax(sb, item, indent+1)
			if i < len(val)-1 {
				sb.WriteString(",")
			}
			sb.WriteString("\n")
		}
		sb.WriteString(indentStr)
		sb.WriteString("]")
	case string:
		sb.WriteString(jsonStringStyle.Render(fmt.Sprintf("%q", val)))
	case float64:
		sb.WriteString(jsonNumberStyle.Render(fmt.Sprintf("%v", val)))
	case int:
		sb.WriteString(jsonNumberStyle.Render(fmt.Sprintf("%d", val)))
	case bool:
		sb.WriteString(jsonBoolStyle.Render(fmt.Sprintf("%v", val)))
	case nil:
		sb.WriteString(jsonNullStyle.Render("null"))
	default:
		if jsonBytes, err := json.Marshal(val); err == nil {
			sb.WriteString(string(jsonBytes))
		} else {
			fmt.Fprintf(sb, "%v", val)
		}
	}
}
