package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/epalmerini/queuescope/internal/config"
	"github.com/epalmerini/queuescope/internal/db"
)

type appView int

const (
	viewProfilePicker appView = iota
	viewDashboard
	viewSettings
	viewHistory
)

// appModel owns view switching. Each view is its own bubbletea model; the
// app routes messages to whichever one is active and keeps the dashboard
// alive across settings and history excursions.
type appModel struct {
	view appView

	fileCfg   *config.FileConfig
	configDir string

	store db.Store

	picker    profilePickerModel
	dashboard dashboardModel
	settings  settingsModel
	history   historyModel

	width, height int
}

func newAppModel(fileCfg *config.FileConfig, configDir string, store db.Store) appModel {
	return appModel{
		view:      viewProfilePicker,
		fileCfg:   fileCfg,
		configDir: configDir,
		store:     store,
		picker:    newProfilePickerModel(fileCfg.Profiles),
	}
}

func newAppModelWithConfig(fileCfg *config.FileConfig, configDir string, cfg config.Config, store db.Store) appModel {
	return appModel{
		view:      viewDashboard,
		fileCfg:   fileCfg,
		configDir: configDir,
		store:     store,
		dashboard: newDashboardModel(cfg, store),
	}
}

func (m appModel) Init() tea.Cmd {
	if m.view == viewProfilePicker {
		return tea.Batch(tea.EnterAltScreen, m.picker.Init())
	}
	return m.dashboard.Init()
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Every view tracks its own size; keep them all current so
		// switching doesn't render at a stale width.
		m.dashboard, _ = updateDashboard(m.dashboard, msg)
		pm, _ := m.picker.Update(msg)
		m.picker = pm.(profilePickerModel)
		sm, _ := m.settings.Update(msg)
		m.settings = sm.(settingsModel)
		hm, _ := m.history.Update(msg)
		m.history = hm.(historyModel)
		return m, nil

	case profileSelectedMsg:
		cfg := m.fileCfg.Resolve(msg.name, m.configDir)
		loadProtoDecoder(cfg.ProtoPath)
		m.dashboard = newDashboardModel(cfg, m.store)
		m.view = viewDashboard
		return m, m.dashboard.Init()

	case openSettingsMsg:
		m.settings = newSettingsModel(m.dashboard.config.APIURL, m.dashboard.config.Token)
		m.view = viewSettings
		return m, m.settings.Init()

	case settingsSubmittedMsg:
		m.view = viewDashboard
		return m, m.dashboard.applySettings(msg.apiURL, msg.token)

	case settingsCancelledMsg:
		m.view = viewDashboard
		return m, nil

	case openHistoryMsg:
		m.history = newHistoryModel(m.dashboard.config, m.store)
		m.history.width = m.width
		m.history.height = m.height
		m.view = viewHistory
		return m, m.history.Init()

	case replayFetchMsg:
		m.dashboard.loadReplay(
			msg.fetch.FetchedAt.Local().Format("2006-01-02 15:04"),
			msg.events,
		)
		m.view = viewDashboard
		return m, nil

	case backMsg:
		switch m.view {
		case viewDashboard:
			// Leaving an archive replay goes back to history
			m.history = newHistoryModel(m.dashboard.config, m.store)
			m.history.width = m.width
			m.history.height = m.height
			m.view = viewHistory
			return m, m.history.Init()
		case viewHistory:
			m.view = viewDashboard
			return m, nil
		}
		return m, nil

	case tea.KeyMsg:
		if m.view == viewHistory && msg.String() == "b" && !m.history.confirmDelete {
			m.view = viewDashboard
			if m.dashboard.replayMode {
				// Back out of the archive entirely
				m.dashboard.replayMode = false
				m.dashboard.replayLabel = ""
				m.dashboard.loading = true
				return m, tea.Batch(m.dashboard.fetchCmd(), m.dashboard.spinner.Tick)
			}
			return m, nil
		}
	}

	switch m.view {
	case viewProfilePicker:
		pm, cmd := m.picker.Update(msg)
		m.picker = pm.(profilePickerModel)
		return m, cmd
	case viewSettings:
		sm, cmd := m.settings.Update(msg)
		m.settings = sm.(settingsModel)
		return m, cmd
	case viewHistory:
		hm, cmd := m.history.Update(msg)
		m.history = hm.(historyModel)
		return m, cmd
	default:
		var cmd tea.Cmd
		m.dashboard, cmd = updateDashboard(m.dashboard, msg)
		return m, cmd
	}
}

func updateDashboard(d dashboardModel, msg tea.Msg) (dashboardModel, tea.Cmd) {
	dm, cmd := d.Update(msg)
	return dm.(dashboardModel), cmd
}

func (m appModel) View() string {
	switch m.view {
	case viewProfilePicker:
		return m.picker.View()
	case viewSettings:
		return m.settings.View()
	case viewHistory:
		return m.history.View()
	default:
		return m.dashboard.View()
	}
}
