package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/epalmerini/queuescope/internal/config"
	"github.com/epalmerini/queuescope/internal/db"
	"github.com/epalmerini/queuescope/internal/proto"
)

// decoder is the optional protobuf decoder for payloads that are not
// base64-encoded JSON. Nil when no descriptor set is configured.
var decoder *proto.Decoder

func loadProtoDecoder(protoPath string) {
	decoder = nil
	if protoPath == "" {
		return
	}
	d, err := proto.NewDecoder(protoPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load proto descriptors: %v\n", err)
		return
	}
	decoder = d
	for _, note := range d.LoadNotes() {
		fmt.Fprintf(os.Stderr, "proto: %s\n", note)
	}
}

// Run starts the TUI. With multiple profiles and none selected it opens the
// profile picker first; otherwise it resolves config and goes straight to
// the dashboard.
func Run(fileCfg *config.FileConfig, configDir, profileName, urlOverride string) error {
	if os.Getenv("QUEUESCOPE_DEBUG") != "" {
		f, err := tea.LogToFile("queuescope-debug.log", "debug")
		if err == nil {
			defer f.Close()
		}
	}

	store, err := openStore(fileCfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: event archive unavailable: %v\n", err)
	}
	if store != nil {
		defer store.Close()
	}

	// The picker only makes sense when there is a real choice to make.
	needsPicker := profileName == "" && urlOverride == "" && len(fileCfg.Profiles) > 1

	var app appModel
	if needsPicker {
		app = newAppModel(fileCfg, configDir, store)
	} else {
		if profileName == "" && len(fileCfg.Profiles) == 1 {
			profileName = fileCfg.ProfileNames()[0]
		}
		cfg := fileCfg.Resolve(profileName, configDir)
		if urlOverride != "" {
			cfg.APIURL = urlOverride
		}
		if cfg.APIURL == "" {
			return fmt.Errorf("no API URL configured: set a profile in config.toml, QUEUESCOPE_API_URL, or pass -url")
		}
		loadProtoDecoder(cfg.ProtoPath)
		app = newAppModelWithConfig(fileCfg, configDir, cfg, store)
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// openStore opens the sqlite archive, returning a nil Store (not an error
// the caller must stop on) when it cannot be opened.
func openStore(customPath string) (db.Store, error) {
	s, err := db.NewStore(customPath)
	if err != nil {
		return nil, err
	}
	return s, nil
}
