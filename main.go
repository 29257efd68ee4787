package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/epalmerini/queuescope/internal/config"
	"github.com/epalmerini/queuescope/internal/tui"
	"github.com/epalmerini/queuescope/internal/xdg"
)

var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "Show version")
	profile := flag.String("profile", "", "Connection profile from config.toml")
	apiURL := flag.String("url", "", "API base URL (overrides config and env)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("queuescope %s\n", version)
		return
	}

	// A local .env is a development convenience; missing is fine.
	_ = godotenv.Load()

	configDir, err := xdg.Dir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving config directory: %v\n", err)
		os.Exit(1)
	}

	fileCfg, err := config.LoadFileConfig(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := tui.Run(fileCfg, configDir, *profile, *apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
