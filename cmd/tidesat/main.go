package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/htarver/tidesat/internal/config"
	"github.com/htarver/tidesat/internal/logging"
	"github.com/htarver/tidesat/internal/ui"
	"github.com/joho/godotenv"
)

func main() {
	// Missing .env is fine, the key may come from the environment
	_ = godotenv.Load()

	siteName := flag.String("site", "", "Name of a saved site to load into the form (e.g. Tangalooma)")
	location := flag.String("location", "", "Location to search: \"lat, lon\" or a place name")
	tideFile := flag.String("tides", "", "Path to a tide prediction file (CSV or BOM text export)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Stdout belongs to the terminal renderer, so logs go to a file
	logFile, err := logging.SetupFile("tidesat.log", cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Printf("Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	p := tea.NewProgram(ui.NewModel(cfg, *siteName, *location, *tideFile), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running application: %v\n", err)
		os.Exit(1)
	}
}
