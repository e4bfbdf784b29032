package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"menuboard/internal/client"
	"menuboard/internal/config"
	"menuboard/internal/loader"
	"menuboard/internal/logging"
	"menuboard/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	logFile    = flag.String("log-file", "", "Write logs here instead of discarding them")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *logFile != "" {
		cfg.Log.File = *logFile
	}

	// The terminal belongs to the UI, so logs go to a file or nowhere.
	var out io.Writer = io.Discard
	if cfg.Log.File != "" {
		f, err := logging.File(cfg.Log.File)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	logCfg := cfg.Logging()
	logCfg.Format = "json"
	log, err := logging.New(logCfg, out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	api := client.NewAPIClient(cfg.API.BaseURL,
		client.WithTimeout(cfg.API.Timeout),
		client.WithLogger(log),
	)
	machine := loader.New(api, loader.WithLogger(log))

	p := tea.NewProgram(tui.New(machine), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
