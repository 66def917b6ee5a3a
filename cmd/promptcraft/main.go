// Package main provides the promptcraft binary. Without a subcommand it
// starts the terminal UI.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sant0-9/promptcraft/internal/catalog"
	"github.com/sant0-9/promptcraft/internal/config"
	"github.com/sant0-9/promptcraft/internal/history"
	"github.com/sant0-9/promptcraft/internal/logging"
	"github.com/sant0-9/promptcraft/internal/tui"
)

var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "promptcraft",
		Short: "Prompt engineering assistant",
		Long: `Promptcraft helps you write prompts for AI models.

Run it without arguments for the interactive terminal UI: browse the template
library, fill in a template and copy the result, or let a model complete a
guided prompt for images, video, research, outlines or music.

The subcommands expose the same engine for scripts.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// The TUI owns the terminal and logs to a file instead.
			if cmd.Parent() != nil {
				logging.SetupConsole(logLevel, os.Stderr)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		templatesCmd(),
		expandCmd(),
		parseCmd(),
		historyCmd(),
		generateCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("promptcraft version %s\n", version)
			},
		},
	)

	return cmd
}

func runTUI(logLevel string) error {
	store, err := config.NewFileStore()
	if err != nil {
		return err
	}
	cfg, err := store.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	logPath, err := config.LogPath()
	if err != nil {
		return err
	}
	closer, err := logging.Setup(logLevel, logPath)
	if err != nil {
		return err
	}
	defer closer.Close()

	log.Info().Str("version", version).Str("provider", cfg.Provider).Bool("config_file", cfg.Loaded()).Msg("starting")

	cat, err := openCatalog()
	if err != nil {
		return err
	}

	// History is optional: the UI keeps working without it.
	var hist *history.Store
	if path, err := config.HistoryPath(); err == nil {
		hist, err = history.Open(path)
		if err != nil {
			log.Warn().Err(err).Msg("history unavailable")
			hist = nil
		}
	}
	if hist != nil {
		defer hist.Close()
	}

	app := tui.NewApp(tui.Deps{
		Store:   store,
		Config:  cfg,
		Catalog: cat,
		History: hist,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		err := cat.Watch(ctx, func() { p.Send(tui.CatalogChangedMsg{}) })
		if err != nil {
			log.Warn().Err(err).Msg("template watcher stopped")
		}
	}()

	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

// loadConfig reads the saved config with environment overrides applied.
func loadConfig() (*config.Config, error) {
	store, err := config.NewFileStore()
	if err != nil {
		return nil, err
	}
	cfg, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func openCatalog() (*catalog.Catalog, error) {
	dir, err := config.TemplatesDir()
	if err != nil {
		return nil, err
	}
	cat, err := catalog.New(dir)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	return cat, nil
}

func openHistory() (*history.Store, error) {
	path, err := config.HistoryPath()
	if err != nil {
		return nil, err
	}
	return history.Open(path)
}

// parseSet turns repeated k=v flags into a map.
func parseSet(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --set %q, want key=value", p)
		}
		out[k] = v
	}
	return out, nil
}
