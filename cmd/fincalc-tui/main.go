package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rgehrsitz/fincalc/internal/calculator"
	"github.com/rgehrsitz/fincalc/internal/config"
	"github.com/rgehrsitz/fincalc/internal/rates"
	"github.com/rgehrsitz/fincalc/internal/tui"
)

func main() {
	var configPath, envFile string
	root := &cobra.Command{
		Use:          "fincalc-tui",
		Short:        "Interactive terminal front end for the calculators",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, envFile)
			if err != nil {
				return err
			}

			// The alternate screen owns the terminal
			logger := cfg.NewLogger()
			logger.SetOutput(io.Discard)

			store, err := rates.OpenFileStore(cfg.Rates.File)
			if err != nil {
				return fmt.Errorf("could not open rate file %s: %w", cfg.Rates.File, err)
			}
			registry := calculator.NewRegistry(calculator.Deps{
				Resolver: rates.NewResolver(store),
				Logger:   logger,
			})

			p := tea.NewProgram(
				tui.NewModel(registry),
				tea.WithAltScreen(),
				tea.WithMouseCellMotion(),
			)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running TUI: %w", err)
			}
			return nil
		},
	}
	root.Flags().StringVar(&configPath, "config", "", "YAML config file")
	root.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file, ignored when missing")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
