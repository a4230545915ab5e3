package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kardex/kardex/pkg/config"
)

var (
	verbose    bool
	configPath string
	deckDir    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kardex",
	Short: "Spaced-repetition flashcards and typing practice on plain files",
	Long: `Kardex turns a directory of JSON, CSV or Markdown decks into a
spaced-repetition trainer. Review progress is stored separately from the
authored files, so decks stay hand-editable and version-control friendly.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&deckDir, "decks", "", "Deck directory (overrides config)")
}

// loadConfig resolves the configuration: the --config flag, then the user
// config file, then built-in defaults.
func loadConfig() config.Config {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return config.Default()
		}
	}

	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		fatal("invalid config", err)
	}
	return cfg
}

// resolveDeckDir picks the deck directory: flag first, then config.
func resolveDeckDir(cfg config.Config) string {
	if deckDir != "" {
		return deckDir
	}
	return cfg.Paths.DeckDir
}
