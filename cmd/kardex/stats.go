package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kardex/kardex"
	"github.com/kardex/kardex/pkg/highscore"
	"github.com/kardex/kardex/pkg/typing"
)

var (
	statsLanguage   string
	statsDifficulty string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show mastery progress and the typing highscore board",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		ctx := context.Background()

		svc, err := kardex.New(ctx, resolveDeckDir(cfg),
			kardex.WithMustExist(true),
			kardex.WithBoxConfig(cfg.BoxConfig()),
			kardex.WithLogger(slog.Default()),
		)
		if err != nil {
			fatal("Error opening decks", err)
		}

		sets, err := svc.Repository().List(ctx)
		if err != nil {
			fatal("Error listing sets", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SET\tCARDS\tMASTERED\tDUE")
		for _, set := range sets {
			if len(set.Cards) == 0 {
				continue
			}
			sum := svc.Scheduler().Summarize(set)
			due := 0
			for range svc.Scheduler().DueCards(set, time.Now()) {
				due++
			}
			fmt.Fprintf(w, "%s\t%d\t%d (%.0f%%)\t%d\n", set.Name, sum.Total, sum.Mastered, sum.MasteryPercent(), due)
		}
		w.Flush()

		scores, err := loadScores(cfg.Paths.HighscoreFile, cfg.Defaults.MaxHighscores)
		if err != nil {
			fatal("Error loading highscores", err)
		}
		if len(scores) == 0 {
			fmt.Println("\nNo typing highscores yet. Try `kardex typing`.")
			return
		}

		fmt.Println("\nTyping highscores:")
		w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "#\tNAME\tWPM\tACCURACY\tLANG\tLEVEL\tWHEN")
		for i, s := range scores {
			fmt.Fprintf(w, "%d\t%s\t%.1f\t%.1f%%\t%s\t%s\t%s\n",
				i+1, s.Name, s.WPM, s.Accuracy, s.Language, s.Difficulty,
				s.Timestamp.Format("2006-01-02"))
		}
		w.Flush()
	},
}

// loadScores applies the optional language/difficulty filters.
func loadScores(path string, max int) ([]highscore.Score, error) {
	store := highscore.NewStore(path, max)
	if statsLanguage == "" && statsDifficulty == "" {
		return store.Load()
	}
	if statsLanguage == "" || statsDifficulty == "" {
		return nil, fmt.Errorf("filtering needs both --language and --difficulty")
	}

	lang, err := typing.ParseLanguage(statsLanguage)
	if err != nil {
		return nil, err
	}
	diff, err := typing.ParseDifficulty(statsDifficulty)
	if err != nil {
		return nil, err
	}
	return store.Filter(lang, diff)
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVar(&statsLanguage, "language", "", "Filter highscores by language")
	statsCmd.Flags().StringVar(&statsDifficulty, "difficulty", "", "Filter highscores by difficulty")
}
