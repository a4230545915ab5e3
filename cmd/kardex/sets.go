package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kardex/kardex"
	"github.com/kardex/kardex/pkg/core"
)

var (
	setsJSON bool
	setsTag  string
)

var setsCmd = &cobra.Command{
	Use:   "sets",
	Short: "Inspect the learning sets in the deck directory",
}

var setsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all learning sets",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		repo := openRepo()

		// The metadata index answers listings without parsing unchanged
		// files.
		indexer, ok := repo.(core.Indexer)
		if !ok {
			fatal("Error listing sets", fmt.Errorf("repository has no index"))
		}
		infos, err := indexer.Index(context.Background())
		if err != nil {
			fatal("Error listing sets", err)
		}

		if setsTag != "" {
			var filtered []core.SetInfo
			for _, info := range infos {
				for _, t := range info.Tags {
					if t == setsTag {
						filtered = append(filtered, info)
						break
					}
				}
			}
			infos = filtered
		}

		if setsJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(infos); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		for _, info := range infos {
			items := fmt.Sprintf("%d cards", info.Cards)
			if info.Questions > 0 {
				items += fmt.Sprintf(", %d questions", info.Questions)
			}
			line := fmt.Sprintf("%s - %s (%s)", info.ID, info.Name, items)
			if len(info.Tags) > 0 {
				line += " [" + strings.Join(info.Tags, ", ") + "]"
			}
			fmt.Println(line)
		}
	},
}

var setsShowCmd = &cobra.Command{
	Use:   "show <set>",
	Short: "Show a set's cards and mastery state",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg := loadConfig()
		svc, err := kardex.New(ctx, resolveDeckDir(cfg),
			kardex.WithMustExist(true),
			kardex.WithBoxConfig(cfg.BoxConfig()),
			kardex.WithLogger(slog.Default()),
		)
		if err != nil {
			fatal("Error opening decks", err)
		}

		set, err := svc.Repository().Get(ctx, args[0])
		if err != nil {
			fatal("Error loading set", err)
		}

		if setsJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(set); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		fmt.Printf("%s (%s)\n", set.Name, set.ID)
		if set.Description != "" {
			fmt.Println(set.Description)
		}

		sum := svc.Scheduler().Summarize(set)
		fmt.Printf("\n%d cards, %d mastered (%.0f%%)\n", sum.Total, sum.Mastered, sum.MasteryPercent())
		for i, n := range sum.BoxCounts {
			fmt.Printf("  box %d: %d\n", i+1, n)
		}

		now := time.Now()
		due := 0
		for range svc.Scheduler().DueCards(set, now) {
			due++
		}
		fmt.Printf("%d cards due now\n", due)
	},
}

var setsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the deck directory for changes",
	Long:  `Prints an event line whenever a deck file is created, modified or removed. Stop with Ctrl-C.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		repo := openRepo()

		watchable, ok := repo.(core.Watchable)
		if !ok {
			fatal("Error watching decks", fmt.Errorf("repository does not support watching"))
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		events, err := watchable.Watch(ctx, "")
		if err != nil {
			fatal("Error watching decks", err)
		}

		fmt.Println("Watching for deck changes (Ctrl-C to stop)...")
		for ev := range events {
			fmt.Printf("%s %s %s\n", time.Unix(ev.Timestamp, 0).Format(time.TimeOnly), ev.Type, ev.Set)
		}
	},
}

// openRepo initializes the repository for read-side commands.
func openRepo() core.SetRepository {
	cfg := loadConfig()
	repo, err := kardex.Open(context.Background(), resolveDeckDir(cfg),
		kardex.WithMustExist(true),
		kardex.WithLogger(slog.Default()),
	)
	if err != nil {
		fatal("Error opening decks", err)
	}
	return repo
}

func init() {
	rootCmd.AddCommand(setsCmd)
	setsCmd.AddCommand(setsListCmd)
	setsCmd.AddCommand(setsShowCmd)
	setsCmd.AddCommand(setsWatchCmd)
	setsCmd.PersistentFlags().BoolVar(&setsJSON, "json", false, "Output in JSON format")
	setsListCmd.Flags().StringVar(&setsTag, "tag", "", "Filter sets by tag")
}
