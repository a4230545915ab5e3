package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kardex/kardex"
)

var learnThreshold float64

var learnCmd = &cobra.Command{
	Use:   "learn <set>",
	Short: "Review a set's due flashcards",
	Long: `Starts an interactive review of the cards currently due in a set.
Answers are typed and graded by similarity; borderline answers ask for a
manual decision. Progress is saved after every card.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if cmd.Flags().Changed("threshold") {
			cfg.Learning.FuzzyThreshold = learnThreshold
		}

		ctx := context.Background()
		svc, err := kardex.New(ctx, resolveDeckDir(cfg),
			kardex.WithMustExist(true),
			kardex.WithBoxConfig(cfg.BoxConfig()),
			kardex.WithThreshold(cfg.Learning.FuzzyThreshold, cfg.Learning.DecisionMargin),
			kardex.WithLogger(slog.Default()),
		)
		if err != nil {
			fatal("Error opening decks", err)
		}

		sess, err := svc.Start(ctx, args[0], time.Now())
		if err != nil {
			fatal("Error starting session", err)
		}

		set := sess.Set()
		fmt.Printf("Reviewing %q: %d of %d cards due\n\n", set.Name, sess.Remaining(), len(set.Cards))
		if sess.Remaining() == 0 {
			fmt.Println("Nothing due. Come back later.")
			return
		}

		reader := bufio.NewReader(os.Stdin)
		for {
			card, ok := sess.Next()
			if !ok {
				break
			}

			fmt.Printf("[%d left] %s\n> ", sess.Remaining()+1, card.Front)
			input, err := reader.ReadString('\n')
			if err != nil {
				break
			}

			result, err := sess.Grade(strings.TrimSpace(input), card)
			if err != nil {
				fatal("Error grading answer", err)
			}

			if sess.NeedsDecision(result) {
				fmt.Printf("Close (%.0f%% match): expected %q. Count it? [y/N] ", result.Score*100, card.Back)
				answer, _ := reader.ReadString('\n')
				accepted := strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y")
				result = sess.Override(result, accepted)
			}

			updated, err := sess.Record(context.Background(), card.ID, result, time.Now())
			if err != nil {
				fatal("Error saving progress", err)
			}

			if result.Accepted {
				fmt.Printf("Correct. Card moves to box %d.\n", updated.Box)
			} else {
				fmt.Printf("Wrong. The answer is %q. Card moves to box %d.\n", card.Back, updated.Box)
			}
			if card.Explanation != "" {
				fmt.Println(card.Explanation)
			}
			fmt.Println()
		}

		stats := sess.Stats()
		fmt.Printf("Session done: %d reviewed, %d correct, %d wrong", stats.Reviewed, stats.Correct, stats.Incorrect)
		if stats.Overrides > 0 {
			fmt.Printf(" (%d manual)", stats.Overrides)
		}
		fmt.Printf(" (%.0f%%)\n", stats.Accuracy())

		sum := sess.Summary()
		fmt.Printf("Mastery: %d/%d cards in the last box (%.0f%%)\n", sum.Mastered, sum.Total, sum.MasteryPercent())
	},
}

func init() {
	rootCmd.AddCommand(learnCmd)
	learnCmd.Flags().Float64Var(&learnThreshold, "threshold", 0.85, "Similarity needed to accept an answer")
}
