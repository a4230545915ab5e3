package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kardex/kardex/pkg/highscore"
	"github.com/kardex/kardex/pkg/typing"
)

var (
	typingLanguage   string
	typingDifficulty string
)

var typingCmd = &cobra.Command{
	Use:   "typing",
	Short: "Run a typing test",
	Long: `Shows a line of words matched to the chosen language and difficulty.
Press Enter to start the clock, type the line, and press Enter again.
Results above the configured accuracy floor enter the highscore board.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if typingLanguage == "" {
			typingLanguage = cfg.Defaults.Language
		}
		if typingDifficulty == "" {
			typingDifficulty = cfg.Defaults.Difficulty
		}

		lang, err := typing.ParseLanguage(typingLanguage)
		if err != nil {
			fatal("Invalid language", err)
		}
		diff, err := typing.ParseDifficulty(typingDifficulty)
		if err != nil {
			fatal("Invalid difficulty", err)
		}

		loader := typing.NewLoader(cfg.Paths.DataDir, typing.NewCache())
		text, err := loader.Text(lang, diff)
		if err != nil {
			fatal("Error loading words", err)
		}

		reader := bufio.NewReader(os.Stdin)
		fmt.Printf("Typing test (%s, %s). Type the line below.\n\n", lang, diff)
		fmt.Println(text)
		fmt.Print("\nPress Enter to start...")
		if _, err := reader.ReadString('\n'); err != nil {
			return
		}

		start := time.Now()
		fmt.Print("> ")
		typed, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		elapsed := time.Since(start)

		result := typing.Calculate(text, strings.TrimRight(typed, "\r\n"), elapsed, 0)
		fmt.Printf("\n%.1f WPM, %.0f CPM, %.1f%% accuracy in %s\n",
			result.WPM, result.CPM, result.Accuracy, elapsed.Round(time.Second))
		fmt.Println(result.Rating())

		if !result.QualifiesForHighscore(cfg.Defaults.MinAccuracyForHighscore) {
			fmt.Printf("Below the %.0f%% accuracy floor, no highscore entry.\n", cfg.Defaults.MinAccuracyForHighscore)
			return
		}

		fmt.Print("Name for the highscore board (empty to skip): ")
		name, _ := reader.ReadString('\n')
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}

		store := highscore.NewStore(cfg.Paths.HighscoreFile, cfg.Defaults.MaxHighscores)
		made, err := store.Add(highscore.FromResult(name, result, lang, diff, time.Now()))
		if err != nil {
			fatal("Error saving highscore", err)
		}
		if made {
			fmt.Println("You made the board! See `kardex stats`.")
		} else {
			fmt.Println("Saved, but not fast enough for the board this time.")
		}
	},
}

func init() {
	rootCmd.AddCommand(typingCmd)
	typingCmd.Flags().StringVarP(&typingLanguage, "language", "l", "", "Word list language (en, de)")
	typingCmd.Flags().StringVarP(&typingDifficulty, "difficulty", "d", "", "Test difficulty (easy, medium, hard)")
}
