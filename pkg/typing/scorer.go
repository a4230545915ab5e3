package typing

import (
	"strings"
	"time"
)

// TestResult holds all metrics calculated for a finished typing test.
type TestResult struct {
	WPM          float64       `json:"wpm"`
	CPM          float64       `json:"cpm"`
	Accuracy     float64       `json:"accuracy"` // percentage 0-100
	Duration     time.Duration `json:"duration"`
	Errors       int           `json:"errors"` // first-try mistakes during typing
	TotalChars   int           `json:"total_chars"`
	CorrectChars int           `json:"correct_chars"`
}

// Calculate computes the metrics for a test over target text, the text
// actually typed, and the elapsed duration.
func Calculate(target, typed string, duration time.Duration, errorCount int) TestResult {
	seconds := duration.Seconds()

	var wpm, cpm float64
	if seconds > 0 {
		words := len(strings.Fields(target))
		wpm = float64(words) / seconds * 60
		cpm = float64(len([]rune(target))) / seconds * 60
	}

	correct, total := accuracyCounts(target, typed)
	accuracy := 100.0
	if total > 0 {
		accuracy = float64(correct) / float64(total) * 100
	}

	return TestResult{
		WPM:          wpm,
		CPM:          cpm,
		Accuracy:     accuracy,
		Duration:     duration,
		Errors:       errorCount,
		TotalChars:   total,
		CorrectChars: correct,
	}
}

// accuracyCounts compares typed against target character by character.
func accuracyCounts(target, typed string) (correct, total int) {
	tr := []rune(target)
	for i, r := range []rune(typed) {
		if i < len(tr) && r == tr[i] {
			correct++
		}
		total++
	}
	return correct, total
}

// Rating returns a short verdict based on speed and accuracy.
func (r TestResult) Rating() string {
	switch {
	case r.Accuracy >= 98 && r.WPM >= 60:
		return "Outstanding"
	case r.Accuracy >= 95 && r.WPM >= 45:
		return "Very good"
	case r.Accuracy >= 90 && r.WPM >= 30:
		return "Good"
	default:
		return "Keep practicing"
	}
}

// QualifiesForHighscore reports whether the result meets the minimum
// accuracy required to be saved.
func (r TestResult) QualifiesForHighscore(minAccuracy float64) bool {
	return r.Accuracy >= minAccuracy
}

// RealtimeAccuracy returns the live accuracy percentage while typing.
// An empty input counts as 100%.
func RealtimeAccuracy(target, typed string) float64 {
	if typed == "" {
		return 100
	}
	correct, total := accuracyCounts(target, typed)
	return float64(correct) / float64(total) * 100
}

// Progress returns how much of the target has been typed, in percent.
func Progress(target, typed string) float64 {
	if target == "" {
		return 100
	}
	return float64(len(typed)) / float64(len(target)) * 100
}
