// Package kardex is the Composition Root for the Kardex learning suite.
//
// It connects the core review logic (Leitner scheduling, fuzzy answer
// matching) with the infrastructure adapters (filesystem deck storage) using
// the Hexagonal Architecture pattern.
//
// Philosophy:
//
// Kardex treats a directory of plain deck files (JSON, CSV, Markdown) as a
// spaced-repetition database. Authored content stays untouched; review
// progress lives beside it in a hidden system directory, so decks can be
// hand-edited and versioned freely while mastery state survives.
//
// Features:
//
//   - **Leitner Scheduling**: Numbered boxes with growing review intervals,
//     promote on correct, demote on wrong.
//   - **Fuzzy Answer Matching**: Typed answers are graded by string
//     similarity with a configurable threshold and manual-override zone.
//   - **Plain-File Decks**: JSON, CSV, and Markdown serializers out of the
//     box; custom formats via `WithSerializer`.
//   - **Progress Isolation**: Review state persisted atomically under
//     `.kardex/`, keyed by content-derived card IDs.
//   - **Extensible Storage**: Any backend implementing `core.SetRepository`
//     via `WithRepository`.
//
// Usage:
//
//	// Assemble the review stack with functional options
//	svc, err := kardex.New(ctx, "./decks",
//		kardex.WithThreshold(0.85, 0.10),
//		kardex.WithLogger(logger),
//	)
//
//	// Run a review session
//	sess, err := svc.Start(ctx, "capitals", time.Now())
package kardex
