// Package rewrite renders the difference between a source text and the
// model's rewritten version of it.
package rewrite

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ChangeStats summarizes how much of the text a rewrite touched.
type ChangeStats struct {
	Inserted  int // runes added
	Deleted   int // runes removed
	Unchanged int // runes kept
}

// Changed reports whether the rewrite differs from the source at all.
func (s ChangeStats) Changed() bool {
	return s.Inserted > 0 || s.Deleted > 0
}

// Compare produces a semantically cleaned diff between the source and
// its rewrite.
func Compare(source, rewritten string) []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(source, rewritten, false)
	return dmp.DiffCleanupSemantic(diffs)
}

// Stats tallies rune counts per diff operation.
func Stats(diffs []diffmatchpatch.Diff) ChangeStats {
	var stats ChangeStats
	for _, d := range diffs {
		n := len([]rune(d.Text))
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			stats.Inserted += n
		case diffmatchpatch.DiffDelete:
			stats.Deleted += n
		case diffmatchpatch.DiffEqual:
			stats.Unchanged += n
		}
	}
	return stats
}

// RenderInline renders a diff as plain text with {+insertions+} and
// [-deletions-] markers, suitable for a monochrome viewport.
func RenderInline(diffs []diffmatchpatch.Diff) string {
	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			b.WriteString("{+")
			b.WriteString(d.Text)
			b.WriteString("+}")
		case diffmatchpatch.DiffDelete:
			b.WriteString("[-")
			b.WriteString(d.Text)
			b.WriteString("-]")
		default:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}
