package rewrite

import (
	"strings"
	"testing"
)

func TestCompareAndRenderInline(t *testing.T) {
	diffs := Compare("the quick brown fox", "the slow brown fox")
	out := RenderInline(diffs)

	if !strings.Contains(out, "[-") || !strings.Contains(out, "{+") {
		t.Errorf("inline render missing markers: %q", out)
	}
	if !strings.Contains(out, "brown fox") {
		t.Errorf("unchanged text missing: %q", out)
	}
}

func TestStats(t *testing.T) {
	diffs := Compare("abc", "abXc")
	stats := Stats(diffs)

	if stats.Inserted != 1 {
		t.Errorf("inserted = %d, want 1", stats.Inserted)
	}
	if stats.Deleted != 0 {
		t.Errorf("deleted = %d, want 0", stats.Deleted)
	}
	if !stats.Changed() {
		t.Error("Changed() = false for a real change")
	}
}

func TestIdenticalTextsUnchanged(t *testing.T) {
	diffs := Compare("same text", "same text")
	if Stats(diffs).Changed() {
		t.Error("identical texts reported as changed")
	}
	if out := RenderInline(diffs); out != "same text" {
		t.Errorf("render = %q, want unmodified text", out)
	}
}
