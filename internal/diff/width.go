package diff

import (
	"strings"

	"github.com/clipperhouse/uax29/v2/graphemes"
	"github.com/mattn/go-runewidth"
)

const ellipsis = "…"

// tabWidth is how many columns a tab expands to in rendered output.
const tabWidth = 4

func widthCondition() *runewidth.Condition {
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = false
	cond.StrictEmojiNeutral = true
	return cond
}

// truncateToWidth returns s cut at a grapheme cluster boundary so that it fits in width columns, ending with an ellipsis if anything was cut. A width <= 0 means no limit.
func truncateToWidth(s string, width int) string {
	if width <= 0 {
		return s
	}
	cond := widthCondition()
	if cond.StringWidth(s) <= width {
		return s
	}

	budget := width - cond.StringWidth(ellipsis)
	var b strings.Builder
	used := 0
	iter := graphemes.FromString(s)
	for iter.Next() {
		g := iter.Value()
		w := cond.StringWidth(g)
		if used+w > budget {
			break
		}
		b.WriteString(g)
		used += w
	}
	b.WriteString(ellipsis)
	return b.String()
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
