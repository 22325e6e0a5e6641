package applyblocks

import (
	"strings"
)

// Locate finds searchText in content at or after fromOffset. Tiers are tried in order (TierExact, TierLineTrimmed, TierBlockAnchor) and the earliest match of the first
// tier that succeeds is returned. The line-based tiers begin scanning at the line containing fromOffset, so their match may start slightly before fromOffset.
//
// fromOffset is clamped to [0, len(content)]. An empty searchText matches at fromOffset.
func Locate(content, searchText string, fromOffset int) (MatchResult, bool) {
	fromOffset = max(0, min(fromOffset, len(content)))

	if idx := strings.Index(content[fromOffset:], searchText); idx >= 0 {
		return MatchResult{Offset: fromOffset + idx, MatchedText: searchText, Tier: TierExact}, true
	}

	lines := newLineIndex(content)
	searchLines := splitSearchLines(searchText)
	startLine := lines.lineOf(fromOffset)

	if m, ok := lineTrimmedMatch(lines, searchLines, startLine); ok {
		return m, true
	}
	if m, ok := blockAnchorMatch(lines, searchLines, startLine); ok {
		return m, true
	}
	return MatchResult{}, false
}

// lineTrimmedMatch finds the first window of len(search) content lines, starting at or after startLine, whose lines equal search after trimming trailing whitespace.
func lineTrimmedMatch(lines *lineIndex, search []string, startLine int) (MatchResult, bool) {
	if len(search) == 0 {
		return MatchResult{}, false
	}
	trimmed := make([]string, len(search))
	for i, s := range search {
		trimmed[i] = trimRight(s)
	}
	for i := startLine; i+len(search) <= len(lines.lines); i++ {
		match := true
		for j := range trimmed {
			if trimRight(lines.lines[i+j]) != trimmed[j] {
				match = false
				break
			}
		}
		if match {
			return lines.window(i, len(search), TierLineTrimmed), true
		}
	}
	return MatchResult{}, false
}

// blockAnchorMatch matches a 3+ line search by its first and last lines only (trailing whitespace trimmed), with a window exactly as long as the search.
func blockAnchorMatch(lines *lineIndex, search []string, startLine int) (MatchResult, bool) {
	if len(search) < 3 {
		return MatchResult{}, false
	}
	first := trimRight(search[0])
	last := trimRight(search[len(search)-1])
	for i := startLine; i+len(search) <= len(lines.lines); i++ {
		if trimRight(lines.lines[i]) != first {
			continue
		}
		if trimRight(lines.lines[i+len(search)-1]) == last {
			return lines.window(i, len(search), TierBlockAnchor), true
		}
	}
	return MatchResult{}, false
}

// splitSearchLines splits on '\n', dropping the empty line a trailing newline would produce.
func splitSearchLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func trimRight(s string) string {
	return strings.TrimRight(s, " \t\r\n\v\f")
}

// ---------- Line index ----------

// lineIndex holds content split on '\n' along with the byte offset at which each line starts.
type lineIndex struct {
	lines  []string
	starts []int
}

func newLineIndex(content string) *lineIndex {
	lines := strings.Split(content, "\n")
	starts := make([]int, len(lines))
	off := 0
	for i, l := range lines {
		starts[i] = off
		off += len(l) + 1
	}
	return &lineIndex{lines: lines, starts: starts}
}

// lineOf returns the 0-based index of the line containing offset.
func (li *lineIndex) lineOf(offset int) int {
	// starts is sorted; find the last start <= offset.
	lo, hi := 0, len(li.starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if li.starts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

func (li *lineIndex) window(line, n int, tier Tier) MatchResult {
	return MatchResult{
		Offset:      li.starts[line],
		MatchedText: strings.Join(li.lines[line:line+n], "\n"),
		Tier:        tier,
	}
}

// lineNumberAt returns the 1-based line number of offset in content.
func lineNumberAt(content string, offset int) int {
	return strings.Count(content[:offset], "\n") + 1
}
