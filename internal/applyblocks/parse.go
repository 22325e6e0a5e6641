package applyblocks

import (
	"strings"
)

const minMarkerRun = 7

// Parse reads document and returns either its edit blocks or, when neither grammar yields a block, a raw replacement carrying the document verbatim.
func Parse(document string) Parsed {
	blocks := ParseBlocks(document)
	if len(blocks) == 0 {
		return Parsed{Kind: ParsedRawReplacement, Raw: document}
	}
	return Parsed{Kind: ParsedBlocks, Blocks: blocks}
}

// ParseBlocks returns the edit blocks of document in authored order. Modern blocks take precedence; legacy blocks are only considered when there are no modern ones.
// An empty result is not an error: it means the document is not a set of edit blocks.
func ParseBlocks(document string) []EditBlock {
	p := newScanner(document)
	if blocks := p.modernBlocks(); len(blocks) > 0 {
		return blocks
	}
	return newScanner(document).legacyBlocks()
}

// ---------- Scanner ----------

type scanner struct {
	lines []string
	idx   int
}

// newScanner splits on '\n' only. A '\r' before '\n' stays part of content lines and is ignored when recognizing markers.
func newScanner(document string) *scanner {
	return &scanner{lines: strings.Split(document, "\n")}
}

func (s *scanner) eof() bool { return s.idx >= len(s.lines) }

// indexFrom returns the index of the first line at or after from satisfying match, stopping (and returning -1) at the first line satisfying stop.
func (s *scanner) indexFrom(from int, match, stop func(string) bool) int {
	for i := from; i < len(s.lines); i++ {
		if match(s.lines[i]) {
			return i
		}
		if stop != nil && stop(s.lines[i]) {
			return -1
		}
	}
	return -1
}

func (s *scanner) span(from, to int) string {
	if from >= to {
		return ""
	}
	return trimTrailingNewlines(strings.Join(s.lines[from:to], "\n"))
}

func (s *scanner) modernBlocks() []EditBlock {
	var blocks []EditBlock
	for !s.eof() {
		if !isModernSearch(s.lines[s.idx]) {
			s.idx++
			continue
		}
		start := s.idx
		div := s.indexFrom(start+1, isModernDivider, isModernSearch)
		if div < 0 {
			s.idx++
			continue
		}
		end := s.indexFrom(div+1, isModernReplace, isModernSearch)
		if end < 0 {
			s.idx++
			continue
		}
		blocks = append(blocks, EditBlock{Search: s.span(start+1, div), Replace: s.span(div+1, end)})
		s.idx = end + 1
	}
	return blocks
}

func (s *scanner) legacyBlocks() []EditBlock {
	var blocks []EditBlock
	for !s.eof() {
		if !isLegacySearch(s.lines[s.idx]) {
			s.idx++
			continue
		}
		start := s.idx
		div := s.indexFrom(start+1, isLegacyDivider, isLegacySearch)
		if div < 0 {
			s.idx++
			continue
		}
		// The replace span runs to a REPLACE marker, the next SEARCH marker, or end of document.
		end := div + 1
		for end < len(s.lines) && !isLegacyReplace(s.lines[end]) && !isLegacySearch(s.lines[end]) {
			end++
		}
		blocks = append(blocks, EditBlock{Search: s.span(start+1, div), Replace: s.span(div+1, end)})
		s.idx = end
		if end < len(s.lines) && isLegacyReplace(s.lines[end]) {
			s.idx++
		}
	}
	return blocks
}

// ---------- Markers ----------

func markerLine(line string) string {
	return strings.TrimRight(line, " \t\r")
}

// leadingRun returns how many times c repeats at the start of s.
func leadingRun(s string, c byte) int {
	n := 0
	for n < len(s) && s[n] == c {
		n++
	}
	return n
}

// runThenWord reports whether line is a run of c (with minRun <= len <= maxRun; maxRun < 0 means unbounded), optional blanks, then word.
func runThenWord(line string, c byte, minRun, maxRun int, word string) (rest string, ok bool) {
	n := leadingRun(line, c)
	if n < minRun || (maxRun >= 0 && n > maxRun) {
		return "", false
	}
	after := strings.TrimLeft(line[n:], " \t")
	if !strings.HasPrefix(after, word) {
		return "", false
	}
	return after[len(word):], true
}

func isModernSearch(line string) bool {
	rest, ok := runThenWord(markerLine(line), '-', minMarkerRun, -1, "SEARCH")
	return ok && rest == ""
}

func isModernDivider(line string) bool {
	l := markerLine(line)
	return len(l) >= minMarkerRun && leadingRun(l, '=') == len(l)
}

func isModernReplace(line string) bool {
	rest, ok := runThenWord(markerLine(line), '+', minMarkerRun, -1, "REPLACE")
	return ok && rest == ""
}

// isLegacySearch accepts "<SEARCH", "<<< SEARCH", and closing brackets such as "<<<SEARCH>>>".
func isLegacySearch(line string) bool {
	rest, ok := runThenWord(strings.TrimLeft(markerLine(line), " \t"), '<', 1, 3, "SEARCH")
	if !ok {
		return false
	}
	return len(rest) <= 3 && leadingRun(rest, '>') == len(rest)
}

func isLegacyDivider(line string) bool {
	return markerLine(line) == "======="
}

func isLegacyReplace(line string) bool {
	rest, ok := runThenWord(strings.TrimLeft(markerLine(line), " \t"), '>', 3, 3, "REPLACE")
	return ok && rest == ""
}

func trimTrailingNewlines(s string) string {
	return strings.TrimRight(s, "\r\n")
}
