package diff

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ComputeDiff diffs oldText to newText line by line (Myers), returning segments and the flattened added/removed line numbers.
func ComputeDiff(oldText, newText string) Result {
	dmp := diffmatchpatch.New()

	// Each distinct line becomes one rune, so the Myers pass runs over lines rather than characters.
	rOld, rNew, lineArray, ok := linesToRunes(oldText, newText)
	if !ok {
		return wholeReplacement(oldText, newText)
	}
	lineDiffs := dmp.DiffMainRunes(rOld, rNew, false)
	lineDiffs = dmp.DiffCleanupMerge(lineDiffs)

	decode := func(s string) string {
		var b strings.Builder
		for _, r := range s {
			idx := runeToIndex(r)
			if idx >= 0 && idx < len(lineArray) {
				b.WriteString(lineArray[idx])
			}
		}
		return b.String()
	}

	res := Result{AddedLineNumbers: []int{}, RemovedLineNumbers: []int{}}
	oldCursor, newCursor := 0, 0

	for _, d := range lineDiffs {
		text := decode(d.Text)
		n := countLines(text)
		if n == 0 {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			res.Segments = append(res.Segments, Segment{Kind: KindUnchanged, LineStart: oldCursor, LineCount: n, Content: text})
			oldCursor += n
			newCursor += n
		case diffmatchpatch.DiffDelete:
			res.Segments = append(res.Segments, Segment{Kind: KindRemoved, LineStart: oldCursor, LineCount: n, Content: text})
			res.RemovedLineNumbers = appendRange(res.RemovedLineNumbers, oldCursor, n)
			oldCursor += n
		case diffmatchpatch.DiffInsert:
			res.Segments = append(res.Segments, Segment{Kind: KindAdded, LineStart: newCursor, LineCount: n, Content: text})
			res.AddedLineNumbers = appendRange(res.AddedLineNumbers, newCursor, n)
			newCursor += n
		}
	}

	if err := res.validate(countLines(oldText), countLines(newText)); err != nil {
		panic(fmt.Errorf("ComputeDiff: validate failed with %v", err))
	}

	return res
}

// Line indexes are encoded as runes, skipping the UTF-16 surrogate range so every rune survives a round trip through a Go string.
const (
	surrogateMin = 0xD800
	surrogateMax = 0xDFFF
	surrogateLen = surrogateMax - surrogateMin + 1
	maxLineRunes = unicode.MaxRune + 1 - surrogateLen
)

func indexToRune(i int) rune {
	if i >= surrogateMin {
		return rune(i + surrogateLen)
	}
	return rune(i)
}

func runeToIndex(r rune) int {
	if r > surrogateMax {
		return int(r) - surrogateLen
	}
	return int(r)
}

// linesToRunes encodes both texts as one rune per line, with lineArray mapping a line index back to its text (EOL included). ok is false if there are more
// distinct lines than runes to encode them.
func linesToRunes(oldText, newText string) (rOld, rNew []rune, lineArray []string, ok bool) {
	index := make(map[string]int)
	encode := func(text string) ([]rune, bool) {
		lines := splitPreserveEOL(text, defaultEOL)
		out := make([]rune, 0, len(lines))
		for _, ln := range lines {
			i, seen := index[ln]
			if !seen {
				if len(lineArray) >= maxLineRunes {
					return nil, false
				}
				i = len(lineArray)
				index[ln] = i
				lineArray = append(lineArray, ln)
			}
			out = append(out, indexToRune(i))
		}
		return out, true
	}
	if rOld, ok = encode(oldText); !ok {
		return nil, nil, nil, false
	}
	if rNew, ok = encode(newText); !ok {
		return nil, nil, nil, false
	}
	return rOld, rNew, lineArray, true
}

// wholeReplacement is the coarse result used when the texts have too many distinct lines to diff: every old line removed, every new line added.
func wholeReplacement(oldText, newText string) Result {
	res := Result{AddedLineNumbers: []int{}, RemovedLineNumbers: []int{}}
	if n := countLines(oldText); n > 0 {
		res.Segments = append(res.Segments, Segment{Kind: KindRemoved, LineStart: 0, LineCount: n, Content: oldText})
		res.RemovedLineNumbers = appendRange(res.RemovedLineNumbers, 0, n)
	}
	if n := countLines(newText); n > 0 {
		res.Segments = append(res.Segments, Segment{Kind: KindAdded, LineStart: 0, LineCount: n, Content: newText})
		res.AddedLineNumbers = appendRange(res.AddedLineNumbers, 0, n)
	}
	return res
}

// countLines splits text on defaultEOL and counts the pieces, dropping the empty piece a trailing EOL leaves behind.
func countLines(text string) int {
	if text == "" {
		return 0
	}
	parts := strings.Split(text, defaultEOL)
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return len(parts)
}

func appendRange(dst []int, start, n int) []int {
	for i := 0; i < n; i++ {
		dst = append(dst, start+i)
	}
	return dst
}

// splitPreserveEOL splits text by eol and preserves the eol on each line, except possibly the last.
func splitPreserveEOL(text, eol string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	for {
		idx := strings.Index(text, eol)
		if idx == -1 {
			lines = append(lines, text)
			break
		}
		lines = append(lines, text[:idx+len(eol)])
		text = text[idx+len(eol):]
		if text == "" {
			break
		}
	}
	return lines
}

// trimEOL removes a trailing eol from a line if present.
func trimEOL(line, eol string) string {
	return strings.TrimSuffix(line, eol)
}
