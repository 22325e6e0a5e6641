package diff

import (
	"fmt"
	"strconv"
	"strings"
)

// RenderOptions controls Result.Render.
type RenderOptions struct {
	Header       string // optional header line (ex: a file path); omitted when empty
	Color        bool   // emit ANSI 256-color escapes
	ContextLines int    // unchanged lines shown on each side of a change; negative shows every unchanged line
	Width        int    // max columns per row, gutter included; 0 means no limit
}

// Render returns a human-oriented rendering of r: one row per line with a gutter of 1-based old and new line numbers, then a marker ("-" removed, "+" added, " " unchanged),
// then the line text. Tabs are expanded and text is cut to fit opts.Width. Unchanged runs longer than the requested context are collapsed into a single "..." row stating how many lines were skipped.
//
// If r has no changes, only the header (if any) is returned. Rows are separated by "\n" with no trailing newline.
func (r Result) Render(opts RenderOptions) string {
	const (
		reset     = "\x1b[0m"
		blackFG   = "\x1b[30m"
		pinkLine  = "\x1b[48;5;224m" // light pink for removed lines
		greenLine = "\x1b[48;5;194m" // light green for added lines
		dim       = "\x1b[2m"
		cyanBold  = "\x1b[1;36m"
	)
	paint := func(style, s string) string {
		if !opts.Color {
			return s
		}
		return style + s + reset
	}

	var out []string
	if opts.Header != "" {
		out = append(out, paint(cyanBold, opts.Header+":"))
	}
	if !r.HasChanges() {
		return strings.Join(out, "\n")
	}

	gw := len(strconv.Itoa(r.maxLineNumber()))
	textWidth := 0
	if opts.Width > 0 {
		textWidth = max(opts.Width-(2*gw+4), 1)
	}
	row := func(oldNo, newNo int, marker string, text string) string {
		num := func(n int) string {
			if n <= 0 {
				return strings.Repeat(" ", gw)
			}
			return fmt.Sprintf("%*d", gw, n)
		}
		text = truncateToWidth(expandTabs(trimEOL(text, defaultEOL)), textWidth)
		return num(oldNo) + " " + num(newNo) + " " + marker + " " + text
	}
	skipped := func(n int) string {
		return paint(dim, fmt.Sprintf("%s ... %d unchanged lines", strings.Repeat(" ", 2*gw+1), n))
	}

	// newAt tracks the new-space line of the next unchanged line; unchanged segments carry old-space starts.
	newAt := 0
	for i, s := range r.Segments {
		lines := splitPreserveEOL(s.Content, defaultEOL)
		switch s.Kind {
		case KindRemoved:
			for j, ln := range lines {
				out = append(out, paint(blackFG+pinkLine, row(s.LineStart+j+1, 0, "-", ln)))
			}
		case KindAdded:
			for j, ln := range lines {
				out = append(out, paint(blackFG+greenLine, row(0, s.LineStart+j+1, "+", ln)))
			}
			newAt = s.LineStart + s.LineCount
		case KindUnchanged:
			show := visibleContext(len(lines), i > 0, i < len(r.Segments)-1, opts.ContextLines)
			for _, rg := range show {
				if rg.skip > 0 {
					out = append(out, skipped(rg.skip))
					continue
				}
				for j := rg.from; j < rg.to; j++ {
					out = append(out, row(s.LineStart+j+1, newAt+j+1, " ", lines[j]))
				}
			}
			newAt += s.LineCount
		}
	}
	return strings.Join(out, "\n")
}

type contextRange struct {
	from, to int // lines [from, to) are shown
	skip     int // if > 0, this range is a collapsed run of skip lines
}

// visibleContext decides which lines of an n-line unchanged run are shown, given whether a change precedes and follows it.
func visibleContext(n int, changeBefore, changeAfter bool, context int) []contextRange {
	if context < 0 {
		return []contextRange{{from: 0, to: n}}
	}
	head, tail := 0, 0
	if changeBefore {
		head = min(context, n)
	}
	if changeAfter {
		tail = min(context, n)
	}
	if head+tail >= n {
		return []contextRange{{from: 0, to: n}}
	}
	var out []contextRange
	if head > 0 {
		out = append(out, contextRange{from: 0, to: head})
	}
	out = append(out, contextRange{skip: n - head - tail})
	if tail > 0 {
		out = append(out, contextRange{from: n - tail, to: n})
	}
	return out
}

func (r Result) maxLineNumber() int {
	m := 1
	for _, s := range r.Segments {
		m = max(m, s.LineStart+s.LineCount)
	}
	return m
}
