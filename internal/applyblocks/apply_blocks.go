package applyblocks

import (
	"sort"
	"strings"
)

// Apply parses document and applies it to originalContent.
//
// If document holds no edit blocks, it is a raw replacement: the result is document verbatim, except that an empty originalContent yields empty content.
//
// Otherwise blocks are applied in parsed order:
//   - A block with a blank (whitespace-only) search replaces the whole content with its replace text and moves the cursor to the end.
//   - Otherwise the search is located at or after the cursor, replaced, and the cursor moves past the inserted text.
//   - A block that only matches behind the cursor is deferred. After the main pass, deferred blocks are located again against the current content and applied
//     from the highest offset down. Their AppliedBlock records are appended after the main-pass records. Main-pass records are not adjusted for lines a
//     deferred splice shifts.
//   - A block that matches nowhere fails the call: Result.Err is set (IsNoMatch reports true), Content is originalContent, and no blocks are reported.
//
// Apply never panics on malformed input.
func Apply(originalContent, document string) Result {
	parsed := Parse(document)
	if parsed.Kind == ParsedRawReplacement {
		if originalContent == "" {
			return Result{Content: ""}
		}
		return Result{Content: parsed.Raw}
	}
	return ApplyBlocks(originalContent, parsed.Blocks)
}

// ApplyBlocks applies already-parsed blocks to originalContent with the same semantics as Apply. An empty blocks slice returns originalContent unchanged.
func ApplyBlocks(originalContent string, blocks []EditBlock) Result {
	st := &applyState{content: originalContent}

	for id, b := range blocks {
		if strings.TrimSpace(b.Search) == "" {
			st.content = b.Replace
			st.cursor = len(st.content)
			continue
		}

		if m, ok := Locate(st.content, b.Search, st.cursor); ok {
			st.cursor = st.splice(id, b, m)
			continue
		}

		m, ok := Locate(st.content, b.Search, 0)
		switch {
		case !ok:
			return failed(originalContent, b)
		case m.Offset < st.cursor:
			st.deferred = append(st.deferred, deferredBlock{id: id, block: b, offset: m.Offset})
		default:
			st.cursor = st.splice(id, b, m)
		}
	}

	if err := st.applyDeferred(); err != nil {
		return Result{Content: originalContent, Err: err}
	}

	return Result{Content: st.content, AppliedBlocks: st.applied}
}

// applyState is the accumulator folded across blocks.
type applyState struct {
	content  string
	cursor   int // byte offset where the next search begins
	applied  []AppliedBlock
	deferred []deferredBlock
}

type deferredBlock struct {
	id     int
	block  EditBlock
	offset int // where the block matched when it was deferred
}

// splice replaces m.MatchedText at m.Offset with b.Replace, records the placement, and returns the offset just past the inserted text.
func (st *applyState) splice(id int, b EditBlock, m MatchResult) int {
	startLine := lineNumberAt(st.content, m.Offset)
	st.content = st.content[:m.Offset] + b.Replace + st.content[m.Offset+len(m.MatchedText):]

	n := countLines(b.Replace)
	st.applied = append(st.applied, AppliedBlock{
		ID:            id,
		StartLine:     startLine,
		EndLine:       startLine + max(n, 1) - 1,
		OriginalLines: strings.Split(m.MatchedText, "\n"),
		NewLineCount:  n,
	})
	return m.Offset + len(b.Replace)
}

// applyDeferred applies deferred blocks from the highest original offset to the lowest, locating each one again since the content has changed.
//
// Records of blocks applied in the main pass are not adjusted for line shifts caused here.
func (st *applyState) applyDeferred() error {
	sort.SliceStable(st.deferred, func(i, j int) bool {
		return st.deferred[i].offset < st.deferred[j].offset
	})
	for i := len(st.deferred) - 1; i >= 0; i-- {
		d := st.deferred[i]
		m, ok := Locate(st.content, d.block.Search, 0)
		if !ok {
			return &noMatchError{search: d.block.Search}
		}
		st.splice(d.id, d.block, m)
	}
	st.deferred = nil
	return nil
}

func failed(originalContent string, b EditBlock) Result {
	return Result{Content: originalContent, Err: &noMatchError{search: b.Search}}
}

// countLines returns the number of '\n'-separated lines in s; an empty s has none.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
