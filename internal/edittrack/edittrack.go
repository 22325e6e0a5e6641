// Package edittrack records the blocks applied to files so a review surface can later accept or reject them one at a time.
//
// Each Edit carries enough context to undo itself: the content the file had before the application that produced it, the 1-based line range the replacement occupies in the
// new content, and the lines the replacement displaced.
package edittrack

import (
	"slices"
	"sync"
)

// Edit is one applied block, as placed in one file.
type Edit struct {
	Path          string   // slash-separated path relative to the workspace root
	BlockID       int      // index of the block in its instruction document
	StartLine     int      // 1-based first line of the replacement in NewContent
	EndLine       int      // 1-based last line, inclusive
	OriginalLines []string // lines of the matched text the replacement displaced
	NewLineCount  int      // lines in the replacement text
	BaseContent   string   // file content before the application that produced this edit
	IsNewFile     bool     // the file did not exist before the application
	NewContent    string   // file content after the application
}

// Recorder accepts edits as they are written.
type Recorder interface {
	Record(edits ...Edit)
}

// Tracker is an in-memory Recorder. The zero value is ready to use and safe for concurrent use.
type Tracker struct {
	mu    sync.Mutex
	edits []Edit
}

var _ Recorder = (*Tracker)(nil)

// Record appends edits in the order given.
func (t *Tracker) Record(edits ...Edit) {
	if len(edits) == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range edits {
		e.OriginalLines = slices.Clone(e.OriginalLines)
		t.edits = append(t.edits, e)
	}
}

// Edits returns a copy of every recorded edit, in record order.
func (t *Tracker) Edits() []Edit {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneEdits(t.edits, func(Edit) bool { return true })
}

// ForPath returns a copy of the edits recorded for path, in record order.
func (t *Tracker) ForPath(path string) []Edit {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneEdits(t.edits, func(e Edit) bool { return e.Path == path })
}

// Paths returns the distinct paths with recorded edits, in order of first record.
func (t *Tracker) Paths() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var paths []string
	for _, e := range t.edits {
		if !slices.Contains(paths, e.Path) {
			paths = append(paths, e.Path)
		}
	}
	return paths
}

// Clear forgets the edits for path and returns how many were removed. An empty path clears everything.
func (t *Tracker) Clear(path string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	before := len(t.edits)
	if path == "" {
		t.edits = nil
		return before
	}
	t.edits = slices.DeleteFunc(t.edits, func(e Edit) bool { return e.Path == path })
	return before - len(t.edits)
}

func cloneEdits(edits []Edit, keep func(Edit) bool) []Edit {
	out := []Edit{}
	for _, e := range edits {
		if !keep(e) {
			continue
		}
		e.OriginalLines = slices.Clone(e.OriginalLines)
		out = append(out, e)
	}
	return out
}
