package workspace

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyAll_ResultsInInputOrder(t *testing.T) {
	w, tr, root := newTestWorkspace(t)
	for i := 0; i < 6; i++ {
		writeFile(t, root, fmt.Sprintf("f%d.txt", i), fmt.Sprintf("value %d\n", i))
	}

	var edits []FileEdit
	for i := 0; i < 6; i++ {
		edits = append(edits, FileEdit{
			Path:     fmt.Sprintf("f%d.txt", i),
			Document: block(fmt.Sprintf("value %d", i), fmt.Sprintf("changed %d", i)),
		})
	}

	results, err := w.ApplyAll(context.Background(), edits, Options{Parallel: 3})
	require.NoError(t, err)
	require.Len(t, results, 6)
	for i, res := range results {
		assert.Equal(t, fmt.Sprintf("f%d.txt", i), res.Path)
		assert.True(t, res.OK())
		assert.Equal(t, fmt.Sprintf("changed %d\n", i), readFile(t, root, res.Path))
	}
	assert.Len(t, tr.Edits(), 6)
	assert.Len(t, tr.Paths(), 6)
}

func TestApplyAll_SamePathAppliesSequentially(t *testing.T) {
	w, tr, root := newTestWorkspace(t)

	edits := []FileEdit{
		{Path: "notes.txt", Document: "one\ntwo\n"},
		{Path: "other.txt", Document: "other\n"},
		{Path: "./notes.txt", Document: block("two", "TWO")},
		{Path: "sub/../notes.txt", Document: block("one", "ONE")},
	}
	results, err := w.ApplyAll(context.Background(), edits, Options{Parallel: 4})
	require.NoError(t, err)

	assert.True(t, results[0].IsNewFile)
	assert.False(t, results[2].IsNewFile)
	assert.Equal(t, "one\ntwo\n", results[2].Before)
	assert.Equal(t, "one\nTWO\n", results[3].Before)
	assert.Equal(t, "ONE\nTWO\n", readFile(t, root, "notes.txt"))
	for _, res := range results {
		assert.True(t, res.OK())
	}

	notes := tr.ForPath("notes.txt")
	require.Len(t, notes, 3)
	assert.True(t, notes[0].IsNewFile)
	assert.Equal(t, 2, notes[0].NewLineCount)
	assert.Equal(t, 2, notes[1].StartLine)
	assert.Equal(t, 1, notes[2].StartLine)
}

func TestApplyAll_DryRunChainsInMemory(t *testing.T) {
	w, _, root := newTestWorkspace(t)
	writeFile(t, root, "a.txt", "x\ny\n")

	results, err := w.ApplyAll(context.Background(), []FileEdit{
		{Path: "a.txt", Document: block("x", "X")},
		{Path: "a.txt", Document: block("y", "Y")},
	}, Options{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, "X\nY\n", results[1].Patch.Content)
	assert.Equal(t, "x\ny\n", readFile(t, root, "a.txt"))
}

func TestApplyAll_MatchFailureDoesNotStopOthers(t *testing.T) {
	w, _, root := newTestWorkspace(t)
	writeFile(t, root, "a.txt", "a\n")
	writeFile(t, root, "b.txt", "b\n")

	results, err := w.ApplyAll(context.Background(), []FileEdit{
		{Path: "a.txt", Document: block("zzz", "A")},
		{Path: "b.txt", Document: block("b", "B")},
		{Path: "a.txt", Document: block("a", "A")},
	}, Options{Parallel: 2})
	require.NoError(t, err)

	assert.False(t, results[0].OK())
	assert.True(t, results[1].OK())
	assert.True(t, results[2].OK())
	assert.Equal(t, "a\n", results[2].Before)
	assert.Equal(t, "A\n", readFile(t, root, "a.txt"))
	assert.Equal(t, "B\n", readFile(t, root, "b.txt"))
}

func TestApplyAll_InvalidPathTouchesNothing(t *testing.T) {
	w, _, root := newTestWorkspace(t)
	writeFile(t, root, "a.txt", "a\n")

	results, err := w.ApplyAll(context.Background(), []FileEdit{
		{Path: "a.txt", Document: block("a", "A")},
		{Path: "../escape.txt", Document: "x"},
	}, Options{})
	require.Error(t, err)
	assert.True(t, IsInvalidPath(err))
	assert.Contains(t, err.Error(), "edit 2")
	assert.Nil(t, results)
	assert.Equal(t, "a\n", readFile(t, root, "a.txt"))
}

func TestApplyAll_CanceledContext(t *testing.T) {
	w, _, root := newTestWorkspace(t)
	writeFile(t, root, "a.txt", "a\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := w.ApplyAll(ctx, []FileEdit{{Path: "a.txt", Document: block("a", "A")}}, Options{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "a\n", readFile(t, root, "a.txt"))
}

func TestApplyAll_Empty(t *testing.T) {
	w, _, _ := newTestWorkspace(t)
	results, err := w.ApplyAll(context.Background(), nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, results)
}
