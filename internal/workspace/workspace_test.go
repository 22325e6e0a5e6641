package workspace

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codalotl/blockpatch/internal/applyblocks"
	"github.com/codalotl/blockpatch/internal/edittrack"
)

func block(search, replace string) string {
	return "------- SEARCH\n" + search + "\n=======\n" + replace + "\n+++++++ REPLACE\n"
}

func newTestWorkspace(t *testing.T) (*Workspace, *edittrack.Tracker, string) {
	t.Helper()
	root := t.TempDir()
	tr := &edittrack.Tracker{}
	w, err := New(root, tr)
	require.NoError(t, err)
	return w, tr, root
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(b)
}

func TestNew_RequiresAbsoluteRoot(t *testing.T) {
	_, err := New("relative/dir", nil)
	require.Error(t, err)
}

func TestApplyFile_UpdatesExistingFile(t *testing.T) {
	w, tr, root := newTestWorkspace(t)
	writeFile(t, root, "pkg/a.go", "line1\nline2\nline3")

	res, err := w.ApplyFile(context.Background(), "pkg/a.go", block("line2", "lineX"), Options{})
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.True(t, res.Written)
	assert.False(t, res.IsNewFile)
	assert.Equal(t, "pkg/a.go", res.Path)
	assert.Equal(t, "line1\nline2\nline3", res.Before)
	assert.Equal(t, "line1\nlineX\nline3", readFile(t, root, "pkg/a.go"))
	assert.Equal(t, []int{1}, res.Diff.AddedLineNumbers)
	assert.Equal(t, []int{1}, res.Diff.RemovedLineNumbers)

	edits := tr.Edits()
	require.Len(t, edits, 1)
	assert.Equal(t, edittrack.Edit{
		Path:          "pkg/a.go",
		BlockID:       0,
		StartLine:     2,
		EndLine:       2,
		OriginalLines: []string{"line2"},
		NewLineCount:  1,
		BaseContent:   "line1\nline2\nline3",
		IsNewFile:     false,
		NewContent:    "line1\nlineX\nline3",
	}, edits[0])
}

func TestApplyFile_MissingFileIsCreated(t *testing.T) {
	w, tr, root := newTestWorkspace(t)

	res, err := w.ApplyFile(context.Background(), "new/dir/b.txt", "hello\nworld\n", Options{})
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.True(t, res.IsNewFile)
	assert.True(t, res.Written)
	assert.Equal(t, "", res.Before)
	assert.Equal(t, "hello\nworld\n", readFile(t, root, "new/dir/b.txt"))
	assert.Equal(t, []int{0, 1}, res.Diff.AddedLineNumbers)
	edits := tr.Edits()
	require.Len(t, edits, 1)
	assert.Equal(t, edittrack.Edit{
		Path:         "new/dir/b.txt",
		StartLine:    1,
		EndLine:      2,
		NewLineCount: 2,
		IsNewFile:    true,
		NewContent:   "hello\nworld\n",
	}, edits[0])
}

func TestApplyFile_RawDocumentOnExistingEmptyFile(t *testing.T) {
	w, _, root := newTestWorkspace(t)
	writeFile(t, root, "empty.txt", "")

	res, err := w.ApplyFile(context.Background(), "empty.txt", "ignored\n", Options{})
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.False(t, res.IsNewFile)
	assert.Equal(t, "", res.Patch.Content)
	assert.False(t, res.Written)
}

func TestApplyFile_BlankSearchOnMissingFile(t *testing.T) {
	w, tr, root := newTestWorkspace(t)

	res, err := w.ApplyFile(context.Background(), "c.txt", block("", "fresh"), Options{})
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.True(t, res.IsNewFile)
	assert.Equal(t, "fresh", readFile(t, root, "c.txt"))

	edits := tr.ForPath("c.txt")
	require.Len(t, edits, 1)
	assert.True(t, edits[0].IsNewFile)
	assert.Equal(t, "fresh", edits[0].NewContent)
	assert.Equal(t, 1, edits[0].NewLineCount)
	assert.Empty(t, edits[0].BaseContent)
}

func TestCreationEdit_LineCounts(t *testing.T) {
	tests := []struct {
		content string
		endLine int
		count   int
	}{
		{"", 1, 0},
		{"a", 1, 1},
		{"a\n", 1, 1},
		{"a\nb", 2, 2},
		{"a\nb\n\n", 3, 3},
	}
	for _, tt := range tests {
		res := FileResult{Path: "x.txt", IsNewFile: true}
		res.Patch.Content = tt.content
		e := creationEdit(res)
		assert.Equal(t, 1, e.StartLine, "%q", tt.content)
		assert.Equal(t, tt.endLine, e.EndLine, "%q", tt.content)
		assert.Equal(t, tt.count, e.NewLineCount, "%q", tt.content)
		assert.True(t, e.IsNewFile)
	}
}

func TestApplyFile_NoMatchLeavesFileAlone(t *testing.T) {
	w, tr, root := newTestWorkspace(t)
	writeFile(t, root, "a.txt", "alpha\nbeta\n")

	res, err := w.ApplyFile(context.Background(), "a.txt", block("gamma", "delta"), Options{})
	require.NoError(t, err)
	require.False(t, res.OK())
	assert.True(t, applyblocks.IsNoMatch(res.Patch.Err))
	assert.Contains(t, res.Patch.Err.Error(), "gamma does not match anything in the file.")
	assert.False(t, res.Written)
	assert.Equal(t, "alpha\nbeta\n", readFile(t, root, "a.txt"))
	assert.Empty(t, tr.Edits())
}

func TestApplyFile_DryRun(t *testing.T) {
	w, tr, root := newTestWorkspace(t)
	writeFile(t, root, "a.txt", "one\ntwo\n")

	res, err := w.ApplyFile(context.Background(), "a.txt", block("two", "TWO"), Options{DryRun: true})
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.False(t, res.Written)
	assert.Equal(t, "one\nTWO\n", res.Patch.Content)
	assert.Equal(t, "one\ntwo\n", readFile(t, root, "a.txt"))
	assert.Empty(t, tr.Edits())

	_, err = w.ApplyFile(context.Background(), "missing.txt", "x", Options{DryRun: true})
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "missing.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestApplyFile_UnchangedContentIsNotRewritten(t *testing.T) {
	w, tr, root := newTestWorkspace(t)
	writeFile(t, root, "a.txt", "same\n")

	res, err := w.ApplyFile(context.Background(), "a.txt", block("same", "same"), Options{})
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.False(t, res.Written)
	assert.False(t, res.Diff.HasChanges())
	assert.Len(t, tr.Edits(), 1)
}

func TestApplyFile_CRLFBodyPassedVerbatim(t *testing.T) {
	w, _, root := newTestWorkspace(t)
	writeFile(t, root, "win.txt", "a\r\nb\r\nc\r\n")

	res, err := w.ApplyFile(context.Background(), "win.txt", block("b", "B"), Options{})
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.Equal(t, "a\r\nB\r\nc\r\n", readFile(t, root, "win.txt"))
}

func TestApplyFile_PreservesMode(t *testing.T) {
	w, _, root := newTestWorkspace(t)
	path := filepath.Join(root, "run.sh")
	require.NoError(t, os.WriteFile(path, []byte("echo hi\n"), 0o755))

	_, err := w.ApplyFile(context.Background(), "run.sh", block("echo hi", "echo bye"), Options{})
	require.NoError(t, err)
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), fi.Mode().Perm())
}

func TestApplyFile_InvalidPaths(t *testing.T) {
	w, _, root := newTestWorkspace(t)

	tests := []struct {
		name string
		path string
	}{
		{name: "empty", path: ""},
		{name: "blank", path: "   "},
		{name: "root", path: "."},
		{name: "root absolute", path: root},
		{name: "parent", path: "../outside.txt"},
		{name: "sneaky parent", path: "a/../../outside.txt"},
		{name: "absolute outside", path: filepath.Join(filepath.Dir(root), "outside.txt")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.ApplyFile(context.Background(), tt.path, "x", Options{})
			require.Error(t, err)
			assert.True(t, IsInvalidPath(err))
		})
	}
}

func TestApplyFile_AbsolutePathInsideRoot(t *testing.T) {
	w, _, root := newTestWorkspace(t)

	res, err := w.ApplyFile(context.Background(), filepath.Join(root, "sub", "f.txt"), "x\n", Options{})
	require.NoError(t, err)
	assert.Equal(t, "sub/f.txt", res.Path)
}

func TestApplyFile_DirectoryIsNotInvalidPath(t *testing.T) {
	w, _, root := newTestWorkspace(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dir"), 0o755))

	_, err := w.ApplyFile(context.Background(), "dir", "x", Options{})
	require.Error(t, err)
	assert.False(t, IsInvalidPath(err))
	assert.True(t, strings.Contains(err.Error(), "is a directory"))
}

func TestApplyFile_CanceledContext(t *testing.T) {
	w, _, root := newTestWorkspace(t)
	writeFile(t, root, "a.txt", "a\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := w.ApplyFile(ctx, "a.txt", block("a", "b"), Options{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "a\n", readFile(t, root, "a.txt"))
}
