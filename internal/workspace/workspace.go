// Package workspace applies instruction documents to files under a root directory.
//
// It is the file-writing side of the patch engine: it resolves paths, reads the current body (a missing file is an empty body), runs applyblocks.Apply, writes the
// result, reports each applied block to an edittrack.Recorder, and computes the line diff used for decorations. Match failures are returned as data in
// FileResult.Patch.Err; the returned error is reserved for invalid paths, I/O, and cancellation.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/codalotl/blockpatch/internal/applyblocks"
	"github.com/codalotl/blockpatch/internal/diff"
	"github.com/codalotl/blockpatch/internal/edittrack"
	"github.com/codalotl/blockpatch/internal/simplelogger"
)

var errInvalidPath = errors.New("invalid path")

// IsInvalidPath reports whether err (as returned from ApplyFile or ApplyAll) was caused by a path that is empty, names the workspace root, or escapes it.
func IsInvalidPath(err error) bool {
	return errors.Is(err, errInvalidPath)
}

func invalidPathError(err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(errInvalidPath, err)
}

// Options control how documents are applied.
type Options struct {
	DryRun   bool // compute results but don't write files or record edits
	Parallel int  // ApplyAll: max files processed at once; <= 0 means 1
}

// FileEdit is one instruction document aimed at one file.
type FileEdit struct {
	Path     string // relative to the workspace root; absolute paths must lie inside it
	Document string
}

// FileResult describes the outcome of applying one document to one file.
type FileResult struct {
	Path      string // slash-separated, relative to the workspace root
	IsNewFile bool   // the file did not exist before this application
	Before    string // body before this application
	Patch     applyblocks.Result
	Diff      diff.Result // Before vs Patch.Content; zero when Patch.Err is set
	Written   bool
}

// OK reports whether every block in the document was applied.
func (r FileResult) OK() bool {
	return r.Patch.Err == nil
}

// Workspace applies documents to files rooted at one directory.
type Workspace struct {
	root     string
	recorder edittrack.Recorder
}

// New returns a Workspace rooted at rootAbs, which must be absolute. recorder may be nil.
func New(rootAbs string, recorder edittrack.Recorder) (*Workspace, error) {
	if !filepath.IsAbs(rootAbs) {
		return nil, fmt.Errorf("workspace root must be absolute: %q", rootAbs)
	}
	return &Workspace{root: filepath.Clean(rootAbs), recorder: recorder}, nil
}

// Root returns the absolute workspace root.
func (w *Workspace) Root() string {
	return w.root
}

// ApplyFile applies document to the file at relPath. A missing file is treated as empty and created on success (along with its parent directories).
//
// If the document fails to apply, the file is left untouched, nothing is recorded, and the failure is reported in FileResult.Patch.Err with a nil error.
func (w *Workspace) ApplyFile(ctx context.Context, relPath string, document string, opts Options) (FileResult, error) {
	rel, err := w.resolve(relPath)
	if err != nil {
		return FileResult{}, err
	}
	st, err := w.load(rel)
	if err != nil {
		return FileResult{}, err
	}
	res, _, err := w.applyTo(ctx, st, document, opts)
	return res, err
}

// fileState is the body of one file as seen by a sequence of applications.
type fileState struct {
	rel    string
	exists bool
	body   string
	mode   fs.FileMode
}

func (w *Workspace) abs(rel string) string {
	return filepath.Join(w.root, filepath.FromSlash(rel))
}

func (w *Workspace) load(rel string) (fileState, error) {
	st := fileState{rel: rel, mode: 0o644}
	path := w.abs(rel)
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return st, nil
		}
		return st, fmt.Errorf("stat %s: %w", rel, err)
	}
	if fi.IsDir() {
		return st, fmt.Errorf("%s is a directory", rel)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return st, fmt.Errorf("read %s: %w", rel, err)
	}
	st.exists = true
	st.body = string(data)
	st.mode = fi.Mode().Perm()
	return st, nil
}

// applyTo runs document against st and returns the result plus the state a following application should see.
func (w *Workspace) applyTo(ctx context.Context, st fileState, document string, opts Options) (FileResult, fileState, error) {
	if err := ctx.Err(); err != nil {
		return FileResult{}, st, err
	}

	res := FileResult{
		Path:      st.rel,
		IsNewFile: !st.exists,
		Before:    st.body,
		Patch:     patch(st, document),
	}
	if res.Patch.Err != nil {
		simplelogger.Log("workspace: %s: %v", st.rel, res.Patch.Err)
		return res, st, nil
	}
	res.Diff = diff.ComputeDiff(st.body, res.Patch.Content)
	added, removed := res.Diff.Counts()
	simplelogger.Log("workspace: %s: applied %d blocks (+%d -%d) new=%v dry=%v", st.rel, len(res.Patch.AppliedBlocks), added, removed, res.IsNewFile, opts.DryRun)

	next := st
	next.exists = true
	next.body = res.Patch.Content
	if opts.DryRun {
		return res, next, nil
	}

	if !st.exists || res.Patch.Content != st.body {
		path := w.abs(st.rel)
		if err := ensureParentDir(path); err != nil {
			return res, st, fmt.Errorf("create parent of %s: %w", st.rel, err)
		}
		if err := os.WriteFile(path, []byte(res.Patch.Content), st.mode); err != nil {
			return res, st, fmt.Errorf("write %s: %w", st.rel, err)
		}
		res.Written = true
	}
	w.record(res)
	return res, next, nil
}

// patch applies document to st's body. A missing file takes a raw-replacement document as its initial body; everything else goes through applyblocks.Apply unchanged.
func patch(st fileState, document string) applyblocks.Result {
	if !st.exists {
		if p := applyblocks.Parse(document); p.Kind == applyblocks.ParsedRawReplacement {
			return applyblocks.Result{Content: p.Raw}
		}
	}
	return applyblocks.Apply(st.body, document)
}

func (w *Workspace) record(res FileResult) {
	if w.recorder == nil {
		return
	}
	if len(res.Patch.AppliedBlocks) == 0 {
		if res.IsNewFile {
			w.recorder.Record(creationEdit(res))
		}
		return
	}
	edits := make([]edittrack.Edit, 0, len(res.Patch.AppliedBlocks))
	for _, ab := range res.Patch.AppliedBlocks {
		edits = append(edits, edittrack.Edit{
			Path:          res.Path,
			BlockID:       ab.ID,
			StartLine:     ab.StartLine,
			EndLine:       ab.EndLine,
			OriginalLines: ab.OriginalLines,
			NewLineCount:  ab.NewLineCount,
			BaseContent:   res.Before,
			IsNewFile:     res.IsNewFile,
			NewContent:    res.Patch.Content,
		})
	}
	w.recorder.Record(edits...)
}

// creationEdit records a file created without any located block (raw document or blank SEARCH) as one edit spanning the whole new content.
func creationEdit(res FileResult) edittrack.Edit {
	n := strings.Count(res.Patch.Content, "\n")
	if res.Patch.Content != "" && !strings.HasSuffix(res.Patch.Content, "\n") {
		n++
	}
	return edittrack.Edit{
		Path:         res.Path,
		StartLine:    1,
		EndLine:      max(n, 1),
		NewLineCount: n,
		IsNewFile:    true,
		NewContent:   res.Patch.Content,
	}
}

// resolve returns raw as a clean slash-separated path relative to the root.
func (w *Workspace) resolve(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", invalidPathError(errors.New("path is required"))
	}
	path := filepath.FromSlash(raw)
	var abs string
	if filepath.IsAbs(path) {
		abs = filepath.Clean(path)
	} else {
		abs = filepath.Clean(filepath.Join(w.root, path))
	}

	rel, err := filepath.Rel(w.root, abs)
	if err != nil {
		return "", invalidPathError(err)
	}
	if rel == "." {
		return "", invalidPathError(fmt.Errorf("path %q resolves to workspace root", raw))
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", invalidPathError(fmt.Errorf("path %q escapes workspace %s", raw, w.root))
	}
	return filepath.ToSlash(rel), nil
}

func ensureParentDir(path string) error {
	if d := filepath.Dir(path); d != "." && d != "" {
		return os.MkdirAll(d, 0o777)
	}
	return nil
}
