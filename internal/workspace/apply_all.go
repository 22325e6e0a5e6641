package workspace

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/codalotl/blockpatch/internal/simplelogger"
)

// ApplyAll applies each edit to its file and returns one FileResult per edit, in input order.
//
// Edits naming the same file (after path cleaning) are applied one after another in input order, each seeing the body the previous one produced. Distinct files are
// processed concurrently, at most opts.Parallel at a time. Every path is validated before any file is touched.
//
// The error is non-nil for invalid paths, I/O failures, and cancellation; results for files that finished are still filled in. Match failures are not errors: check
// FileResult.OK.
func (w *Workspace) ApplyAll(ctx context.Context, edits []FileEdit, opts Options) ([]FileResult, error) {
	groups, err := w.group(edits)
	if err != nil {
		return nil, err
	}

	results := make([]FileResult, len(edits))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Parallel, 1))
	for _, grp := range groups {
		g.Go(func() error {
			st, err := w.load(grp.rel)
			if err != nil {
				return err
			}
			for _, i := range grp.indexes {
				res, next, err := w.applyTo(gctx, st, edits[i].Document, opts)
				if err != nil {
					return err
				}
				results[i] = res
				st = next
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		simplelogger.Log("workspace: apply all: %v", err)
		return results, err
	}
	return results, nil
}

type pathGroup struct {
	rel     string
	indexes []int // into the edits slice, ascending
}

// group resolves every edit path and buckets edits by file, ordered by first appearance.
func (w *Workspace) group(edits []FileEdit) ([]*pathGroup, error) {
	var groups []*pathGroup
	byRel := make(map[string]*pathGroup)
	for i, e := range edits {
		rel, err := w.resolve(e.Path)
		if err != nil {
			return nil, fmt.Errorf("edit %d: %w", i+1, err)
		}
		grp, ok := byRel[rel]
		if !ok {
			grp = &pathGroup{rel: rel}
			byRel[rel] = grp
			groups = append(groups, grp)
		}
		grp.indexes = append(grp.indexes, i)
	}
	return groups, nil
}
