// Package diff computes line-level change scripts between an "old" and a "new" text, for highlighting added and removed lines in a review surface.
//
// Representation: a Result holds an ordered slice of segments. Each segment is a run of whole lines tagged KindAdded, KindRemoved, or KindUnchanged, with the raw text
// of the run (including '\n' terminators) and its line count.
//
// Coordinates: LineStart is 0-based. Unchanged and Removed segments are positioned in the old text's line space; Added segments are positioned in the new text's line space.
//
// Invariants:
//   - Unchanged and Removed segments, in order, tile the old text's lines with no gaps or overlaps.
//   - Added and Unchanged segments, in order, tile the new text's lines with no gaps or overlaps.
//   - AddedLineNumbers and RemovedLineNumbers are non-negative and strictly increasing, and list exactly the lines covered by Added and Removed segments.
//   - If old == new, every segment is Unchanged and both number lists are empty.
//
// Getting a diff:
//
//	r := diff.ComputeDiff(oldText, newText)
//	fmt.Println(r.Render(diff.RenderOptions{Color: true, ContextLines: 3}))
//
// Newlines: '\n' is the line separator. The last line may not end with '\n'. A '\r' before '\n' is part of the line, so "a\r\n" and "a\n" are different lines.
package diff
