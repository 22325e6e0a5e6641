// Package applyblocks parses SEARCH/REPLACE edit blocks written by an agent and applies them to a text body.
//
// Grammar: the modern form is
//
//	------- SEARCH
//	<search lines>
//	=======
//	<replace lines>
//	+++++++ REPLACE
//
// where the dash, equals, and plus runs are 7 or more characters and the newline after REPLACE is optional. If a document has no modern blocks, the legacy form is tried:
// a SEARCH marker with 1-3 leading '<', a literal "=======" divider, and a ">>>REPLACE" marker; a legacy block also ends at the next SEARCH marker or at end of document.
// Trailing newlines are trimmed from every captured search/replace span. A document with no blocks of either form is a raw replacement of the whole body.
//
// Locating: each search text is found with three tiers, tried in order: exact substring, line-trimmed (lines compared after trimming trailing whitespace), and block
// anchor (for 3+ line searches, only the first and last lines are compared). The earliest match of the first succeeding tier wins.
//
// Applying: blocks are applied in document order behind a forward-moving cursor. A block whose only match lies behind the cursor is deferred and applied after the
// main pass; a block that matches nowhere fails the whole call and the original body is returned unchanged.
//
// Offsets are byte offsets. Line numbers in AppliedBlock are 1-based.
//
// Everything in this package is pure: no I/O, no shared state, safe for concurrent use on independent inputs.
package applyblocks
