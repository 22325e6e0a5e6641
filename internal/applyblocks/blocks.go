package applyblocks

import (
	"errors"
	"fmt"
)

// EditBlock is one parsed instruction. Search and Replace have trailing newlines trimmed.
type EditBlock struct {
	Search  string
	Replace string
}

// ParsedKind tags what Parse found in a document.
type ParsedKind int

const (
	_ ParsedKind = iota
	ParsedBlocks
	ParsedRawReplacement
)

// Parsed is the result of Parse. For ParsedBlocks, Blocks is non-empty and Raw is "". For ParsedRawReplacement, Blocks is nil and Raw is the document verbatim.
type Parsed struct {
	Kind   ParsedKind
	Blocks []EditBlock
	Raw    string
}

// Tier identifies which matching strategy located a search text.
type Tier int

const (
	_ Tier = iota
	TierExact
	TierLineTrimmed
	TierBlockAnchor
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierLineTrimmed:
		return "line-trimmed"
	case TierBlockAnchor:
		return "block-anchor"
	}
	return fmt.Sprintf("Tier(%d)", int(t))
}

// MatchResult is a located span. MatchedText is the literal text at Offset, which differs from the search text when Tier is not TierExact.
type MatchResult struct {
	Offset      int
	MatchedText string
	Tier        Tier
}

// AppliedBlock records where a block landed in the evolving document.
type AppliedBlock struct {
	ID            int      // index of the block in parsed order
	StartLine     int      // 1-based
	EndLine       int      // 1-based, inclusive; equals StartLine when the replacement is empty
	OriginalLines []string // the matched text, split on '\n'
	NewLineCount  int      // number of lines in the replacement; 0 for an empty replacement
}

// Result is the output of Apply. If Err is non-nil, Content equals the original input and AppliedBlocks is empty.
type Result struct {
	Content       string
	Err           error
	AppliedBlocks []AppliedBlock
}

// ErrNoMatch classifies failures where a block's search text matched nothing in the body.
var ErrNoMatch = errors.New("search text not found")

// IsNoMatch reports whether err (as found in Result.Err) means a search text matched nothing.
func IsNoMatch(err error) bool {
	return errors.Is(err, ErrNoMatch)
}

type noMatchError struct {
	search string
}

func (e *noMatchError) Error() string {
	return e.search + " does not match anything in the file."
}

func (e *noMatchError) Is(target error) bool {
	return target == ErrNoMatch
}

// NoMatchSearchText returns the unmodified search text carried by a no-match error, and whether err was one.
func NoMatchSearchText(err error) (string, bool) {
	var nm *noMatchError
	if errors.As(err, &nm) {
		return nm.search, true
	}
	return "", false
}
