package diff

// Kind is the change type of a Segment.
type Kind int

// Kinds of segments.
const (
	KindUnchanged Kind = iota
	KindAdded
	KindRemoved
)

func (k Kind) String() string {
	switch k {
	case KindUnchanged:
		return "unchanged"
	case KindAdded:
		return "added"
	case KindRemoved:
		return "removed"
	}
	return "unknown"
}

// Segment is a run of whole lines sharing one Kind.
type Segment struct {
	Kind      Kind
	LineStart int    // 0-based; old-text line space for KindUnchanged and KindRemoved, new-text line space for KindAdded.
	LineCount int    // number of content lines in Content (a trailing '\n' does not start another line).
	Content   string // raw text of the run, including '\n' terminators.
}

// Result is a line diff from old text to new text.
//
// As an illustration: a file edited in two places yields Unchanged (prefix), Removed+Added (first edit), Unchanged (between), Added (a pure insertion), Unchanged (suffix).
type Result struct {
	Segments           []Segment
	AddedLineNumbers   []int // 0-based, new-text line space, strictly increasing.
	RemovedLineNumbers []int // 0-based, old-text line space, strictly increasing.
}

// Counts returns the number of added and removed lines.
func (r Result) Counts() (added, removed int) {
	return len(r.AddedLineNumbers), len(r.RemovedLineNumbers)
}

// HasChanges reports whether any line was added or removed.
func (r Result) HasChanges() bool {
	return len(r.AddedLineNumbers) > 0 || len(r.RemovedLineNumbers) > 0
}

// defaultEOL is the line separator. Callsites name it instead of a '\n' literal so a configurable EOL has one place to hook in.
const defaultEOL = "\n"
