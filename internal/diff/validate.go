package diff

import (
	"fmt"
)

// validate checks the Result invariants against the line counts of the old and new texts and returns an error on the first violation.
func (r Result) validate(oldLines, newLines int) error {
	oldCursor, newCursor := 0, 0
	var added, removed []int

	for si, s := range r.Segments {
		if s.LineCount <= 0 {
			return fmt.Errorf("segment[%d]: LineCount must be positive, got %d", si, s.LineCount)
		}
		if got := countLines(s.Content); got != s.LineCount {
			return fmt.Errorf("segment[%d]: Content has %d lines but LineCount is %d", si, got, s.LineCount)
		}
		switch s.Kind {
		case KindUnchanged:
			if s.LineStart != oldCursor {
				return fmt.Errorf("segment[%d]: unchanged LineStart %d, want old cursor %d", si, s.LineStart, oldCursor)
			}
			oldCursor += s.LineCount
			newCursor += s.LineCount
		case KindRemoved:
			if s.LineStart != oldCursor {
				return fmt.Errorf("segment[%d]: removed LineStart %d, want old cursor %d", si, s.LineStart, oldCursor)
			}
			removed = appendRange(removed, s.LineStart, s.LineCount)
			oldCursor += s.LineCount
		case KindAdded:
			if s.LineStart != newCursor {
				return fmt.Errorf("segment[%d]: added LineStart %d, want new cursor %d", si, s.LineStart, newCursor)
			}
			added = appendRange(added, s.LineStart, s.LineCount)
			newCursor += s.LineCount
		default:
			return fmt.Errorf("segment[%d]: unknown kind %d", si, s.Kind)
		}
	}

	if oldCursor != oldLines {
		return fmt.Errorf("segments cover %d old lines, want %d", oldCursor, oldLines)
	}
	if newCursor != newLines {
		return fmt.Errorf("segments cover %d new lines, want %d", newCursor, newLines)
	}
	if err := sameNumbers("AddedLineNumbers", r.AddedLineNumbers, added); err != nil {
		return err
	}
	return sameNumbers("RemovedLineNumbers", r.RemovedLineNumbers, removed)
}

func sameNumbers(label string, got, want []int) error {
	if len(got) != len(want) {
		return fmt.Errorf("%s has %d entries, want %d", label, len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			return fmt.Errorf("%s[%d] = %d, want %d", label, i, got[i], want[i])
		}
		if i > 0 && got[i] <= got[i-1] {
			return fmt.Errorf("%s is not strictly increasing at %d", label, i)
		}
	}
	return nil
}
