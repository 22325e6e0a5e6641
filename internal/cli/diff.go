package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codalotl/blockpatch/internal/diff"
)

type diffSegmentJSON struct {
	Kind      string `json:"kind"`
	LineStart int    `json:"lineStart"`
	LineCount int    `json:"lineCount"`
	Content   string `json:"content"`
}

type diffJSON struct {
	Segments           []diffSegmentJSON `json:"segments"`
	AddedLineNumbers   []int             `json:"addedLineNumbers"`
	RemovedLineNumbers []int             `json:"removedLineNumbers"`
}

func newDiffCmd(env *runEnv) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Show the line diff between two files",
		Long: `Diff prints the line diff between OLD and NEW with added and removed lines
marked. Line numbers in --json output are 0-based; rendered line numbers are
1-based. A missing file is treated as empty.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return usageErrorf("diff takes OLD and NEW, got %d args", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			oldText, err := readOptionalFile(args[0])
			if err != nil {
				return err
			}
			newText, err := readOptionalFile(args[1])
			if err != nil {
				return err
			}
			r := diff.ComputeDiff(oldText, newText)

			if asJSON {
				enc := json.NewEncoder(env.out)
				enc.SetIndent("", "  ")
				return enc.Encode(toDiffJSON(r))
			}
			if !r.HasChanges() {
				env.printf("no changes\n")
				return nil
			}
			env.printf("%s\n", r.Render(env.renderOptions(fmt.Sprintf("%s -> %s", args[0], args[1]))))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print segments and changed line numbers as JSON")
	return cmd
}

func toDiffJSON(r diff.Result) diffJSON {
	out := diffJSON{
		Segments:           []diffSegmentJSON{},
		AddedLineNumbers:   r.AddedLineNumbers,
		RemovedLineNumbers: r.RemovedLineNumbers,
	}
	for _, s := range r.Segments {
		out.Segments = append(out.Segments, diffSegmentJSON{
			Kind:      s.Kind.String(),
			LineStart: s.LineStart,
			LineCount: s.LineCount,
			Content:   s.Content,
		})
	}
	return out
}

// readOptionalFile reads path, treating a missing file as empty.
func readOptionalFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}
