package cli

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/codalotl/blockpatch/internal/edittrack"
	"github.com/codalotl/blockpatch/internal/response"
	"github.com/codalotl/blockpatch/internal/workspace"
)

type respondFlags struct {
	dryRun    bool
	parallel  int
	clipboard bool
}

func newRespondCmd(env *runEnv) *cobra.Command {
	var flags respondFlags
	cmd := &cobra.Command{
		Use:   "respond [RESPONSE.md|-]",
		Short: "Apply every file edit in an agent's markdown response",
		Long: `Respond reads a markdown response and applies each fenced code block that
names a file, either in its info string (` + "```go path/to/file.go" + `) or as a
code span in the paragraph right before it. Edits to the same file apply in
order; different files are processed in parallel.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return usageErrorf("respond takes at most one RESPONSE file, got %d args", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var src string
			if len(args) == 1 {
				src = args[0]
			}
			if flags.clipboard && src != "" {
				return usageErrorf("--clipboard and a RESPONSE file are mutually exclusive")
			}
			var markdown string
			var err error
			if flags.clipboard {
				markdown, err = readClipboardInput()
			} else {
				markdown, err = env.readInput(src)
			}
			if err != nil {
				return err
			}

			edits, err := response.Extract([]byte(markdown))
			if err != nil {
				return err
			}
			if len(edits) == 0 {
				return errors.New("no file edits found in response")
			}

			parallel := env.cfg.Parallel
			if cmd.Flags().Changed("parallel") {
				if flags.parallel < 1 {
					return usageErrorf("--parallel must be >= 1")
				}
				parallel = flags.parallel
			}

			ws, err := workspace.New(env.root, &edittrack.Tracker{})
			if err != nil {
				return err
			}
			results, err := ws.ApplyAll(cmd.Context(), edits, workspace.Options{DryRun: flags.dryRun, Parallel: parallel})
			if err != nil {
				return err
			}
			return env.printResults(results, flags.dryRun)
		},
	}
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "show the results without writing")
	cmd.Flags().IntVarP(&flags.parallel, "parallel", "p", 0, "files applied at once (default from config)")
	cmd.Flags().BoolVar(&flags.clipboard, "clipboard", false, "read the response from the clipboard")
	return cmd
}

// printResults prints a per-edit table, each failure, and the diffs of successful edits. It returns an error if any edit failed.
func (env *runEnv) printResults(results []workspace.FileResult, dryRun bool) error {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"#", "Path", "Status", "Blocks", "+", "-"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT})

	failed := 0
	totalAdded, totalRemoved := 0, 0
	for i, res := range results {
		added, removed := res.Diff.Counts()
		totalAdded += added
		totalRemoved += removed
		if !res.OK() {
			failed++
		}
		table.Append([]string{
			strconv.Itoa(i + 1),
			res.Path,
			status(res, dryRun),
			strconv.Itoa(len(res.Patch.AppliedBlocks)),
			strconv.Itoa(added),
			strconv.Itoa(removed),
		})
	}
	table.SetFooter([]string{"", pluralize(len(results), "edit"), fmt.Sprintf("%d failed", failed), "", strconv.Itoa(totalAdded), strconv.Itoa(totalRemoved)})
	table.Render()
	env.printf("%s", buf.String())

	for i, res := range results {
		if !res.OK() {
			env.printf("\nedit %d (%s) failed: %v\n", i+1, res.Path, res.Patch.Err)
			continue
		}
		if res.Diff.HasChanges() {
			env.printf("\n%s\n", res.Diff.Render(env.renderOptions(res.Path)))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d edits failed", failed, len(results))
	}
	return nil
}

func status(res workspace.FileResult, dryRun bool) string {
	switch {
	case !res.OK():
		return "failed"
	case dryRun && res.IsNewFile:
		return "would create"
	case dryRun:
		return "would update"
	case res.IsNewFile:
		return "created"
	case !res.Written:
		return "unchanged"
	}
	return "updated"
}
