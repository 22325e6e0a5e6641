package cli

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/codalotl/blockpatch/internal/applyblocks"
	"github.com/codalotl/blockpatch/internal/edittrack"
	"github.com/codalotl/blockpatch/internal/workspace"
)

type applyFlags struct {
	edits     string
	clipboard bool
	dryRun    bool
}

func newApplyCmd(env *runEnv) *cobra.Command {
	var flags applyFlags
	cmd := &cobra.Command{
		Use:   "apply FILE",
		Short: "Apply an instruction document to one file",
		Long: `Apply reads an instruction document (from -e, the clipboard, or stdin) and
applies it to FILE. A missing FILE is created.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageErrorf("apply takes exactly one FILE, got %d args", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.clipboard && flags.edits != "" {
				return usageErrorf("--clipboard and --edits are mutually exclusive")
			}
			var document string
			var err error
			if flags.clipboard {
				document, err = readClipboardInput()
			} else {
				document, err = env.readInput(flags.edits)
			}
			if err != nil {
				return err
			}

			tracker := &edittrack.Tracker{}
			ws, err := workspace.New(env.root, tracker)
			if err != nil {
				return err
			}
			res, err := ws.ApplyFile(cmd.Context(), args[0], document, workspace.Options{DryRun: flags.dryRun})
			if err != nil {
				return err
			}
			if !res.OK() {
				return fmt.Errorf("%s: %w", res.Path, res.Patch.Err)
			}
			env.printFileResult(res, flags.dryRun)
			return nil
		},
	}
	cmd.Flags().StringVarP(&flags.edits, "edits", "e", "", "instruction document file; - or empty reads stdin")
	cmd.Flags().BoolVar(&flags.clipboard, "clipboard", false, "read the instruction document from the clipboard")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "show the result without writing")
	return cmd
}

// printFileResult prints a summary line, the applied-block table, and the rendered diff for a successful application.
func (env *runEnv) printFileResult(res workspace.FileResult, dryRun bool) {
	added, removed := res.Diff.Counts()
	verb := status(res, dryRun)
	env.printf("%s: %s, %s (+%d -%d)\n", res.Path, verb, pluralize(len(res.Patch.AppliedBlocks), "block"), added, removed)

	if len(res.Patch.AppliedBlocks) > 0 {
		env.printf("%s", appliedBlocksTable(res.Patch.AppliedBlocks))
	}
	if res.Diff.HasChanges() {
		env.printf("%s\n", res.Diff.Render(env.renderOptions(res.Path)))
	}
}

func appliedBlocksTable(blocks []applyblocks.AppliedBlock) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Block", "Lines", "Replaced", "New"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT})
	for _, b := range blocks {
		table.Append([]string{
			strconv.Itoa(b.ID + 1),
			lineRange(b.StartLine, b.EndLine),
			strconv.Itoa(len(b.OriginalLines)),
			strconv.Itoa(b.NewLineCount),
		})
	}
	table.Render()
	return buf.String()
}

func lineRange(start, end int) string {
	if start == end {
		return strconv.Itoa(start)
	}
	return fmt.Sprintf("%d-%d", start, end)
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

// firstLine returns s's first line, marking with an ellipsis that more followed.
func firstLine(s string) string {
	line, rest, found := strings.Cut(s, "\n")
	line = strings.TrimRight(line, "\r")
	if found && rest != "" {
		return line + " …"
	}
	return line
}
