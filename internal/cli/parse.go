package cli

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/codalotl/blockpatch/internal/applyblocks"
)

func newParseCmd(env *runEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "parse [EDITS|-]",
		Short: "Show the edit blocks found in an instruction document",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return usageErrorf("parse takes at most one EDITS file, got %d args", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var src string
			if len(args) == 1 {
				src = args[0]
			}
			document, err := env.readInput(src)
			if err != nil {
				return err
			}

			parsed := applyblocks.Parse(document)
			if parsed.Kind == applyblocks.ParsedRawReplacement {
				env.printf("no edit blocks; the document replaces the whole file (%s)\n", pluralize(lineCount(parsed.Raw), "line"))
				return nil
			}
			env.printf("%s\n", pluralize(len(parsed.Blocks), "block"))
			env.printf("%s", parsedBlocksTable(parsed.Blocks))
			return nil
		},
	}
}

func parsedBlocksTable(blocks []applyblocks.EditBlock) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Block", "Search", "Replace", "Search Starts"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT})
	for i, b := range blocks {
		start := firstLine(b.Search)
		if strings.TrimSpace(b.Search) == "" {
			start = "(whole file)"
		}
		table.Append([]string{
			strconv.Itoa(i + 1),
			pluralize(lineCount(b.Search), "line"),
			pluralize(lineCount(b.Replace), "line"),
			start,
		})
	}
	table.Render()
	return buf.String()
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(strings.TrimSuffix(s, "\n"), "\n") + 1
}
