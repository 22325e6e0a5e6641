package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/codalotl/blockpatch/internal/config"
	"github.com/codalotl/blockpatch/internal/diff"
	"github.com/codalotl/blockpatch/internal/simplelogger"
)

// runEnv is the I/O and settings shared by every command of one Run.
type runEnv struct {
	in     io.Reader
	out    io.Writer
	errW   io.Writer
	getenv func(string) string

	// Set by the root command's persistent pre-run.
	root string
	cfg  config.Config
}

// rootFlags are the persistent flags. They override config when set explicitly.
type rootFlags struct {
	root    string
	color   string
	context int
	width   int
}

func newRootCmd(env *runEnv) *cobra.Command {
	var flags rootFlags
	cmd := &cobra.Command{
		Use:   "blockpatch",
		Short: "Apply SEARCH/REPLACE edit blocks to files",
		Long: `blockpatch applies instruction documents made of SEARCH/REPLACE blocks to files.

Both block styles are accepted:

  ------- SEARCH          <<<<<<< SEARCH
  old text                old text
  =======                 =======
  new text                new text
  +++++++ REPLACE         >>>>>>> REPLACE

Search text is located exactly first, then line by line ignoring trailing
whitespace, then (for 3+ lines) by its first and last lines. Blocks given out
of order are applied anyway. If any block matches nothing, the file is left
untouched and the unmatched search text is reported.

A document with no blocks replaces the whole file.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return env.setup(cmd, flags)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.root, "root", "", "workspace root; file paths are relative to it (default: working directory)")
	pf.StringVar(&flags.color, "color", config.ColorAuto, "colorize diffs: auto, always, or never")
	pf.IntVar(&flags.context, "context", 3, "unchanged lines shown around each change")
	pf.IntVar(&flags.width, "width", 0, "max diff row width; 0 uses the terminal width")

	cmd.AddCommand(
		newApplyCmd(env),
		newRespondCmd(env),
		newDiffCmd(env),
		newParseCmd(env),
		newConfigCmd(env),
	)
	return cmd
}

// setup resolves the workspace root and loads config, then applies explicitly set flags on top.
func (env *runEnv) setup(cmd *cobra.Command, flags rootFlags) error {
	root := flags.root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	if fi, err := os.Stat(root); err != nil || !fi.IsDir() {
		return usageErrorf("--root %q is not a directory", flags.root)
	}
	env.root = root

	cfg, err := config.Load(root, env.getenv)
	if err != nil {
		return err
	}
	pf := cmd.Flags()
	if pf.Changed("color") {
		cfg.Color = strings.ToLower(flags.color)
	}
	if pf.Changed("context") {
		cfg.DiffContext = flags.context
	}
	if pf.Changed("width") {
		cfg.DiffWidth = flags.width
	}
	if err := cfg.Validate(); err != nil {
		return &usageError{err: err}
	}
	env.cfg = cfg

	simplelogger.SetPath(cfg.LogFile)
	simplelogger.Log("cli: root=%s config=%q color=%s context=%d width=%d parallel=%d", root, cfg.File, cfg.Color, cfg.DiffContext, cfg.DiffWidth, cfg.Parallel)
	return nil
}

// renderOptions returns diff rendering options for env.out.
func (env *runEnv) renderOptions(header string) diff.RenderOptions {
	opts := diff.RenderOptions{
		Header:       header,
		ContextLines: env.cfg.DiffContext,
		Width:        env.cfg.DiffWidth,
	}
	switch env.cfg.Color {
	case config.ColorAlways:
		opts.Color = true
	case config.ColorAuto:
		opts.Color = isTerminal(env.out) && env.getenv("NO_COLOR") == ""
	}
	if opts.Width == 0 {
		opts.Width = detectTerminalWidth(env.out, env.getenv)
	}
	return opts
}

func (env *runEnv) printf(format string, args ...any) {
	fmt.Fprintf(env.out, format, args...)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && f != nil && term.IsTerminal(int(f.Fd()))
}

func detectTerminalWidth(out io.Writer, getenv func(string) string) int {
	if outFile, ok := out.(*os.File); ok && outFile != nil {
		fd := int(outFile.Fd())
		if term.IsTerminal(fd) {
			if w, _, err := term.GetSize(fd); err == nil && w > 0 {
				return w
			}
		}
	}
	if cols := strings.TrimSpace(getenv("COLUMNS")); cols != "" {
		if n, err := strconv.Atoi(cols); err == nil && n > 0 {
			return n
		}
	}
	return 0
}
