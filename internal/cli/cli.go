// Package cli implements the blockpatch command line: apply instruction documents to files, apply whole agent responses, and render line diffs.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/codalotl/blockpatch/internal/simplelogger"
)

// Version is the blockpatch version. It is a var so build tooling can override it with -ldflags "-X .../internal/cli.Version=1.2.3".
var Version = "0.3.0"

// RunOptions override standard I/O and the environment. Nil fields use the process defaults. Overriding is useful for testing.
type RunOptions struct {
	In     io.Reader
	Out    io.Writer
	Err    io.Writer
	Getenv func(string) string
}

// usageError marks errors caused by malformed args or flags.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// Run runs the CLI with args (typically os.Args).
//
// It returns a recommended exit code and an error, if any:
//   - 0 -> err == nil
//   - 1 -> err != nil, but args were sound (ex: a search text did not match)
//   - 2 -> err != nil, args or flags were malformed
//
// On error, Run has already printed the message to opts.Err (or stderr).
func Run(args []string, opts *RunOptions) (int, error) {
	argv := args
	if len(argv) > 0 {
		argv = argv[1:]
	}

	env := &runEnv{in: os.Stdin, out: os.Stdout, errW: os.Stderr, getenv: os.Getenv}
	if opts != nil {
		if opts.In != nil {
			env.in = opts.In
		}
		if opts.Out != nil {
			env.out = opts.Out
		}
		if opts.Err != nil {
			env.errW = opts.Err
		}
		if opts.Getenv != nil {
			env.getenv = opts.Getenv
		}
	}

	root := newRootCmd(env)
	root.SetArgs(argv)
	root.SetIn(env.in)
	root.SetOut(env.out)
	root.SetErr(env.errW)

	err := root.ExecuteContext(context.Background())
	if err == nil {
		return 0, nil
	}

	simplelogger.Log("cli: %s: %v", strings.Join(argv, " "), err)
	fmt.Fprintf(env.errW, "error: %v\n", err)

	var ue *usageError
	if errors.As(err, &ue) || isCobraUsageError(err) {
		return 2, err
	}
	return 1, err
}

// isCobraUsageError recognizes the errors cobra itself produces for unknown commands and bad flags.
func isCobraUsageError(err error) bool {
	msg := err.Error()
	for _, prefix := range []string{"unknown command", "unknown flag", "unknown shorthand flag", "flag needs an argument", "invalid argument"} {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}

// Execute runs the CLI against the process args and exits with the resulting code.
func Execute() {
	code, _ := Run(os.Args, nil)
	os.Exit(code)
}
