package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/codalotl/blockpatch/internal/config"
)

func newConfigCmd(env *runEnv) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Config prints the effective configuration as JSON, after defaults, the
nearest ` + config.FileName + `, BLOCKPATCH_* environment variables, and flags.
With --write it saves it as ` + config.FileName + ` in the workspace root.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("config takes no args")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := env.cfg.MarshalJSON()
			if err != nil {
				return err
			}
			if !write {
				if env.cfg.File != "" {
					env.printf("# %s\n", env.cfg.File)
				}
				env.printf("%s", data)
				return nil
			}
			path := filepath.Join(env.root, config.FileName)
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			env.printf("wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "write the effective configuration to "+config.FileName+" in the workspace root")
	return cmd
}
