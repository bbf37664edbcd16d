package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/plait/internal/app"
	"go.trai.ch/plait/internal/engine/pipeline"
)

func (c *CLI) newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [entry]",
		Short: "Run an entry point (default, build or zip)",
		Long: "Run an entry point of the asset pipeline.\n\n" +
			"  default  build raw outputs, serve them and rebuild on change\n" +
			"  build    clean and build optimized outputs with images\n" +
			"  zip      package the project without build outputs",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: pipeline.EntryNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry := pipeline.EntryDefault
			if len(args) == 1 {
				entry = args[0]
			}
			srcPath, _ := cmd.Flags().GetString("srcPath")
			disableOptimize, _ := cmd.Flags().GetBool("disableOptimize")
			configPath, _ := cmd.Flags().GetString("config")

			return c.app.Run(cmd.Context(), entry, app.RunOptions{
				SrcPath:         srcPath,
				DisableOptimize: disableOptimize,
				ConfigPath:      configPath,
			})
		},
	}
}
