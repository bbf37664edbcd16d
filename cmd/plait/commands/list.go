package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (c *CLI) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List entry points and their execution order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plans, err := c.app.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range plans {
				_, _ = fmt.Fprintf(out, "%s: %s\n", p.Name, p.Composition)
				_, _ = fmt.Fprintf(out, "  order: %s\n", strings.Join(p.Tasks, ", "))
			}
			return nil
		},
	}
}
