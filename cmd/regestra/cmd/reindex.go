package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex <component-id>",
		Short: "Re-number all elements of a component",
		Long: `Re-number every element of a component alphabetically by name.

The component counter is reset and each element gets a fresh index in its
component's numbering scheme. Runs under the maintenance lock so two
processes cannot re-index at once; all changes apply atomically or not
at all.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid component id %q", args[0])
			}

			env, err := openEnv()
			if err != nil {
				return err
			}
			defer env.Close()

			count, err := env.elements.Reindex(cmd.Context(), id)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(),
				env.styles.Success.Render(
					fmt.Sprintf("reindexed %d elements in component %d", count, id)))
			return nil
		},
	}
}
