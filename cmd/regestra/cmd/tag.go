package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/regestra/regestra/internal/ui"
)

func newTagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage document tags",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a tag",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			description := ""
			if len(args) > 1 {
				description = args[1]
			}

			env, err := openEnv()
			if err != nil {
				return err
			}
			defer env.Close()

			tag, err := env.tags.Create(cmd.Context(), args[0], description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created tag %d (%s)\n", tag.ID, tag.Name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tags",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := openEnv()
			if err != nil {
				return err
			}
			defer env.Close()

			tags, err := env.tags.List(cmd.Context())
			if err != nil {
				return err
			}

			table := ui.Table{
				Headers: []string{"ID", "NAME", "DESCRIPTION"},
				Styles:  env.styles,
			}
			for _, t := range tags {
				table.Rows = append(table.Rows, []string{
					strconv.FormatInt(t.ID, 10), t.Name, t.Description,
				})
			}
			return table.Render(cmd.OutOrStdout())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid tag id %q", args[0])
			}

			env, err := openEnv()
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.tags.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted tag %d\n", id)
			return nil
		},
	})

	return cmd
}
