package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/regestra/regestra/internal/signature"
	"github.com/regestra/regestra/internal/ui"
)

func newComponentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "component",
		Short: "Manage signature components",
		Long: `Manage signature components, the named numbering schemes whose
elements form classification trees.`,
	}

	cmd.AddCommand(newComponentCreateCmd())
	cmd.AddCommand(newComponentListCmd())
	cmd.AddCommand(newComponentDeleteCmd())

	return cmd
}

func newComponentCreateCmd() *cobra.Command {
	var description string
	var indexType string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a signature component",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scheme, err := signature.ParseIndexType(indexType)
			if err != nil {
				return err
			}

			env, err := openEnv()
			if err != nil {
				return err
			}
			defer env.Close()

			comp, err := env.components.Create(cmd.Context(), args[0], description, scheme)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(),
				env.styles.Success.Render(fmt.Sprintf("created component %d (%s, %s)",
					comp.ID, comp.Name, comp.IndexType)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Component description")
	cmd.Flags().StringVarP(&indexType, "index-type", "t", "dec",
		"Numbering scheme: dec, roman, small_char, capital_char")

	return cmd
}

func newComponentListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List signature components",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := openEnv()
			if err != nil {
				return err
			}
			defer env.Close()

			comps, err := env.components.List(cmd.Context())
			if err != nil {
				return err
			}

			table := ui.Table{
				Headers: []string{"ID", "NAME", "SCHEME", "COUNTER"},
				Styles:  env.styles,
			}
			for _, c := range comps {
				table.Rows = append(table.Rows, []string{
					strconv.FormatInt(c.ID, 10),
					c.Name,
					string(c.IndexType),
					strconv.Itoa(c.IndexCount),
				})
			}
			return table.Render(cmd.OutOrStdout())
		},
	}
}

func newComponentDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a component and all its elements",
		Args:  cobra.ExactArgs(1),
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

			if err := env.components.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted component %d\n", id)
			return nil
		},
	}
}
