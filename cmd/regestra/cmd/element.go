package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/regestra/regestra/internal/signature"
	"github.com/regestra/regestra/internal/ui"
)

func newElementCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "element",
		Short: "Manage signature elements",
		Long: `Manage signature elements, the nodes of a component's
classification tree. New elements draw their index from the component
counter unless one is given explicitly.`,
	}

	cmd.AddCommand(newElementCreateCmd())
	cmd.AddCommand(newElementListCmd())

	return cmd
}

func newElementCreateCmd() *cobra.Command {
	var (
		componentID int64
		description string
		index       string
		parentIDs   []int64
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an element in a component",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv()
			if err != nil {
				return err
			}
			defer env.Close()

			el, err := env.elements.Create(cmd.Context(), signature.CreateElementInput{
				ComponentID: componentID,
				Name:        args[0],
				Description: description,
				Index:       index,
				ParentIDs:   parentIDs,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(),
				env.styles.Success.Render(fmt.Sprintf("created element %d [%s] %s",
					el.ID, el.Index, el.Name)))
			return nil
		},
	}

	cmd.Flags().Int64VarP(&componentID, "component", "c", 0, "Component id (required)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Element description")
	cmd.Flags().StringVar(&index, "index", "", "Explicit index (skips the counter)")
	cmd.Flags().Int64SliceVarP(&parentIDs, "parent", "p", nil, "Parent element id (repeatable)")
	_ = cmd.MarkFlagRequired("component")

	return cmd
}

func newElementListCmd() *cobra.Command {
	var componentID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List elements of a component",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := openEnv()
			if err != nil {
				return err
			}
			defer env.Close()

			els, err := env.elements.ListByComponent(cmd.Context(), componentID)
			if err != nil {
				return err
			}

			table := ui.Table{
				Headers: []string{"ID", "INDEX", "NAME", "PARENTS"},
				Styles:  env.styles,
			}
			for _, el := range els {
				table.Rows = append(table.Rows, []string{
					strconv.FormatInt(el.ID, 10),
					el.Index,
					el.Name,
					formatIDs(el.ParentIDs),
				})
			}
			return table.Render(cmd.OutOrStdout())
		},
	}

	cmd.Flags().Int64VarP(&componentID, "component", "c", 0, "Component id (required)")
	_ = cmd.MarkFlagRequired("component")

	return cmd
}

func formatIDs(ids []int64) string {
	if len(ids) == 0 {
		return "-"
	}
	s := ""
	for i, id := range ids {
		if i > 0 {
			s += ","
		}
		s += strconv.FormatInt(id, 10)
	}
	return s
}
