package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/regestra/regestra/internal/archive"
	apperr "github.com/regestra/regestra/internal/errors"
	"github.com/regestra/regestra/internal/search"
	"github.com/regestra/regestra/internal/signature"
	"github.com/regestra/regestra/internal/ui"
)

// searchOptions holds CLI flags shared by both search targets.
type searchOptions struct {
	query    string
	page     int
	pageSize int
	sort     []string
	format   string
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <documents|elements>",
		Short: "Search documents or signature elements",
		Long: `Search archive documents or signature elements with an abstract query.

The query is a JSON array of {field, condition, value, not} predicates,
AND-combined. Pass it with --query or pipe it on stdin with --query -.

Examples:
  regestra search documents --query '[{"field":"title","condition":"FRAGMENT","value":"map"}]'
  regestra search documents --query '[{"field":"topographicSignature","condition":"STARTS_WITH","value":[1,2]}]'
  regestra search elements --query '[{"field":"hasParents","condition":"EQ","value":false}]' --sort name:asc
  echo '[{"field":"parentUnitArchiveDocumentId","condition":"EQ","value":null}]' | regestra search documents --query -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildRequest(cmd.InOrStdin(), opts)
			if err != nil {
				return err
			}

			env, err := openEnv()
			if err != nil {
				return err
			}
			defer env.Close()

			req.Normalize(env.cfg.Search.DefaultPageSize, env.cfg.Search.MaxPageSize)

			switch args[0] {
			case "documents":
				resp, err := env.documents.Search(cmd.Context(), req)
				if err != nil {
					return err
				}
				return renderDocuments(cmd.OutOrStdout(), resp, opts.format, env.styles)
			case "elements":
				resp, err := env.elements.Search(cmd.Context(), req)
				if err != nil {
					return err
				}
				return renderElements(cmd.OutOrStdout(), resp, opts.format, env.styles)
			default:
				return apperr.InvalidInput(
					fmt.Sprintf("unknown search target %q (want documents or elements)", args[0]))
			}
		},
	}

	cmd.Flags().StringVarP(&opts.query, "query", "q", "[]",
		"JSON query predicates, or - to read from stdin")
	cmd.Flags().IntVar(&opts.page, "page", 1, "Page number (1-based)")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 0,
		"Results per page (-1 for all, 0 for the configured default)")
	cmd.Flags().StringSliceVar(&opts.sort, "sort", nil,
		"Sort order as field:asc|desc (repeatable)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "table", "Output format: table, json")

	return cmd
}

func buildRequest(stdin io.Reader, opts searchOptions) (search.Request, error) {
	queryText := opts.query
	if queryText == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return search.Request{}, err
		}
		queryText = string(data)
	}

	var query []search.QueryElement
	if strings.TrimSpace(queryText) != "" {
		if err := json.Unmarshal([]byte(queryText), &query); err != nil {
			return search.Request{}, apperr.New(apperr.ErrCodeInvalidQuery,
				"query is not a JSON predicate array", err)
		}
	}

	sort, err := parseSort(opts.sort)
	if err != nil {
		return search.Request{}, err
	}

	return search.Request{
		Query:    query,
		Page:     opts.page,
		PageSize: opts.pageSize,
		Sort:     sort,
	}, nil
}

func parseSort(specs []string) ([]search.SortElement, error) {
	var sort []search.SortElement
	for _, spec := range specs {
		field, dir, _ := strings.Cut(spec, ":")
		if field == "" {
			return nil, apperr.InvalidInput(fmt.Sprintf("invalid sort %q", spec))
		}
		direction := search.SortAsc
		switch strings.ToLower(dir) {
		case "", "asc":
		case "desc":
			direction = search.SortDesc
		default:
			return nil, apperr.InvalidInput(
				fmt.Sprintf("invalid sort direction %q (want asc or desc)", dir))
		}
		sort = append(sort, search.SortElement{Field: field, Direction: direction})
	}
	return sort, nil
}

func renderDocuments(w io.Writer, resp *search.Response[*archive.Document], format string, styles ui.Styles) error {
	if format == "json" {
		return writeJSON(w, resp)
	}

	table := ui.Table{
		Headers: []string{"ID", "TYPE", "TITLE", "SIGNATURES", "ACTIVE"},
		Styles:  styles,
	}
	for _, doc := range resp.Data {
		table.Rows = append(table.Rows, []string{
			strconv.FormatInt(doc.ID, 10),
			string(doc.Type),
			doc.Title,
			strings.Join(doc.ResolvedTopographicSignatures, "; "),
			boolMark(doc.Active),
		})
	}
	if err := table.Render(w); err != nil {
		return err
	}
	return writeFooter(w, resp.Page, resp.TotalPages, resp.TotalSize, styles)
}

func renderElements(w io.Writer, resp *search.Response[*signature.Element], format string, styles ui.Styles) error {
	if format == "json" {
		return writeJSON(w, resp)
	}

	table := ui.Table{
		Headers: []string{"ID", "COMPONENT", "INDEX", "NAME", "PARENTS"},
		Styles:  styles,
	}
	for _, el := range resp.Data {
		table.Rows = append(table.Rows, []string{
			strconv.FormatInt(el.ID, 10),
			strconv.FormatInt(el.ComponentID, 10),
			el.Index,
			el.Name,
			formatIDs(el.ParentIDs),
		})
	}
	if err := table.Render(w); err != nil {
		return err
	}
	return writeFooter(w, resp.Page, resp.TotalPages, resp.TotalSize, styles)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeFooter(w io.Writer, page int, totalPages, totalSize int64, styles ui.Styles) error {
	_, err := fmt.Fprintln(w, styles.Label.Render(
		fmt.Sprintf("page %d of %d (%d results)", page, totalPages, totalSize)))
	return err
}

func boolMark(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
