package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/adriangreen/todo-tui/internal/feed"
	"github.com/adriangreen/todo-tui/internal/todo"
)

type listOptions struct {
	filter string
	search string
	json   bool
}

func newListCommand(root *rootOptions) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Fetch the task list once and print it",
		Long: `Fetch the task list, apply the status filter and search query, and print
the matching tasks. Nothing is capped unless --limit is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.filter, "filter", "f", "all", "status filter: all, todo or done")
	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "search query")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print JSON instead of a table")
	return cmd
}

func runList(cmd *cobra.Command, root *rootOptions, opts *listOptions) error {
	filter, err := todo.ParseFilter(opts.filter)
	if err != nil {
		return err
	}

	cfg, err := root.loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := stderrLogger(cmd, cfg)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer closeLog()

	ctx, cancel := signalContext()
	defer cancel()

	source, err := feed.New(cfg, logger)
	if err != nil {
		return err
	}
	result := source.Load(ctx)
	if !result.OK() {
		return fmt.Errorf("failed to load tasks: %w", result.Err)
	}

	limit := 0
	if cmd.Flags().Changed("limit") {
		limit = root.limit
	}
	store := todo.NewStore()
	store.SetFilter(filter)
	store.SetQuery(opts.search)
	store.LoadLimit(result.Tasks, limit)

	visible := store.Visible()
	logger.Debug("listing tasks", "filter", filter.Key(), "query", opts.search, "shown", len(visible), "total", store.Len())

	if opts.json {
		return writeJSON(cmd.OutOrStdout(), visible)
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTaskTable(visible))
	counts := store.Counts()
	fmt.Fprintf(cmd.ErrOrStderr(), "%d shown | All (%d) | To Do (%d) | Done (%d)\n",
		len(visible), counts.All, counts.ToDo, counts.Done)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// renderTaskTable prints tasks with the same columns as the interactive table.
func renderTaskTable(tasks []todo.Task) string {
	rows := make([][]string, len(tasks))
	for i, t := range tasks {
		rows[i] = []string{strconv.Itoa(t.ID), t.Title, t.Description, t.Status()}
	}
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TASK ID", "TITLE", "DESCRIPTION", "STATUS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		String()
}
