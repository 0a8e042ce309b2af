package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adriangreen/todo-tui/internal/ui"
)

func newStateCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect or clear the saved view state",
		Long: `The interactive table remembers the active filter, the search query and
the selected row between runs. Tasks themselves are never saved.`,
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the saved view state as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			state, closeState, err := openState(cfg)
			if err != nil {
				return err
			}
			defer closeState()

			vs, ok, err := ui.LoadViewState(cmd.Context(), state)
			if err != nil {
				return fmt.Errorf("read view state: %w", err)
			}
			if !ok {
				fmt.Fprintln(cmd.ErrOrStderr(), "No saved view state")
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), vs)
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget the saved view state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			state, closeState, err := openState(cfg)
			if err != nil {
				return err
			}
			defer closeState()

			if err := ui.ClearViewState(cmd.Context(), state); err != nil {
				return fmt.Errorf("clear view state: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared view state in %s\n", cfg.StatePath)
			return nil
		},
	}

	cmd.AddCommand(show, clearCmd)
	return cmd
}
