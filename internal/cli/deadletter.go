package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newDeadLetterCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "deadletter",
		Aliases: []string{"dlq"},
		Short:   "Inspect mutations evicted after their last attempt",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List evicted mutations of the namespace",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := root.open(cmd.Context())
				if err != nil {
					return err
				}
				defer a.Close()

				entries, err := a.dead.List(cmd.Context(), a.queue.Namespace())
				if err != nil {
					return err
				}
				return root.render(entries, func(w io.Writer) error {
					return writeEntries(w, entries)
				})
			},
		},
		&cobra.Command{
			Use:   "purge",
			Short: "Delete every evicted mutation of the namespace",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := root.open(cmd.Context())
				if err != nil {
					return err
				}
				defer a.Close()

				ns := a.queue.Namespace()
				if err := a.dead.Purge(cmd.Context(), ns); err != nil {
					return err
				}
				out := struct {
					Namespace string `json:"namespace"`
					Purged    bool   `json:"purged"`
				}{ns, true}
				return root.render(out, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "purged dead letters of %s\n", ns)
					return err
				})
			},
		},
	)
	return cmd
}
