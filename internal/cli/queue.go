package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newPendingCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List pending mutations in FIFO order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			items := a.queue.Pending(cmd.Context())
			return root.render(items, func(w io.Writer) error {
				return writeMutations(w, items)
			})
		},
	}
}

func newCountCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of pending mutations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			n := a.queue.Count(cmd.Context())
			out := struct {
				Namespace string `json:"namespace"`
				Pending   int    `json:"pending"`
			}{a.queue.Namespace(), n}
			return root.render(out, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, n)
				return err
			})
		},
	}
}

func newClearCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop every pending mutation of the namespace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			n := a.queue.Count(cmd.Context())
			a.queue.Clear(cmd.Context())
			out := struct {
				Namespace string `json:"namespace"`
				Cleared   int    `json:"cleared"`
			}{a.queue.Namespace(), n}
			return root.render(out, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "cleared %d mutations from %s\n", n, out.Namespace)
				return err
			})
		},
	}
}
