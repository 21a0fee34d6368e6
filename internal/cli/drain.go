package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/syncqueue/pkg/requestid"
)

func newDrainCommand(root *RootOptions) *cobra.Command {
	var (
		rf     remoteFlags
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "drain",
		Short: "Replay pending mutations against the remote endpoint once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			exec, err := rf.executor(root)
			if err != nil {
				return err
			}
			a, err := root.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, pass := requestid.Ensure(cmd.Context())
			res := a.queue.ProcessAll(ctx, exec.Execute)
			out := struct {
				Pass      string `json:"pass"`
				Namespace string `json:"namespace"`
				Success   int    `json:"success"`
				Failed    int    `json:"failed"`
				Evicted   int    `json:"evicted"`
				Pending   int    `json:"pending"`
			}{pass, a.queue.Namespace(), res.Success, res.Failed, res.Evicted, a.queue.Count(cmd.Context())}

			if err := root.render(out, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "success=%d failed=%d evicted=%d pending=%d\n",
					out.Success, out.Failed, out.Evicted, out.Pending)
				return err
			}); err != nil {
				return err
			}
			if strict && res.Failed > 0 {
				return fmt.Errorf("%w: %d of %d", ErrPassIncomplete, res.Failed, res.Success+res.Failed)
			}
			return nil
		},
	}
	rf.bind(cmd)
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any mutation fails")
	return cmd
}
