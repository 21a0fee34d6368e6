package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/syncqueue/pkg/deadletter"
	"github.com/dmitrymomot/syncqueue/pkg/mutation"
)

// render writes v in the selected format. text is used for --format text.
func (o *RootOptions) render(v any, text func(w io.Writer) error) error {
	switch o.Format {
	case "json":
		enc := json.NewEncoder(o.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		return writeYAML(o.Out, v)
	default:
		return text(o.Out)
	}
}

// writeYAML goes through JSON so field names match the JSON output and the
// custom mutation encoding.
func writeYAML(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}

func writeMutations(w io.Writer, items []mutation.PendingMutation) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "no pending mutations")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tRETRIES\tCREATED")
	for _, m := range items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", m.ID, m.Type, m.RetryCount, m.Timestamp.UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}

func writeEntries(w io.Writer, entries []deadletter.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "no dead-lettered mutations")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tATTEMPTS\tEVICTED\tERROR")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			e.ID, e.Mutation.Type, e.Attempts, e.EvictedAt.UTC().Format(time.RFC3339), e.Error)
	}
	return tw.Flush()
}
