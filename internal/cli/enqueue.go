package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/syncqueue/pkg/mutation"
)

type enqueueOptions struct {
	data      string
	listID    string
	itemID    string
	name      string
	quantity  float64
	unit      string
	category  string
	position  int
	checked   bool
	itemIDs   []string
	positions []string
}

func newEnqueueCommand(root *RootOptions) *cobra.Command {
	opts := &enqueueOptions{}
	cmd := &cobra.Command{
		Use:   "enqueue <kind>",
		Short: "Record a pending mutation",
		Long: `Record a pending mutation. <kind> is one of ADD_ITEM, UPDATE_ITEM,
DELETE_ITEM, CHECK_ITEM, BATCH_CHECK, BATCH_DELETE, REORDER_ITEMS (case and
dashes are ignored). The payload comes from flags or verbatim from --data.`,
		Example: `  syncqueue enqueue add-item --list groceries --item milk-1 --name Milk --quantity 2
  syncqueue enqueue batch-check --items a,b,c --checked
  syncqueue enqueue reorder-items --list groceries --positions a=0,b=1
  syncqueue enqueue delete-item --data '{"itemId":"milk-1"}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			payload, err := opts.payload(cmd, kind)
			if err != nil {
				return err
			}

			a, err := root.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			id, err := a.queue.Enqueue(cmd.Context(), payload)
			if err != nil {
				return err
			}
			out := struct {
				ID        string        `json:"id"`
				Type      mutation.Type `json:"type"`
				Namespace string        `json:"namespace"`
				Pending   int           `json:"pending"`
			}{id, kind, a.queue.Namespace(), a.queue.Count(cmd.Context())}
			return root.render(out, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "queued %s %s (%d pending in %s)\n", kind, id, out.Pending, out.Namespace)
				return err
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.data, "data", "", "payload as JSON; overrides the other payload flags")
	f.StringVar(&opts.listID, "list", "", "list id")
	f.StringVar(&opts.itemID, "item", "", "item id")
	f.StringVar(&opts.name, "name", "", "item name")
	f.Float64Var(&opts.quantity, "quantity", 0, "item quantity")
	f.StringVar(&opts.unit, "unit", "", "quantity unit")
	f.StringVar(&opts.category, "category", "", "item category")
	f.IntVar(&opts.position, "position", 0, "item position")
	f.BoolVar(&opts.checked, "checked", false, "checked state")
	f.StringSliceVar(&opts.itemIDs, "items", nil, "item ids for batch kinds")
	f.StringSliceVar(&opts.positions, "positions", nil, "reorder deltas as <item-id>=<position>")
	return cmd
}

func parseKind(raw string) (mutation.Type, error) {
	t := mutation.Type(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), "-", "_")))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
	}
	return t, nil
}

func (o *enqueueOptions) payload(cmd *cobra.Command, kind mutation.Type) (mutation.Payload, error) {
	if o.data != "" {
		return mutation.DecodePayload(kind, json.RawMessage(o.data))
	}

	switch kind {
	case mutation.TypeAddItem:
		return mutation.AddItem{
			ListID:   o.listID,
			ItemID:   o.itemID,
			Name:     o.name,
			Quantity: o.quantity,
			Unit:     o.unit,
			Category: o.category,
			Position: o.position,
		}, nil
	case mutation.TypeUpdateItem:
		p := mutation.UpdateItem{ItemID: o.itemID}
		// Only flags the user set become updates.
		if cmd.Flags().Changed("name") {
			p.Name = &o.name
		}
		if cmd.Flags().Changed("quantity") {
			p.Quantity = &o.quantity
		}
		if cmd.Flags().Changed("unit") {
			p.Unit = &o.unit
		}
		if cmd.Flags().Changed("category") {
			p.Category = &o.category
		}
		return p, nil
	case mutation.TypeDeleteItem:
		return mutation.DeleteItem{ItemID: o.itemID}, nil
	case mutation.TypeCheckItem:
		return mutation.CheckItem{ItemID: o.itemID, Checked: o.checked}, nil
	case mutation.TypeBatchCheck:
		return mutation.BatchCheck{ItemIDs: o.itemIDs, Checked: o.checked}, nil
	case mutation.TypeBatchDelete:
		return mutation.BatchDelete{ItemIDs: o.itemIDs}, nil
	case mutation.TypeReorderItems:
		positions := make([]mutation.Position, 0, len(o.positions))
		for _, raw := range o.positions {
			id, pos, ok := strings.Cut(raw, "=")
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrInvalidPosition, raw)
			}
			n, err := strconv.Atoi(pos)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidPosition, raw)
			}
			positions = append(positions, mutation.Position{ItemID: id, Position: n})
		}
		return mutation.ReorderItems{ListID: o.listID, Positions: positions}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}
