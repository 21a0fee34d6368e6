// Package mutation defines the closed set of offline write operations a client
// can record while disconnected, together with the payload contract of each one.
//
// Every mutation kind has exactly one payload type. Payload is a sealed
// interface: only the types declared in this package implement it, so a
// PendingMutation can never carry a payload that does not match its Type.
//
// # Kinds
//
//   - TypeAddItem: AddItem
//   - TypeUpdateItem: UpdateItem
//   - TypeDeleteItem: DeleteItem
//   - TypeCheckItem: CheckItem
//   - TypeBatchCheck: BatchCheck
//   - TypeBatchDelete: BatchDelete
//   - TypeReorderItems: ReorderItems
//
// # Usage
//
//	m, err := mutation.New(mutation.CheckItem{ItemID: "42", Checked: true})
//	if err != nil {
//	    return err
//	}
//
//	switch p := m.Payload.(type) {
//	case mutation.CheckItem:
//	    return api.SetChecked(ctx, p.ItemID, p.Checked)
//	// ...
//	}
//
// # Serialization
//
// PendingMutation marshals to a JSON object with the payload nested under
// "payload" and the kind under "type". Unmarshal dispatches on "type" and
// rejects unknown kinds with ErrUnknownType.
package mutation
