// Package deadletter keeps a durable record of mutations the sync queue gave
// up on after exhausting their attempts.
//
// Entries are stored per namespace as a JSON array under the key
// "<queue-name>-deadletter:<namespace>" in any storage.Storage. The list is
// capped; once full, the oldest entries are dropped first.
//
//	dl := deadletter.NewStore(store, deadletter.WithMaxEntries(50))
//	q := syncqueue.New(store, syncqueue.WithDeadLetter(dl))
//
//	entries, err := dl.List(ctx, "user-42")
package deadletter
