// Package badger stores mutation queues in an embedded BadgerDB.
//
// It suits single-process deployments that want crash-safe persistence
// without a server. Writes are synchronous by default and value log garbage
// collection runs in the background while the storage is open.
//
//	s, err := badger.Open(badger.DefaultConfig(".syncqueue/badger"), logger)
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
// DSN forms for storage.Open (after backends.Register):
//
//	badger:///var/lib/app/queue
//	badger://memory
package badger
