// Package mongo stores mutation queues in MongoDB using the official v2 driver.
//
// Every storage key is a document {_id: key, value, updated_at} in a single
// collection (syncqueue_kv in database syncqueue unless configured). Writes
// are upserts, so SetItem never needs a prior read.
//
// # Usage
//
//	s, err := mongo.Open(ctx, mongo.DefaultConfig("mongodb://localhost:27017"))
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
// With package backends registered, the same storage opens from a DSN:
//
//	s, err := storage.Open(ctx, "mongodb://localhost:27017/app?collection=queues")
//
// # Error Handling
//
// Connection failures wrap ErrFailedToConnectToMongo; use errors.Is.
package mongo
