package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
)

// Healthcheck returns a closure reporting whether db is still open.
func Healthcheck(db *badger.DB) func(context.Context) error {
	return func(context.Context) error {
		if db == nil || db.IsClosed() {
			return ErrHealthcheckFailed
		}
		return nil
	}
}
