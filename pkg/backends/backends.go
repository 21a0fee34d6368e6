package backends

import (
	"context"
	"sync"

	"github.com/dmitrymomot/syncqueue/pkg/badger"
	"github.com/dmitrymomot/syncqueue/pkg/mongo"
	"github.com/dmitrymomot/syncqueue/pkg/pg"
	"github.com/dmitrymomot/syncqueue/pkg/redis"
	"github.com/dmitrymomot/syncqueue/pkg/s3"
	"github.com/dmitrymomot/syncqueue/pkg/sqlite"
	"github.com/dmitrymomot/syncqueue/pkg/storage"
)

var registerOnce sync.Once

// Register binds every server and embedded backend to its DSN schemes.
// Calling it more than once is a no-op.
func Register() {
	registerOnce.Do(func() {
		for scheme, f := range factories() {
			storage.Register(scheme, f)
		}
	})
}

// Open registers the backends and opens dsn.
func Open(ctx context.Context, dsn string) (storage.Storage, error) {
	Register()
	return storage.Open(ctx, dsn)
}

func factories() map[string]storage.Factory {
	return map[string]storage.Factory{
		"redis":       redis.OpenDSN,
		"rediss":      redis.OpenDSN,
		"postgres":    pg.OpenDSN,
		"postgresql":  pg.OpenDSN,
		"mongodb":     mongo.OpenDSN,
		"mongodb+srv": mongo.OpenDSN,
		"badger":      badger.OpenDSN,
		"sqlite":      sqlite.OpenDSN,
		"sqlite3":     sqlite.OpenDSN,
		"s3":          s3.OpenDSN,
	}
}
