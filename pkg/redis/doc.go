// Package redis stores sync queues in Redis.
//
// Connect opens a go-redis client with retries. Storage implements
// storage.Storage on top of any redis.UniversalClient, keeping each queue as
// a string value under KeyPrefix+key, optionally with a TTL.
//
//	s, err := redis.Open(ctx, redis.Config{
//	    ConnectionURL: "redis://localhost:6379/0",
//	    KeyPrefix:     "syncqueue:",
//	})
//
// OpenDSN accepts "redis://host:6379/0?prefix=app:&ttl=72h" and is the
// factory registered for the redis and rediss schemes by package backends.
// Healthcheck plugs the client into liveness probes.
package redis
