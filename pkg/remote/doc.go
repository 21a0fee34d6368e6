// Package remote carries mutations over HTTP.
//
// Executor is the client side. Its Execute method fits syncqueue.Executor:
// it POSTs one JSON-encoded mutation to "<base>/mutations", sets the
// Idempotency-Key header to the mutation id and, when a secret is
// configured, signs the body with HMAC-SHA256 (X-Sync-Signature,
// X-Sync-Timestamp and X-Sync-ID headers). A circuit breaker makes a drain
// fail fast with ErrCircuitOpen while the endpoint is down. Execute never
// retries; the queue's retry policy decides what happens next.
//
//	exec, err := remote.NewExecutor(remote.Config{
//	    BaseURL: "https://api.example.com/sync",
//	    Secret:  secret,
//	    Timeout: 10 * time.Second,
//	})
//	res := q.ProcessAll(ctx, exec.Execute)
//
// NewHandler is the server side: a chi router that verifies signatures,
// decodes and validates the mutation and hands it to an Applier. Mutation ids
// applied recently are acknowledged with status "duplicate" instead of being
// applied again, which makes client retries after a lost response safe.
//
// Status codes map onto the executor's error classes: 2xx is success, most
// 4xx answers wrap ErrPermanentFailure, everything else wraps
// ErrTemporaryFailure or ErrTimeout.
package remote
