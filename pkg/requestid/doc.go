// Package requestid correlates a replay pass with the requests it sends.
//
// A drain or watch pass stores an ID in its context with Ensure. The remote
// executor forwards it in the X-Request-ID header, and Middleware on the sync
// endpoint picks it up so both sides log the same request_id.
//
//	ctx, id := requestid.Ensure(ctx)
//	log = log.With(slog.String("pass", id))
//
//	r := chi.NewRouter()
//	r.Use(requestid.Middleware)
package requestid
