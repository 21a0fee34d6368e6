// Package logger builds *slog.Logger instances for the sync queue and its tools.
//
// New takes functional options that choose the output format, the minimum
// level, static attributes and context extractors. Extractors run on every
// record, so a namespace stored with ContextWithNamespace shows up on all log
// lines emitted during a processing pass.
//
// Helper constructors such as Error, MutationID and RetryCount keep attribute
// keys consistent across packages. Error and Errors return an empty attribute
// for nil errors, which slog drops.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(logger.EnvProduction, "syncqueue"),
//	    logger.WithNamespaceContext(),
//	)
//	ctx := logger.ContextWithNamespace(ctx, "user-42")
//	log.WarnContext(ctx, "mutation evicted",
//	    logger.MutationID(m.ID),
//	    logger.RetryCount(m.RetryCount),
//	)
//
// NewFromConfig accepts a Config populated by the config package from
// LOG_LEVEL, LOG_FORMAT, APP_ENV and SERVICE_NAME.
package logger
