// Package httpserver runs an http.Handler with sane timeouts and
// context-driven graceful shutdown, plus a JSON health check handler.
//
// Run blocks until its context is cancelled, so it composes with errgroup
// and signal.NotifyContext:
//
//	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
//	defer stop()
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(func() error { return srv.Run(ctx, router) })
//	g.Go(runner.Run(ctx))
//	return g.Wait()
//
// Listen failures wrap ErrStart and shutdown failures wrap ErrShutdown.
package httpserver
