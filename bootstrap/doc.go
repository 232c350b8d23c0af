// Package bootstrap runs flowkernel processes with a uniform lifecycle:
// validated configuration, a logger, start and stop hooks and graceful
// shutdown on SIGINT or SIGTERM.
//
//	app, err := bootstrap.NewApp(cfg)
//	app.OnStart(func(ctx context.Context) error { return srv.Start(ctx) })
//	app.OnStop(srv.Stop)
//	err = app.Run(ctx)
//
// One-shot commands use RunTask instead of Run; the task's context is
// cancelled when a signal arrives.
package bootstrap
