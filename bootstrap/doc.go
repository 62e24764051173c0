// Package bootstrap runs a service's lifecycle: validated config, a
// logger, component start and stop in order, configure callbacks, hooks and
// graceful shutdown on SIGINT or SIGTERM.
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = app.RegisterComponent(dbComponent)
//	_ = app.RegisterComponent(serverComponent)
//	err = app.Run(ctx)
//
// RunTask gives one-shot commands such as migrations the same startup and
// shutdown without blocking on a signal.
package bootstrap
