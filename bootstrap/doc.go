// Package bootstrap runs the application lifecycle: config defaults and
// validation, logger setup, component start in registration order, the
// configure phase, a startup summary, then signal-driven graceful shutdown.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(storeComponent)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*Config]) error {
//	    // wire services and routes
//	    return nil
//	})
//	err = app.Run(ctx)
package bootstrap
