package app

import "context"

// Start runs any background work the application needs once the router is
// live. The deferred-pass scheduler lives entirely inside the engine's
// worker pool and schedules itself on demand, so there is no separate
// background loop to start here; Start exists so main's lifecycle call
// sequence doesn't special-case this application.
func (a *Application) Start(ctx context.Context) error {
	return nil
}
