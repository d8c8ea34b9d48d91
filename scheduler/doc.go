// Package scheduler runs engine iteration loops.
//
// Each Loop calls Iterate on one engine, runs any periodic hooks that are
// due, then sleeps for the engine's advised interval. The sleep is cut short
// when the context is cancelled; an Iterate that is already running always
// completes. Run starts several loops and returns once all of them stopped.
package scheduler
