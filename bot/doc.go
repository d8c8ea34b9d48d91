// Package bot ties the engines to the friend policy, the command dispatcher
// and the frame relay, and owns the identity from startup to teardown.
//
// A Bot is started in three steps: Open builds both engines from the
// persisted profile (or a fresh identity), New wires the handlers, and Run
// bootstraps, drives both iteration loops until the context is cancelled
// and then tears everything down in a fixed order: loops joined, profile
// saved, media engine released, session engine released.
package bot
