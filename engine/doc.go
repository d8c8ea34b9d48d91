// Package engine binds the session and media contracts to the toxcore
// implementation.
//
// Session wraps a *toxcore.Tox and Media wraps the *toxcore.ToxAV created
// from it. Both translate toxcore callbacks into the tagged event types of
// packages session and media and hand them to a single registered handler,
// so callbacks keep running on whichever goroutine calls Iterate.
package engine
