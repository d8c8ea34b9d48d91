// Package enginetest provides in-memory session and media engines that
// record every call, for driving the bot without a network.
package enginetest
