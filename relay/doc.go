// Package relay answers calls and sends every received audio and video
// frame straight back to the caller.
package relay
