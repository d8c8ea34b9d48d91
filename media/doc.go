// Package media defines the contract the bot consumes from the ToxAV
// audio/video engine.
//
// A media engine is bound to exactly one session engine at construction and
// runs on its own iteration loop. Inbound events (IncomingCall,
// CallStateChanged, AudioFrameReceived, VideoFrameReceived) are delivered
// synchronously from Iterate to the registered Handler. Bit rates in this
// package are expressed in kbit/s; adapters convert to whatever unit the
// underlying implementation uses.
package media
