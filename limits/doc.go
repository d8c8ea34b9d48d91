// Package limits provides centralized size constants and validation functions
// for data the bot moves between the Tox engines.
//
// # Limits
//
//   - MaxPlaintextMessage (1372 bytes): the Tox protocol limit for a user
//     message. Echoes and informational lines are validated against it before
//     they are handed to the engine.
//
//   - MaxFrameWidth / MaxFrameHeight (4096): upper bound on relayed video
//     geometry. Frames above it are dropped before any buffer is allocated.
//
//   - MaxAudioChannels / MaxAudioSamples: upper bound on relayed PCM.
//
//   - MaxProfileSize (16MB): upper bound on the profile file read at startup.
//
// # Validation Functions
//
//	err := limits.ValidatePlaintextMessage(text)
//	if err != nil {
//	    // ErrMessageEmpty or ErrMessageTooLarge
//	}
//
//	if err := limits.ValidatePlane(y, height, yStride, width); err != nil {
//	    // ErrFrameGeometry: the plane is shorter than its stride claims
//	}
//
// # Security Considerations
//
// Frame geometry comes straight from a remote peer. Every copy the relay
// performs is bounded by these checks so a hostile peer cannot make the bot
// allocate or index past what it actually received.
package limits
