// Package commands answers friend messages.
//
// A message whose whole body is exactly "!info", "!callme" or "!videocallme"
// runs that command. Anything else is echoed back unchanged, followed by the
// help text. Offered file transfers are cancelled with a short refusal,
// except avatars, which are ignored.
package commands
