// Package persistence stores the bot's identity blob in a single file.
//
// The blob is opaque: it is produced and consumed by the session engine and
// never interpreted here. Every save rewrites the whole file through a
// temporary sibling and a rename, so the file on disk always holds either a
// complete blob or nothing. When a passphrase is configured the blob is
// sealed with AES-256-GCM under a PBKDF2-derived key before it is written.
//
// A Lock on "<path>.lock" keeps two processes from driving the same identity.
package persistence
