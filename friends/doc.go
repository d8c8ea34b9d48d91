// Package friends implements the friend list policy: every request is
// accepted, and friends that stay offline longer than the inactivity
// threshold are removed by a periodic sweep.
package friends
