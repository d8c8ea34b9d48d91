// Command echobot runs an always-on Tox echo bot. It accepts every friend
// request, echoes messages back, and answers calls by looping audio and
// video back to the caller.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
