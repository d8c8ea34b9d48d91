package bot

import "errors"

var (
	// ErrFatalInit marks failures that stop the bot before its loops start.
	ErrFatalInit = errors.New("fatal initialization error")

	// ErrNoBootstrap indicates that no bootstrap node could be contacted.
	ErrNoBootstrap = errors.New("no bootstrap node succeeded")
)
