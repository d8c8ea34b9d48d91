// Package version reports the build version of the bot and its engine.
package version

import (
	"fmt"
	"runtime/debug"
)

// Version is set at build time with
// -ldflags "-X github.com/opd-ai/echobot/version.Version=v1.2.3".
var Version = "dev"

const toxcorePath = "github.com/opd-ai/toxcore"

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// Toxcore returns the linked toxcore module version, or "unknown".
func Toxcore() string {
	info, ok := readBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, dep := range info.Deps {
		if dep.Path != toxcorePath {
			continue
		}
		if dep.Replace != nil && dep.Replace.Version != "" {
			return dep.Replace.Version
		}
		return dep.Version
	}
	return "unknown"
}

// String returns the one-line version summary.
func String() string {
	return fmt.Sprintf("EchoBot %s (toxcore %s)", Version, Toxcore())
}
