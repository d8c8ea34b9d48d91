package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withBuildInfo(t *testing.T, info *debug.BuildInfo, ok bool) {
	t.Helper()
	orig := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return info, ok }
	t.Cleanup(func() { readBuildInfo = orig })
}

func TestToxcoreVersion(t *testing.T) {
	withBuildInfo(t, &debug.BuildInfo{Deps: []*debug.Module{
		{Path: "github.com/sirupsen/logrus", Version: "v1.9.4"},
		{Path: toxcorePath, Version: "v0.0.0-20260325001350-8a20d4e933a3"},
	}}, true)

	assert.Equal(t, "v0.0.0-20260325001350-8a20d4e933a3", Toxcore())
	assert.Equal(t, "EchoBot dev (toxcore v0.0.0-20260325001350-8a20d4e933a3)", String())
}

func TestToxcoreReplaced(t *testing.T) {
	withBuildInfo(t, &debug.BuildInfo{Deps: []*debug.Module{
		{Path: toxcorePath, Version: "v0.1.0", Replace: &debug.Module{Version: "v0.1.1"}},
	}}, true)

	assert.Equal(t, "v0.1.1", Toxcore())
}

func TestToxcoreUnknown(t *testing.T) {
	withBuildInfo(t, nil, false)
	assert.Equal(t, "unknown", Toxcore())

	withBuildInfo(t, &debug.BuildInfo{}, true)
	assert.Equal(t, "unknown", Toxcore())
}
