package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectionStatusString(t *testing.T) {
	assert.Equal(t, "offline", ConnectionNone.String())
	assert.Equal(t, "tcp", ConnectionTCP.String())
	assert.Equal(t, "udp", ConnectionUDP.String())
	assert.Equal(t, "ConnectionStatus(9)", ConnectionStatus(9).String())
}

func TestNodeString(t *testing.T) {
	n := Node{Host: "tox.initramfs.io", Port: 33445}
	assert.Equal(t, "tox.initramfs.io:33445", n.String())
}
