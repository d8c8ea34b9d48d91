package config

import (
	"github.com/opd-ai/echobot/commands"
	"github.com/opd-ai/echobot/engine"
	"github.com/opd-ai/echobot/friends"
)

// DefaultNodes are public bootstrap nodes, tried in order.
var DefaultNodes = []Node{
	{PublicKey: "7A6098B590BDC73F9723FC59F82B3F9085A64D1B213AAF8E610FD351930D052D", Host: "tox2.abilinski.com", Port: 33445},
	{PublicKey: "3F0A45A268367C1BEA652F258C85F4A66DA76BCAA667A49E770BCC4917AB6A25", Host: "tox.initramfs.io", Port: 33445},
	{PublicKey: "DA4E4ED4B697F2E9B000EEFE3A34B554ACD3F45F5C96EAEA2516DD7FF9AF7B43", Host: "85.143.221.42", Port: 33445},
	{PublicKey: "1C5293AEF2114717547B39DA8EA6F1E331E5E358B35F9B6B5F19317911C5F976", Host: "tox.verdict.gg", Port: 33445},
	{PublicKey: "BEF0CFB37AF874BD17B9A8F9FE64C75521DB95A37D33C5BDB00E9CF58659C04F", Host: "198.199.98.108", Port: 33445},
	{PublicKey: "82EF82BA33445A1F91A7DB27189ECFC0C013E06E3DA71F588ED692BED625EC23", Host: "tox.kurnevsky.net", Port: 33445},
	{PublicKey: "B3E5FA80DC8EBD1149AD2AB35ED8B85BD546DEDE261CA593234C619249419506", Host: "tox1.mf-net.eu", Port: 33445},
}

// Default returns the built-in configuration.
func Default() Config {
	net := engine.DefaultOptions()
	return Config{
		DataFile:                   "data",
		Name:                       "EchoBot",
		StatusMessage:              "Tox audio/video testing service. Send '!info' for stats.",
		InfoLines:                  append([]string(nil), commands.DefaultInfoLines...),
		AudioBitRate:               commands.AudioBitRate,
		VideoBitRate:               commands.VideoBitRate,
		SweepIntervalSeconds:       uint64(friends.SweepInterval.Seconds()),
		InactivityThresholdSeconds: uint64(friends.InactivityThreshold.Seconds()),
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Network: Network{
			UDPEnabled:     net.UDPEnabled,
			IPv6Enabled:    net.IPv6Enabled,
			LocalDiscovery: net.LocalDiscovery,
			StartPort:      net.StartPort,
			EndPort:        net.EndPort,
			TCPPort:        net.TCPPort,
		},
		Nodes: append([]Node(nil), DefaultNodes...),
	}
}

// EngineOptions converts Network for the session engine.
func (c Config) EngineOptions() engine.Options {
	return engine.Options{
		UDPEnabled:     c.Network.UDPEnabled,
		IPv6Enabled:    c.Network.IPv6Enabled,
		LocalDiscovery: c.Network.LocalDiscovery,
		StartPort:      c.Network.StartPort,
		EndPort:        c.Network.EndPort,
		TCPPort:        c.Network.TCPPort,
	}
}
