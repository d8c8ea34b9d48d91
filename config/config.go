// Package config loads the bot configuration from defaults, an optional
// echobot.toml, ECHOBOT_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/opd-ai/echobot/limits"
	"github.com/opd-ai/echobot/session"
)

const (
	configName = "echobot"
	configType = "toml"
	envPrefix  = "ECHOBOT"

	// Tox protocol limits on self profile fields.
	maxNameLength          = 128
	maxStatusMessageLength = 1007
)

// Keys bound to command-line flags.
const (
	KeyDataFile    = "data_file"
	KeyPassphrase  = "passphrase"
	KeyLogLevel    = "log.level"
	KeyLogFormat   = "log.format"
	KeyMetricsAddr = "metrics.addr"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Node is a bootstrap peer.
type Node struct {
	PublicKey string `mapstructure:"public_key" toml:"public_key"`
	Host      string `mapstructure:"host" toml:"host"`
	Port      uint16 `mapstructure:"port" toml:"port"`
}

// Log configures the logrus output.
type Log struct {
	Level  string `mapstructure:"level" toml:"level"`
	Format string `mapstructure:"format" toml:"format"`
}

// Metrics configures the Prometheus listener. An empty Addr disables it.
type Metrics struct {
	Addr string `mapstructure:"addr" toml:"addr"`
}

// Network selects the transports of the session engine.
type Network struct {
	UDPEnabled     bool   `mapstructure:"udp_enabled" toml:"udp_enabled"`
	IPv6Enabled    bool   `mapstructure:"ipv6_enabled" toml:"ipv6_enabled"`
	LocalDiscovery bool   `mapstructure:"local_discovery" toml:"local_discovery"`
	StartPort      uint16 `mapstructure:"start_port" toml:"start_port"`
	EndPort        uint16 `mapstructure:"end_port" toml:"end_port"`
	TCPPort        uint16 `mapstructure:"tcp_port" toml:"tcp_port"`
}

// Config is the complete bot configuration.
type Config struct {
	DataFile   string `mapstructure:"data_file" toml:"data_file"`
	Passphrase string `mapstructure:"passphrase" toml:"passphrase"`

	Name          string   `mapstructure:"name" toml:"name"`
	StatusMessage string   `mapstructure:"status_message" toml:"status_message"`
	InfoLines     []string `mapstructure:"info_lines" toml:"info_lines"`

	AudioBitRate uint32 `mapstructure:"audio_bit_rate" toml:"audio_bit_rate"`
	VideoBitRate uint32 `mapstructure:"video_bit_rate" toml:"video_bit_rate"`

	SweepIntervalSeconds       uint64 `mapstructure:"sweep_interval_seconds" toml:"sweep_interval_seconds"`
	InactivityThresholdSeconds uint64 `mapstructure:"inactivity_threshold_seconds" toml:"inactivity_threshold_seconds"`

	Log     Log     `mapstructure:"log" toml:"log"`
	Metrics Metrics `mapstructure:"metrics" toml:"metrics"`
	Network Network `mapstructure:"network" toml:"network"`
	Nodes   []Node  `mapstructure:"nodes" toml:"nodes"`
}

// SweepInterval returns the sweep period.
func (c Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// InactivityThreshold returns how long a friend may stay unseen.
func (c Config) InactivityThreshold() time.Duration {
	return time.Duration(c.InactivityThresholdSeconds) * time.Second
}

// SessionNodes converts Nodes for the session engine.
func (c Config) SessionNodes() []session.Node {
	nodes := make([]session.Node, len(c.Nodes))
	for i, n := range c.Nodes {
		nodes[i] = session.Node{PublicKey: n.PublicKey, Host: n.Host, Port: n.Port}
	}
	return nodes
}

// Redacted returns a copy safe for printing.
func (c Config) Redacted() Config {
	if c.Passphrase != "" {
		c.Passphrase = "<redacted>"
	}
	return c
}

// Validate reports every problem found, combined.
func (c Config) Validate() error {
	var err error
	fail := func(format string, args ...any) {
		err = multierr.Append(err, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if strings.TrimSpace(c.DataFile) == "" {
		fail("data_file is empty")
	}
	if c.Name == "" || len(c.Name) > maxNameLength {
		fail("name must be 1-%d bytes", maxNameLength)
	}
	if len(c.StatusMessage) > maxStatusMessageLength {
		fail("status_message exceeds %d bytes", maxStatusMessageLength)
	}
	for i, line := range c.InfoLines {
		if line == "" || len(line) > limits.MaxPlaintextMessage {
			fail("info_lines[%d] must be 1-%d bytes", i, limits.MaxPlaintextMessage)
		}
	}
	if c.AudioBitRate == 0 {
		fail("audio_bit_rate must be positive")
	}
	if c.SweepIntervalSeconds == 0 {
		fail("sweep_interval_seconds must be positive")
	}
	if c.InactivityThresholdSeconds == 0 {
		fail("inactivity_threshold_seconds must be positive")
	}
	if _, perr := logrus.ParseLevel(c.Log.Level); perr != nil {
		fail("log.level: %v", perr)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		fail("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Network.StartPort > c.Network.EndPort {
		fail("network.start_port %d is above end_port %d", c.Network.StartPort, c.Network.EndPort)
	}
	if len(c.Nodes) == 0 {
		fail("no bootstrap nodes")
	}
	for i, n := range c.Nodes {
		if key, herr := hex.DecodeString(n.PublicKey); herr != nil || len(key) != 32 {
			fail("nodes[%d]: public_key must be 64 hex characters", i)
		}
		if n.Host == "" {
			fail("nodes[%d]: host is empty", i)
		}
		if n.Port == 0 {
			fail("nodes[%d]: port is zero", i)
		}
	}
	return err
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	return enc.Encode(c)
}

// Load reads the configuration into v. If path is empty, echobot.toml is
// searched for in the working directory and $HOME/.config/echobot and may
// be absent; an explicit path must exist.
func Load(v *viper.Viper, path string) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults registers Default() on v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyDataFile, d.DataFile)
	v.SetDefault(KeyPassphrase, d.Passphrase)
	v.SetDefault("name", d.Name)
	v.SetDefault("status_message", d.StatusMessage)
	v.SetDefault("info_lines", d.InfoLines)
	v.SetDefault("audio_bit_rate", d.AudioBitRate)
	v.SetDefault("video_bit_rate", d.VideoBitRate)
	v.SetDefault("sweep_interval_seconds", d.SweepIntervalSeconds)
	v.SetDefault("inactivity_threshold_seconds", d.InactivityThresholdSeconds)
	v.SetDefault(KeyLogLevel, d.Log.Level)
	v.SetDefault(KeyLogFormat, d.Log.Format)
	v.SetDefault(KeyMetricsAddr, d.Metrics.Addr)
	v.SetDefault("network.udp_enabled", d.Network.UDPEnabled)
	v.SetDefault("network.ipv6_enabled", d.Network.IPv6Enabled)
	v.SetDefault("network.local_discovery", d.Network.LocalDiscovery)
	v.SetDefault("network.start_port", d.Network.StartPort)
	v.SetDefault("network.end_port", d.Network.EndPort)
	v.SetDefault("network.tcp_port", d.Network.TCPPort)
	v.SetDefault("nodes", d.Nodes)
}
