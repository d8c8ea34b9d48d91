package main

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/opd-ai/echobot/config"
)

// app carries state shared by the subcommands of one invocation.
type app struct {
	v          *viper.Viper
	configPath string
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "echobot",
		Short: "Tox echo bot",
		Long: "echobot keeps one Tox identity online, accepts every friend request, " +
			"echoes messages with a small command set and loops calls back to the caller.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBot(cmd.Context(), a.cfg)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (default: ./echobot.toml or ~/.config/echobot/echobot.toml)")
	flags.String("data", "", "profile file")
	flags.String("log-level", "", "log level (trace, debug, info, warn, error)")
	flags.String("log-format", "", "log format (text, json)")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9100")

	for key, flag := range map[string]string{
		config.KeyDataFile:    "data",
		config.KeyLogLevel:    "log-level",
		config.KeyLogFormat:   "log-format",
		config.KeyMetricsAddr: "metrics-addr",
	} {
		if err := a.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", flag, err))
		}
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(a),
		newIDCmd(a),
	)
	return rootCmd
}

func (a *app) load(logOut io.Writer) error {
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return setupLogging(cfg.Log, logOut)
}

// setupLogging configures the global logrus logger, which toxcore shares.
func setupLogging(cfg config.Log, out io.Writer) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	logrus.SetOutput(out)
	if cfg.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
