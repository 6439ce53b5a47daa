package main

import (
	"context"
	"errors"
	"github.com/cryptolib/cryptolib/conf"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"os"
)

const defaultConfigFile = "conf.json"

type rootOptions struct {
	configFile     string
	explicitConfig bool
	logLevel       string
}

func newRootCmd() *cobra.Command {
	return buildRootCmd(&rootOptions{})
}

func buildRootCmd(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "cryptolib",
		Short:         "Crypto Library console and auth relay",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.explicitConfig = cmd.Flags().Changed("config")
		},
	}
	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", defaultConfigFile, "path to the JSON config file, empty for defaults and env only")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "overrides LogLevel from the config")

	root.AddCommand(
		newRelayCmd(opts),
		newConsoleCmd(opts),
		newCheckoutsCmd(opts),
	)
	return root
}

// load reads the config once and applies the log level. The result is
// shared by pointer with whatever component the subcommand starts. A config
// file that was not asked for explicitly may be absent; defaults and
// CRYPTOLIB_* env then apply alone.
func (o *rootOptions) load() (*conf.Conf, error) {
	file := o.configFile
	if !o.explicitConfig && file != "" {
		if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
			log.WithFields(log.Fields{
				"path": file,
			}).Debug("No config file, using defaults and env")
			file = ""
		}
	}

	c, err := conf.LoadConf(file)
	if err != nil {
		return nil, err
	}

	level := c.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	log.SetLevel(lvl)
	return c, nil
}

func main() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		log.WithFields(log.Fields{
			"error": err,
		}).Error("cryptolib failed")
		os.Exit(1)
	}
}
