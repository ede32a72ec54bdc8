// Command idad runs instant distribution agreements on a local ledger.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

type rootFlags struct {
	configPath string
	home       string
	backend    string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	root := &cobra.Command{
		Use:           "idad",
		Short:         "Instant distribution agreement ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&flags.home, "home", "", "data directory, overrides the configuration")
	root.PersistentFlags().StringVar(&flags.backend, "backend", "", "store backend: memory, iavl or bolt")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, error or none")

	root.AddCommand(
		newInitCmd(&flags),
		newRunCmd(&flags),
		newQueryCmd(&flags),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), Version)
			},
		},
	)
	return root
}

// config loads the configuration file and applies command line overrides.
func (f *rootFlags) config() (Config, error) {
	conf, err := loadConfig(f.configPath)
	if err != nil {
		return conf, err
	}
	if f.home != "" {
		conf.Home = f.home
	}
	if f.backend != "" {
		conf.Backend = f.backend
	}
	if f.logLevel != "" {
		conf.LogLevel = f.logLevel
	}
	return conf, conf.Validate()
}
