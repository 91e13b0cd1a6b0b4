// Package app provides the insight server application.
package app

import (
	"fmt"

	"github.com/kart-io/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kart-io/insight/cmd/insight/app/options"
	insight "github.com/kart-io/insight/internal/insight"
)

const (
	appName        = "insight"
	appDescription = `Insight back-office server.

Multi-tenant authorization and resource sharing for dashboards,
charts and datasource connections.

Configuration can be provided via command-line flags, a YAML
configuration file (-c) or environment variables (prefix INSIGHT_),
in that priority order.`
)

// NewCommand builds the root cobra command for the insight server.
func NewCommand() *cobra.Command {
	opts := options.NewOptions()
	var cfgFile string

	cmd := &cobra.Command{
		Use:          appName,
		Short:        "Insight back-office server",
		Long:         appDescription,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			version.PrintAndExitIfRequested()
			if err := loadConfig(cmd, cfgFile, opts); err != nil {
				return err
			}
			if err := opts.Validate(); err != nil {
				return err
			}
			return insight.Run(opts)
		},
	}

	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "Path to the configuration file")
	version.AddFlags(cmd.PersistentFlags())
	opts.AddFlags(cmd.Flags())

	return cmd
}

// loadConfig merges the config file and environment into the options.
// Explicit flags keep the highest priority.
func loadConfig(cmd *cobra.Command, cfgFile string, opts *options.Options) error {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	v.SetEnvPrefix("INSIGHT")
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	return v.Unmarshal(opts)
}
