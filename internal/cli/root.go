// Package cli wires the data-shield commands.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/eco2-team/backend/domains/data-shield/internal/config"
	"github.com/eco2-team/backend/domains/data-shield/internal/constants"
	"github.com/eco2-team/backend/domains/data-shield/internal/shield"
)

const (
	flagConfig = "config"
	flagFields = "fields"
)

// rootOptions are the flags shared by every command.
type rootOptions struct {
	configFile string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          constants.ServiceName,
		Short:        "Mask sensitive fields in headers, query strings and JSON records",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.configFile, flagConfig, "",
		"config file (YAML); environment variables with the DATASHIELD_ prefix take precedence")
	root.PersistentFlags().String(flagFields, "",
		"comma-separated sensitive field names (overrides masking.sensitive_fields)")

	root.AddCommand(serveCmd(opts))
	root.AddCommand(maskCmd(opts))
	root.AddCommand(describeCmd(opts))
	return root
}

// Execute runs the root command. It is called by main.main().
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig reads the configuration with the command's flags layered on top.
func (o *rootOptions) loadConfig(cmd *cobra.Command, bindings ...config.FlagBinding) (*config.Config, error) {
	bindings = append(bindings, config.FlagBinding{Key: constants.KeyMaskingSensitiveFields, Flag: flagFields})
	return config.LoadWithFlags(o.configFile, cmd.Flags(), bindings...)
}

// loadShield builds the masking engine from file, env and flags.
func (o *rootOptions) loadShield(cmd *cobra.Command) (*shield.Shield, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return shield.New(cfg.MaskingConfig())
}
