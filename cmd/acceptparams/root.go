package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nateware/accept-params/config"
)

// app carries state shared by the subcommands.
type app struct {
	configPath string
	cfg        *config.Config
	logger     zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "acceptparams",
		Short:         "Validate request params against declared schemas",
		Long:          `acceptparams checks params documents against YAML or JSON schema files, exports them as JSON Schema and serves validation over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Configuration file (YAML)")

	rootCmd.AddCommand(
		newCheckCmd(a),
		newSchemaCmd(),
		newServeCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

func (a *app) loadConfig(cmd *cobra.Command) error {
	if a.configPath == "" {
		a.cfg = config.Default()
	} else {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	a.cfg.Apply()
	a.logger = config.NewLoggerTo(cmd.ErrOrStderr(), a.cfg.Logging)
	return nil
}
