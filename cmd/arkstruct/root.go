package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type app struct {
	logLevel string
	log      zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{log: zerolog.Nop()}
	rootCmd := &cobra.Command{
		Use:           "arkstruct",
		Short:         "Typed RPC schemas and clients",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(a.logLevel)
			if err != nil {
				return err
			}
			a.log = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).
				Level(level).With().Timestamp().Logger()
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error, disabled)")

	rootCmd.AddCommand(
		newGenerateCmd(a),
		newCallCmd(a),
		newServeCmd(a),
		newOperationsCmd(a),
	)
	return rootCmd
}
