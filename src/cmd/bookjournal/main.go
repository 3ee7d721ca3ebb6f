package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bookjournal/src/cmd/bookjournal/bookscmd"
	"bookjournal/src/cmd/bookjournal/cmdenv"
	"bookjournal/src/cmd/bookjournal/configcmd"
	"bookjournal/src/cmd/bookjournal/entrycmd"
	"bookjournal/src/cmd/bookjournal/exportcmd"
	"bookjournal/src/cmd/bookjournal/searchcmd"
	"bookjournal/src/internal/config"
	"bookjournal/src/internal/logging"
)

func newRootCmd(env *cmdenv.Env) *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "bookjournal",
		Short:         "Academic book search and reading journal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(env.ConfigPath)
			switch {
			case err != nil && cmd.Annotations[cmdenv.IgnoreLoadErrors] == "":
				return err
			case err != nil:
				cfg = config.DefaultConfig()
			case cmd.Annotations[cmdenv.SkipValidation] == "":
				if err := cfg.Validate(); err != nil {
					return fmt.Errorf("%s: %w", env.ConfigPath, err)
				}
			}
			level := cfg.Log.Level
			if verbose {
				level = "debug"
			}
			logger, err := logging.New(level)
			if err != nil {
				return err
			}
			env.Config = cfg
			env.Logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if env.Logger != nil {
				_ = env.Logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&env.ConfigPath, "config", config.DefaultPath, "config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(searchcmd.New(env))
	root.AddCommand(entrycmd.New(env))
	root.AddCommand(bookscmd.New(env))
	root.AddCommand(bookscmd.NewShow(env))
	root.AddCommand(exportcmd.New(env))
	root.AddCommand(configcmd.New(env))
	return root
}

func main() {
	if err := newRootCmd(&cmdenv.Env{}).Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
