package configcmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"bookjournal/src/cmd/bookjournal/cmdenv"
	"bookjournal/src/internal/config"
)

// New returns the config command group.
func New(env *cmdenv.Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or inspect the configuration file",
	}
	cmd.AddCommand(newInit(env), newShow(env))
	return cmd
}

func path(env *cmdenv.Env) string {
	if env.ConfigPath != "" {
		return env.ConfigPath
	}
	return config.DefaultPath
}

func newInit(env *cmdenv.Env) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		Annotations: map[string]string{
			cmdenv.SkipValidation:   "true",
			cmdenv.IgnoreLoadErrors: "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			p := path(env)
			if _, err := os.Stat(p); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", p)
			}
			if err := config.DefaultConfig().Save(p); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", p)
			return err
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newShow(env *cmdenv.Env) *cobra.Command {
	return &cobra.Command{
		Use:         "show",
		Short:       "Print the effective configuration (secrets masked)",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{cmdenv.SkipValidation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if env.Config != nil {
				c := *env.Config
				cfg = &c
			}
			cfg.Catalog.AppID = mask(cfg.Catalog.AppID)
			cfg.Catalog.APIKey = mask(cfg.Catalog.APIKey)
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func mask(s string) string {
	if len(s) <= 4 {
		if s == "" {
			return ""
		}
		return "****"
	}
	return s[:4] + "****"
}
