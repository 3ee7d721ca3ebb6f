package exportcmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"bookjournal/src/cmd/bookjournal/cmdenv"
	"bookjournal/src/internal/journal"
)

// New returns the export command, which dumps the journal as YAML.
func New(env *cmdenv.Env) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export saved books and reading notes as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := env.OpenJournal()
			if err != nil {
				return err
			}
			defer store.Close()
			j, err := store.Export()
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				return journal.WriteYAML(cmd.OutOrStdout(), j)
			}
			var buf bytes.Buffer
			if err := journal.WriteYAML(&buf, j); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d books, %d entries)\n", out, len(j.Books), len(j.Entries))
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output YAML file (default stdout)")
	return cmd
}
