package searchcmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bookjournal/src/cmd/bookjournal/cmdenv"
	"bookjournal/src/internal/names"
	"bookjournal/src/internal/schema"
	"bookjournal/src/internal/search"
	"bookjournal/src/internal/stringsx"
)

// New returns the search command: catalog lookup, academic-publisher filter
// and related-keyword enrichment in one call.
func New(env *cmdenv.Env) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search academic books and books on related keywords",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := env.Catalog()
			if err != nil {
				return err
			}
			log := env.Log()
			session := search.NewSession(env.Searcher(client), search.WithStatusHook(func(searching bool) {
				log.Debug("search status", zap.Bool("searching", searching))
			}))
			out := <-session.Perform(cmd.Context(), strings.Join(args, " "))
			if out.Err != nil {
				return out.Err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), out.Result)
			}
			renderResult(cmd.OutOrStdout(), out.Result)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func writeJSON(w io.Writer, res schema.Result) error {
	if res.Books == nil {
		res.Books = []schema.Book{}
	}
	if res.RelatedKeywords == nil {
		res.RelatedKeywords = []string{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func renderResult(w io.Writer, res schema.Result) {
	if len(res.Books) == 0 {
		_, _ = fmt.Fprintf(w, "no academic books found for %q\n", res.Query)
		return
	}
	rows := make([][]string, 0, len(res.Books))
	for _, b := range res.Books {
		rows = append(rows, []string{b.ID, stringsx.Truncate(b.Title, 40), firstAuthor(b.Author), b.Publisher})
	}
	cmdenv.RenderTable(w, []string{"id", "title", "author", "publisher"}, rows)
	if len(res.RelatedKeywords) > 0 {
		_, _ = fmt.Fprintf(w, "\nrelated: %s\n", strings.Join(res.RelatedKeywords, ", "))
	}
}

func firstAuthor(author string) string {
	all := names.Split(author)
	switch len(all) {
	case 0:
		return ""
	case 1:
		return all[0]
	}
	return all[0] + " ほか"
}
