package bookscmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bookjournal/src/cmd/bookjournal/cmdenv"
	"bookjournal/src/internal/dates"
	"bookjournal/src/internal/schema"
	"bookjournal/src/internal/stringsx"
)

// New returns the command listing saved books.
func New(env *cmdenv.Env) *cobra.Command {
	return &cobra.Command{
		Use:   "books",
		Short: "List books saved in the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := env.OpenJournal()
			if err != nil {
				return err
			}
			defer store.Close()
			books, err := store.Books()
			if err != nil {
				return err
			}
			if len(books) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "no books saved")
				return err
			}
			rows := make([][]string, 0, len(books))
			for _, b := range books {
				n, err := store.EntriesForBook(b.ID)
				if err != nil {
					return err
				}
				rows = append(rows, []string{b.ID, stringsx.Truncate(b.Title, 40), b.Publisher, strconv.Itoa(len(n))})
			}
			cmdenv.RenderTable(cmd.OutOrStdout(), []string{"id", "title", "publisher", "entries"}, rows)
			return nil
		},
	}
}

// NewShow returns the command printing one book with its notes.
func NewShow(env *cmdenv.Env) *cobra.Command {
	return &cobra.Command{
		Use:   "show <book-id>",
		Short: "Show a saved book and its reading notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := env.OpenJournal()
			if err != nil {
				return err
			}
			defer store.Close()
			b, err := store.Book(args[0])
			if err != nil {
				return err
			}
			entries, err := store.EntriesForBook(b.ID)
			if err != nil {
				return err
			}
			writeBook(cmd.OutOrStdout(), b, entries)
			return nil
		},
	}
}

func writeBook(w io.Writer, b schema.Book, entries []schema.JournalEntry) {
	field := func(label, v string) {
		if strings.TrimSpace(v) != "" {
			_, _ = fmt.Fprintf(w, "%-10s %s\n", label+":", v)
		}
	}
	field("title", b.Title)
	field("author", b.Author)
	field("publisher", b.Publisher)
	field("published", dates.FormatDate(b.PublishDate))
	field("isbn", b.ISBN)
	field("source", b.Source)
	if b.Description != "" {
		_, _ = fmt.Fprintf(w, "\n%s\n", b.Description)
	}
	_, _ = fmt.Fprintf(w, "\nentries (%d)\n", len(entries))
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "- %s %s %s [%s]\n", e.Date.Format("2006-01-02"), cmdenv.Stars(e.Rating), e.Status.Label(), e.ID)
		if e.Content != "" {
			_, _ = fmt.Fprintf(w, "  %s\n", e.Content)
		}
		for _, q := range e.Quotes {
			_, _ = fmt.Fprintf(w, "  「%s」\n", q)
		}
		if len(e.Tags) > 0 {
			_, _ = fmt.Fprintf(w, "  tags: %s\n", strings.Join(e.Tags, ", "))
		}
	}
}
