package entrycmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bookjournal/src/cmd/bookjournal/cmdenv"
	"bookjournal/src/internal/catalog"
	"bookjournal/src/internal/dates"
	"bookjournal/src/internal/journal"
	"bookjournal/src/internal/schema"
	"bookjournal/src/internal/stringsx"
)

// New returns the entry command group.
func New(env *cmdenv.Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Write, list and remove reading notes",
	}
	cmd.AddCommand(newAdd(env), newList(env), newRemove(env))
	return cmd
}

func newAdd(env *cmdenv.Env) *cobra.Command {
	var rating int
	var status, content, date string
	var tags, quotes []string
	cmd := &cobra.Command{
		Use:   "add <book-id>",
		Short: "Add a reading note for a book (saved book or catalog id/ISBN)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := schema.ParseStatus(status)
			if err != nil {
				return err
			}
			day, err := dates.ParseDay(date)
			if err != nil {
				return err
			}
			book, err := resolveBook(cmd.Context(), env, strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			store, err := env.OpenJournal()
			if err != nil {
				return err
			}
			defer store.Close()

			e, err := store.AddEntry(schema.JournalEntry{
				BookID:  book.ID,
				Date:    day,
				Content: content,
				Rating:  rating,
				Tags:    tags,
				Quotes:  quotes,
				Status:  st,
			}, book)
			if err != nil {
				return err
			}
			env.Log().Info("entry added", zap.String("entry", e.ID), zap.String("book", book.ID))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "added %s for %s\n", e.ID, book.Title)
			return err
		},
	}
	cmd.Flags().IntVar(&rating, "rating", 0, "rating from 1 to 5")
	cmd.Flags().StringVar(&status, "status", "", "want_to_read, reading, completed (default) or abandoned")
	cmd.Flags().StringVar(&content, "content", "", "note text")
	cmd.Flags().StringVar(&date, "date", "", "YYYY-MM-DD (default today)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag (repeatable or comma-separated)")
	cmd.Flags().StringArrayVar(&quotes, "quote", nil, "quoted passage (repeatable)")
	_ = cmd.MarkFlagRequired("rating")
	return cmd
}

// resolveBook prefers the saved copy and only asks the catalogs for unknown
// ids. The journal is not held open during catalog requests.
func resolveBook(ctx context.Context, env *cmdenv.Env, id string) (schema.Book, error) {
	book, err := savedBook(env, id)
	if !errors.Is(err, journal.ErrNotFound) {
		return book, err
	}
	client, err := env.Catalog()
	if err != nil {
		return schema.Book{}, err
	}
	raw, attempts, err := catalog.LookupChain(ctx, id, env.Resolvers(client)...)
	for _, a := range attempts {
		env.Log().Debug("book lookup", zap.String("provider", a.Provider), zap.Bool("ok", a.Success), zap.String("error", a.Error))
	}
	if errors.Is(err, catalog.ErrNotFound) {
		return schema.Book{}, fmt.Errorf("book %s: not in the journal or the catalog", id)
	}
	if err != nil {
		return schema.Book{}, err
	}
	return catalog.NewBook(raw), nil
}

func savedBook(env *cmdenv.Env, id string) (schema.Book, error) {
	store, err := env.OpenJournal()
	if err != nil {
		return schema.Book{}, err
	}
	defer store.Close()
	return store.Book(id)
}

func newList(env *cmdenv.Env) *cobra.Command {
	var bookID, status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reading notes, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var want schema.ReadingStatus
			if strings.TrimSpace(status) != "" {
				st, err := schema.ParseStatus(status)
				if err != nil {
					return err
				}
				want = st
			}
			store, err := env.OpenJournal()
			if err != nil {
				return err
			}
			defer store.Close()

			var entries []schema.JournalEntry
			if bookID != "" {
				entries, err = store.EntriesForBook(bookID)
			} else {
				entries, err = store.Entries()
			}
			if err != nil {
				return err
			}
			if want != "" {
				entries = withStatus(entries, want)
			}
			if len(entries) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "no entries")
				return err
			}
			titles := map[string]string{}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				title, ok := titles[e.BookID]
				if !ok {
					if b, err := store.Book(e.BookID); err == nil {
						title = b.Title
					}
					titles[e.BookID] = title
				}
				rows = append(rows, []string{
					e.Date.Format("2006-01-02"),
					e.ID,
					stringsx.Truncate(stringsx.FirstNonEmpty(title, e.BookID), 30),
					cmdenv.Stars(e.Rating),
					e.Status.Label(),
					strings.Join(e.Tags, ","),
				})
			}
			cmdenv.RenderTable(cmd.OutOrStdout(), []string{"date", "id", "book", "rating", "status", "tags"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&bookID, "book", "", "only entries for this book id")
	cmd.Flags().StringVar(&status, "status", "", "only entries with this reading status (id or label)")
	return cmd
}

func withStatus(entries []schema.JournalEntry, st schema.ReadingStatus) []schema.JournalEntry {
	out := entries[:0]
	for _, e := range entries {
		if e.Status == st {
			out = append(out, e)
		}
	}
	return out
}

func newRemove(env *cmdenv.Env) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <entry-id>",
		Aliases: []string{"remove"},
		Short:   "Delete a reading note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := env.OpenJournal()
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.RemoveEntry(args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
			return err
		},
	}
}
