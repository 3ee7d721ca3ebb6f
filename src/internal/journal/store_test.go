package journal

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"bookjournal/src/internal/schema"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func entry(bookID string, date time.Time) schema.JournalEntry {
	return schema.JournalEntry{BookID: bookID, Date: date, Content: "メモ", Rating: 4, Status: schema.StatusReading}
}

func TestAddEntry_SavesBookOnce(t *testing.T) {
	s := openTemp(t)
	book := schema.Book{ID: "9784000000011", Title: "哲学の歴史", Publisher: "岩波書店"}

	e1, err := s.AddEntry(entry(book.ID, day(2024, 3, 1)), book)
	require.NoError(t, err)
	assert.NotEmpty(t, e1.ID)

	renamed := book
	renamed.Title = "別タイトル"
	_, err = s.AddEntry(entry(book.ID, day(2024, 3, 2)), renamed)
	require.NoError(t, err)

	got, err := s.Book(book.ID)
	require.NoError(t, err)
	assert.Equal(t, "哲学の歴史", got.Title, "an already saved book is not overwritten")

	books, err := s.Books()
	require.NoError(t, err)
	assert.Len(t, books, 1)
}

func TestAddEntry_UpsertsByID(t *testing.T) {
	s := openTemp(t)
	e, err := s.AddEntry(entry("b1", day(2024, 1, 1)), schema.Book{ID: "b1", Title: "T"})
	require.NoError(t, err)

	e.Content = "書き直し"
	e.Rating = 5
	_, err = s.AddEntry(e, schema.Book{})
	require.NoError(t, err)

	all, err := s.Entries()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "書き直し", all[0].Content)
	assert.Equal(t, 5, all[0].Rating)
}

func TestAddEntry_Validation(t *testing.T) {
	s := openTemp(t)
	cases := map[string]schema.JournalEntry{
		"rating": {BookID: "b", Date: day(2024, 1, 1), Rating: 0},
		"book":   {Date: day(2024, 1, 1), Rating: 3},
		"date":   {BookID: "b", Rating: 3},
		"status": {BookID: "b", Date: day(2024, 1, 1), Rating: 3, Status: "skimmed"},
		"bad id": {ID: "not-a-uuid", BookID: "b", Date: day(2024, 1, 1), Rating: 3},
	}
	for name, e := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.AddEntry(e, schema.Book{})
			assert.ErrorIs(t, err, ErrInvalidEntry)
		})
	}
	all, err := s.Entries()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAddEntry_DefaultsStatusToCompleted(t *testing.T) {
	s := openTemp(t)
	e := entry("b", day(2024, 1, 1))
	e.Status = ""
	saved, err := s.AddEntry(e, schema.Book{})
	require.NoError(t, err)
	assert.Equal(t, schema.StatusCompleted, saved.Status)
}

func TestEntries_OrderAndFilter(t *testing.T) {
	s := openTemp(t)
	for _, e := range []schema.JournalEntry{
		entry("b2", day(2024, 5, 1)),
		entry("b1", day(2023, 1, 1)),
		entry("b1", day(2024, 2, 1)),
	} {
		_, err := s.AddEntry(e, schema.Book{})
		require.NoError(t, err)
	}

	all, err := s.Entries()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].Date.Equal(day(2023, 1, 1)))
	assert.True(t, all[2].Date.Equal(day(2024, 5, 1)))

	b1, err := s.EntriesForBook("b1")
	require.NoError(t, err)
	require.Len(t, b1, 2)
	for _, e := range b1 {
		assert.Equal(t, "b1", e.BookID)
	}

	none, err := s.EntriesForBook("zzz")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRemoveEntry(t *testing.T) {
	s := openTemp(t)
	e, err := s.AddEntry(entry("b", day(2024, 1, 1)), schema.Book{})
	require.NoError(t, err)

	require.NoError(t, s.RemoveEntry(e.ID))
	_, err = s.Entry(e.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.ErrorIs(t, s.RemoveEntry(e.ID), ErrNotFound)
}

func TestBook_NotFound(t *testing.T) {
	s := openTemp(t)
	_, err := s.Book("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.AddEntry(entry("b1", day(2024, 1, 1)), schema.Book{ID: "b1", Title: "存在と時間"})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "double close is a no-op")

	_, err = s.Books()
	assert.Error(t, err, "closed store refuses reads")

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	books, err := s2.Books()
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "存在と時間", books[0].Title)
}

func TestExportWritesYAML(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, s.SaveBook(schema.Book{ID: "b2", Title: "論理学"}))
	e := entry("b1", day(2024, 1, 1))
	e.Tags = []string{"哲学", " 哲学 ", ""}
	_, err := s.AddEntry(e, schema.Book{ID: "b1", Title: "倫理学"})
	require.NoError(t, err)

	j, err := s.Export()
	require.NoError(t, err)
	require.Len(t, j.Books, 2)
	assert.Equal(t, "倫理学", j.Books[0].Title)
	require.Len(t, j.Entries, 1)
	assert.Equal(t, []string{"哲学"}, j.Entries[0].Tags)

	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, j))
	var back Journal
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, j.Entries[0].ID, back.Entries[0].ID)
	assert.Contains(t, buf.String(), "book_id: b1")
}

func TestOpen_FailsFastWhenLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	done := make(chan error, 1)
	go func() {
		second, err := Open(path)
		if err == nil {
			second.Close()
		}
		done <- err
	}()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrInUse)
	case <-time.After(LockTimeout + 3*time.Second):
		t.Fatal("second Open is still waiting on the file lock")
	}

	require.NoError(t, s.Close())
	again, err := Open(path)
	require.NoError(t, err)
	assert.NoError(t, again.Close())
}
