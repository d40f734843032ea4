package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-scraper/pkg/models"
)

func seedRun(t *testing.T, dir string, stamp time.Time, term string, products []models.Product) string {
	t.Helper()
	sink := NewCSVSink(dir)
	sink.now = func() time.Time { return stamp }
	path, err := sink.Persist(products, term)
	require.NoError(t, err)
	return path
}

func TestStore_ListAndLoad(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	seedRun(t, dir, at, "smartphone", sampleBatch(at))
	seedRun(t, dir, at.Add(time.Minute), "laptop", nil)

	store := NewStore(dir)

	runs, err := store.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 2, runs[0].Rows+runs[1].Rows)

	products, err := store.Load("smartphone_20250314_090000.csv")
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Samsung Galaxy M14", products[0].Title)
	require.NotNil(t, products[0].Price)
	assert.Equal(t, 18999.0, *products[0].Price)
	assert.Nil(t, products[1].Price)
	assert.Equal(t, at, products[0].ScrapedAt.Time)
}

func TestStore_LoadMissingFile(t *testing.T) {
	store := NewStore(t.TempDir())
	_, err := store.Load("no_such_run.csv")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_LoadRejectsPathEscape(t *testing.T) {
	store := NewStore(t.TempDir())
	_, err := store.Load("../etc/passwd.csv")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_LoadAllAnnotatesSource(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	seedRun(t, dir, at, "smartphone", sampleBatch(at))

	entries, err := NewStore(dir).LoadAll()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "smartphone_20250314_090000.csv", entries[0].SourceFile)
}

func TestStore_CombineDeduplicatesByTitle(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	seedRun(t, dir, at, "smartphone", sampleBatch(at))
	// second run repeats one title and adds a new one
	seedRun(t, dir, at.Add(time.Hour), "smartphone", []models.Product{
		{Title: "Samsung Galaxy M14", ScrapedAt: models.NewDateTime(at.Add(time.Hour))},
		{Title: "OnePlus Nord CE 3", ScrapedAt: models.NewDateTime(at.Add(time.Hour))},
	})

	store := NewStore(dir)
	path, rows, err := store.Combine()
	require.NoError(t, err)
	assert.Equal(t, 3, rows)
	assert.Contains(t, path, CombinedFileName)

	// the combined file is excluded from run listings
	runs, err := store.ListRuns()
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	// combining again overwrites the derived file rather than failing
	_, rows, err = store.Combine()
	require.NoError(t, err)
	assert.Equal(t, 3, rows)
}
