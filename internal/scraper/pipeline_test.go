package scraper

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-scraper/internal/storage"
)

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestPipeline_TwoPageRun(t *testing.T) {
	// page 1: 24 complete cards; page 2: 10 cards, 3 without a rating
	pageTwo := fullCards(10)
	for i := 0; i < 3; i++ {
		pageTwo[i].rating = ""
	}
	source := &fixtureSource{pages: []string{
		listingPage(fullCards(24), true),
		listingPage(pageTwo, false),
	}}

	pipeline := &Pipeline{
		Source:   source,
		Sink:     storage.NewCSVSink(t.TempDir()),
		Profile:  DefaultProfile(""),
		MaxPages: 5,
	}
	summary, err := pipeline.Run(context.Background(), "smartphone")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.PagesVisited)
	assert.Equal(t, 34, summary.Extracted)
	assert.Equal(t, 34, summary.Kept)
	assert.Equal(t, 0, summary.Rejected)

	rows := readRows(t, summary.OutputPath)
	require.Len(t, rows, 35) // header + 34 records
	assert.Equal(t, []string{"title", "price", "rating", "image_url", "scraped_at"}, rows[0])

	withRating := 0
	for _, row := range rows[1:] {
		if row[2] != "" {
			withRating++
		}
	}
	assert.Equal(t, 31, withRating)
}

func TestPipeline_MaxPagesBoundsRun(t *testing.T) {
	// every page advertises a next page; the pager must stop at the cap
	pages := make([]string, 4)
	for i := range pages {
		pages[i] = listingPage(fullCards(2), true)
	}
	source := &fixtureSource{pages: pages}

	pipeline := &Pipeline{
		Source:   source,
		Sink:     storage.NewCSVSink(t.TempDir()),
		Profile:  DefaultProfile(""),
		MaxPages: 2,
	}
	summary, err := pipeline.Run(context.Background(), "smartphone")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.PagesVisited)
	assert.Equal(t, 4, summary.Kept)
}

func TestPipeline_EmptyPagePersistsEmptyBatch(t *testing.T) {
	source := &fixtureSource{pages: []string{
		`<html><body><p>No results found.</p></body></html>`,
	}}

	pipeline := &Pipeline{
		Source:   source,
		Sink:     storage.NewCSVSink(t.TempDir()),
		Profile:  DefaultProfile(""),
		MaxPages: 3,
	}
	summary, err := pipeline.Run(context.Background(), "smartphone")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.PagesVisited)
	assert.Equal(t, 0, summary.Kept)
	require.NotEmpty(t, summary.OutputPath)

	rows := readRows(t, summary.OutputPath)
	require.Len(t, rows, 1, "zero-result run should leave a header-only file")
}

func TestPipeline_NavigationFailureKeepsPartialResults(t *testing.T) {
	source := &fixtureSource{
		pages:   []string{listingPage(fullCards(5), true)},
		nextErr: errors.New("net::ERR_CONNECTION_RESET"),
	}

	pipeline := &Pipeline{
		Source:   source,
		Sink:     storage.NewCSVSink(t.TempDir()),
		Profile:  DefaultProfile(""),
		MaxPages: 5,
	}
	summary, err := pipeline.Run(context.Background(), "smartphone")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.PagesVisited)
	assert.Equal(t, 5, summary.Kept, "records from before the failure must be persisted")
	assert.Equal(t, 2, summary.NavFailures, "one retry before abandoning pagination")

	rows := readRows(t, summary.OutputPath)
	assert.Len(t, rows, 6)
}

func TestPipeline_RejectedRecordsAreCountedNotFatal(t *testing.T) {
	cards := fullCards(4)
	cards[1].title = "" // card with no usable title
	source := &fixtureSource{pages: []string{listingPage(cards, false)}}

	pipeline := &Pipeline{
		Source:   source,
		Sink:     storage.NewCSVSink(t.TempDir()),
		Profile:  DefaultProfile(""),
		MaxPages: 1,
	}
	summary, err := pipeline.Run(context.Background(), "smartphone")
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Extracted)
	assert.Equal(t, 3, summary.Kept)
	assert.Equal(t, 1, summary.Rejected)
}

func TestPipeline_FailedSearchStillPersists(t *testing.T) {
	source := &fixtureSource{
		pages:     []string{listingPage(fullCards(1), false)},
		searchErr: errors.New("net::ERR_NAME_NOT_RESOLVED"),
	}

	pipeline := &Pipeline{
		Source:   source,
		Sink:     storage.NewCSVSink(t.TempDir()),
		Profile:  DefaultProfile(""),
		MaxPages: 1,
	}
	summary, err := pipeline.Run(context.Background(), "smartphone")
	require.NoError(t, err)

	assert.Equal(t, 0, summary.PagesVisited)
	assert.Equal(t, 1, summary.NavFailures)
	require.NotEmpty(t, summary.OutputPath)
	rows := readRows(t, summary.OutputPath)
	assert.Len(t, rows, 1)
}
