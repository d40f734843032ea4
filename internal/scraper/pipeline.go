package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"

	"go-scraper/pkg/models"
)

// Sink persists one completed batch and returns the file path.
type Sink interface {
	Persist(batch []models.Product, term string) (string, error)
}

// Pipeline runs one scrape: search, then a sequential extract/normalize loop
// bounded by the pager, then a single persist of everything collected.
// Partial results survive pagination failures; only persistence errors are
// fatal.
type Pipeline struct {
	Source   Source
	Sink     Sink
	Profile  SiteProfile
	MaxPages int

	// Policy is optional; when set, page turns are paced per domain.
	Policy *DomainPolicy

	// now is swappable for tests.
	now func() time.Time
}

// Run scrapes the listing for term and persists the batch. The returned
// summary is valid even when err is non-nil.
func (p *Pipeline) Run(ctx context.Context, term string) (models.RunSummary, error) {
	summary := models.RunSummary{SearchTerm: term}
	logger := log.WithFields(log.Fields{"site": p.Profile.Name, "term": term})

	clock := p.now
	if clock == nil {
		clock = time.Now
	}

	batch := make([]models.Product, 0, 64)
	pager := NewPager(p.MaxPages)

	if err := p.Source.Search(ctx, term); err != nil {
		// A failed opening search means an empty run, not a crash: the
		// empty batch is still persisted so the run leaves a record.
		logger.WithError(err).Error("Opening search navigation failed")
		summary.NavFailures++
	} else {
		p.collect(ctx, logger, pager, clock, &summary, &batch)
	}

	path, err := p.Sink.Persist(batch, term)
	if err != nil {
		return summary, fmt.Errorf("persist batch: %w", err)
	}
	summary.OutputPath = path
	summary.Kept = len(batch)

	logger.WithFields(log.Fields{
		"pages":     summary.PagesVisited,
		"extracted": summary.Extracted,
		"kept":      summary.Kept,
		"rejected":  summary.Rejected,
		"nav_fails": summary.NavFailures,
		"file":      path,
	}).Info("Run complete")
	return summary, nil
}

func (p *Pipeline) collect(
	ctx context.Context,
	logger *log.Entry,
	pager *Pager,
	clock func() time.Time,
	summary *models.RunSummary,
	batch *[]models.Product,
) {
	for {
		doc, err := p.currentDocument(ctx)
		if err != nil {
			logger.WithError(err).Warn("Could not read current page")
			summary.NavFailures++
			if pager.Fail() == StateFailed {
				return
			}
			continue
		}

		summary.PagesVisited++
		raws := ExtractRecords(doc, p.Profile)
		summary.Extracted += len(raws)

		scrapedAt := clock()
		for _, raw := range raws {
			record, err := Normalize(raw, scrapedAt)
			if err != nil {
				summary.Rejected++
				continue
			}
			*batch = append(*batch, record)
		}
		logger.WithFields(log.Fields{
			"page":  pager.Page() + 1,
			"cards": len(raws),
		}).Info("Page scraped")

		nextSelector := HasNextPage(doc, p.Profile)
		if pager.Advance(nextSelector != "") != StateHasNext {
			logger.WithField("state", pager.State().String()).Debug("Pagination finished")
			return
		}

		if !p.turnPage(ctx, logger, pager, summary, nextSelector) {
			return
		}
	}
}

// turnPage advances to the next results page, retrying once before the pager
// abandons pagination.
func (p *Pipeline) turnPage(ctx context.Context, logger *log.Entry, pager *Pager, summary *models.RunSummary, selector string) bool {
	for {
		if p.Policy != nil {
			if err := p.Policy.Wait(ctx, p.Profile.BaseURL); err != nil {
				logger.WithError(err).Warn("Politeness wait interrupted")
				return false
			}
		}
		err := p.Source.NextPage(ctx, selector)
		if err == nil {
			return true
		}
		logger.WithError(err).Warn("Next-page navigation failed")
		summary.NavFailures++
		if pager.Fail() == StateFailed {
			return false
		}
	}
}

func (p *Pipeline) currentDocument(ctx context.Context) (*goquery.Document, error) {
	html, err := p.Source.HTML(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page html: %w", err)
	}
	return doc, nil
}
