package scraper

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"go-scraper/internal/browser"
)

// Source is the pipeline's view of a loaded results listing. The browser
// session implements it for real runs; tests supply fixture pages.
type Source interface {
	// Search navigates to the results listing for term.
	Search(ctx context.Context, term string) error
	// HTML returns the rendered document for the current page.
	HTML(ctx context.Context) (string, error)
	// NextPage activates the next-page control located by selector.
	NextPage(ctx context.Context, selector string) error
}

// BrowserSource drives a listing session through a live Chrome instance.
type BrowserSource struct {
	Driver  *browser.Driver
	Profile SiteProfile

	// ResultsWait bounds the condition wait for product cards after each
	// navigation. Expiry means a zero-result page, not a failure.
	ResultsWait time.Duration
}

func (s *BrowserSource) Search(ctx context.Context, term string) error {
	target := s.Profile.SearchURL(term)
	if err := s.Driver.Navigate(ctx, target, "body"); err != nil {
		return err
	}
	s.awaitResults(ctx)
	return nil
}

func (s *BrowserSource) HTML(ctx context.Context) (string, error) {
	return s.Driver.OuterHTML(ctx)
}

func (s *BrowserSource) NextPage(ctx context.Context, selector string) error {
	if err := s.Driver.Click(ctx, selector); err != nil {
		return err
	}
	s.awaitResults(ctx)
	return nil
}

func (s *BrowserSource) awaitResults(ctx context.Context) {
	wait := s.ResultsWait
	if wait <= 0 {
		wait = 5 * time.Second
	}
	if err := s.Driver.WaitVisible(ctx, s.Profile.ResultsSelector, wait); err != nil {
		var navErr *browser.NavError
		if errors.As(err, &navErr) && navErr.Kind == browser.FailureTimeout {
			log.WithField("selector", s.Profile.ResultsSelector).
				Debug("No product cards appeared before the wait expired")
			return
		}
		log.WithError(err).Warn("Condition wait for results failed")
	}
}
