package scraper

import (
	"net/url"
	"strings"
)

// SiteProfile carries the selectors for one storefront. Listing markup
// changes frequently, so every field is an ordered fallback list: the first
// selector that matches wins.
type SiteProfile struct {
	Name    string
	BaseURL string

	// CardSelectors locate the repeating product-card containers.
	CardSelectors []string

	TitleSelectors  []string
	PriceSelectors  []string
	RatingSelectors []string
	ImageSelectors  []string

	// NextPageSelectors locate the control whose presence means more
	// results exist.
	NextPageSelectors []string

	// ResultsSelector is what the session waits on after navigation.
	ResultsSelector string
}

// DefaultProfile returns the Flipkart listing profile. The selector lists
// accumulate old and new class names so a markup rollout degrades to a
// partial record instead of an empty run.
func DefaultProfile(baseURL string) SiteProfile {
	if baseURL == "" {
		baseURL = "https://www.flipkart.com"
	}
	return SiteProfile{
		Name:    "flipkart",
		BaseURL: baseURL,
		CardSelectors: []string{
			"[data-id]",
			"._1AtVbE",
			"._13oc-S",
			"._2kHMtA",
			"._1fQZEK",
		},
		TitleSelectors: []string{
			"._4rR01T",
			".s1Q9rs",
			"._2WkVRV",
			".IRpwTa",
			".KzDlHZ",
			"a[title]",
			"div[title]",
			"span[title]",
		},
		PriceSelectors: []string{
			"._30jeq3",
			"._1_TUDb",
			"._3tbKJL",
			"._25b18c",
			".Nx9bqj",
		},
		RatingSelectors: []string{
			"._3LWZlK",
			"._2_R_DZ",
			"._3Ay6Sb",
			".XQDdHH",
		},
		ImageSelectors: []string{
			"img",
		},
		NextPageSelectors: []string{
			"a._1LKTO3",
			"a._9QVEpD",
			"nav a.next",
		},
		ResultsSelector: "[data-id]",
	}
}

// SearchURL builds the search results URL for term.
func (p SiteProfile) SearchURL(term string) string {
	return strings.TrimRight(p.BaseURL, "/") + "/search?q=" + url.QueryEscape(term)
}
