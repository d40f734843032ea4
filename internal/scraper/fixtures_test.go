package scraper

import (
	"context"
	"fmt"
	"strings"
)

// card is one product card's worth of fixture values; empty fields are
// omitted from the generated markup.
type card struct {
	title  string
	price  string
	rating string
	image  string
}

func listingPage(cards []card, hasNext bool) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><title>Search Results</title></head><body><div id="results">`)
	for i, c := range cards {
		fmt.Fprintf(&b, `<div data-id="P%d">`, i+1)
		if c.title != "" {
			fmt.Fprintf(&b, `<a class="_4rR01T" title="%s" href="/p/%d">%s</a>`, c.title, i+1, c.title)
		}
		if c.price != "" {
			fmt.Fprintf(&b, `<div class="_30jeq3">%s</div>`, c.price)
		}
		if c.rating != "" {
			fmt.Fprintf(&b, `<div class="_3LWZlK">%s</div>`, c.rating)
		}
		if c.image != "" {
			fmt.Fprintf(&b, `<img src="%s"/>`, c.image)
		}
		b.WriteString(`</div>`)
	}
	b.WriteString(`</div>`)
	if hasNext {
		b.WriteString(`<nav><a class="_1LKTO3" href="/search?page=2"><span>Next</span></a></nav>`)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

func fullCards(n int) []card {
	cards := make([]card, n)
	for i := range cards {
		cards[i] = card{
			title:  fmt.Sprintf("Samsung Galaxy M%02d", i+1),
			price:  "₹18,999",
			rating: "4.3",
			image:  fmt.Sprintf("https://img.example.com/p%d.jpg", i+1),
		}
	}
	return cards
}

// fixtureSource serves pre-rendered pages in place of a live browser.
type fixtureSource struct {
	pages     []string
	idx       int
	searchErr error
	nextErr   error
}

func (f *fixtureSource) Search(_ context.Context, _ string) error {
	f.idx = 0
	return f.searchErr
}

func (f *fixtureSource) HTML(_ context.Context) (string, error) {
	return f.pages[f.idx], nil
}

func (f *fixtureSource) NextPage(_ context.Context, _ string) error {
	if f.nextErr != nil {
		return f.nextErr
	}
	if f.idx+1 >= len(f.pages) {
		return fmt.Errorf("no page after %d", f.idx+1)
	}
	f.idx++
	return nil
}
