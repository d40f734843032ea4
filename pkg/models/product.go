package models

import "time"

// TimestampLayout is the format used for the scraped_at CSV column.
const TimestampLayout = "2006-01-02 15:04:05"

// RawRecord holds the unvalidated field values read from a single product
// card. Any field may be empty when the page element was missing.
type RawRecord struct {
	Title    string
	Price    string
	Rating   string
	ImageURL string
}

// Product is one normalized listing row. Title is the only required field;
// Price and Rating are nil when the page value was missing or unparseable.
type Product struct {
	Title     string   `csv:"title" json:"title"`
	Price     *float64 `csv:"price,omitempty" json:"price,omitempty"`
	Rating    *float64 `csv:"rating,omitempty" json:"rating,omitempty"`
	ImageURL  string   `csv:"image_url" json:"image_url,omitempty"`
	ScrapedAt DateTime `csv:"scraped_at" json:"scraped_at"`
}

// DateTime wraps time.Time so gocsv serializes it with TimestampLayout
// instead of the zero-value struct dump.
type DateTime struct {
	time.Time
}

func NewDateTime(t time.Time) DateTime {
	return DateTime{t}
}

func (d DateTime) MarshalCSV() (string, error) {
	if d.IsZero() {
		return "", nil
	}
	return d.Format(TimestampLayout), nil
}

func (d *DateTime) UnmarshalCSV(value string) error {
	if value == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(TimestampLayout, value)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// RunSummary is the end-of-run accounting reported by the pipeline.
// Extracted counts raw cards seen, Kept the rows that survived
// normalization, Rejected the ones dropped for a missing title.
type RunSummary struct {
	SearchTerm   string `json:"search_term"`
	PagesVisited int    `json:"pages_visited"`
	Extracted    int    `json:"extracted"`
	Kept         int    `json:"kept"`
	Rejected     int    `json:"rejected"`
	NavFailures  int    `json:"nav_failures"`
	OutputPath   string `json:"output_path"`
}
