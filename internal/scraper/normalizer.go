package scraper

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go-scraper/pkg/models"
)

// ErrNoTitle rejects a record whose title is empty after trimming. It is the
// only condition that drops a whole record; every other malformed field just
// becomes absent.
var ErrNoTitle = errors.New("record has no usable title")

var (
	priceRe  = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
	ratingRe = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// Normalize converts a RawRecord into a typed Product stamped with at.
func Normalize(raw models.RawRecord, at time.Time) (models.Product, error) {
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		return models.Product{}, ErrNoTitle
	}

	return models.Product{
		Title:     title,
		Price:     ParsePrice(raw.Price),
		Rating:    ParseRating(raw.Rating),
		ImageURL:  strings.TrimSpace(raw.ImageURL),
		ScrapedAt: models.NewDateTime(at),
	}, nil
}

// ParsePrice extracts a decimal from a display price like "₹18,999",
// stripping the currency symbol and thousands separators. Returns nil when
// no number can be read.
func ParsePrice(s string) *float64 {
	match := priceRe.FindString(s)
	if match == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseRating extracts the first decimal from a rating string and clamps it
// into [0, 5]. Non-numeric input yields nil.
func ParseRating(s string) *float64 {
	match := ratingRe.FindString(s)
	if match == "" {
		return nil
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	if v < 0 {
		v = 0
	}
	if v > 5 {
		v = 5
	}
	return &v
}
