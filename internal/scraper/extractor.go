package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"go-scraper/pkg/models"
)

// ExtractRecords reads every product card from doc. Each field is located
// independently, so a card with a missing price or rating still yields a
// partial RawRecord. An empty result is the page's natural end-of-results
// signal, not an error.
func ExtractRecords(doc *goquery.Document, profile SiteProfile) []models.RawRecord {
	cards := findFirst(doc.Selection, profile.CardSelectors)
	if cards == nil {
		return nil
	}

	records := make([]models.RawRecord, 0, cards.Length())
	cards.Each(func(_ int, card *goquery.Selection) {
		records = append(records, models.RawRecord{
			Title:    fieldText(card, profile.TitleSelectors),
			Price:    fieldText(card, profile.PriceSelectors),
			Rating:   fieldText(card, profile.RatingSelectors),
			ImageURL: fieldAttr(card, profile.ImageSelectors, "src"),
		})
	})
	return records
}

// HasNextPage reports which next-page selector matches in doc, or "" when
// none does.
func HasNextPage(doc *goquery.Document, profile SiteProfile) string {
	for _, sel := range profile.NextPageSelectors {
		if doc.Find(sel).Length() > 0 {
			return sel
		}
	}
	return ""
}

func findFirst(root *goquery.Selection, selectors []string) *goquery.Selection {
	for _, sel := range selectors {
		if s := root.Find(sel); s.Length() > 0 {
			return s
		}
	}
	return nil
}

// fieldText returns the first non-empty value among the fallback selectors,
// preferring a title attribute over node text the way the listing markup
// stores full product names.
func fieldText(card *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		node := card.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if title, ok := node.Attr("title"); ok && strings.TrimSpace(title) != "" {
			return strings.TrimSpace(title)
		}
		if text := strings.TrimSpace(node.Text()); text != "" {
			return text
		}
	}
	return ""
}

func fieldAttr(card *goquery.Selection, selectors []string, attr string) string {
	for _, sel := range selectors {
		node := card.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if v := strings.TrimSpace(node.AttrOr(attr, "")); v != "" {
			return v
		}
	}
	return ""
}
