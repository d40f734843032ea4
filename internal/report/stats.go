package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go-scraper/pkg/models"
)

// knownBrands is checked before falling back to the first word of the title.
var knownBrands = []string{
	"Apple", "Samsung", "OnePlus", "Xiaomi", "Redmi", "OPPO", "Vivo",
	"Realme", "Nothing", "POCO", "Motorola", "Nokia", "Honor", "iQOO",
}

// Brand derives a brand name from a product title.
func Brand(title string) string {
	upper := strings.ToUpper(title)
	for _, b := range knownBrands {
		if strings.Contains(upper, strings.ToUpper(b)) {
			return b
		}
	}
	fields := strings.Fields(title)
	if len(fields) == 0 {
		return "Unknown"
	}
	return strings.Trim(fields[0], "()")
}

// BrandCount pairs a brand with how many products carry it.
type BrandCount struct {
	Brand string `json:"brand"`
	Count int    `json:"count"`
}

// PriceBucket is one fixed price range with its product count.
type PriceBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Stats aggregates a set of product rows for the reporting surface.
type Stats struct {
	TotalProducts    int           `json:"total_products"`
	WithPrice        int           `json:"with_price"`
	WithRating       int           `json:"with_rating"`
	AvgPrice         float64       `json:"avg_price"`
	MedianPrice      float64       `json:"median_price"`
	MinPrice         float64       `json:"min_price"`
	MaxPrice         float64       `json:"max_price"`
	AvgRating        float64       `json:"avg_rating"`
	HighRatedCount   int           `json:"high_rated_count"` // rating >= 4
	TopBrands        []BrandCount  `json:"top_brands"`
	PriceBuckets     []PriceBucket `json:"price_buckets"`
}

// Compute aggregates products. Rows with an absent price or rating are
// excluded from the respective aggregates but still counted in the total.
func Compute(products []models.Product) Stats {
	stats := Stats{TotalProducts: len(products)}

	var prices, ratings []float64
	brands := make(map[string]int)
	for _, p := range products {
		if p.Price != nil {
			prices = append(prices, *p.Price)
		}
		if p.Rating != nil {
			ratings = append(ratings, *p.Rating)
			if *p.Rating >= 4 {
				stats.HighRatedCount++
			}
		}
		brands[Brand(p.Title)]++
	}

	stats.WithPrice = len(prices)
	stats.WithRating = len(ratings)

	if len(prices) > 0 {
		sort.Float64s(prices)
		stats.MinPrice = prices[0]
		stats.MaxPrice = prices[len(prices)-1]
		stats.AvgPrice = mean(prices)
		stats.MedianPrice = median(prices)
	}
	if len(ratings) > 0 {
		stats.AvgRating = mean(ratings)
	}

	stats.TopBrands = topBrands(brands, 10)
	stats.PriceBuckets = priceBuckets(prices)
	return stats
}

// SummaryText renders the stats as the plain-text analysis report.
func SummaryText(stats Stats, generatedAt time.Time) string {
	var b strings.Builder
	line := strings.Repeat("=", 60)
	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b, "PRODUCT ANALYSIS REPORT")
	fmt.Fprintln(&b, line)
	fmt.Fprintf(&b, "Generated on: %s\n", generatedAt.Format(models.TimestampLayout))
	fmt.Fprintf(&b, "Total products analyzed: %d\n\n", stats.TotalProducts)

	if stats.WithPrice > 0 {
		fmt.Fprintln(&b, "PRICE ANALYSIS:")
		fmt.Fprintf(&b, "  Average price: %.2f\n", stats.AvgPrice)
		fmt.Fprintf(&b, "  Median price: %.2f\n", stats.MedianPrice)
		fmt.Fprintf(&b, "  Price range: %.2f - %.2f\n\n", stats.MinPrice, stats.MaxPrice)
	}
	if stats.WithRating > 0 {
		fmt.Fprintln(&b, "RATING ANALYSIS:")
		fmt.Fprintf(&b, "  Average rating: %.2f/5.0\n", stats.AvgRating)
		fmt.Fprintf(&b, "  Products with 4+ rating: %d\n\n", stats.HighRatedCount)
	}
	if len(stats.TopBrands) > 0 {
		fmt.Fprintln(&b, "BRAND ANALYSIS:")
		fmt.Fprintf(&b, "  Top %d brands:\n", len(stats.TopBrands))
		for i, bc := range stats.TopBrands {
			fmt.Fprintf(&b, "    %d. %s: %d products\n", i+1, bc.Brand, bc.Count)
		}
	}
	fmt.Fprintln(&b, line)
	return b.String()
}

func topBrands(counts map[string]int, limit int) []BrandCount {
	out := make([]BrandCount, 0, len(counts))
	for brand, count := range counts {
		out = append(out, BrandCount{Brand: brand, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Brand < out[j].Brand
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func priceBuckets(prices []float64) []PriceBucket {
	buckets := []PriceBucket{
		{Label: "Under 10k"},
		{Label: "10k-20k"},
		{Label: "20k-30k"},
		{Label: "30k+"},
	}
	for _, p := range prices {
		switch {
		case p < 10000:
			buckets[0].Count++
		case p < 20000:
			buckets[1].Count++
		case p < 30000:
			buckets[2].Count++
		default:
			buckets[3].Count++
		}
	}
	return buckets
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// median expects vals to be sorted.
func median(vals []float64) float64 {
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}
