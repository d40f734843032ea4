package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"go-scraper/pkg/models"
)

// RenderCharts writes the analysis dashboard page: price buckets, rating
// distribution, top brands and a price-vs-rating scatter.
func RenderCharts(w io.Writer, products []models.Product) error {
	stats := Compute(products)

	page := components.NewPage()
	page.PageTitle = "Product Analysis"
	page.AddCharts(
		priceBucketBar(stats),
		ratingBar(products),
		brandPie(stats),
		priceRatingScatter(products),
	)
	return page.Render(w)
}

func priceBucketBar(stats Stats) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Products by Price Range"}))

	labels := make([]string, 0, len(stats.PriceBuckets))
	data := make([]opts.BarData, 0, len(stats.PriceBuckets))
	for _, b := range stats.PriceBuckets {
		labels = append(labels, b.Label)
		data = append(data, opts.BarData{Value: b.Count})
	}
	bar.SetXAxis(labels).AddSeries("products", data)
	return bar
}

func ratingBar(products []models.Product) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Rating Distribution"}))

	// half-star buckets from 0 to 5
	counts := make([]int, 11)
	for _, p := range products {
		if p.Rating == nil {
			continue
		}
		idx := int(*p.Rating * 2)
		if idx < 0 {
			idx = 0
		}
		if idx > 10 {
			idx = 10
		}
		counts[idx]++
	}

	labels := make([]string, 0, len(counts))
	data := make([]opts.BarData, 0, len(counts))
	for i, c := range counts {
		labels = append(labels, fmt.Sprintf("%.1f", float64(i)/2))
		data = append(data, opts.BarData{Value: c})
	}
	bar.SetXAxis(labels).AddSeries("products", data)
	return bar
}

func brandPie(stats Stats) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Top Brands by Product Count"}))

	data := make([]opts.PieData, 0, len(stats.TopBrands))
	for _, bc := range stats.TopBrands {
		data = append(data, opts.PieData{Name: bc.Brand, Value: bc.Count})
	}
	pie.AddSeries("brands", data)
	return pie
}

func priceRatingScatter(products []models.Product) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Price vs Rating"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "rating"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "price"}),
	)

	var data []opts.ScatterData
	for _, p := range products {
		if p.Price == nil || p.Rating == nil {
			continue
		}
		data = append(data, opts.ScatterData{Value: []interface{}{*p.Rating, *p.Price}})
	}
	scatter.AddSeries("products", data)
	return scatter
}
