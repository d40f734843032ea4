package dashboard

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"go-scraper/internal/report"
	"go-scraper/internal/storage"
	"go-scraper/pkg/models"
)

type handlers struct {
	store *storage.Store
}

func (h *handlers) listRuns(c *gin.Context) {
	runs, err := h.store.ListRuns()
	if err != nil {
		log.WithError(err).Error("Listing runs failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list runs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "total": len(runs)})
}

func (h *handlers) viewRun(c *gin.Context) {
	name := c.Param("name")
	products, err := h.store.Load(name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "run file not found"})
			return
		}
		log.WithError(err).WithField("run", name).Error("Loading run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load run"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"filename": name,
		"total":    len(products),
		"products": products,
		"stats":    report.Compute(products),
	})
}

func (h *handlers) search(c *gin.Context) {
	filter := report.Filter{
		Query:     c.Query("q"),
		Brand:     c.Query("brand"),
		MinPrice:  floatQuery(c, "min_price"),
		MaxPrice:  floatQuery(c, "max_price"),
		MinRating: floatQuery(c, "min_rating"),
	}

	entries, err := h.store.LoadAll()
	if err != nil {
		log.WithError(err).Error("Loading runs for search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load runs"})
		return
	}
	if len(entries) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"products": []storage.Entry{},
			"total":    0,
			"message":  "No data files found. Run the scraper first.",
		})
		return
	}

	results := report.Apply(entries, filter, report.DefaultResultLimit)
	c.JSON(http.StatusOK, gin.H{"products": results, "total": len(results)})
}

func (h *handlers) stats(c *gin.Context) {
	products, err := h.allProducts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load runs"})
		return
	}
	c.JSON(http.StatusOK, report.Compute(products))
}

func (h *handlers) combine(c *gin.Context) {
	path, rows, err := h.store.Combine()
	if err != nil {
		log.WithError(err).Error("Combining runs failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not combine runs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"file": path, "rows": rows})
}

func (h *handlers) charts(c *gin.Context) {
	products, err := h.allProducts()
	if err != nil {
		c.String(http.StatusInternalServerError, "could not load runs")
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := report.RenderCharts(c.Writer, products); err != nil {
		log.WithError(err).Error("Rendering charts failed")
	}
}

func (h *handlers) report(c *gin.Context) {
	products, err := h.allProducts()
	if err != nil {
		c.String(http.StatusInternalServerError, "could not load runs")
		return
	}
	stats := report.Compute(products)
	c.String(http.StatusOK, report.SummaryText(stats, time.Now()))
}

func (h *handlers) allProducts() ([]models.Product, error) {
	entries, err := h.store.LoadAll()
	if err != nil {
		log.WithError(err).Error("Loading runs failed")
		return nil, err
	}
	products := make([]models.Product, 0, len(entries))
	for _, e := range entries {
		products = append(products, e.Product)
	}
	return products, nil
}

func floatQuery(c *gin.Context, key string) *float64 {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
