package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"go-scraper/internal/browser"
	"go-scraper/internal/config"
	"go-scraper/internal/scraper"
	"go-scraper/internal/storage"
)

func init() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stdout)
}

func main() {
	term := flag.String("term", "smartphone", "Search term to scrape")
	pages := flag.Int("pages", 0, "Maximum pages to scrape (0 = value from config)")
	combine := flag.Bool("combine", false, "Merge all run files into one deduplicated CSV and exit")
	logLevel := flag.String("loglevel", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	log.SetLevel(level)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *combine {
		path, rows, err := storage.NewStore(cfg.DataDir).Combine()
		if err != nil {
			log.Fatalf("Combine failed: %v", err)
		}
		log.WithFields(log.Fields{"file": path, "rows": rows}).Info("Combine complete")
		return
	}

	maxPages := cfg.MaxPages
	if *pages > 0 {
		maxPages = *pages
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profile := scraper.DefaultProfile(cfg.BaseURL)
	policy := scraper.NewDomainPolicy(cfg.UserAgent, cfg.RateLimit)
	if !policy.IsAllowed(profile.SearchURL(*term)) {
		log.Fatalf("robots.txt disallows scraping %s", profile.BaseURL)
	}

	driver, err := browser.New(browser.Config{
		Headless:   cfg.Headless,
		UserAgent:  cfg.UserAgent,
		NavTimeout: cfg.NavTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to start browser: %v", err)
	}
	defer func() {
		if err := driver.Close(); err != nil {
			log.WithError(err).Warn("Browser did not close cleanly")
		}
	}()

	pipeline := &scraper.Pipeline{
		Source: &scraper.BrowserSource{
			Driver:      driver,
			Profile:     profile,
			ResultsWait: cfg.ResultsWait,
		},
		Sink:     storage.NewCSVSink(cfg.DataDir),
		Profile:  profile,
		MaxPages: maxPages,
		Policy:   policy,
	}

	summary, err := pipeline.Run(ctx, *term)
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}
	log.WithFields(log.Fields{
		"pages":     summary.PagesVisited,
		"extracted": summary.Extracted,
		"kept":      summary.Kept,
		"rejected":  summary.Rejected,
		"file":      summary.OutputPath,
	}).Info("Scrape finished")
}
