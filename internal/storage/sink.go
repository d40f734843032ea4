package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"

	"go-scraper/pkg/models"
)

// fileTimestampLayout stamps run file names. Two runs inside the same second
// collide; the O_EXCL create turns that into an error instead of silent loss.
const fileTimestampLayout = "20060102_150405"

var unsafeNameChars = regexp.MustCompile(`[^a-z0-9._-]+`)

// CSVSink writes one CSV file per run under Dir. It never overwrites an
// existing file, and a failed write removes the partial file so the batch is
// either fully on disk or absent.
type CSVSink struct {
	Dir string

	// now is swappable for tests.
	now func() time.Time
}

func NewCSVSink(dir string) *CSVSink {
	return &CSVSink{Dir: dir}
}

// Persist writes batch and returns the file path. An empty batch still
// produces a header-only file so a zero-result run leaves a record.
func (s *CSVSink) Persist(batch []models.Product, term string) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create data directory %s: %w", s.Dir, err)
	}

	clock := s.now
	if clock == nil {
		clock = time.Now
	}
	name := fmt.Sprintf("%s_%s.csv", sanitizeTerm(term), clock().Format(fileTimestampLayout))
	path := filepath.Join(s.Dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create run file %s: %w", path, err)
	}

	if err := gocsv.MarshalFile(&batch, f); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write run file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close run file %s: %w", path, err)
	}

	log.WithFields(log.Fields{"file": path, "rows": len(batch)}).Info("Batch persisted")
	return path, nil
}

func sanitizeTerm(term string) string {
	term = strings.ToLower(strings.TrimSpace(term))
	term = strings.ReplaceAll(term, " ", "_")
	term = unsafeNameChars.ReplaceAllString(term, "")
	if term == "" {
		term = "run"
	}
	return term
}
