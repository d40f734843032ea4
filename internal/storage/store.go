package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"

	"go-scraper/pkg/models"
)

// CombinedFileName is the fixed name of the merged-runs file. It is a
// derived artifact and may be rewritten, unlike run files.
const CombinedFileName = "combined_all_products.csv"

// ErrNotFound reports a run file that does not exist under the data dir.
var ErrNotFound = errors.New("run file not found")

// RunFile describes one stored run for listings.
type RunFile struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
	Rows     int       `json:"rows"`
}

// Entry is a product row annotated with the run file it came from.
type Entry struct {
	models.Product
	SourceFile string `json:"source_file"`
}

// Store gives the reporting surface read access to the run files. It never
// mutates run files; Combine only writes the derived combined file.
type Store struct {
	Dir string
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// ListRuns returns the stored run files, newest first.
func (s *Store) ListRuns() ([]RunFile, error) {
	paths, err := s.runPaths()
	if err != nil {
		return nil, err
	}

	runs := make([]RunFile, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			log.WithError(err).WithField("file", path).Warn("Skipping unreadable run file")
			continue
		}
		rows := 0
		if products, err := s.loadPath(path); err == nil {
			rows = len(products)
		}
		runs = append(runs, RunFile{
			Name:     filepath.Base(path),
			Size:     info.Size(),
			Modified: info.ModTime(),
			Rows:     rows,
		})
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Modified.After(runs[j].Modified) })
	return runs, nil
}

// Load reads one run file by base name.
func (s *Store) Load(name string) ([]models.Product, error) {
	if !strings.HasSuffix(name, ".csv") {
		name += ".csv"
	}
	// base-name only, so a caller cannot escape the data dir
	if name != filepath.Base(name) {
		return nil, ErrNotFound
	}
	path := filepath.Join(s.Dir, name)
	if _, err := os.Stat(path); err != nil {
		return nil, ErrNotFound
	}
	return s.loadPath(path)
}

// LoadAll reads every run file, annotating rows with their source file.
func (s *Store) LoadAll() ([]Entry, error) {
	paths, err := s.runPaths()
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, path := range paths {
		products, err := s.loadPath(path)
		if err != nil {
			log.WithError(err).WithField("file", path).Warn("Skipping malformed run file")
			continue
		}
		base := filepath.Base(path)
		for _, p := range products {
			entries = append(entries, Entry{Product: p, SourceFile: base})
		}
	}
	return entries, nil
}

// Combine merges every run file into one deduplicated CSV, keeping the first
// occurrence of each title, and returns the combined file path.
func (s *Store) Combine() (string, int, error) {
	entries, err := s.LoadAll()
	if err != nil {
		return "", 0, err
	}

	seen := make(map[string]bool, len(entries))
	combined := make([]models.Product, 0, len(entries))
	for _, e := range entries {
		if seen[e.Title] {
			continue
		}
		seen[e.Title] = true
		combined = append(combined, e.Product)
	}

	path := filepath.Join(s.Dir, CombinedFileName)
	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create combined file %s: %w", path, err)
	}
	if err := gocsv.MarshalFile(&combined, f); err != nil {
		f.Close()
		return "", 0, fmt.Errorf("write combined file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", 0, fmt.Errorf("close combined file %s: %w", path, err)
	}

	log.WithFields(log.Fields{"file": path, "rows": len(combined)}).Info("Runs combined")
	return path, len(combined), nil
}

// runPaths lists run CSVs, excluding the derived combined file.
func (s *Store) runPaths() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(s.Dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("list run files in %s: %w", s.Dir, err)
	}
	filtered := paths[:0]
	for _, p := range paths {
		if filepath.Base(p) != CombinedFileName {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (s *Store) loadPath(path string) ([]models.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open run file %s: %w", path, err)
	}
	defer f.Close()

	var products []models.Product
	if err := gocsv.UnmarshalFile(f, &products); err != nil {
		// gocsv reports an empty (header-only) file as an error; a
		// zero-result run is a valid, empty batch.
		if errors.Is(err, gocsv.ErrEmptyCSVFile) || strings.Contains(err.Error(), "empty csv file") {
			return []models.Product{}, nil
		}
		return nil, fmt.Errorf("decode run file %s: %w", path, err)
	}
	return products, nil
}
