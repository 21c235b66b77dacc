package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/asher407/hotwave/internal/logger"
	"github.com/asher407/hotwave/internal/model"
	"github.com/asher407/hotwave/internal/store"
)

// rawRecord is the collector's on-disk shape: one file per capture with a
// date header and a flat entry list. Fields the analytics core does not use
// (read counts, discussion counts) are dropped at parse time.
type rawRecord struct {
	Date   string     `json:"date"`
	Clock  string     `json:"clock"`
	Source string     `json:"source"`
	Data   []rawEntry `json:"data"`
}

type rawEntry struct {
	Rank     int      `json:"rank"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Heat     *float64 `json:"heat"`
	URL      string   `json:"url"`
}

// Result summarizes one ingest run.
type Result struct {
	Appended int
	Skipped  int
	Rejected int
	// RejectedFiles maps a file path to the reason it was refused.
	RejectedFiles map[string]string
}

// Ingestor reads collector output files and appends them to the store.
// A Categorizer may be attached to label entries the collector left
// uncategorized; it is optional.
type Ingestor struct {
	store       *store.Store
	categorizer Categorizer
}

func NewIngestor(s *store.Store, c Categorizer) *Ingestor {
	return &Ingestor{store: s, categorizer: c}
}

// IngestFile parses one collector file and appends its snapshot. A snapshot
// already present is counted as skipped, a malformed one as rejected; neither
// is an error.
func (in *Ingestor) IngestFile(path, defaultSource string, res *Result) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var rec rawRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		res.reject(path, fmt.Sprintf("invalid JSON: %v", err))
		return nil
	}

	snap, err := in.toSnapshot(rec, path, defaultSource)
	if err != nil {
		res.reject(path, err.Error())
		return nil
	}

	switch err := in.store.Append(snap); {
	case err == nil:
		res.Appended++
	case errors.Is(err, model.ErrAlreadyPresent):
		res.Skipped++
		logger.Log.WithField("file", path).Debug("snapshot already present, skipping")
	default:
		var malformed *model.MalformedSnapshotError
		if errors.As(err, &malformed) {
			res.reject(path, malformed.Reason)
			return nil
		}
		return fmt.Errorf("append %s: %w", path, err)
	}
	return nil
}

// IngestDir walks dir and ingests every .json file in deterministic path
// order. Per-file problems are recorded in the result and do not stop the
// walk.
func (in *Ingestor) IngestDir(dir, defaultSource string) (*Result, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(files)

	res := &Result{}
	for _, path := range files {
		if err := in.IngestFile(path, defaultSource, res); err != nil {
			return res, err
		}
	}
	logger.Log.WithFields(map[string]interface{}{
		"appended": res.Appended,
		"skipped":  res.Skipped,
		"rejected": res.Rejected,
	}).Info("ingest finished")
	return res, nil
}

func (in *Ingestor) toSnapshot(rec rawRecord, path, defaultSource string) (model.Snapshot, error) {
	date := rec.Date
	if date == "" {
		// Collector files are named YYYY-MM-DD.json.
		date = strings.TrimSuffix(filepath.Base(path), ".json")
	}
	if _, err := model.ParseDate(date); err != nil {
		return model.Snapshot{}, fmt.Errorf("bad date %q: %v", date, err)
	}

	source := rec.Source
	if source == "" {
		source = defaultSource
	}

	snap := model.Snapshot{
		Date:   model.Date(date),
		Clock:  rec.Clock,
		Source: model.Source(source),
	}
	for _, e := range rec.Data {
		entry := model.Entry{
			Rank:     e.Rank,
			Title:    e.Title,
			Heat:     e.Heat,
			Category: e.Category,
			URL:      e.URL,
		}
		if entry.Category == "" && in.categorizer != nil {
			if cat, ok := in.categorizer.Categorize(entry.Title); ok {
				entry.Category = cat
			}
		}
		snap.Entries = append(snap.Entries, entry)
	}
	return snap, nil
}

func (r *Result) reject(path, reason string) {
	r.Rejected++
	if r.RejectedFiles == nil {
		r.RejectedFiles = make(map[string]string)
	}
	r.RejectedFiles[path] = reason
	logger.Log.WithField("file", path).Warnf("rejected: %s", reason)
}
