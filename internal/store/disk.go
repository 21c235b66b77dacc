package store

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/asher407/hotwave/internal/model"
)

// partitionFile is the on-disk shape of one date partition. The layout
// mirrors what the collector writes: one file per day under a month
// directory.
type partitionFile struct {
	Date      model.Date       `json:"date"`
	Snapshots []model.Snapshot `json:"snapshots"`
}

func (s *Store) partitionPath(date model.Date) string {
	return filepath.Join(s.dir, date.Month(), string(date)+".json")
}

// writePartition persists the full partition atomically: write to a temp
// file in the same directory, then rename over the target.
func (s *Store) writePartition(date model.Date, snaps []model.Snapshot) error {
	path := s.partitionPath(date)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create partition dir: %w", err)
	}

	data, err := json.MarshalIndent(partitionFile{Date: date, Snapshots: snaps}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal partition: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write partition: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace partition: %w", err)
	}
	return nil
}

// loadAll walks the data directory and loads every partition file.
func (s *Store) loadAll() error {
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		return nil
	}

	return filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		var pf partitionFile
		if err := json.Unmarshal(data, &pf); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		if _, err := model.ParseDate(string(pf.Date)); err != nil {
			return fmt.Errorf("partition %s: %w", path, err)
		}

		p := s.partition(pf.Date)
		p.mu.Lock()
		p.snaps = pf.Snapshots
		p.keys = make(map[string]bool, len(pf.Snapshots))
		for _, snap := range pf.Snapshots {
			p.keys[snap.ContentKey()] = true
		}
		p.mu.Unlock()
		return nil
	})
}
