package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/asher407/hotwave/internal/store"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const goodFile = `{
  "date": "2025-03-14",
  "count": 2,
  "data": [
    {"rank": 1, "title": "某比赛夺冠", "heat": 1200.5},
    {"rank": 2, "title": "mystery topic"}
  ]
}`

func TestIngestor_IngestFile_AppendsAndCategorizes(t *testing.T) {
	s, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	in := NewIngestor(s, NewRuleCategorizer(DefaultRules()))

	dir := t.TempDir()
	path := writeFile(t, dir, "2025-03-14.json", goodFile)

	res := &Result{}
	if err := in.IngestFile(path, "live", res); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if res.Appended != 1 || res.Skipped != 0 || res.Rejected != 0 {
		t.Errorf("unexpected result: %+v", res)
	}

	snaps, ok := s.Snapshots("2025-03-14")
	if !ok || len(snaps) != 1 {
		t.Fatalf("expected one stored snapshot, ok=%v len=%d", ok, len(snaps))
	}
	entries := snaps[0].Entries
	if entries[0].Category != "体育" {
		t.Errorf("expected keyword rule to label the first entry, got %q", entries[0].Category)
	}
	if entries[1].Category != "" {
		t.Errorf("expected unmatched title to stay uncategorized, got %q", entries[1].Category)
	}
	if entries[0].Heat == nil || *entries[0].Heat != 1200.5 {
		t.Errorf("expected heat carried through, got %+v", entries[0].Heat)
	}
	if snaps[0].Source != "live" {
		t.Errorf("expected default source applied, got %q", snaps[0].Source)
	}
}

func TestIngestor_IngestFile_RerunSkips(t *testing.T) {
	s, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	in := NewIngestor(s, nil)
	path := writeFile(t, t.TempDir(), "2025-03-14.json", goodFile)

	res := &Result{}
	if err := in.IngestFile(path, "live", res); err != nil {
		t.Fatalf("first ingest failed: %v", err)
	}
	if err := in.IngestFile(path, "live", res); err != nil {
		t.Fatalf("second ingest failed: %v", err)
	}
	if res.Appended != 1 || res.Skipped != 1 {
		t.Errorf("expected re-ingest to be skipped, got %+v", res)
	}
}

func TestIngestor_IngestFile_DateFromFilename(t *testing.T) {
	s, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	in := NewIngestor(s, nil)
	path := writeFile(t, t.TempDir(), "2025-03-15.json",
		`{"data": [{"rank": 1, "title": "headline"}]}`)

	res := &Result{}
	if err := in.IngestFile(path, "static-archive", res); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if res.Appended != 1 {
		t.Fatalf("expected append, got %+v", res)
	}
	if _, ok := s.Snapshots("2025-03-15"); !ok {
		t.Error("expected the filename date to be used")
	}
}

func TestIngestor_IngestDir_IsolatesBadFiles(t *testing.T) {
	s, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	in := NewIngestor(s, nil)

	dir := t.TempDir()
	writeFile(t, dir, "2025-03-14.json", goodFile)
	writeFile(t, dir, "2025-03-15.json", `{not json`)
	writeFile(t, dir, "2025-03-16.json",
		`{"date": "2025-03-16", "data": [{"rank": 1, "title": "a"}, {"rank": 3, "title": "b"}]}`)
	writeFile(t, dir, "notes.txt", "ignored")

	res, err := in.IngestDir(dir, "live")
	if err != nil {
		t.Fatalf("ingest dir failed: %v", err)
	}
	if res.Appended != 1 || res.Rejected != 2 {
		t.Errorf("unexpected result: %+v", res)
	}
	if len(res.RejectedFiles) != 2 {
		t.Errorf("expected both bad files recorded, got %v", res.RejectedFiles)
	}
	if _, ok := s.Snapshots("2025-03-16"); ok {
		t.Error("malformed snapshot must not be stored")
	}
}

func TestRuleCategorizer_FirstMatchWins(t *testing.T) {
	c := NewRuleCategorizer([]Rule{
		{Category: "one", Keywords: []string{"shared"}},
		{Category: "two", Keywords: []string{"shared", "unique"}},
	})

	if cat, ok := c.Categorize("a shared word"); !ok || cat != "one" {
		t.Errorf("expected first rule to win, got %q ok=%v", cat, ok)
	}
	if cat, ok := c.Categorize("the unique word"); !ok || cat != "two" {
		t.Errorf("expected second rule match, got %q ok=%v", cat, ok)
	}
	if _, ok := c.Categorize("nothing matches"); ok {
		t.Error("expected no match")
	}
}
