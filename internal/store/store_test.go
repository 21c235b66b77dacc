package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asher407/hotwave/internal/model"
)

func testSnapshot(date model.Date, clock string, titles ...string) model.Snapshot {
	snap := model.Snapshot{Date: date, Clock: clock, Source: model.SourceLive}
	for i, title := range titles {
		snap.Entries = append(snap.Entries, model.Entry{Rank: i + 1, Title: title})
	}
	return snap
}

func TestStore_Append_RoundTrip(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	snap := testSnapshot("2025-03-14", "09:00", "one", "two", "three")
	require.NoError(t, s.Append(snap))

	got, ok := s.Snapshots("2025-03-14")
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, snap.Entries, got[0].Entries)
	assert.Equal(t, model.SourceLive, got[0].Source)
}

func TestStore_Append_Idempotent(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	snap := testSnapshot("2025-03-14", "09:00", "one", "two")
	require.NoError(t, s.Append(snap))

	// Same content with entries permuted hashes to the same key.
	permuted := snap
	permuted.Entries = []model.Entry{snap.Entries[1], snap.Entries[0]}
	err = s.Append(permuted)
	require.ErrorIs(t, err, model.ErrAlreadyPresent)

	got, _ := s.Snapshots("2025-03-14")
	assert.Len(t, got, 1)
}

func TestStore_Append_MalformedLeavesStoreUnchanged(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Append(testSnapshot("2025-03-14", "09:00", "one")))

	bad := model.Snapshot{
		Date:    "2025-03-14",
		Clock:   "10:00",
		Source:  model.SourceLive,
		Entries: []model.Entry{{Rank: 1, Title: "a"}, {Rank: 3, Title: "c"}},
	}
	err = s.Append(bad)
	var malformed *model.MalformedSnapshotError
	require.True(t, errors.As(err, &malformed))

	got, ok := s.Snapshots("2025-03-14")
	require.True(t, ok)
	assert.Len(t, got, 1, "rejected snapshot must not be stored")

	// Nothing for the bad capture on disk either.
	reopened, err := Open(dir)
	require.NoError(t, err)
	got, _ = reopened.Snapshots("2025-03-14")
	assert.Len(t, got, 1)
}

func TestStore_Append_MultipleCapturesClockOrdered(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Append(testSnapshot("2025-03-14", "21:00", "evening")))
	require.NoError(t, s.Append(testSnapshot("2025-03-14", "09:00", "morning")))

	got, ok := s.Snapshots("2025-03-14")
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, "09:00", got[0].Clock)
	assert.Equal(t, "21:00", got[1].Clock)
}

func TestStore_ListDates_GapAware(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Append(testSnapshot("2025-03-01", "", "a")))
	require.NoError(t, s.Append(testSnapshot("2025-03-03", "", "b")))
	require.NoError(t, s.Append(testSnapshot("2025-04-01", "", "c")))

	assert.Equal(t, []model.Date{"2025-03-01", "2025-03-03"},
		s.ListDates("2025-03-01", "2025-03-31"))
	assert.Equal(t, []model.Date{"2025-03-01", "2025-03-03", "2025-04-01"},
		s.ListDates("", ""))
	assert.Empty(t, s.ListDates("2025-05-01", "2025-05-31"))
}

func TestStore_Open_LoadsExistingPartitions(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	snap := testSnapshot("2025-03-14", "09:00", "persisted")
	require.NoError(t, s.Append(snap))

	// Partition files live under a month directory.
	_, err = os.Stat(filepath.Join(dir, "2025-03", "2025-03-14.json"))
	require.NoError(t, err)

	reopened, err := Open(dir)
	require.NoError(t, err)
	got, ok := reopened.Snapshots("2025-03-14")
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, snap.Entries, got[0].Entries)

	// The content key index survives the reload.
	err = reopened.Append(snap)
	assert.ErrorIs(t, err, model.ErrAlreadyPresent)
}

func TestStore_Append_ConcurrentDistinctDates(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for day := 1; day <= 9; day++ {
		date := model.Date(fmt.Sprintf("2025-03-0%d", day))
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Append(testSnapshot(date, "09:00", "one", "two")))
		}()
	}
	wg.Wait()

	assert.Len(t, s.Dates(), 9)
}

func TestStore_Snapshots_WholeDuringConcurrentAppend(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Append(testSnapshot("2025-03-14", "09:00", "one", "two")))

	const captures = 50
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < captures; i++ {
			clock := fmt.Sprintf("10:%02d", i)
			assert.NoError(t, s.Append(testSnapshot("2025-03-14", clock, "one", "two", clock)))
		}
	}()

	// Readers racing the appends must see only fully-applied snapshots.
	for {
		snaps, ok := s.Snapshots("2025-03-14")
		assert.True(t, ok)
		for _, snap := range snaps {
			assert.NoError(t, snap.Validate())
		}
		select {
		case <-done:
			snaps, _ := s.Snapshots("2025-03-14")
			assert.Len(t, snaps, captures+1)
			return
		default:
		}
	}
}

func TestStore_Snapshots_MissingDate(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	_, ok := s.Snapshots("2025-03-14")
	assert.False(t, ok)
}
