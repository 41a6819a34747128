package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clip-publisher/internal/model"
)

func tempLedger(t *testing.T) *Ledger {
	t.Helper()
	return NewLedger(filepath.Join(t.TempDir(), "history.json"))
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	l := tempLedger(t)
	records, err := l.Load()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAppendPreservesExistingRecords(t *testing.T) {
	l := tempLedger(t)

	first := Record{Timestamp: time.Now().UTC(), Video: "a.mp4", Platform: "youtube", Status: "success", URL: "https://youtube.com/shorts/x"}
	second := Record{Timestamp: time.Now().UTC(), Video: "b.mp4", Platform: "tiktok", Status: "failed", Error: "session expired"}

	require.NoError(t, l.Append(first))
	require.NoError(t, l.Append(second))

	records, err := l.Load()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a.mp4", records[0].Video)
	assert.Equal(t, "b.mp4", records[1].Video)
	assert.Equal(t, "session expired", records[1].Error)
}

func TestAppendRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	l := NewLedger(path)
	err := l.Append(Record{Video: "a.mp4"})
	assert.Error(t, err)
}

func TestRecordOfMapsResultFields(t *testing.T) {
	res := model.Succeeded("facebook", "https://www.facebook.com/reel/1", "1")
	rec := RecordOf("clip.mp4", res)

	assert.Equal(t, "clip.mp4", rec.Video)
	assert.Equal(t, "facebook", rec.Platform)
	assert.Equal(t, "success", rec.Status)
	assert.Equal(t, "https://www.facebook.com/reel/1", rec.URL)
	assert.Empty(t, rec.Error)
	assert.WithinDuration(t, time.Now().UTC(), rec.Timestamp, time.Minute)
}
