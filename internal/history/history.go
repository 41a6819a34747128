// Package history keeps an append-only JSON ledger of terminal upload
// outcomes.
package history

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"clip-publisher/internal/model"
)

// Record is one terminal upload outcome. Records are never mutated after
// being written.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	Video     string    `json:"video"`
	Platform  string    `json:"platform"`
	Status    string    `json:"status"`
	URL       string    `json:"url,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Ledger is a flat JSON array on disk. Appends rewrite the whole file, which
// is fine at the volumes a publishing pipeline produces.
type Ledger struct {
	path string
	mu   sync.Mutex
}

func NewLedger(path string) *Ledger {
	return &Ledger{path: path}
}

// Load reads all records. A missing file is an empty ledger.
func (l *Ledger) Load() ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

func (l *Ledger) load() ([]Record, error) {
	b, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Append loads the ledger, appends rec and rewrites the file.
func (l *Ledger) Append(rec Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.load()
	if err != nil {
		return err
	}
	records = append(records, rec)

	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(l.path, b, 0o644)
}

// RecordOf builds a ledger entry from a terminal upload result.
func RecordOf(videoPath string, res *model.UploadResult) Record {
	return Record{
		Timestamp: time.Now().UTC(),
		Video:     videoPath,
		Platform:  res.Platform,
		Status:    string(res.Status),
		URL:       res.URL,
		Error:     res.Error,
	}
}
