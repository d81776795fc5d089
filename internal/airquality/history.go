package airquality

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/withmandala/go-log"

	"github.com/i474232898/air-quality-dashboard/internal/logging"
	"github.com/i474232898/air-quality-dashboard/internal/store"
)

const (
	// HistoryKey is the store key of the reading history list.
	HistoryKey = "air_quality_data"
	// DefaultHistoryLimit bounds the number of kept readings.
	DefaultHistoryLimit = 100
)

// History is the persisted reading list, newest first and bounded in size.
// Entries are never modified once written.
type History struct {
	mu     sync.Mutex
	kv     store.KV
	limit  int
	logger *log.Logger
}

// NewHistory creates a History over kv. A limit <= 0 uses DefaultHistoryLimit.
func NewHistory(kv store.KV, limit int, logger *log.Logger) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &History{kv: kv, limit: limit, logger: logger}
}

// Append inserts r at the front and drops the oldest entries beyond the
// limit, as one read-modify-write. Failures are logged and the write dropped.
func (h *History) Append(ctx context.Context, r Reading) {
	h.mu.Lock()
	defer h.mu.Unlock()

	readings, err := h.load(ctx)
	if err != nil {
		h.logger.Errorf("history: error loading before append: %v", err)
		readings = nil
	}

	readings = append([]Reading{r}, readings...)
	if len(readings) > h.limit {
		readings = readings[:h.limit]
	}

	raw, err := json.Marshal(readings)
	if err != nil {
		h.logger.Errorf("history: error encoding readings: %v", err)
		return
	}
	if err := h.kv.Set(ctx, HistoryKey, string(raw)); err != nil {
		h.logger.Errorf("history: error storing readings: %v", err)
	}
}

// All returns every stored reading, newest first. Read failures yield an
// empty list.
func (h *History) All(ctx context.Context) []Reading {
	h.mu.Lock()
	defer h.mu.Unlock()

	readings, err := h.load(ctx)
	if err != nil {
		h.logger.Errorf("history: error loading readings: %v", err)
		return nil
	}
	return readings
}

// Since returns readings with a timestamp at or after cutoff, newest first.
func (h *History) Since(ctx context.Context, cutoff time.Time) []Reading {
	all := h.All(ctx)

	out := make([]Reading, 0, len(all))
	for _, r := range all {
		if !r.Timestamp.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out
}

func (h *History) load(ctx context.Context) ([]Reading, error) {
	raw, err := h.kv.Get(ctx, HistoryKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var readings []Reading
	if err := json.Unmarshal([]byte(raw), &readings); err != nil {
		return nil, err
	}
	return readings, nil
}
