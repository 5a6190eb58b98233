package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/Rrens/article-hub/internal/domain"
)

// LogRepository collects log entries in memory
type LogRepository struct {
	mu      sync.Mutex
	entries []domain.LogEntry
}

func NewLogRepository() *LogRepository {
	return &LogRepository{}
}

func (r *LogRepository) Insert(ctx context.Context, entry domain.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

// Entries returns a copy of the stored entries
func (r *LogRepository) Entries() []domain.LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.entries)
}
