package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/Rrens/article-hub/internal/domain"
	"go.mongodb.org/mongo-driver/mongo"
)

type logDocument struct {
	Type      string    `bson:"type"`
	Message   string    `bson:"message"`
	CreatedAt time.Time `bson:"created_at"`
}

// LogRepository appends job log lines to the logs collection
type LogRepository struct {
	coll *mongo.Collection
}

// NewLogRepository creates a new log repository
func NewLogRepository(c *Client) *LogRepository {
	return &LogRepository{coll: c.db.Collection(logsCollection)}
}

// Insert stores a log entry
func (r *LogRepository) Insert(ctx context.Context, entry domain.LogEntry) error {
	_, err := r.coll.InsertOne(ctx, logDocument{
		Type:      entry.Type,
		Message:   entry.Message,
		CreatedAt: entry.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to insert log entry: %w", err)
	}
	return nil
}
