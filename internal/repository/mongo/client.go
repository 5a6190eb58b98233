package mongo

import (
	"context"
	"fmt"

	"github.com/Rrens/article-hub/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	usersCollection    = "users"
	articlesCollection = "articles"
	logsCollection     = "logs"
)

// Client wraps the MongoDB client and the application database
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewClient connects to the document store and verifies the connection
func NewClient(ctx context.Context, cfg config.DatabaseConfig) (*Client, error) {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
		opts.SetServerSelectionTimeout(cfg.ConnectTimeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping: %w", err)
	}

	return &Client{
		client: client,
		db:     client.Database(cfg.Name),
	}, nil
}

// Ping checks that the store is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, nil)
}

// Close disconnects from the store
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// Database returns the application database
func (c *Client) Database() *mongo.Database {
	return c.db
}
