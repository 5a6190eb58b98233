// Package logging configures the process logger and the per-topic job log
// files.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Rrens/article-hub/internal/config"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	rotationTime = 24 * time.Hour
	maxAge       = 7 * 24 * time.Hour
)

// Setup configures the global zerolog logger from the logging section
func Setup(cfg config.LoggingConfig) error {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = os.Stderr
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return nil
}

// Topics holds the file loggers that job handlers append to
type Topics struct {
	Users    zerolog.Logger
	Articles zerolog.Logger

	closers []io.Closer
}

// NewTopics builds topic loggers over arbitrary writers
func NewTopics(users, articles io.Writer) *Topics {
	return &Topics{
		Users:    zerolog.New(users).With().Timestamp().Str("topic", "users").Logger(),
		Articles: zerolog.New(articles).With().Timestamp().Str("topic", "articles").Logger(),
	}
}

// NopTopics discards every topic line
func NopTopics() *Topics {
	return NewTopics(io.Discard, io.Discard)
}

// OpenTopics opens users.log and articles.log under dir, rotated daily and
// kept for a week
func OpenTopics(dir string) (*Topics, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log dir: %w", err)
	}

	users, err := openRotating(dir, "users")
	if err != nil {
		return nil, err
	}
	articles, err := openRotating(dir, "articles")
	if err != nil {
		_ = users.Close()
		return nil, err
	}

	t := NewTopics(users, articles)
	t.closers = []io.Closer{users, articles}
	return t, nil
}

// Close closes the underlying files
func (t *Topics) Close() error {
	var first error
	for _, c := range t.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func openRotating(dir, name string) (*rotatelogs.RotateLogs, error) {
	link := filepath.Join(dir, name+".log")
	w, err := rotatelogs.New(
		filepath.Join(dir, name+".%Y%m%d.log"),
		rotatelogs.WithLinkName(link),
		rotatelogs.WithRotationTime(rotationTime),
		rotatelogs.WithMaxAge(maxAge),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", link, err)
	}
	return w, nil
}
