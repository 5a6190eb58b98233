package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Rrens/article-hub/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	require.NoError(t, Setup(config.LoggingConfig{Level: "DEBUG", Format: "json"}))
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	require.NoError(t, Setup(config.LoggingConfig{Level: "", Format: "console"}))
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	assert.Error(t, Setup(config.LoggingConfig{Level: "loud"}))
}

func TestNewTopics(t *testing.T) {
	var users, articles bytes.Buffer
	topics := NewTopics(&users, &articles)

	topics.Users.Info().Msg("Welcome email sent to u1@x.com (U1)")

	var line map[string]any
	require.NoError(t, json.Unmarshal(users.Bytes(), &line))
	assert.Equal(t, "users", line["topic"])
	assert.Equal(t, "Welcome email sent to u1@x.com (U1)", line["message"])
	assert.Zero(t, articles.Len())
}

func TestOpenTopics(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	topics, err := OpenTopics(dir)
	require.NoError(t, err)

	topics.Articles.Info().Msg("[beat] Total articles in DB: 3")
	require.NoError(t, topics.Close())

	data, err := os.ReadFile(filepath.Join(dir, "articles.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Total articles in DB: 3")
}
