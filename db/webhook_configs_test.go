package db

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testChannelID = "111111111111111111"
	testGuildID   = "222222222222222222"
	testURL       = "https://n8n.example.com/webhook/abc"
)

func setupTestRepo(t *testing.T) (*JSONWebhookConfigsRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "webhooks.json")
	repo, err := NewJSONWebhookConfigsRepository(path)
	require.NoError(t, err)
	return repo, path
}

func readDocument(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestNewJSONWebhookConfigsRepository(t *testing.T) {
	t.Run("creates empty document when missing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "webhooks.json")

		repo, err := NewJSONWebhookConfigsRepository(path)
		require.NoError(t, err)
		assert.Equal(t, path, repo.FilePath())

		doc := readDocument(t, path)
		assert.Equal(t, map[string]any{"channels": map[string]any{}}, doc)
	})

	t.Run("keeps existing document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "webhooks.json")
		existing := `{"channels": {"c1": {"webhook_url": "http://a", "guild_id": "g1", "created_at": "2024-01-02T03:04:05Z", "active": false}}}`
		require.NoError(t, os.WriteFile(path, []byte(existing), 0644))

		repo, err := NewJSONWebhookConfigsRepository(path)
		require.NoError(t, err)

		config := repo.GetWebhookConfig(context.Background(), "c1")
		require.True(t, config.IsPresent())
		assert.Equal(t, "http://a", config.MustGet().WebhookURL)
		assert.False(t, config.MustGet().Active)
	})

	t.Run("rejects empty path", func(t *testing.T) {
		_, err := NewJSONWebhookConfigsRepository("")
		assert.Error(t, err)
	})
}

func TestJSONWebhookConfigsRepository_AbsentChannel(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	assert.False(t, repo.GetWebhookConfig(ctx, "missing").IsPresent())
	assert.False(t, repo.GetActiveWebhookURL(ctx, "missing").IsPresent())

	toggled, err := repo.ToggleWebhookConfig(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, toggled)

	removed, err := repo.DeleteWebhookConfig(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestJSONWebhookConfigsRepository_Upsert(t *testing.T) {
	t.Run("stores record with active flag and creation time", func(t *testing.T) {
		repo, _ := setupTestRepo(t)
		ctx := context.Background()
		fixedNow := time.Date(2025, 3, 4, 5, 6, 7, 800, time.UTC)
		repo.now = func() time.Time { return fixedNow }

		created, err := repo.UpsertWebhookConfig(ctx, testChannelID, testURL, testGuildID)
		require.NoError(t, err)
		assert.Equal(t, testURL, created.WebhookURL)

		maybeConfig := repo.GetWebhookConfig(ctx, testChannelID)
		require.True(t, maybeConfig.IsPresent())
		config := maybeConfig.MustGet()
		assert.Equal(t, testChannelID, config.ChannelID)
		assert.Equal(t, testGuildID, config.GuildID)
		assert.Equal(t, testURL, config.WebhookURL)
		assert.True(t, config.Active)
		assert.True(t, fixedNow.Equal(config.CreatedAt))
	})

	t.Run("overwrites previous config and resets creation time", func(t *testing.T) {
		repo, _ := setupTestRepo(t)
		ctx := context.Background()
		first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		second := first.Add(time.Hour)

		repo.now = func() time.Time { return first }
		_, err := repo.UpsertWebhookConfig(ctx, testChannelID, "https://first.example.com", testGuildID)
		require.NoError(t, err)
		_, err = repo.ToggleWebhookConfig(ctx, testChannelID)
		require.NoError(t, err)

		repo.now = func() time.Time { return second }
		_, err = repo.UpsertWebhookConfig(ctx, testChannelID, "https://second.example.com", testGuildID)
		require.NoError(t, err)

		config := repo.GetWebhookConfig(ctx, testChannelID).MustGet()
		assert.Equal(t, "https://second.example.com", config.WebhookURL)
		assert.True(t, config.Active)
		assert.True(t, second.Equal(config.CreatedAt))
		assert.Len(t, repo.ListWebhookConfigsByGuild(ctx, testGuildID), 1)
	})

	t.Run("rejects empty channel id", func(t *testing.T) {
		repo, _ := setupTestRepo(t)
		_, err := repo.UpsertWebhookConfig(context.Background(), "", testURL, testGuildID)
		assert.Error(t, err)
	})

	t.Run("persists on-disk layout", func(t *testing.T) {
		repo, path := setupTestRepo(t)
		url := "https://hooks.example.com/a?x=1&y=2"
		_, err := repo.UpsertWebhookConfig(context.Background(), testChannelID, url, testGuildID)
		require.NoError(t, err)

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "x=1&y=2")

		doc := readDocument(t, path)
		channels := doc["channels"].(map[string]any)
		record := channels[testChannelID].(map[string]any)
		assert.Equal(t, url, record["webhook_url"])
		assert.Equal(t, testGuildID, record["guild_id"])
		assert.Equal(t, true, record["active"])
		_, err = time.Parse(time.RFC3339Nano, record["created_at"].(string))
		assert.NoError(t, err)
	})
}

func TestJSONWebhookConfigsRepository_Toggle(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.UpsertWebhookConfig(ctx, testChannelID, testURL, testGuildID)
	require.NoError(t, err)
	require.Equal(t, testURL, repo.GetActiveWebhookURL(ctx, testChannelID).MustGet())

	toggled, err := repo.ToggleWebhookConfig(ctx, testChannelID)
	require.NoError(t, err)
	assert.True(t, toggled)
	assert.False(t, repo.GetActiveWebhookURL(ctx, testChannelID).IsPresent())

	config := repo.GetWebhookConfig(ctx, testChannelID)
	require.True(t, config.IsPresent())
	assert.False(t, config.MustGet().Active)

	toggled, err = repo.ToggleWebhookConfig(ctx, testChannelID)
	require.NoError(t, err)
	assert.True(t, toggled)
	assert.Equal(t, testURL, repo.GetActiveWebhookURL(ctx, testChannelID).MustGet())
}

func TestJSONWebhookConfigsRepository_Delete(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.UpsertWebhookConfig(ctx, testChannelID, testURL, testGuildID)
	require.NoError(t, err)

	removed, err := repo.DeleteWebhookConfig(ctx, testChannelID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, repo.GetWebhookConfig(ctx, testChannelID).IsPresent())

	removed, err = repo.DeleteWebhookConfig(ctx, testChannelID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestJSONWebhookConfigsRepository_ListByGuild(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.UpsertWebhookConfig(ctx, "c3", "https://3.example.com", "g1")
	require.NoError(t, err)
	_, err = repo.UpsertWebhookConfig(ctx, "c1", "https://1.example.com", "g1")
	require.NoError(t, err)
	_, err = repo.UpsertWebhookConfig(ctx, "c2", "https://2.example.com", "g2")
	require.NoError(t, err)
	_, err = repo.UpsertWebhookConfig(ctx, "c4", "https://4.example.com", "g1")
	require.NoError(t, err)
	_, err = repo.ToggleWebhookConfig(ctx, "c4")
	require.NoError(t, err)

	configs := repo.ListWebhookConfigsByGuild(ctx, "g1")
	require.Len(t, configs, 3)
	assert.Equal(t, "c1", configs[0].ChannelID)
	assert.Equal(t, "c3", configs[1].ChannelID)
	assert.Equal(t, "c4", configs[2].ChannelID)
	assert.False(t, configs[2].Active)
	for _, config := range configs {
		assert.Equal(t, "g1", config.GuildID)
	}

	assert.Equal(t, configs, repo.ListWebhookConfigsByGuild(ctx, "g1"))
	assert.Len(t, repo.ListWebhookConfigsByGuild(ctx, "g2"), 1)
	assert.Empty(t, repo.ListWebhookConfigsByGuild(ctx, "unknown"))
	assert.NotNil(t, repo.ListWebhookConfigsByGuild(ctx, "unknown"))
}

func TestJSONWebhookConfigsRepository_SelfHealingLoad(t *testing.T) {
	t.Run("corrupt document reads as empty", func(t *testing.T) {
		repo, path := setupTestRepo(t)
		ctx := context.Background()
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

		assert.False(t, repo.GetWebhookConfig(ctx, testChannelID).IsPresent())
		assert.Empty(t, repo.ListWebhookConfigsByGuild(ctx, testGuildID))

		_, err := repo.UpsertWebhookConfig(ctx, testChannelID, testURL, testGuildID)
		require.NoError(t, err)
		assert.True(t, repo.GetWebhookConfig(ctx, testChannelID).IsPresent())
	})

	t.Run("deleted document reads as empty", func(t *testing.T) {
		repo, path := setupTestRepo(t)
		ctx := context.Background()
		require.NoError(t, os.Remove(path))

		assert.False(t, repo.GetActiveWebhookURL(ctx, testChannelID).IsPresent())

		removed, err := repo.DeleteWebhookConfig(ctx, testChannelID)
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("document without channels key reads as empty", func(t *testing.T) {
		repo, path := setupTestRepo(t)
		ctx := context.Background()
		require.NoError(t, os.WriteFile(path, []byte(`{}`), 0644))

		_, err := repo.UpsertWebhookConfig(ctx, testChannelID, testURL, testGuildID)
		require.NoError(t, err)
		assert.True(t, repo.GetWebhookConfig(ctx, testChannelID).IsPresent())
	})
}

func TestJSONWebhookConfigsRepository_LegacyRecords(t *testing.T) {
	repo, path := setupTestRepo(t)
	ctx := context.Background()
	legacy := `{
  "channels": {
    "c1": {
      "webhook_url": "https://legacy.example.com",
      "guild_id": "g1",
      "created_at": "2024-05-06T07:08:09.123456"
    },
    "c2": {
      "webhook_url": "https://broken-time.example.com",
      "guild_id": "g1",
      "created_at": "yesterday",
      "active": true
    }
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0644))

	config := repo.GetWebhookConfig(ctx, "c1").MustGet()
	assert.True(t, config.Active)
	expected := time.Date(2024, 5, 6, 7, 8, 9, 123456000, time.Local)
	assert.True(t, expected.Equal(config.CreatedAt))
	assert.Equal(t, "https://legacy.example.com", repo.GetActiveWebhookURL(ctx, "c1").MustGet())

	broken := repo.GetWebhookConfig(ctx, "c2").MustGet()
	assert.True(t, broken.CreatedAt.IsZero())
}

func TestJSONWebhookConfigsRepository_WriteFailure(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	repo, path := setupTestRepo(t)
	ctx := context.Background()
	_, err := repo.UpsertWebhookConfig(ctx, testChannelID, testURL, testGuildID)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	require.NoError(t, os.Chmod(dir, 0555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0755) })

	_, err = repo.UpsertWebhookConfig(ctx, "other", testURL, testGuildID)
	assert.Error(t, err)

	// the failed write must not be visible on the next read
	assert.False(t, repo.GetWebhookConfig(ctx, "other").IsPresent())
	assert.True(t, repo.GetWebhookConfig(ctx, testChannelID).IsPresent())
}

func TestJSONWebhookConfigsRepository_NoTempFilesLeft(t *testing.T) {
	repo, path := setupTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := repo.UpsertWebhookConfig(ctx, testChannelID, testURL, testGuildID)
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	assert.ElementsMatch(t, []string{"webhooks.json", "webhooks.json.lock"}, names)
}
