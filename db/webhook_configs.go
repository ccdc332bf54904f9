package db

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/samber/mo"

	"webhookrelay/models"
)

// legacyTimeLayout is the zone-less ISO 8601 form written by earlier versions of the store
const legacyTimeLayout = "2006-01-02T15:04:05.999999"

// webhooksDocument is the on-disk layout of the store
type webhooksDocument struct {
	Channels map[string]*DatabaseWebhookConfig `json:"channels"`
}

// DatabaseWebhookConfig is the raw record persisted per channel
type DatabaseWebhookConfig struct {
	WebhookURL string `json:"webhook_url"`
	GuildID    string `json:"guild_id"`
	CreatedAt  string `json:"created_at"`
	// Active is a pointer so that records without the key read as active
	Active *bool `json:"active,omitempty"`
}

func (r *DatabaseWebhookConfig) isActive() bool {
	return r.Active == nil || *r.Active
}

func (r *DatabaseWebhookConfig) toWebhookConfig(channelID string) *models.WebhookConfig {
	return &models.WebhookConfig{
		ChannelID:  channelID,
		GuildID:    r.GuildID,
		WebhookURL: r.WebhookURL,
		CreatedAt:  parseCreatedAt(r.CreatedAt),
		Active:     r.isActive(),
	}
}

func parseCreatedAt(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	if t, err := time.ParseInLocation(legacyTimeLayout, value, time.Local); err == nil {
		return t
	}
	log.Printf("⚠️ Unparseable created_at value %q in webhook store, using zero time", value)
	return time.Time{}
}

func emptyDocument() *webhooksDocument {
	return &webhooksDocument{Channels: make(map[string]*DatabaseWebhookConfig)}
}

// JSONWebhookConfigsRepository persists channel webhook configuration in a single JSON document.
// Nothing is cached: every call reloads the document and every mutation rewrites it in full.
type JSONWebhookConfigsRepository struct {
	filePath string
	// mu serializes access within the process, fileLock across processes.
	// A single flock.Flock cannot be shared by concurrent holders, so reads take mu exclusively too.
	mu       sync.Mutex
	fileLock *flock.Flock
	now      func() time.Time
}

// NewJSONWebhookConfigsRepository opens the store at filePath, creating an empty document if none exists
func NewJSONWebhookConfigsRepository(filePath string) (*JSONWebhookConfigsRepository, error) {
	if filePath == "" {
		return nil, fmt.Errorf("webhook store file path cannot be empty")
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create webhook store directory %s: %w", dir, err)
	}

	repo := &JSONWebhookConfigsRepository{
		filePath: filePath,
		fileLock: flock.New(filePath + ".lock"),
		now:      time.Now,
	}

	if _, err := os.Stat(filePath); errors.Is(err, os.ErrNotExist) {
		log.Printf("📋 Webhook store %s does not exist, creating empty store", filePath)
		if err := repo.withWriteLock(func() error { return repo.save(emptyDocument()) }); err != nil {
			return nil, fmt.Errorf("failed to create webhook store: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat webhook store %s: %w", filePath, err)
	}

	return repo, nil
}

// FilePath returns the location of the backing document
func (r *JSONWebhookConfigsRepository) FilePath() string {
	return r.filePath
}

func (r *JSONWebhookConfigsRepository) UpsertWebhookConfig(
	ctx context.Context,
	channelID, webhookURL, guildID string,
) (*models.WebhookConfig, error) {
	if channelID == "" {
		return nil, fmt.Errorf("channel ID cannot be empty")
	}

	active := true
	record := &DatabaseWebhookConfig{
		WebhookURL: webhookURL,
		GuildID:    guildID,
		CreatedAt:  r.now().Format(time.RFC3339Nano),
		Active:     &active,
	}

	err := r.mutate(func(doc *webhooksDocument) (bool, error) {
		doc.Channels[channelID] = record
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert webhook config for channel %s: %w", channelID, err)
	}

	return record.toWebhookConfig(channelID), nil
}

func (r *JSONWebhookConfigsRepository) GetWebhookConfig(
	ctx context.Context,
	channelID string,
) mo.Option[*models.WebhookConfig] {
	doc := r.loadShared()
	record, ok := doc.Channels[channelID]
	if !ok || record == nil {
		return mo.None[*models.WebhookConfig]()
	}
	return mo.Some(record.toWebhookConfig(channelID))
}

// GetActiveWebhookURL returns the webhook URL only if the channel has a config and it is active
func (r *JSONWebhookConfigsRepository) GetActiveWebhookURL(ctx context.Context, channelID string) mo.Option[string] {
	doc := r.loadShared()
	record, ok := doc.Channels[channelID]
	if !ok || record == nil || !record.isActive() {
		return mo.None[string]()
	}
	return mo.Some(record.WebhookURL)
}

// DeleteWebhookConfig erases the channel's record, returning false if there was none
func (r *JSONWebhookConfigsRepository) DeleteWebhookConfig(ctx context.Context, channelID string) (bool, error) {
	removed := false
	err := r.mutate(func(doc *webhooksDocument) (bool, error) {
		if _, ok := doc.Channels[channelID]; !ok {
			return false, nil
		}
		delete(doc.Channels, channelID)
		removed = true
		return true, nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete webhook config for channel %s: %w", channelID, err)
	}
	return removed, nil
}

// ToggleWebhookConfig flips the active flag, returning false if the channel has no record
func (r *JSONWebhookConfigsRepository) ToggleWebhookConfig(ctx context.Context, channelID string) (bool, error) {
	toggled := false
	err := r.mutate(func(doc *webhooksDocument) (bool, error) {
		record, ok := doc.Channels[channelID]
		if !ok || record == nil {
			return false, nil
		}
		next := !record.isActive()
		record.Active = &next
		toggled = true
		return true, nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle webhook config for channel %s: %w", channelID, err)
	}
	return toggled, nil
}

// ListWebhookConfigsByGuild returns the guild's configs ordered by channel ID
func (r *JSONWebhookConfigsRepository) ListWebhookConfigsByGuild(
	ctx context.Context,
	guildID string,
) []*models.WebhookConfig {
	doc := r.loadShared()

	configs := make([]*models.WebhookConfig, 0)
	for channelID, record := range doc.Channels {
		if record == nil || record.GuildID != guildID {
			continue
		}
		configs = append(configs, record.toWebhookConfig(channelID))
	}

	sort.Slice(configs, func(i, j int) bool {
		return configs[i].ChannelID < configs[j].ChannelID
	})
	return configs
}

// mutate runs a read-modify-write cycle under the exclusive file lock.
// apply reports whether the document changed and must be written back.
func (r *JSONWebhookConfigsRepository) mutate(apply func(doc *webhooksDocument) (bool, error)) error {
	return r.withWriteLock(func() error {
		doc := r.load()
		changed, err := apply(doc)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		return r.save(doc)
	})
}

func (r *JSONWebhookConfigsRepository) withWriteLock(fn func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fileLock.Lock(); err != nil {
		return fmt.Errorf("failed to lock webhook store: %w", err)
	}
	defer func() {
		if err := r.fileLock.Unlock(); err != nil {
			log.Printf("⚠️ Failed to unlock webhook store: %v", err)
		}
	}()
	return fn()
}

// loadShared reads the document under a shared lock, falling back to an unlocked read
func (r *JSONWebhookConfigsRepository) loadShared() *webhooksDocument {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fileLock.RLock(); err != nil {
		log.Printf("⚠️ Failed to acquire shared lock on webhook store, reading without it: %v", err)
		return r.load()
	}
	defer func() {
		if err := r.fileLock.Unlock(); err != nil {
			log.Printf("⚠️ Failed to unlock webhook store: %v", err)
		}
	}()
	return r.load()
}

// load never fails: a missing or unreadable document is treated as an empty store
func (r *JSONWebhookConfigsRepository) load() *webhooksDocument {
	data, err := os.ReadFile(r.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return emptyDocument()
	}
	if err != nil {
		log.Printf("⚠️ Failed to read webhook store %s, treating as empty: %v", r.filePath, err)
		return emptyDocument()
	}

	var doc webhooksDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("⚠️ Webhook store %s is corrupt, treating as empty (existing records will be overwritten on next write): %v",
			r.filePath, err)
		return emptyDocument()
	}
	if doc.Channels == nil {
		doc.Channels = make(map[string]*DatabaseWebhookConfig)
	}
	return &doc
}

// save replaces the document atomically via a temp file in the same directory
func (r *JSONWebhookConfigsRepository) save(doc *webhooksDocument) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to marshal webhook store: %w", err)
	}
	data := buf.Bytes()

	tmp, err := os.CreateTemp(filepath.Dir(r.filePath), filepath.Base(r.filePath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for webhook store: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		// no-op once the rename succeeded
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write webhook store: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync webhook store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close webhook store temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set webhook store permissions: %w", err)
	}
	if err := os.Rename(tmpPath, r.filePath); err != nil {
		return fmt.Errorf("failed to replace webhook store: %w", err)
	}
	return nil
}
