package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
)

type EventType string

const (
	EventTypeMessageCreate EventType = "message_create"
	EventTypeReactionAdd   EventType = "reaction_add"
	EventTypeTest          EventType = "test"
)

type ContentType string

const (
	ContentTypeImage ContentType = "image"
	ContentTypeVideo ContentType = "video"
	ContentTypeAudio ContentType = "audio"
	ContentTypeFile  ContentType = "file"
	ContentTypeReply ContentType = "reply"
	ContentTypeLink  ContentType = "link"
	ContentTypeText  ContentType = "text"
)

// ReservedEventKeys are the top-level keys owned by the base event.
// Extension fields may not use any of them.
var ReservedEventKeys = []string{
	"event_type",
	"timestamp",
	"content",
	"author",
	"channel",
	"guild",
	"message_id",
	"attachments",
	"mentions",
	"reply_to",
}

// IsReservedEventKey reports whether key belongs to the base event schema
func IsReservedEventKey(key string) bool {
	return slices.Contains(ReservedEventKeys, key)
}

type EventContent struct {
	Text string      `json:"text"`
	Type ContentType `json:"type"`
}

type EventAuthor struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	Discriminator string  `json:"discriminator"`
	DisplayName   string  `json:"display_name"`
	AvatarURL     *string `json:"avatar_url"`
}

type EventChannel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// EventGuild has both fields nil for events outside a guild (direct messages)
type EventGuild struct {
	ID   *string `json:"id"`
	Name *string `json:"name"`
}

type EventAttachment struct {
	ID          string  `json:"id"`
	Filename    string  `json:"filename"`
	URL         string  `json:"url"`
	ContentType *string `json:"content_type"`
}

type EventMention struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ReactionExtension is merged under the "reaction" key of reaction_add events
type ReactionExtension struct {
	Emoji string `json:"emoji"`
	Count int    `json:"count"`
}

// UserExtension is merged under the "user" key of reaction_add events
type UserExtension struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// CanonicalEvent is the normalized payload POSTed to webhooks.
// Timestamp is milliseconds since epoch at normalization time.
type CanonicalEvent struct {
	EventType   EventType         `json:"event_type"`
	Timestamp   int64             `json:"timestamp"`
	Content     EventContent      `json:"content"`
	Author      EventAuthor       `json:"author"`
	Channel     EventChannel      `json:"channel"`
	Guild       EventGuild        `json:"guild"`
	MessageID   string            `json:"message_id"`
	Attachments []EventAttachment `json:"attachments"`
	Mentions    []EventMention    `json:"mentions"`
	ReplyTo     *string           `json:"reply_to"`

	// Extensions holds event-specific top-level fields, merged after the base fields on marshal
	Extensions map[string]json.RawMessage `json:"-"`
}

// canonicalEventFields has the same fields without the custom (un)marshalers
type canonicalEventFields CanonicalEvent

// SetExtension stores value under key as an extension field
func (e *CanonicalEvent) SetExtension(key string, value any) error {
	if key == "" {
		return fmt.Errorf("extension key cannot be empty")
	}
	if IsReservedEventKey(key) {
		return fmt.Errorf("extension key %q collides with a reserved event field", key)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal extension %q: %w", key, err)
	}

	if e.Extensions == nil {
		e.Extensions = make(map[string]json.RawMessage)
	}
	e.Extensions[key] = raw
	return nil
}

func (e CanonicalEvent) MarshalJSON() ([]byte, error) {
	fields := canonicalEventFields(e)
	if fields.Attachments == nil {
		fields.Attachments = []EventAttachment{}
	}
	if fields.Mentions == nil {
		fields.Mentions = []EventMention{}
	}

	base, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	if len(e.Extensions) == 0 {
		return base, nil
	}

	keys := make([]string, 0, len(e.Extensions))
	for key := range e.Extensions {
		if IsReservedEventKey(key) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(base[:len(base)-1])
	for _, key := range keys {
		encodedKey, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		value := e.Extensions[key]
		if !json.Valid(value) {
			return nil, fmt.Errorf("extension %q is not valid JSON", key)
		}
		buf.WriteByte(',')
		buf.Write(encodedKey)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (e *CanonicalEvent) UnmarshalJSON(data []byte) error {
	var fields canonicalEventFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for key, value := range all {
		if IsReservedEventKey(key) {
			continue
		}
		if fields.Extensions == nil {
			fields.Extensions = make(map[string]json.RawMessage)
		}
		fields.Extensions[key] = value
	}

	*e = CanonicalEvent(fields)
	return nil
}
