package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"webhookrelay/appctx"
	"webhookrelay/core"
	"webhookrelay/events"
	"webhookrelay/models"
	"webhookrelay/utils"
)

const (
	UserAgent = "Discord-n8n-Bot/1.0"

	DefaultDeliveryTimeout = 20 * time.Second
	DefaultProbeTimeout    = 10 * time.Second

	// maxResponseBodyBytes caps how much of a rejected response is kept for diagnostics
	maxResponseBodyBytes = 4096
)

// WebhookClient POSTs canonical events to webhook endpoints. It never retries.
type WebhookClient struct {
	httpClient      *http.Client
	deliveryTimeout time.Duration
	probeTimeout    time.Duration
	now             func() time.Time
}

// NewWebhookClient creates a webhook client; zero timeouts fall back to the defaults
func NewWebhookClient(httpClient *http.Client, deliveryTimeout, probeTimeout time.Duration) *WebhookClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if deliveryTimeout <= 0 {
		deliveryTimeout = DefaultDeliveryTimeout
	}
	if probeTimeout <= 0 {
		probeTimeout = DefaultProbeTimeout
	}
	return &WebhookClient{
		httpClient:      httpClient,
		deliveryTimeout: deliveryTimeout,
		probeTimeout:    probeTimeout,
		now:             time.Now,
	}
}

// Deliver sends event to webhookURL once. HTTP 200 is the only successful outcome.
func (c *WebhookClient) Deliver(
	ctx context.Context,
	event *models.CanonicalEvent,
	webhookURL string,
) models.DeliveryResult {
	return c.post(ctx, event, webhookURL, c.deliveryTimeout)
}

// Probe sends a synthetic test event and reports whether the endpoint answered with HTTP 200
func (c *WebhookClient) Probe(ctx context.Context, webhookURL string) bool {
	log.Printf("📋 Starting to probe webhook %s", webhookURL)

	result := c.post(ctx, events.NewProbeEvent(c.now()), webhookURL, c.probeTimeout)
	if !result.IsDelivered() {
		log.Printf("⚠️ Webhook probe for %s did not succeed: %s", webhookURL, result)
		return false
	}

	log.Printf("📋 Completed successfully - webhook %s is reachable", webhookURL)
	return true
}

func (c *WebhookClient) post(
	ctx context.Context,
	event *models.CanonicalEvent,
	webhookURL string,
	timeout time.Duration,
) (result models.DeliveryResult) {
	deliveryID, ok := appctx.GetDeliveryID(ctx)
	if !ok {
		deliveryID = core.NewID("dlv")
	}
	result.DeliveryID = deliveryID

	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Panic while delivering %s to %s: %v", deliveryID, webhookURL, r)
			result = failed(deliveryID, fmt.Errorf("panic during delivery: %v", r))
		}
	}()

	if event == nil {
		return failed(deliveryID, fmt.Errorf("event cannot be nil"))
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return failed(deliveryID, fmt.Errorf("failed to marshal event: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(payload))
	if err != nil {
		return failed(deliveryID, fmt.Errorf("failed to create webhook request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("X-Delivery-ID", deliveryID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return failed(deliveryID, fmt.Errorf("failed to send webhook request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBodyBytes))
		return models.DeliveryResult{DeliveryID: deliveryID, Status: models.DeliveryStatusDelivered, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes+1))
	if err != nil {
		log.Printf("⚠️ Failed to read rejected webhook response body for %s: %v", deliveryID, err)
	}
	return models.DeliveryResult{
		DeliveryID: deliveryID,
		Status:     models.DeliveryStatusRejected,
		StatusCode: resp.StatusCode,
		Body:       utils.TruncateString(string(body), maxResponseBodyBytes),
	}
}

func failed(deliveryID string, err error) models.DeliveryResult {
	return models.DeliveryResult{DeliveryID: deliveryID, Status: models.DeliveryStatusFailed, Err: err}
}
