// Package push delivers alert notifications through the Expo push service.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"alert-relay/internal/config"
	"alert-relay/internal/model"
)

// alertMessages maps each alert type to the owner-facing notification body.
var alertMessages = map[model.AlertType]string{
	model.AlertTypeLightsOn:       "Your vehicle's lights appear to be on",
	model.AlertTypeWindowOpen:     "A window on your vehicle appears to be open",
	model.AlertTypeAlarmTriggered: "Your vehicle's alarm has been triggered",
	model.AlertTypeParkingIssue:   "There's a parking issue with your vehicle",
	model.AlertTypeDamageSpotted:  "Damage has been spotted on your vehicle",
	model.AlertTypeTowingRisk:     "Your vehicle may be at risk of towing",
	model.AlertTypeObstruction:    "Your vehicle may be causing an obstruction",
	model.AlertTypeGeneral:        "Someone has sent an alert about your vehicle",
}

// MessageFor returns the notification body for an alert type.
func MessageFor(alertType model.AlertType) string {
	if msg, ok := alertMessages[alertType]; ok {
		return msg
	}
	return "New alert for your vehicle"
}

// Message is a single Expo push request entry.
type Message struct {
	To       string            `json:"to"`
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Data     map[string]string `json:"data,omitempty"`
	Sound    string            `json:"sound,omitempty"`
	Priority string            `json:"priority,omitempty"`
}

type ticket struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Details struct {
		Error string `json:"error,omitempty"`
	} `json:"details,omitempty"`
}

type sendResponse struct {
	Data []ticket `json:"data"`
}

// Result reports the outcome of a batch send. InvalidTokens lists tokens
// Expo marked as no longer registered; callers should deactivate them.
type Result struct {
	Delivered     int
	InvalidTokens []string
}

type ExpoClient struct {
	url        string
	httpClient *http.Client
}

func NewExpoClient(cfg *config.Config) *ExpoClient {
	return &ExpoClient{
		url: cfg.Push.ExpoURL,
		httpClient: &http.Client{
			Timeout: cfg.Push.Timeout,
		},
	}
}

// NotifyAlert builds one message per push token and sends the batch.
func (c *ExpoClient) NotifyAlert(ctx context.Context, tokens []model.PushToken, alert *model.Alert) (Result, error) {
	if len(tokens) == 0 {
		return Result{}, nil
	}

	messages := make([]Message, 0, len(tokens))
	for _, t := range tokens {
		messages = append(messages, Message{
			To:    t.Token,
			Title: "VizinhoAlert",
			Body:  MessageFor(alert.AlertType),
			Data: map[string]string{
				"alert_id":   alert.ID.String(),
				"alert_type": string(alert.AlertType),
			},
			Sound:    "default",
			Priority: "high",
		})
	}

	return c.send(ctx, messages)
}

func (c *ExpoClient) send(ctx context.Context, messages []Message) (Result, error) {
	payload, err := json.Marshal(messages)
	if err != nil {
		return Result{}, fmt.Errorf("marshal push payload: %w", err)
	}

	var resp *http.Response
	var lastErr error
	const maxRetries = 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
		if err != nil {
			return Result{}, fmt.Errorf("create push request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")

		resp, lastErr = c.httpClient.Do(req)
		if lastErr == nil {
			break
		}
		if attempt == maxRetries-1 {
			return Result{}, fmt.Errorf("push request failed after %d attempts: %w", maxRetries, lastErr)
		}
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 500 * time.Millisecond):
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read push response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("push service returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed sendResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Result{}, fmt.Errorf("parse push response: %w", err)
	}

	result := Result{}
	for i, t := range parsed.Data {
		switch {
		case t.Status == "ok":
			result.Delivered++
		case t.Details.Error == "DeviceNotRegistered" && i < len(messages):
			result.InvalidTokens = append(result.InvalidTokens, messages[i].To)
		}
	}

	return result, nil
}
