package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"incubation-backend/internal/models"
	"incubation-backend/internal/workflow"
)

var _ workflow.EventPublisher = (*RealtimeClient)(nil)

// RealtimeClient sends broadcast messages through the Supabase Realtime REST
// endpoint. Clients subscribe to the "user:<id>" topic.
type RealtimeClient struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

func NewRealtimeClient(c *Client) *RealtimeClient {
	return newRealtimeClient(&http.Client{Timeout: 5 * time.Second}, c.Config.SupabaseURL, c.Config.SupabasePublishableKey)
}

func newRealtimeClient(httpClient *http.Client, supabaseURL, apiKey string) *RealtimeClient {
	return &RealtimeClient{
		httpClient: httpClient,
		endpoint:   baseURL(supabaseURL) + "/realtime/v1/api/broadcast",
		apiKey:     apiKey,
	}
}

type broadcastMessage struct {
	Topic   string                 `json:"topic"`
	Event   string                 `json:"event"`
	Payload map[string]interface{} `json:"payload"`
}

type broadcastRequest struct {
	Messages []broadcastMessage `json:"messages"`
}

func (r *RealtimeClient) PublishEvent(ctx context.Context, channel string, event string, payload map[string]interface{}) error {
	return r.send(ctx, []broadcastMessage{{Topic: channel, Event: event, Payload: payload}})
}

func (r *RealtimeClient) PublishUserEvent(ctx context.Context, userID uuid.UUID, event string, payload map[string]interface{}) error {
	return r.PublishUserEvents(ctx, []models.UserEvent{{UserID: userID, Event: event, Payload: payload}})
}

// PublishUserEvents delivers every event in one broadcast request.
func (r *RealtimeClient) PublishUserEvents(ctx context.Context, events []models.UserEvent) error {
	if len(events) == 0 {
		return nil
	}
	messages := make([]broadcastMessage, 0, len(events))
	for _, e := range events {
		messages = append(messages, broadcastMessage{
			Topic:   userTopic(e.UserID),
			Event:   e.Event,
			Payload: e.Payload,
		})
	}
	return r.send(ctx, messages)
}

func userTopic(userID uuid.UUID) string {
	return fmt.Sprintf("user:%s", userID.String())
}

func (r *RealtimeClient) send(ctx context.Context, messages []broadcastMessage) error {
	body, err := json.Marshal(broadcastRequest{Messages: messages})
	if err != nil {
		return fmt.Errorf("failed to encode broadcast: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build broadcast request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send broadcast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("broadcast rejected with status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
