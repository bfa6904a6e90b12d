package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"incubation-backend/internal/models"
)

func TestRealtimeClient_PublishUserEvent(t *testing.T) {
	userID := uuid.New()
	var got broadcastRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/realtime/v1/api/broadcast", r.URL.Path)
		assert.Equal(t, "pk", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer pk", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := newRealtimeClient(server.Client(), server.URL+"/", "pk")
	err := client.PublishUserEvent(context.Background(), userID, "notification_created", map[string]interface{}{
		"title": "Funding Round Approved",
	})
	require.NoError(t, err)

	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user:"+userID.String(), got.Messages[0].Topic)
	assert.Equal(t, "notification_created", got.Messages[0].Event)
	assert.Equal(t, "Funding Round Approved", got.Messages[0].Payload["title"])
}

func TestRealtimeClient_RejectedBroadcast(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newRealtimeClient(server.Client(), server.URL, "bad")
	err := client.PublishEvent(context.Background(), "user:x", "notification_created", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestRealtimeClient_PublishUserEventsBatches(t *testing.T) {
	requests := 0
	var got broadcastRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := newRealtimeClient(server.Client(), server.URL, "pk")
	var events []models.UserEvent
	for i := 0; i < 25; i++ {
		events = append(events, models.UserEvent{
			UserID:  uuid.New(),
			Event:   "notification_created",
			Payload: map[string]interface{}{"title": "Funding Round Created"},
		})
	}

	require.NoError(t, client.PublishUserEvents(context.Background(), events))
	assert.Equal(t, 1, requests)
	require.Len(t, got.Messages, 25)
	assert.Equal(t, "user:"+events[24].UserID.String(), got.Messages[24].Topic)

	require.NoError(t, client.PublishUserEvents(context.Background(), nil))
	assert.Equal(t, 1, requests)
}
