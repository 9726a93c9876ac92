package infrastructure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskbridge-mcp-server/internal/domain"
)

func TestSlackClient_ListChannels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/conversations.list" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("types"); got != "public_channel,private_channel" {
			t.Errorf("unexpected types %q", got)
		}
		if got := r.URL.Query().Get("team_id"); got != "T1" {
			t.Errorf("expected team_id T1, got %q", got)
		}
		_, _ = w.Write([]byte(`{"ok":true,"channels":[{"id":"C1","name":"general","num_members":3,"is_private":false}]}`))
	}))
	defer server.Close()

	channels, err := NewSlackClient(server.URL, "T1", server.Client()).ListChannels(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(channels) != 1 || channels[0].NumMembers != 3 {
		t.Errorf("unexpected channels: %+v", channels)
	}
}

func TestSlackClient_ChannelHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("channel") != "C1" || q.Get("limit") != "5" {
			t.Errorf("unexpected query %v", q)
		}
		_, _ = w.Write([]byte(`{"ok":true,"messages":[{"user":"U1","text":"hi","ts":"1700000000.000100"},{"bot_id":"B1","text":"beep","ts":"1700000001.000000"}]}`))
	}))
	defer server.Close()

	messages, err := NewSlackClient(server.URL, "", server.Client()).ChannelHistory(context.Background(), "C1", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messages) != 2 || messages[1].BotID != "B1" || messages[1].User != "" {
		t.Errorf("unexpected messages: %+v", messages)
	}
}

func TestSlackClient_PostMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat.postMessage" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("invalid body: %v", err)
		}
		if body["channel"] != "C1" || body["text"] != "hello" {
			t.Errorf("unexpected body: %v", body)
		}
		_, _ = w.Write([]byte(`{"ok":true,"channel":"C1","ts":"1700000000.000100"}`))
	}))
	defer server.Close()

	posted, err := NewSlackClient(server.URL, "", server.Client()).PostMessage(context.Background(), "C1", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if posted.Channel != "C1" || posted.TS != "1700000000.000100" {
		t.Errorf("unexpected result: %+v", posted)
	}
}

// TestSlackClient_EnvelopeError tests that ok:false is an upstream error.
func TestSlackClient_EnvelopeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
	}))
	defer server.Close()

	_, err := NewSlackClient(server.URL, "", server.Client()).PostMessage(context.Background(), "C9", "x")
	if err == nil {
		t.Fatal("expected error")
	}
	mapped := domain.AsError(err)
	if mapped.Code != domain.APIError {
		t.Errorf("expected upstream error, got %d", mapped.Code)
	}
	if mapped.Message != "Slack error: channel_not_found" {
		t.Errorf("unexpected message: %q", mapped.Message)
	}
}

func TestSlackClient_EmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := NewSlackClient(server.URL, "", server.Client()).ListChannels(context.Background())
	if got := domain.AsError(err); got == nil || got.Code != domain.NetworkError {
		t.Errorf("expected transport error, got %v", err)
	}
}
