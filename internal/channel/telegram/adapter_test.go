package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/katapios/lazybones/internal/channel"
)

const testChatID int64 = 4242

// newTestServer serves canned getUpdates results and records
// sendMessage bodies.
func newTestServer(t *testing.T, updates []Update, sent *[]sendMessageRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			var req getUpdatesRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decoding getUpdates request: %v", err)
			}
			var result []Update
			for _, u := range updates {
				if u.UpdateID >= req.Offset {
					result = append(result, u)
				}
			}
			writeEnvelope(w, result)

		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var req sendMessageRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decoding sendMessage request: %v", err)
			}
			if sent != nil {
				*sent = append(*sent, req)
			}
			writeEnvelope(w, struct{}{})

		case strings.HasSuffix(r.URL.Path, "/getMe"):
			writeEnvelope(w, User{ID: 1, FirstName: "Lazy", Username: "lazybones_bot"})

		case strings.HasSuffix(r.URL.Path, "/getFile"):
			writeEnvelope(w, File{FileID: "f1", FilePath: "voice/file_1.oga"})

		default:
			t.Errorf("unexpected API call: %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
}

func writeEnvelope(w http.ResponseWriter, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	payload := map[string]interface{}{"ok": true, "result": result}
	json.NewEncoder(w).Encode(payload)
}

func update(id int64, chatID int64, text string) Update {
	return Update{
		UpdateID: id,
		Message: &Message{
			MessageID: id * 10,
			From:      &User{ID: 7, FirstName: "Kat", Username: "kat"},
			Chat:      Chat{ID: chatID},
			Date:      1767225600,
			Text:      text,
		},
	}
}

func TestFetchMessages_MapsUpdates(t *testing.T) {
	srv := newTestServer(t, []Update{
		update(101, testChatID, "first"),
		update(102, testChatID, "second"),
	}, nil)
	defer srv.Close()

	adapter := NewAdapter(NewClientWithBaseURL("token", srv.URL), testChatID)

	messages, err := adapter.FetchMessages(context.Background(), 0)
	if err != nil {
		t.Fatalf("fetching: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}

	m := messages[0]
	if m.Cursor != 101 || m.ID != "1010" {
		t.Errorf("cursor/id mapping wrong: %+v", m)
	}
	if m.AuthorHandle != "@kat" || m.AuthorName != "Kat" || m.AuthorID != 7 {
		t.Errorf("author mapping wrong: %+v", m)
	}
	if m.Text != "first" {
		t.Errorf("text mapping wrong: %q", m.Text)
	}
	if m.SentAt.IsZero() {
		t.Error("expected SentAt from the message date")
	}
}

func TestFetchMessages_CursorIsExclusive(t *testing.T) {
	srv := newTestServer(t, []Update{
		update(101, testChatID, "old"),
		update(102, testChatID, "new"),
	}, nil)
	defer srv.Close()

	adapter := NewAdapter(NewClientWithBaseURL("token", srv.URL), testChatID)

	messages, err := adapter.FetchMessages(context.Background(), 101)
	if err != nil {
		t.Fatalf("fetching: %v", err)
	}
	if len(messages) != 1 || messages[0].Text != "new" {
		t.Fatalf("expected only the message past the cursor, got %+v", messages)
	}
}

func TestFetchMessages_DropsOtherChats(t *testing.T) {
	srv := newTestServer(t, []Update{
		update(101, testChatID, "ours"),
		update(102, 999, "someone else's chat"),
	}, nil)
	defer srv.Close()

	adapter := NewAdapter(NewClientWithBaseURL("token", srv.URL), testChatID)

	messages, err := adapter.FetchMessages(context.Background(), 0)
	if err != nil {
		t.Fatalf("fetching: %v", err)
	}
	if len(messages) != 1 || messages[0].Text != "ours" {
		t.Fatalf("expected foreign-chat updates dropped, got %+v", messages)
	}
}

func TestFetchMessages_CaptionFallbackAndVoice(t *testing.T) {
	u := Update{
		UpdateID: 101,
		Message: &Message{
			MessageID: 1,
			Chat:      Chat{ID: testChatID},
			Date:      1767225600,
			Caption:   "caption text",
			Voice:     &Voice{FileID: "f1", Duration: 12},
		},
	}
	srv := newTestServer(t, []Update{u}, nil)
	defer srv.Close()

	adapter := NewAdapter(NewClientWithBaseURL("token", srv.URL), testChatID)

	messages, err := adapter.FetchMessages(context.Background(), 0)
	if err != nil {
		t.Fatalf("fetching: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if messages[0].Text != "caption text" {
		t.Errorf("expected caption fallback, got %q", messages[0].Text)
	}
	if len(messages[0].VoiceURLs) != 1 || !strings.Contains(messages[0].VoiceURLs[0], "voice/file_1.oga") {
		t.Errorf("expected resolved voice URL, got %v", messages[0].VoiceURLs)
	}
}

func TestPublish_SendsToConfiguredChat(t *testing.T) {
	var sent []sendMessageRequest
	srv := newTestServer(t, nil, &sent)
	defer srv.Close()

	adapter := NewAdapter(NewClientWithBaseURL("token", srv.URL), testChatID)

	if err := adapter.Publish(context.Background(), "# 2026-03-01\n✓ good:\n• a\n"); err != nil {
		t.Fatalf("publishing: %v", err)
	}
	if len(sent) != 1 {
		t.Fatalf("expected 1 sendMessage call, got %d", len(sent))
	}
	if sent[0].ChatID != testChatID {
		t.Errorf("expected chat %d, got %d", testChatID, sent[0].ChatID)
	}
	if !strings.Contains(sent[0].Text, "✓ good:") {
		t.Errorf("unexpected text: %q", sent[0].Text)
	}
}

func TestValidateConnection(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	defer srv.Close()

	adapter := NewAdapter(NewClientWithBaseURL("token", srv.URL), testChatID)

	identity, err := adapter.ValidateConnection(context.Background())
	if err != nil {
		t.Fatalf("validating: %v", err)
	}
	if identity != "@lazybones_bot" {
		t.Errorf("expected bot handle, got %q", identity)
	}
}

func TestClient_UnauthorizedBecomesAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"ok":false,"error_code":401,"description":"Unauthorized"}`)
	}))
	defer srv.Close()

	client := NewClientWithBaseURL("bad-token", srv.URL)

	_, err := client.GetMe(context.Background())
	if !channel.IsAuthError(err) {
		t.Fatalf("expected AuthError, got %v", err)
	}
}

func TestClient_ServerErrorBecomesUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClientWithBaseURL("token", srv.URL)

	_, err := client.GetMe(context.Background())
	if !channel.IsUnavailable(err) {
		t.Fatalf("expected UnavailableError, got %v", err)
	}
}

func TestClient_EnvelopeErrorSurfacesDescription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)
	}))
	defer srv.Close()

	client := NewClientWithBaseURL("token", srv.URL)

	err := client.SendMessage(context.Background(), testChatID, "hi")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("expected the API description in the error, got %v", err)
	}
}
