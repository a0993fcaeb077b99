package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
	"github.com/baalimago/kernagent/internal/models"
	pub_models "github.com/baalimago/kernagent/pkg/text/models"
)

var helloStream = []string{
	`event: message_start
data: {"type": "message_start", "message": {"id": "msg_1", "type": "message", "role": "assistant", "content": [], "model": "claude-test", "stop_reason": null, "stop_sequence": null, "usage": {"input_tokens": 25, "output_tokens": 1}}}`,
	`event: content_block_start
data: {"type": "content_block_start", "index": 0, "content_block": {"type": "text", "text": ""}}`,
	`event: ping
data: {"type": "ping"}`,
	`event: content_block_delta
data: {"type": "content_block_delta", "index": 0, "delta": {"type": "text_delta", "text": "Hello"}}`,
	`event: content_block_delta
data: {"type": "content_block_delta", "index": 0, "delta": {"type": "text_delta", "text": "!"}}`,
	`event: content_block_stop
data: {"type": "content_block_stop", "index": 0}`,
	`event: message_delta
data: {"type": "message_delta", "delta": {"stop_reason": "end_turn", "stop_sequence":null}, "usage":{"output_tokens": 15}}`,
	`event: message_stop
data: {"type": "message_stop"}`,
}

func setupWithServer(t *testing.T, h http.HandlerFunc) *Claude {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	t.Setenv(APIKeyEnv, "somekey")
	c := ClaudeDefault
	c.ID = "claude"
	c.BaseURL = ts.URL + "/"
	c.SetHTTPClient(ts.Client())
	if err := c.Setup(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	return &c
}

func writeEvents(w http.ResponseWriter, events []string) {
	w.Header().Set("Content-Type", "text/event-stream")
	for _, e := range events {
		fmt.Fprintf(w, "%s\n\n", e)
		if fl, ok := w.(http.Flusher); ok {
			fl.Flush()
		}
	}
}

func Test_StreamCompletions(t *testing.T) {
	var body map[string]any
	var path string
	c := setupWithServer(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &body)
		writeEvents(w, helloStream)
	})

	ch, err := c.StreamCompletions(context.Background(), pub_models.Chat{Messages: []pub_models.Message{
		{Role: "system", Content: "be brief"},
		pub_models.NewUserMessage("hi"),
	}}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var tokens strings.Builder
	var replies []pub_models.Message
	timeout := time.After(2 * time.Second)
loop:
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				break loop
			}
			switch e := ev.(type) {
			case string:
				tokens.WriteString(e)
			case pub_models.Message:
				replies = append(replies, e)
			case error:
				t.Fatalf("unexpected error event: %v", e)
			}
		case <-timeout:
			t.Fatal("stream did not close in time")
		}
	}
	testboil.FailTestIfDiff(t, tokens.String(), "Hello!")
	testboil.FailTestIfDiff(t, len(replies), 1)
	testboil.FailTestIfDiff(t, replies[0], pub_models.Message{Role: pub_models.RoleAssistant, Content: "Hello!"})
	testboil.FailTestIfDiff(t, path, "/v1/messages")
	testboil.FailTestIfDiff(t, body["stream"], true)
	system, _ := body["system"].([]any)
	testboil.FailTestIfDiff(t, len(system), 1)
}

func Test_StreamCompletions_HTTPError(t *testing.T) {
	c := setupWithServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"nope"}}`))
	})
	_, err := c.StreamCompletions(context.Background(), pub_models.Chat{Messages: []pub_models.Message{pub_models.NewUserMessage("hi")}}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	testboil.AssertStringContains(t, err.Error(), "failed to start stream")
}

func Test_StreamCompletions_OnlySystem(t *testing.T) {
	c := setupWithServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := c.StreamCompletions(context.Background(), pub_models.Chat{Messages: []pub_models.Message{{Role: "system", Content: "sys"}}}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
}

func Test_StreamCompletions_ReturnsOnCancel(t *testing.T) {
	c := setupWithServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeEvents(w, helloStream[:2])
		for {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(10 * time.Millisecond):
				writeEvents(w, helloStream[3:4])
			}
		}
	})
	models.ChatCompleter_Test(t, c)
}
