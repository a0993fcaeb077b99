package generic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
	"github.com/baalimago/kernagent/internal/models"
	pub_models "github.com/baalimago/kernagent/pkg/text/models"
)

// roundTripFunc allows injecting errors in http.Client
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func userChat(content string) pub_models.Chat {
	return pub_models.Chat{Messages: []pub_models.Message{pub_models.NewUserMessage(content)}}
}

func sseServer(t *testing.T, lines ...string) (*httptest.Server, *req) {
	t.Helper()
	var got req
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "text/event-stream")
		fl, _ := w.(http.Flusher)
		for _, l := range lines {
			fmt.Fprintf(w, "%s\n\n", l)
			if fl != nil {
				fl.Flush()
			}
		}
	}))
	t.Cleanup(ts.Close)
	return ts, &got
}

func collect(t *testing.T, ch chan models.CompletionEvent) (tokens []string, replies []pub_models.Message, errs []error) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			switch e := ev.(type) {
			case string:
				tokens = append(tokens, e)
			case pub_models.Message:
				replies = append(replies, e)
			case error:
				errs = append(errs, e)
			}
		case <-timeout:
			t.Fatal("stream did not close in time")
		}
	}
}

func TestStreamCompletions_DoError(t *testing.T) {
	s := &StreamCompleter{client: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("boom")
	})}, apiKey: "k", URL: "http://example.invalid"}

	ch, err := s.StreamCompletions(context.Background(), userChat("x"), nil)
	if err == nil || !strings.Contains(err.Error(), "failed to execute request") {
		t.Fatalf("expected execute request error, got: %v, ch=%v", err, ch)
	}
}

func TestStreamCompletions_Non200_And_CleanDoesNotMutateOriginal(t *testing.T) {
	invoked := false
	orig := userChat("orig")
	s := &StreamCompleter{apiKey: "k"}
	s.Clean = func(in []pub_models.Message) []pub_models.Message {
		invoked = true
		if len(in) > 0 {
			in[0].Content = "mutated"
		}
		return append(in, pub_models.Message{Role: pub_models.RoleSystem, Content: "added"})
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
		_, _ = w.Write([]byte("bad"))
	}))
	defer ts.Close()
	s.client = ts.Client()
	s.URL = ts.URL

	ch, err := s.StreamCompletions(context.Background(), orig, nil)
	if err == nil || !strings.Contains(err.Error(), "unexpected status code") {
		t.Fatalf("expected non-200 error, got: %v, ch=%v", err, ch)
	}
	if !invoked {
		t.Fatalf("expected Clean to be invoked")
	}
	if got := orig.Messages[0].Content; got != "orig" {
		t.Fatalf("original chat mutated, got: %q", got)
	}
}

func TestStreamCompletions_RateLimited(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("remaining", "0")
		w.Header().Set("reset", "30s")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()
	s := &StreamCompleter{client: ts.Client(), URL: ts.URL}
	s.SetRateLimiter(NewRateLimiter("remaining", "reset"))

	_, err := s.StreamCompletions(context.Background(), userChat("x"), nil)
	var rl *models.ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected rate limit error, got: %v", err)
	}
	if rl.ResetAt.IsZero() {
		t.Fatal("expected reset time to be parsed")
	}
}

func TestStreamCompletions_HappyPath(t *testing.T) {
	ts, got := sseServer(t,
		`data: {"choices":[{"index":0,"delta":{"role":"assistant","content":"Hel"}}]}`,
		`: keep-alive`,
		`data: {"choices":[{"index":0,"delta":{"content":"lo"}}]}`,
		`data: {"choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`,
		`data: [DONE]`,
	)
	temp := 0.7
	s := &StreamCompleter{ID: "svc", Model: "base-model", client: ts.Client(), URL: ts.URL}

	ch, err := s.StreamCompletions(context.Background(), userChat("hi"), &pub_models.Settings{
		ModelID:     "override-model",
		Temperature: &temp,
		Stop:        []string{"END"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tokens, replies, errs := collect(t, ch)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	testboil.FailTestIfDiff(t, strings.Join(tokens, ""), "Hello")
	testboil.FailTestIfDiff(t, len(replies), 1)
	testboil.FailTestIfDiff(t, replies[0], pub_models.Message{Role: pub_models.RoleAssistant, Content: "Hello"})

	testboil.FailTestIfDiff(t, got.Model, "override-model")
	testboil.FailTestIfDiff(t, *got.Temperature, temp)
	testboil.FailTestIfDiff(t, got.Stop[0], "END")
	testboil.FailTestIfDiff(t, got.Stream, true)
	testboil.FailTestIfDiff(t, got.Messages[0].Content, "hi")
}

func TestStreamCompletions_MultipleChoices(t *testing.T) {
	ts, _ := sseServer(t,
		`data: {"choices":[{"index":0,"delta":{"content":"a"}},{"index":1,"delta":{"content":"b"}}]}`,
		`data: {"choices":[{"index":1,"delta":{},"finish_reason":"stop"}]}`,
		`data: {"choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`,
		`data: [DONE]`,
	)
	s := &StreamCompleter{client: ts.Client(), URL: ts.URL}
	ch, err := s.StreamCompletions(context.Background(), userChat("hi"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, replies, _ := collect(t, ch)
	testboil.FailTestIfDiff(t, len(replies), 2)
	testboil.FailTestIfDiff(t, replies[0].Content, "b")
	testboil.FailTestIfDiff(t, replies[1].Content, "a")
}

func TestStreamCompletions_FlushOnEOF(t *testing.T) {
	ts, _ := sseServer(t,
		`data: {"choices":[{"index":0,"delta":{"content":"partial"}}]}`,
	)
	s := &StreamCompleter{client: ts.Client(), URL: ts.URL}
	ch, err := s.StreamCompletions(context.Background(), userChat("hi"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, replies, _ := collect(t, ch)
	testboil.FailTestIfDiff(t, len(replies), 1)
	testboil.FailTestIfDiff(t, replies[0].Content, "partial")
}

func TestStreamCompletions_ReturnsOnCancel(t *testing.T) {
	// Server which keeps the stream open until the client goes away
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fl, _ := w.(http.Flusher)
		for {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(10 * time.Millisecond):
				fmt.Fprintf(w, "data: %s\n\n", `{"choices":[{"index":0,"delta":{"content":"x"}}]}`)
				if fl != nil {
					fl.Flush()
				}
			}
		}
	}))
	defer ts.Close()
	s := &StreamCompleter{ID: "svc", client: ts.Client(), URL: ts.URL}
	models.ChatCompleter_Test(t, setUpCompleter{s})
}

// setUpCompleter is a StreamCompleter which is already set up, the way the
// vendors embedding it are
type setUpCompleter struct {
	*StreamCompleter
}

func (setUpCompleter) Setup() error { return nil }

func TestStreamCompletions_ConcurrentStreamsShareLimiter(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("remaining", "1000")
		w.Header().Set("reset", "1s")
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "data: %s\n\n", `{"choices":[{"index":0,"delta":{"content":"ok"},"finish_reason":"stop"}]}`)
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer ts.Close()
	s := &StreamCompleter{ID: "svc", client: ts.Client(), URL: ts.URL}
	s.SetRateLimiter(NewRateLimiter("remaining", "reset"))

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch, err := s.StreamCompletions(context.Background(), userChat("hi"), nil)
			if err != nil {
				errs <- err
				return
			}
			var replies int
			for ev := range ch {
				switch e := ev.(type) {
				case pub_models.Message:
					replies++
				case error:
					errs <- e
					return
				}
			}
			if replies != 1 {
				errs <- fmt.Errorf("expected 1 reply, got %v", replies)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	remaining, _ := s.limiter.Limits()
	testboil.FailTestIfDiff(t, remaining, 1000)
}

func TestSetup(t *testing.T) {
	t.Run("requires api key when env is given", func(t *testing.T) {
		t.Setenv("SOME_KEY", "")
		s := &StreamCompleter{}
		if err := s.Setup("SOME_KEY", "http://x", "DEBUG_GENERIC"); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("no api key needed without env", func(t *testing.T) {
		s := &StreamCompleter{}
		if err := s.Setup("", "http://x", "DEBUG_GENERIC"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testboil.FailTestIfDiff(t, s.URL, "http://x")
	})

	t.Run("configured url wins", func(t *testing.T) {
		t.Setenv("SOME_KEY", "k")
		s := &StreamCompleter{URL: "http://configured"}
		if err := s.Setup("SOME_KEY", "http://x", "DEBUG_GENERIC"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testboil.FailTestIfDiff(t, s.URL, "http://configured")
		testboil.FailTestIfDiff(t, s.apiKey, "k")
	})

	t.Run("fails without url", func(t *testing.T) {
		s := &StreamCompleter{}
		if err := s.Setup("", "", "DEBUG_GENERIC"); err == nil {
			t.Fatal("expected error")
		}
	})
}
