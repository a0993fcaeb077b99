package generic

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/debug"
	"github.com/baalimago/kernagent/internal/models"
	pub_models "github.com/baalimago/kernagent/pkg/text/models"
)

var (
	dataPrefix = []byte("data: ")
	doneToken  = []byte("[DONE]")
)

// StreamCompletions taking the messages as prompt conversation. Tokens are
// streamed as they arrive, each choice is sent as a message once finished.
func (s *StreamCompleter) StreamCompletions(ctx context.Context, chat pub_models.Chat, settings *pub_models.Settings) (chan models.CompletionEvent, error) {
	if s.Clean != nil {
		cpy := make([]pub_models.Message, len(chat.Messages))
		copy(cpy, chat.Messages)
		chat.Messages = s.Clean(cpy)
	}
	s.limiter.WaitIfNeeded(ctx)
	req, err := s.createRequest(ctx, chat, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	if err := s.limiter.UpdateFromHeaders(res.Header); err != nil && s.debug {
		ancli.PrintWarn(fmt.Sprintf("failed to update rate limits: %v\n", err))
	}
	if res.StatusCode == http.StatusTooManyRequests {
		res.Body.Close()
		remaining, reset := s.limiter.Limits()
		return nil, models.NewRateLimitError(reset, 0, remaining)
	}
	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		res.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %v, body: %v", res.Status, string(body))
	}
	return s.handleStreamResponse(ctx, res), nil
}

func (s *StreamCompleter) createRequest(ctx context.Context, chat pub_models.Chat, settings *pub_models.Settings) (*http.Request, error) {
	reqData := req{
		Model:            s.Model,
		FrequencyPenalty: s.FrequencyPenalty,
		MaxTokens:        s.MaxTokens,
		PresencePenalty:  s.PresencePenalty,
		Temperature:      s.Temperature,
		TopP:             s.TopP,
		ResponseFormat:   responseFormat{Type: "text"},
		Messages:         chat.Messages,
		Stream:           true,
	}
	applySettings(&reqData, settings)
	if s.debug {
		ancli.PrintOK(fmt.Sprintf("generic streamcompleter request: %v\n", debug.IndentedJsonFmt(reqData)))
	}
	jsonData, err := json.Marshal(reqData)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %v", s.apiKey))
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Connection", "keep-alive")
	return req, nil
}

// applySettings overrides the request defaults with whatever is set
func applySettings(r *req, settings *pub_models.Settings) {
	if settings == nil {
		return
	}
	if settings.ModelID != "" {
		r.Model = settings.ModelID
	}
	if settings.FrequencyPenalty != nil {
		r.FrequencyPenalty = settings.FrequencyPenalty
	}
	if settings.MaxTokens != nil {
		r.MaxTokens = settings.MaxTokens
	}
	if settings.PresencePenalty != nil {
		r.PresencePenalty = settings.PresencePenalty
	}
	if settings.Temperature != nil {
		r.Temperature = settings.Temperature
	}
	if settings.TopP != nil {
		r.TopP = settings.TopP
	}
	if len(settings.Stop) > 0 {
		r.Stop = settings.Stop
	}
}

// replyBuilder gathers the streamed content per choice
type replyBuilder struct {
	content map[int]*bytes.Buffer
	sent    map[int]bool
}

func newReplyBuilder() *replyBuilder {
	return &replyBuilder{
		content: make(map[int]*bytes.Buffer),
		sent:    make(map[int]bool),
	}
}

func (b *replyBuilder) add(index int, token string) {
	buf, ok := b.content[index]
	if !ok {
		buf = &bytes.Buffer{}
		b.content[index] = buf
	}
	buf.WriteString(token)
}

// finish returns the reply of choice index, unless it has already been sent
func (b *replyBuilder) finish(index int) (pub_models.Message, bool) {
	if b.sent[index] {
		return pub_models.Message{}, false
	}
	b.sent[index] = true
	msg := pub_models.Message{Role: pub_models.RoleAssistant}
	if buf, ok := b.content[index]; ok {
		msg.Content = buf.String()
	}
	return msg, true
}

// pending returns the indices of all choices not yet sent, sorted
func (b *replyBuilder) pending() []int {
	ret := make([]int, 0)
	for i := range b.content {
		if !b.sent[i] {
			ret = append(ret, i)
		}
	}
	sort.Ints(ret)
	return ret
}

func (s *StreamCompleter) handleStreamResponse(ctx context.Context, res *http.Response) chan models.CompletionEvent {
	outChan := make(chan models.CompletionEvent)
	go func() {
		br := bufio.NewReader(res.Body)
		builder := newReplyBuilder()
		defer func() {
			res.Body.Close()
			close(outChan)
		}()
		flush := func() {
			for _, i := range builder.pending() {
				msg, _ := builder.finish(i)
				if !models.SendEvent(ctx, outChan, msg) {
					return
				}
			}
		}
		for {
			if ctx.Err() != nil {
				return
			}
			line, err := br.ReadBytes('\n')
			if len(bytes.TrimSpace(line)) > 0 {
				done, ok := s.handleStreamChunk(ctx, outChan, builder, line)
				if !ok {
					return
				}
				if done {
					flush()
					return
				}
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					flush()
					return
				}
				models.SendEvent(ctx, outChan, fmt.Errorf("failed to read line: %w", err))
				return
			}
		}
	}()
	return outChan
}

// handleStreamChunk sends the events of one line of the stream. done is true
// once the stream is over, ok is false if the consumer is gone.
func (s *StreamCompleter) handleStreamChunk(ctx context.Context, outChan chan<- models.CompletionEvent, builder *replyBuilder, line []byte) (done bool, ok bool) {
	token := bytes.TrimSpace(bytes.TrimPrefix(bytes.TrimSpace(line), dataPrefix))
	if bytes.Equal(token, doneToken) {
		return true, true
	}
	if s.debug {
		ancli.PrintOK(fmt.Sprintf("token: %+v\n", string(token)))
	}
	var chunk chatCompletionChunk
	if err := json.Unmarshal(token, &chunk); err != nil {
		// Expect some failing unmarshalls, such as keep-alive comments
		if s.debug {
			ancli.PrintWarn(fmt.Sprintf("failed to unmarshal token: %v, err: %v\n", string(token), err))
		}
		return false, models.SendEvent(ctx, outChan, models.NoopEvent{})
	}
	for _, choice := range chunk.Choices {
		if choice.Delta.Content != "" {
			builder.add(choice.Index, choice.Delta.Content)
			if !models.SendEvent(ctx, outChan, choice.Delta.Content) {
				return false, false
			}
		}
		if choice.FinishReason != "" {
			if msg, fresh := builder.finish(choice.Index); fresh {
				if !models.SendEvent(ctx, outChan, msg) {
					return false, false
				}
			}
		}
	}
	return false, true
}
