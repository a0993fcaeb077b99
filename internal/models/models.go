package models

import (
	"context"

	pub_models "github.com/baalimago/kernagent/pkg/text/models"
)

type Service = pub_models.Service

// ChatCompleter is a Service able to stream chat completions.
//
// Events sent on the returned channel are one of: string (a token
// fragment), pub_models.Message (a complete reply), error, NoopEvent or
// StopEvent. The channel is closed once the stream is done. Implementations
// must stop producing, release the underlying stream and close the channel
// once ctx is cancelled.
type ChatCompleter interface {
	Service
	Setup() error
	StreamCompletions(ctx context.Context, chat pub_models.Chat, settings *pub_models.Settings) (chan CompletionEvent, error)
}

type CompletionEvent = any

// NoopEvent carries nothing and may be ignored.
type NoopEvent struct{}

// StopEvent signals that the service won't produce any more replies.
type StopEvent struct{}

// HasCapability reports whether svc announces c.
func HasCapability(svc Service, c pub_models.Capability) bool {
	if svc == nil {
		return false
	}
	for _, have := range svc.Capabilities() {
		if have == c {
			return true
		}
	}
	return false
}

// SendEvent blocks until ev is sent on ch or ctx is done. Returns false if
// ctx was done first, at which point the producer should stop.
func SendEvent(ctx context.Context, ch chan<- CompletionEvent, ev CompletionEvent) bool {
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
