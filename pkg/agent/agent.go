package agent

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/debug"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	priv_models "github.com/baalimago/kernagent/internal/models"
	"github.com/baalimago/kernagent/pkg/text/models"
	"github.com/google/uuid"
)

// Registry resolves a service able to fulfill capability, together with the
// execution settings to use for it. A nil service with a nil error means
// that no matching service exists.
type Registry interface {
	SelectService(ctx context.Context, serviceID string, args models.Arguments, capability models.Capability) (models.Service, *models.Settings, error)
}

type ChatCompletionAgent struct {
	name      string
	serviceID string
	tokenOut  io.Writer
	debug     bool
}

type Option func(*ChatCompletionAgent)

// New agent called name. Unless WithServiceID is given, the agent asks for
// models.DefaultServiceID.
func New(name string, options ...Option) *ChatCompletionAgent {
	a := &ChatCompletionAgent{
		name:      name,
		serviceID: models.DefaultServiceID,
	}
	if misc.Truthy(os.Getenv("DEBUG")) || misc.Truthy(os.Getenv("DEBUG_AGENT")) {
		a.debug = true
	}
	for _, o := range options {
		o(a)
	}
	return a
}

func WithServiceID(serviceID string) Option {
	return func(a *ChatCompletionAgent) {
		if serviceID != "" {
			a.serviceID = serviceID
		}
	}
}

// WithTokenWriter makes the agent write every streamed token to w while it
// waits for the reply.
func WithTokenWriter(w io.Writer) Option {
	return func(a *ChatCompletionAgent) {
		a.tokenOut = w
	}
}

func (a *ChatCompletionAgent) Name() string {
	return a.name
}

func (a *ChatCompletionAgent) ServiceID() string {
	return a.serviceID
}

// GenerateReply to messages using a chat completion service resolved from
// registry. The first reply of the stream is returned and the rest of the
// stream is cancelled. models.ErrNoReply is returned if the stream ends
// without producing a reply.
func (a *ChatCompletionAgent) GenerateReply(ctx context.Context, messages []models.Message, registry Registry, args models.Arguments) (models.Message, error) {
	chat := a.BuildChatHistory(messages)
	completer, settings, err := a.chatCompleterAndSettings(ctx, registry, args)
	if err != nil {
		return models.Message{}, err
	}
	if a.debug {
		ancli.PrintOK(fmt.Sprintf("agent '%v' using service: '%v', settings: %v\n", a.name, completer.ServiceID(), debug.IndentedJsonFmt(settings)))
	}

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	events, err := completer.StreamCompletions(streamCtx, chat, settings)
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to stream completions: %w", err)
	}
	return a.firstReply(streamCtx, events)
}

func (a *ChatCompletionAgent) firstReply(ctx context.Context, events chan priv_models.CompletionEvent) (models.Message, error) {
	if events == nil {
		return models.Message{}, models.ErrNoReply
	}
	for {
		select {
		case <-ctx.Done():
			return models.Message{}, fmt.Errorf("stream cancelled before reply: %w", ctx.Err())
		case ev, ok := <-events:
			if !ok {
				return models.Message{}, models.ErrNoReply
			}
			switch e := ev.(type) {
			case models.Message:
				return e, nil
			case *models.Message:
				if e != nil {
					return *e, nil
				}
			case string:
				if a.tokenOut != nil {
					fmt.Fprint(a.tokenOut, e)
				}
			case error:
				return models.Message{}, fmt.Errorf("completion stream failed: %w", e)
			case priv_models.StopEvent:
				return models.Message{}, models.ErrNoReply
			case priv_models.NoopEvent:
			default:
				if a.debug {
					ancli.PrintWarn(fmt.Sprintf("agent '%v' ignoring unexpected event: %T\n", a.name, e))
				}
			}
		}
	}
}

// BuildChatHistory returns a new chat containing messages in the same order.
func (a *ChatCompletionAgent) BuildChatHistory(messages []models.Message) models.Chat {
	chat := models.Chat{
		ID:       uuid.NewString(),
		Messages: make([]models.Message, 0, len(messages)),
	}
	for _, msg := range messages {
		chat.AddMessage(msg)
	}
	return chat
}

// ProcessMessage converts input into a message. Strings and records with a
// 'content' field become user messages, messages are passed through as is.
// Anything else fails with models.ErrUnsupportedMessageType.
func (a *ChatCompletionAgent) ProcessMessage(input any) (models.Message, error) {
	switch v := input.(type) {
	case string:
		return models.NewUserMessage(v), nil
	case map[string]any:
		return models.NewUserMessage(contentOf(v["content"])), nil
	case map[string]string:
		return models.NewUserMessage(v["content"]), nil
	case models.Message:
		return v, nil
	case *models.Message:
		if v != nil {
			return *v, nil
		}
	}
	return models.Message{}, fmt.Errorf("%w: %T", models.ErrUnsupportedMessageType, input)
}

// ProcessMessages calls ProcessMessage on every input, stopping at the first
// failure.
func (a *ChatCompletionAgent) ProcessMessages(inputs []any) ([]models.Message, error) {
	ret := make([]models.Message, 0, len(inputs))
	for i, in := range inputs {
		msg, err := a.ProcessMessage(in)
		if err != nil {
			return nil, fmt.Errorf("failed to process message at index %v: %w", i, err)
		}
		ret = append(ret, msg)
	}
	return ret, nil
}

func contentOf(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	default:
		return fmt.Sprint(c)
	}
}

func (a *ChatCompletionAgent) chatCompleterAndSettings(ctx context.Context, registry Registry, args models.Arguments) (priv_models.ChatCompleter, *models.Settings, error) {
	if registry == nil {
		return nil, nil, &models.ServiceNotFoundError{ServiceID: a.serviceID}
	}
	svc, settings, err := registry.SelectService(ctx, a.serviceID, args, models.CapabilityChatCompletion)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to select service: %w", err)
	}
	if svc == nil {
		return nil, nil, &models.ServiceNotFoundError{ServiceID: a.serviceID}
	}

	// Both of these are registry bugs, not something a caller can recover from.
	completer, ok := svc.(priv_models.ChatCompleter)
	if !ok {
		panic(fmt.Sprintf("registry returned service '%v' of type %T which does not support chat completion", svc.ServiceID(), svc))
	}
	if settings == nil {
		panic(fmt.Sprintf("registry returned service '%v' without execution settings", svc.ServiceID()))
	}
	return completer, settings, nil
}
