package vendors

import (
	"context"

	"github.com/baalimago/kernagent/internal/models"
	pub_models "github.com/baalimago/kernagent/pkg/text/models"
)

// Mock is a ChatCompleter which echoes the last user message back, first
// as a token and then as a reply.
type Mock struct {
	ID string
}

func (m *Mock) Setup() error {
	return nil
}

func (m *Mock) ServiceID() string {
	return m.ID
}

func (m *Mock) Capabilities() []pub_models.Capability {
	return []pub_models.Capability{pub_models.CapabilityChatCompletion}
}

func (m *Mock) StreamCompletions(ctx context.Context, chat pub_models.Chat, _ *pub_models.Settings) (chan models.CompletionEvent, error) {
	ch := make(chan models.CompletionEvent)
	go func() {
		defer close(ch)
		uMsg, _, _ := chat.LastOfRole(pub_models.RoleUser)
		for _, ev := range []models.CompletionEvent{
			uMsg.Content,
			pub_models.Message{Role: pub_models.RoleAssistant, Content: uMsg.Content},
			models.StopEvent{},
		} {
			if !models.SendEvent(ctx, ch, ev) {
				return
			}
		}
	}()
	return ch, nil
}
