package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/debug"
	"github.com/baalimago/kernagent/internal/models"
	pub_models "github.com/baalimago/kernagent/pkg/text/models"
)

func (c *Claude) StreamCompletions(ctx context.Context, chat pub_models.Chat, settings *pub_models.Settings) (chan models.CompletionEvent, error) {
	params := c.params(chat, settings)
	if len(params.Messages) == 0 {
		return nil, fmt.Errorf("no user or assistant messages to send")
	}
	if c.debug {
		ancli.PrintOK(fmt.Sprintf("claude params: %v\n", debug.IndentedJsonFmt(params)))
	}
	stream := c.client.Messages.NewStreaming(ctx, params)
	if err := stream.Err(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("failed to start stream: %w", err)
	}

	outChan := make(chan models.CompletionEvent)
	go func() {
		defer func() {
			stream.Close()
			close(outChan)
		}()
		msg := anthropic.Message{}
		for stream.Next() {
			event := stream.Current()
			if err := msg.Accumulate(event); err != nil {
				models.SendEvent(ctx, outChan, fmt.Errorf("failed to accumulate message: %w", err))
				return
			}
			switch ev := event.AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				if delta, ok := ev.Delta.AsAny().(anthropic.TextDelta); ok && delta.Text != "" {
					if !models.SendEvent(ctx, outChan, delta.Text) {
						return
					}
				}
			case anthropic.MessageStopEvent:
				models.SendEvent(ctx, outChan, replyOf(msg))
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			models.SendEvent(ctx, outChan, fmt.Errorf("failed to read stream: %w", err))
		}
	}()
	return outChan, nil
}

func replyOf(msg anthropic.Message) pub_models.Message {
	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return pub_models.Message{Role: pub_models.RoleAssistant, Content: sb.String()}
}

func (c *Claude) params(chat pub_models.Chat, settings *pub_models.Settings) anthropic.MessageNewParams {
	system, turns := claudifyMessages(chat.Messages)
	params := anthropic.MessageNewParams{
		Model:         anthropic.Model(c.Model),
		MaxTokens:     int64(c.MaxTokens),
		Messages:      toMessageParams(turns),
		Temperature:   anthropic.Float(c.Temperature),
		StopSequences: c.StopSequences,
	}
	// Negative top_p means unset
	if c.TopP >= 0 {
		params.TopP = anthropic.Float(c.TopP)
	}
	for _, s := range system {
		params.System = append(params.System, anthropic.TextBlockParam{Text: s})
	}
	if settings == nil {
		return params
	}
	if settings.ModelID != "" {
		params.Model = anthropic.Model(settings.ModelID)
	}
	if settings.MaxTokens != nil {
		params.MaxTokens = int64(*settings.MaxTokens)
	}
	if settings.Temperature != nil {
		params.Temperature = anthropic.Float(*settings.Temperature)
	}
	if settings.TopP != nil {
		params.TopP = anthropic.Float(*settings.TopP)
	}
	if len(settings.Stop) > 0 {
		params.StopSequences = settings.Stop
	}
	return params
}
