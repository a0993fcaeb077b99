package openai

import (
	"context"
	"fmt"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/debug"
	"github.com/baalimago/kernagent/internal/models"
	pub_models "github.com/baalimago/kernagent/pkg/text/models"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// StreamCompletions taking the messages as prompt conversation. Each token is
// sent as it arrives, each choice is sent as a message once finished.
func (g *ChatGPT) StreamCompletions(ctx context.Context, chat pub_models.Chat, settings *pub_models.Settings) (chan models.CompletionEvent, error) {
	params, err := g.params(chat, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create params: %w", err)
	}
	var opts []option.RequestOption
	if stop := g.stop(settings); len(stop) > 0 {
		opts = append(opts, option.WithJSONSet("stop", stop))
	}
	if g.debug {
		ancli.PrintOK(fmt.Sprintf("openai params: %v\n", debug.IndentedJsonFmt(params)))
	}
	stream := g.client.Chat.Completions.NewStreaming(ctx, params, opts...)
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
		acc := openai.ChatCompletionAccumulator{}
		finished := make(map[int64]bool)
		for stream.Next() {
			chunk := stream.Current()
			acc.AddChunk(chunk)
			for _, choice := range chunk.Choices {
				if choice.Delta.Content != "" {
					if !models.SendEvent(ctx, outChan, choice.Delta.Content) {
						return
					}
				}
				if choice.FinishReason == "" || finished[choice.Index] {
					continue
				}
				finished[choice.Index] = true
				if !models.SendEvent(ctx, outChan, replyOf(&acc, choice.Index)) {
					return
				}
			}
		}
		if err := stream.Err(); err != nil {
			if ctx.Err() == nil {
				models.SendEvent(ctx, outChan, fmt.Errorf("failed to read stream: %w", err))
			}
			return
		}
		// Streams ending without finish reason still carry a reply
		for _, c := range acc.Choices {
			if finished[c.Index] {
				continue
			}
			finished[c.Index] = true
			if !models.SendEvent(ctx, outChan, replyOf(&acc, c.Index)) {
				return
			}
		}
	}()
	return outChan, nil
}

func replyOf(acc *openai.ChatCompletionAccumulator, index int64) pub_models.Message {
	msg := pub_models.Message{Role: pub_models.RoleAssistant}
	for _, c := range acc.Choices {
		if c.Index == index {
			msg.Content = c.Message.Content
			break
		}
	}
	return msg
}

func (g *ChatGPT) params(chat pub_models.Chat, settings *pub_models.Settings) (openai.ChatCompletionNewParams, error) {
	msgs, err := toOpenAIMessages(chat.Messages)
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}
	params := openai.ChatCompletionNewParams{
		Model:            openai.ChatModel(g.Model),
		Messages:         msgs,
		Temperature:      openai.Float(g.Temperature),
		TopP:             openai.Float(g.TopP),
		FrequencyPenalty: openai.Float(g.FrequencyPenalty),
		PresencePenalty:  openai.Float(g.PresencePenalty),
	}
	if g.MaxTokens != nil {
		params.MaxTokens = openai.Int(int64(*g.MaxTokens))
	}
	if settings == nil {
		return params, nil
	}
	if settings.ModelID != "" {
		params.Model = openai.ChatModel(settings.ModelID)
	}
	if settings.Temperature != nil {
		params.Temperature = openai.Float(*settings.Temperature)
	}
	if settings.TopP != nil {
		params.TopP = openai.Float(*settings.TopP)
	}
	if settings.FrequencyPenalty != nil {
		params.FrequencyPenalty = openai.Float(*settings.FrequencyPenalty)
	}
	if settings.PresencePenalty != nil {
		params.PresencePenalty = openai.Float(*settings.PresencePenalty)
	}
	if settings.MaxTokens != nil {
		params.MaxTokens = openai.Int(int64(*settings.MaxTokens))
	}
	return params, nil
}

func (g *ChatGPT) stop(settings *pub_models.Settings) []string {
	if settings != nil && len(settings.Stop) > 0 {
		return settings.Stop
	}
	return g.Stop
}

func toOpenAIMessages(msgs []pub_models.Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	ret := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for i, m := range msgs {
		switch m.Role {
		case pub_models.RoleSystem:
			ret = append(ret, openai.SystemMessage(m.Content))
		case pub_models.RoleUser:
			ret = append(ret, openai.UserMessage(m.Content))
		case pub_models.RoleAssistant:
			ret = append(ret, openai.AssistantMessage(m.Content))
		case pub_models.RoleTool:
			ret = append(ret, openai.ToolMessage(m.Content, m.ToolCallID))
		default:
			return nil, fmt.Errorf("message at index %v has unknown role: '%v'", i, m.Role)
		}
	}
	return ret, nil
}
