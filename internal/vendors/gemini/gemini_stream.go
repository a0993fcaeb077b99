package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/debug"
	"github.com/baalimago/kernagent/internal/models"
	pub_models "github.com/baalimago/kernagent/pkg/text/models"
	"google.golang.org/genai"
)

// StreamCompletions over the genai streaming iterator. Breaking out of the
// iterator stops the underlying stream.
func (g *Gemini) StreamCompletions(ctx context.Context, chat pub_models.Chat, settings *pub_models.Settings) (chan models.CompletionEvent, error) {
	contents, system := toContents(chat.Messages)
	if len(contents) == 0 {
		return nil, fmt.Errorf("no user or assistant messages to send")
	}
	model, config := g.config(settings)
	config.SystemInstruction = system
	if g.debug {
		ancli.PrintOK(fmt.Sprintf("gemini request, model: %v, config: %v\n", model, debug.IndentedJsonFmt(config)))
	}

	outChan := make(chan models.CompletionEvent)
	go func() {
		defer close(outChan)
		var sb strings.Builder
		for resp, err := range g.client.Models.GenerateContentStream(ctx, model, contents, config) {
			if err != nil {
				if ctx.Err() == nil {
					models.SendEvent(ctx, outChan, fmt.Errorf("failed to read stream: %w", err))
				}
				return
			}
			token := resp.Text()
			if token == "" {
				continue
			}
			sb.WriteString(token)
			if !models.SendEvent(ctx, outChan, token) {
				return
			}
		}
		models.SendEvent(ctx, outChan, pub_models.Message{
			Role:    pub_models.RoleAssistant,
			Content: sb.String(),
		})
	}()
	return outChan, nil
}

// toContents converts the chat into genai contents. System messages are
// gathered into the system instruction.
func toContents(msgs []pub_models.Message) ([]*genai.Content, *genai.Content) {
	contents := make([]*genai.Content, 0, len(msgs))
	var systemParts []*genai.Part
	for _, m := range msgs {
		switch m.Role {
		case pub_models.RoleSystem:
			systemParts = append(systemParts, genai.NewPartFromText(m.Content))
		case pub_models.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	var system *genai.Content
	if len(systemParts) > 0 {
		system = genai.NewContentFromParts(systemParts, genai.RoleUser)
	}
	return contents, system
}

func (g *Gemini) config(settings *pub_models.Settings) (string, *genai.GenerateContentConfig) {
	model := g.Model
	conf := &genai.GenerateContentConfig{
		Temperature:   genai.Ptr(float32(g.Temperature)),
		TopP:          genai.Ptr(float32(g.TopP)),
		StopSequences: g.StopSequences,
	}
	if g.PresencePenalty != 0 {
		conf.PresencePenalty = genai.Ptr(float32(g.PresencePenalty))
	}
	if g.MaxTokens != nil {
		conf.MaxOutputTokens = int32(*g.MaxTokens)
	}
	if settings == nil {
		return model, conf
	}
	if settings.ModelID != "" {
		model = settings.ModelID
	}
	if settings.Temperature != nil {
		conf.Temperature = genai.Ptr(float32(*settings.Temperature))
	}
	if settings.TopP != nil {
		conf.TopP = genai.Ptr(float32(*settings.TopP))
	}
	if settings.MaxTokens != nil {
		conf.MaxOutputTokens = int32(*settings.MaxTokens)
	}
	if settings.PresencePenalty != nil {
		conf.PresencePenalty = genai.Ptr(float32(*settings.PresencePenalty))
	}
	if settings.FrequencyPenalty != nil {
		conf.FrequencyPenalty = genai.Ptr(float32(*settings.FrequencyPenalty))
	}
	if len(settings.Stop) > 0 {
		conf.StopSequences = settings.Stop
	}
	return model, conf
}
