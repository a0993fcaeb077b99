package anthropic

import (
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	pub_models "github.com/baalimago/kernagent/pkg/text/models"
)

const (
	BaseURL   = "https://api.anthropic.com/"
	APIKeyEnv = "ANTHROPIC_API_KEY"
	debugEnv  = "DEBUG_ANTHROPIC"
)

type Claude struct {
	ID            string   `json:"id"`
	Model         string   `json:"model"`
	MaxTokens     int      `json:"max_tokens"`
	BaseURL       string   `json:"base_url"`
	APIKeyEnv     string   `json:"api_key_env"`
	Temperature   float64  `json:"temperature"`
	TopP          float64  `json:"top_p"`
	StopSequences []string `json:"stop_sequences"`

	client     anthropic.Client
	httpClient *http.Client
	debug      bool
}

var ClaudeDefault = Claude{
	Model:       "claude-sonnet-4-0",
	Temperature: 0.7,
	MaxTokens:   4096,
	TopP:        -1,
}

func (c *Claude) ServiceID() string {
	return c.ID
}

func (c *Claude) Capabilities() []pub_models.Capability {
	return []pub_models.Capability{pub_models.CapabilityChatCompletion}
}

// turn is a run of consecutive messages sent with the same role
type turn struct {
	role  pub_models.Role
	parts []pub_models.Message
}

// claudifyMessages converts from 'normal' openai chat format into the
// alternating user/assistant turns claude prefers. System messages are
// returned separately.
func claudifyMessages(msgs []pub_models.Message) (system []string, turns []turn) {
	for _, msg := range msgs {
		role := msg.Role
		switch role {
		case pub_models.RoleSystem:
			// Leading system messages are the system prompt, any later ones
			// are treated as assistant output
			if len(turns) == 0 {
				system = append(system, msg.Content)
				continue
			}
			role = pub_models.RoleAssistant
		case pub_models.RoleTool:
			role = pub_models.RoleUser
		}
		if len(turns) > 0 && turns[len(turns)-1].role == role {
			turns[len(turns)-1].parts = append(turns[len(turns)-1].parts, msg)
			continue
		}
		turns = append(turns, turn{role: role, parts: []pub_models.Message{msg}})
	}
	return system, turns
}

func toBlocks(parts []pub_models.Message) []anthropic.ContentBlockParamUnion {
	ret := make([]anthropic.ContentBlockParamUnion, 0, len(parts))
	for _, p := range parts {
		if p.Role == pub_models.RoleTool && p.ToolCallID != "" {
			ret = append(ret, anthropic.NewToolResultBlock(p.ToolCallID, p.Content, false))
			continue
		}
		ret = append(ret, anthropic.NewTextBlock(p.Content))
	}
	return ret
}

func toMessageParams(turns []turn) []anthropic.MessageParam {
	ret := make([]anthropic.MessageParam, 0, len(turns))
	for _, t := range turns {
		blocks := toBlocks(t.parts)
		if t.role == pub_models.RoleAssistant {
			ret = append(ret, anthropic.NewAssistantMessage(blocks...))
		} else {
			ret = append(ret, anthropic.NewUserMessage(blocks...))
		}
	}
	return ret
}
