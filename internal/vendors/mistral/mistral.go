package mistral

import (
	"fmt"

	"github.com/baalimago/kernagent/internal/text/generic"
	pub_models "github.com/baalimago/kernagent/pkg/text/models"
)

const (
	ChatURL   = "https://api.mistral.ai/v1/chat/completions"
	APIKeyEnv = "MISTRAL_API_KEY"
)

var Default = Mistral{
	Model:       "mistral-large-latest",
	Temperature: 0.7,
	TopP:        1.0,
	MaxTokens:   100000,
}

type Mistral struct {
	generic.StreamCompleter
	ID          string  `json:"id"`
	Model       string  `json:"model"`
	URL         string  `json:"url"`
	APIKeyEnv   string  `json:"api_key_env"`
	TopP        float64 `json:"top_p"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

func (m *Mistral) ServiceID() string {
	return m.ID
}

func (m *Mistral) Setup() error {
	keyEnv := m.APIKeyEnv
	if keyEnv == "" {
		keyEnv = APIKeyEnv
	}
	m.StreamCompleter.ID = m.ID
	m.StreamCompleter.URL = m.URL
	err := m.StreamCompleter.Setup(keyEnv, ChatURL, "DEBUG_MISTRAL")
	if err != nil {
		return fmt.Errorf("failed to setup stream completer: %w", err)
	}
	m.StreamCompleter.Model = m.Model
	m.StreamCompleter.MaxTokens = &m.MaxTokens
	m.StreamCompleter.Temperature = &m.Temperature
	m.StreamCompleter.TopP = &m.TopP
	m.Clean = clean
	return nil
}

// clean reshapes the conversation into something mistral accepts. A system
// message directly after a tool result becomes an assistant message, and
// consecutive assistant messages are merged.
func clean(msgs []pub_models.Message) []pub_models.Message {
	for i := 0; i < len(msgs)-1; i++ {
		if msgs[i].Role == pub_models.RoleTool && msgs[i+1].Role == pub_models.RoleSystem {
			msgs[i+1].Role = pub_models.RoleAssistant
		}
	}

	ret := make([]pub_models.Message, 0, len(msgs))
	for _, m := range msgs {
		last := len(ret) - 1
		if last >= 0 && m.Role == pub_models.RoleAssistant && ret[last].Role == pub_models.RoleAssistant {
			ret[last].Content += "\n" + m.Content
			continue
		}
		ret = append(ret, m)
	}
	return ret
}
