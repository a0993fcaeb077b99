package openai

import (
	"fmt"
	"net/http"
	"os"

	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	pub_models "github.com/baalimago/kernagent/pkg/text/models"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var GptDefault = ChatGPT{
	Model:       "gpt-4.1-mini",
	Temperature: 1.0,
	TopP:        1.0,
}

// ChatGPT streams chat completions from the openai api, or any api which
// the openai sdk can talk to.
type ChatGPT struct {
	ID               string   `json:"id"`
	Model            string   `json:"model"`
	FrequencyPenalty float64  `json:"frequency_penalty"`
	MaxTokens        *int     `json:"max_tokens"` // Use a pointer to allow null value
	PresencePenalty  float64  `json:"presence_penalty"`
	Temperature      float64  `json:"temperature"`
	TopP             float64  `json:"top_p"`
	Stop             []string `json:"stop,omitempty"`
	BaseURL          string   `json:"base_url"`
	APIKeyEnv        string   `json:"api_key_env"`

	client     openai.Client
	httpClient *http.Client
	debug      bool
}

func (g *ChatGPT) Setup() error {
	keyEnv := g.APIKeyEnv
	if keyEnv == "" {
		keyEnv = APIKeyEnv
	}
	apiKey := os.Getenv(keyEnv)
	if apiKey == "" {
		return fmt.Errorf("environment variable '%v' not set", keyEnv)
	}
	if g.BaseURL == "" {
		g.BaseURL = BaseURL
	}
	if g.Model == "" {
		g.Model = GptDefault.Model
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(g.BaseURL),
		option.WithMaxRetries(0),
	}
	if g.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(g.httpClient))
	}
	g.client = openai.NewClient(opts...)
	if misc.Truthy(os.Getenv("DEBUG")) || misc.Truthy(os.Getenv(debugEnv)) {
		g.debug = true
	}
	return nil
}

// SetHTTPClient used by the sdk. Has to be called before Setup.
func (g *ChatGPT) SetHTTPClient(c *http.Client) {
	g.httpClient = c
}

func (g *ChatGPT) ServiceID() string {
	return g.ID
}

func (g *ChatGPT) Capabilities() []pub_models.Capability {
	return []pub_models.Capability{pub_models.CapabilityChatCompletion}
}
