package gemini

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	pub_models "github.com/baalimago/kernagent/pkg/text/models"
	"google.golang.org/genai"
)

const (
	APIKeyEnv = "GEMINI_API_KEY"
	debugEnv  = "DEBUG_GEMINI"
)

var Default = Gemini{
	Model:       "gemini-2.5-flash",
	Temperature: 1.0,
	TopP:        1.0,
}

type Gemini struct {
	ID              string   `json:"id"`
	Model           string   `json:"model"`
	MaxTokens       *int     `json:"max_tokens"` // Use a pointer to allow null value
	PresencePenalty float64  `json:"presence_penalty"`
	Temperature     float64  `json:"temperature"`
	TopP            float64  `json:"top_p"`
	StopSequences   []string `json:"stop_sequences,omitempty"`
	// BaseURL overrides the endpoint of the gemini api
	BaseURL   string `json:"base_url"`
	APIKeyEnv string `json:"api_key_env"`

	client     *genai.Client
	httpClient *http.Client
	debug      bool
}

func (g *Gemini) Setup() error {
	keyEnv := g.APIKeyEnv
	if keyEnv == "" {
		keyEnv = APIKeyEnv
	}
	apiKey := os.Getenv(keyEnv)
	if apiKey == "" {
		return fmt.Errorf("environment variable '%v' not set", keyEnv)
	}
	if g.Model == "" {
		g.Model = Default.Model
	}
	conf := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: g.httpClient,
	}
	if g.BaseURL != "" {
		conf.HTTPOptions = genai.HTTPOptions{BaseURL: g.BaseURL}
	}
	client, err := genai.NewClient(context.Background(), conf)
	if err != nil {
		return fmt.Errorf("failed to create genai client: %w", err)
	}
	g.client = client
	if misc.Truthy(os.Getenv("DEBUG")) || misc.Truthy(os.Getenv(debugEnv)) {
		g.debug = true
	}
	return nil
}

// SetHTTPClient used by the sdk. Has to be called before Setup.
func (g *Gemini) SetHTTPClient(c *http.Client) {
	g.httpClient = c
}

func (g *Gemini) ServiceID() string {
	return g.ID
}

func (g *Gemini) Capabilities() []pub_models.Capability {
	return []pub_models.Capability{pub_models.CapabilityChatCompletion}
}
