package anthropic

import (
	"fmt"
	"net/http"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
)

func (c *Claude) Setup() error {
	keyEnv := c.APIKeyEnv
	if keyEnv == "" {
		keyEnv = APIKeyEnv
	}
	apiKey := os.Getenv(keyEnv)
	if apiKey == "" {
		return fmt.Errorf("environment variable '%v' not set", keyEnv)
	}
	if c.BaseURL == "" {
		c.BaseURL = BaseURL
	}
	if c.Model == "" {
		c.Model = ClaudeDefault.Model
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = ClaudeDefault.MaxTokens
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(c.BaseURL),
		option.WithMaxRetries(0),
	}
	if c.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(c.httpClient))
	}
	c.client = anthropic.NewClient(opts...)
	if misc.Truthy(os.Getenv("DEBUG")) || misc.Truthy(os.Getenv(debugEnv)) {
		c.debug = true
	}
	return nil
}

// SetHTTPClient used by the sdk. Has to be called before Setup.
func (c *Claude) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}
