package openai

const (
	BaseURL   = "https://api.openai.com/v1/"
	APIKeyEnv = "OPENAI_API_KEY"
	debugEnv  = "DEBUG_OPENAI"
)
