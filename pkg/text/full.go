package text

import (
	"context"
	"fmt"

	"github.com/baalimago/kernagent/internal/kernel"
	"github.com/baalimago/kernagent/internal/utils"
	"github.com/baalimago/kernagent/internal/vendors"
	"github.com/baalimago/kernagent/pkg/agent"
	"github.com/baalimago/kernagent/pkg/text/models"
)

// FullResponse text querier, as opposed to returning a stream or something
type FullResponse interface {
	Setup(context.Context) error

	// Query the configured services with some chat. Will cancel on context cancel.
	Query(context.Context, models.Chat) (models.Chat, error)
}

type publicQuerier struct {
	configDir string
	serviceID string
	agentName string
	settings  []*models.Settings

	registry agent.Registry
	agent    *agent.ChatCompletionAgent
}

// Option configures a publicQuerier.
type Option func(*publicQuerier)

// WithConfigDir sets the directory holding kernelConfig.json. Defaults to
// the kernagent config dir of the user.
func WithConfigDir(dir string) Option {
	return func(pq *publicQuerier) {
		pq.configDir = dir
	}
}

// WithServiceID selects the service which should reply. Defaults to the
// default_service of the config.
func WithServiceID(id string) Option {
	return func(pq *publicQuerier) {
		pq.serviceID = id
	}
}

// WithSettings passes execution settings with every query.
func WithSettings(settings ...*models.Settings) Option {
	return func(pq *publicQuerier) {
		pq.settings = append(pq.settings, settings...)
	}
}

// WithRegistry uses registry instead of a kernel created from the config
// dir.
func WithRegistry(registry agent.Registry) Option {
	return func(pq *publicQuerier) {
		pq.registry = registry
	}
}

// NewFullResponseQuerier constructs a FullResponse. Setup has to be called
// before Query.
func NewFullResponseQuerier(opts ...Option) FullResponse {
	pq := &publicQuerier{
		agentName: "kernagent",
	}
	for _, opt := range opts {
		opt(pq)
	}
	return pq
}

// Setup the public querier by loading the kernel config, creating it if
// missing, and setting up every configured service.
func (pq *publicQuerier) Setup(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	serviceID := pq.serviceID
	if pq.registry == nil {
		if pq.configDir == "" {
			dir, err := utils.GetConfigDir()
			if err != nil {
				return fmt.Errorf("failed to find config dir: %w", err)
			}
			pq.configDir = dir
		}
		conf, err := utils.LoadKernelConfig(pq.configDir)
		if err != nil {
			return err
		}
		k, err := kernel.FromConfig(conf, vendors.NewFromConfig)
		if err != nil {
			return fmt.Errorf("failed to create kernel: %w", err)
		}
		pq.registry = k
		if serviceID == "" {
			serviceID = conf.DefaultService
		}
	}
	pq.agent = agent.New(pq.agentName, agent.WithServiceID(serviceID))
	return nil
}

// Query the kernel with inpChat. The returned chat is inpChat with the
// reply appended.
func (pq *publicQuerier) Query(ctx context.Context, inpChat models.Chat) (models.Chat, error) {
	if pq.registry == nil || pq.agent == nil {
		return models.Chat{}, fmt.Errorf("querier is not set up")
	}
	reply, err := pq.agent.GenerateReply(ctx, inpChat.Messages, pq.registry, models.NewArguments(pq.settings...))
	if err != nil {
		return models.Chat{}, fmt.Errorf("failed to generate reply: %w", err)
	}
	ret := inpChat
	ret.Messages = append(append([]models.Message(nil), inpChat.Messages...), reply)
	return ret, nil
}
