package kernel

import (
	"fmt"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/kernagent/internal/models"
	"github.com/baalimago/kernagent/internal/utils"
)

// Factory creates an unconfigured chat completer for a service config.
type Factory func(conf utils.ServiceConfig) (models.ChatCompleter, error)

// FromConfig creates a kernel holding one set up service per entry in conf.
// Services which fail to set up are skipped with a warning, unless it's the
// default service of conf.
func FromConfig(conf utils.KernelConfig, factory Factory, options ...Option) (*Kernel, error) {
	k := New(options...)
	for _, sc := range conf.Services {
		svc, err := factory(sc)
		if err != nil {
			return nil, fmt.Errorf("failed to create service '%v': %w", sc.ID, err)
		}
		if err := svc.Setup(); err != nil {
			if sc.ID == conf.DefaultService {
				return nil, fmt.Errorf("failed to setup default service '%v': %w", sc.ID, err)
			}
			ancli.PrintWarn(fmt.Sprintf("skipping service '%v', setup failed: %v\n", sc.ID, err))
			continue
		}
		if err := k.AddService(svc, sc.Settings); err != nil {
			return nil, err
		}
	}
	return k, nil
}
