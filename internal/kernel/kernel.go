// Package kernel is a registry of completion services. It resolves which
// service, and with what execution settings, should serve a request.
package kernel

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/kernagent/internal/models"
	pub_models "github.com/baalimago/kernagent/pkg/text/models"
)

type entry struct {
	svc      models.Service
	settings *pub_models.Settings
}

// Kernel is safe for concurrent use.
type Kernel struct {
	mu       sync.RWMutex
	services map[string]entry
	debug    bool
}

type Option func(*Kernel)

func WithDebug(debug bool) Option {
	return func(k *Kernel) {
		k.debug = debug
	}
}

func New(options ...Option) *Kernel {
	k := &Kernel{
		services: make(map[string]entry),
	}
	if misc.Truthy(os.Getenv("DEBUG")) || misc.Truthy(os.Getenv("DEBUG_KERNEL")) {
		k.debug = true
	}
	for _, o := range options {
		o(k)
	}
	return k
}

// AddService registers svc under its ServiceID. dflt are the settings used
// when a request carries none for this service, may be nil.
func (k *Kernel) AddService(svc models.Service, dflt *pub_models.Settings) error {
	if svc == nil {
		return fmt.Errorf("cannot add nil service")
	}
	id := svc.ServiceID()
	if id == "" {
		return fmt.Errorf("cannot add service of type %T with empty service id", svc)
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, exists := k.services[id]; exists {
		return fmt.Errorf("failed to add '%v': %w", id, pub_models.ErrDuplicateService)
	}
	k.services[id] = entry{svc: svc, settings: dflt}
	if k.debug {
		ancli.PrintOK(fmt.Sprintf("kernel: registered service '%v' (%T), capabilities: %v\n", id, svc, svc.Capabilities()))
	}
	return nil
}

// RemoveService returns true if a service with id was registered.
func (k *Kernel) RemoveService(id string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	_, exists := k.services[id]
	delete(k.services, id)
	return exists
}

func (k *Kernel) Service(id string) (models.Service, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	e, ok := k.services[id]
	return e.svc, ok
}

// Services returns the ids of all registered services, sorted.
func (k *Kernel) Services() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.sortedIDs()
}

func (k *Kernel) sortedIDs() []string {
	ids := make([]string, 0, len(k.services))
	for id := range k.services {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SelectService resolves a service supporting capability, and the settings
// to use with it, in this order:
//
//  1. The first service, by id, which args carries execution settings for.
//  2. The service registered as serviceID.
//  3. If serviceID is the default id, the first service, by id, with the
//     capability.
//
// In steps 2 and 3, settings which args carries under the default id are
// used for the selected service, in place of its registered defaults.
//
// A nil service and nil error is returned when nothing matches.
func (k *Kernel) SelectService(ctx context.Context, serviceID string, args pub_models.Arguments, capability pub_models.Capability) (models.Service, *pub_models.Settings, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to select service: %w", err)
	}
	k.mu.RLock()
	defer k.mu.RUnlock()

	if svc, settings, ok := k.fromExecutionSettings(args, capability); ok {
		k.debugSelection("execution settings", svc)
		return svc, settings, nil
	}

	if e, ok := k.services[serviceID]; ok && models.HasCapability(e.svc, capability) {
		k.debugSelection("service id", e.svc)
		return e.svc, resolveSettings(args, serviceID, e), nil
	}

	if serviceID == pub_models.DefaultServiceID || serviceID == "" {
		for _, id := range k.sortedIDs() {
			e := k.services[id]
			if models.HasCapability(e.svc, capability) {
				k.debugSelection("default fallback", e.svc)
				return e.svc, resolveSettings(args, id, e), nil
			}
		}
	}

	if k.debug {
		ancli.PrintWarn(fmt.Sprintf("kernel: no service found for id: '%v', capability: '%v'\n", serviceID, capability))
	}
	return nil, nil, nil
}

func (k *Kernel) fromExecutionSettings(args pub_models.Arguments, capability pub_models.Capability) (models.Service, *pub_models.Settings, bool) {
	if len(args.ExecutionSettings) == 0 {
		return nil, nil, false
	}
	ids := make([]string, 0, len(args.ExecutionSettings))
	for id := range args.ExecutionSettings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		e, ok := k.services[id]
		if !ok || !models.HasCapability(e.svc, capability) {
			continue
		}
		settings := args.ExecutionSettings[id]
		if settings == nil {
			return e.svc, settingsFor(id, e), true
		}
		if settings.ServiceID == "" {
			settings = settings.Clone()
			settings.ServiceID = id
		}
		return e.svc, settings, true
	}
	return nil, nil, false
}

// resolveSettings for the service registered as id. Settings in args under
// the default id apply to whichever service ends up selected.
func resolveSettings(args pub_models.Arguments, id string, e entry) *pub_models.Settings {
	dflt, ok := args.ExecutionSettings[pub_models.DefaultServiceID]
	if !ok || dflt == nil {
		return settingsFor(id, e)
	}
	s := dflt.Clone()
	s.ServiceID = id
	return s
}

func settingsFor(id string, e entry) *pub_models.Settings {
	if e.settings != nil {
		s := e.settings.Clone()
		if s.ServiceID == "" {
			s.ServiceID = id
		}
		return s
	}
	return &pub_models.Settings{ServiceID: id}
}

func (k *Kernel) debugSelection(how string, svc models.Service) {
	if k.debug {
		ancli.PrintOK(fmt.Sprintf("kernel: selected service '%v' by %v\n", svc.ServiceID(), how))
	}
}
