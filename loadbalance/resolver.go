package loadbalance

import (
	"context"
	"fmt"
	"sync"

	"github.com/kuechlerm/arkstruct/registry"
)

// Resolver picks the base address of every call from the instances currently
// registered for a service. It satisfies transport.Resolver.
//
// Without Watch every Resolve asks the registry. While a watch is running the instance
// list is cached and replaced by each registry update.
type Resolver struct {
	registry registry.Registry
	balancer Balancer
	service  string

	mu        sync.RWMutex
	watchers  int
	fresh     bool
	instances []registry.ServiceInstance
}

func NewResolver(reg registry.Registry, bal Balancer, service string) *Resolver {
	if bal == nil {
		bal = &RoundRobinBalancer{}
	}
	return &Resolver{registry: reg, balancer: bal, service: service}
}

// Watch follows registry updates for the service until ctx is done. It returns
// immediately.
func (r *Resolver) Watch(ctx context.Context) {
	updates := r.registry.Watch(ctx, r.service)
	r.mu.Lock()
	r.watchers++
	r.mu.Unlock()

	go func() {
		for instances := range updates {
			r.mu.Lock()
			r.instances, r.fresh = instances, true
			r.mu.Unlock()
		}
		r.mu.Lock()
		r.watchers--
		if r.watchers == 0 {
			r.instances, r.fresh = nil, false
		}
		r.mu.Unlock()
	}()
}

// Resolve lets the balancer choose one instance, using the operation path as the
// balancing key.
func (r *Resolver) Resolve(ctx context.Context, path string) (string, error) {
	instances, err := r.current(ctx)
	if err != nil {
		return "", err
	}
	if len(instances) == 0 {
		return "", fmt.Errorf("no instances available for service %s", r.service)
	}
	inst, err := r.balancer.Pick(instances, path)
	if err != nil {
		return "", err
	}
	return inst.BaseURL(), nil
}

// current returns the cached list, or discovers it on a cold start.
func (r *Resolver) current(ctx context.Context) ([]registry.ServiceInstance, error) {
	r.mu.RLock()
	if r.fresh {
		instances := r.instances
		r.mu.RUnlock()
		return instances, nil
	}
	watching := r.watchers > 0
	r.mu.RUnlock()

	instances, err := r.registry.Discover(ctx, r.service)
	if err != nil {
		return nil, fmt.Errorf("discovering %s: %w", r.service, err)
	}
	if watching {
		r.mu.Lock()
		// A watch update that arrived meanwhile is newer
		if r.watchers > 0 && !r.fresh {
			r.instances, r.fresh = instances, true
		}
		r.mu.Unlock()
	}
	return instances, nil
}
