package registry

import "context"

// ServiceInstance is one reachable RPC endpoint host.
type ServiceInstance struct {
	Addr    string // host:port
	Weight  int    // Weight for load balancing
	Version string
	Scheme  string // "http" when empty
}

// BaseURL is the base address clients resolve operation paths against.
func (i ServiceInstance) BaseURL() string {
	scheme := i.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return scheme + "://" + i.Addr
}

type Registry interface {
	Register(ctx context.Context, serviceName string, instance ServiceInstance, ttl int64) error
	Deregister(ctx context.Context, serviceName string, addr string) error
	Discover(ctx context.Context, serviceName string) ([]ServiceInstance, error)
	Watch(ctx context.Context, serviceName string) <-chan []ServiceInstance
}
