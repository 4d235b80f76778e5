// Package loadbalance provides load balancing strategies for spreading RPC calls
// across the endpoint hosts found in the registry.
//
// Three strategies are implemented:
//   - RoundRobin:      Stateless services, equal-capacity instances
//   - WeightedRandom:  Heterogeneous instances (different CPU/memory)
//   - ConsistentHash:  Operation affinity, the same path always lands on the same host
package loadbalance

import (
	"fmt"
	"strings"

	"github.com/kuechlerm/arkstruct/registry"
)

// Balancer is the interface for load balancing strategies.
// The resolver calls Pick() before each RPC to select a target instance.
type Balancer interface {
	// Pick selects one instance from the available list. key is the operation path;
	// strategies without affinity ignore it.
	// Called on every RPC call, must be goroutine-safe.
	Pick(instances []registry.ServiceInstance, key string) (*registry.ServiceInstance, error)

	// Name returns the strategy name (for logging/debugging).
	Name() string
}

// New returns the balancer registered under name. The empty name selects round robin.
func New(name string) (Balancer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "round_robin", "roundrobin":
		return &RoundRobinBalancer{}, nil
	case "weighted_random", "weightedrandom":
		return &WeightedRandomBalancer{}, nil
	case "consistent_hash", "consistenthash":
		return NewConsistentHashBalancer(), nil
	default:
		return nil, fmt.Errorf("unknown balancer %q", name)
	}
}
