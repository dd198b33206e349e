package transport

import (
	"fmt"
	"strings"

	"github.com/Egham-7/fetchstream/internal/models"
	"github.com/Egham-7/fetchstream/internal/services/stream/contracts"
	"github.com/Egham-7/fetchstream/internal/utils/clientcache"
)

// Registry builds transports from configuration and shares one instance
// per distinct configuration
type Registry struct {
	cache *clientcache.Cache[contracts.Transport]
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{cache: clientcache.NewCache[contracts.Transport]()}
}

// Resolve returns the transport for cfg, creating it on first use.
// An empty kind selects fasthttp.
func (r *Registry) Resolve(cfg models.TransportConfig) (contracts.Transport, error) {
	kind := strings.ToLower(strings.TrimSpace(cfg.Kind))
	if kind == "" {
		kind = models.TransportFastHTTP
	}
	key := fmt.Sprintf("%s|%s|%s", kind, cfg.DialTimeout, cfg.UserAgent)

	return r.cache.GetOrCreate(key, func() (contracts.Transport, error) {
		switch kind {
		case models.TransportFastHTTP:
			return NewFastHTTP(nil, cfg.DialTimeout, cfg.UserAgent), nil
		case models.TransportHTTP:
			return NewHTTP(nil, cfg.UserAgent), nil
		default:
			return nil, fmt.Errorf("unknown transport kind %q", cfg.Kind)
		}
	})
}
