package publisher

import (
	"fmt"

	"go.uber.org/zap"
)

// Registry maps platform names to their Publisher implementations. New
// platforms register at startup; the orchestrator resolves them by name.
type Registry struct {
	publishers map[string]Publisher
	logger     *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		publishers: make(map[string]Publisher),
		logger:     logger,
	}
}

func (r *Registry) Register(publisher Publisher) error {
	name := publisher.Name()
	if _, exists := r.publishers[name]; exists {
		return fmt.Errorf("publisher for platform %s already registered", name)
	}

	r.publishers[name] = publisher
	r.logger.Info("Publisher registered", zap.String("platform", name))
	return nil
}

func (r *Registry) Resolve(platform string) (Publisher, error) {
	publisher, exists := r.publishers[platform]
	if !exists {
		return nil, fmt.Errorf("unsupported platform: %s", platform)
	}
	return publisher, nil
}

func (r *Registry) Names() []string {
	var names []string
	for name := range r.publishers {
		names = append(names, name)
	}
	return names
}
