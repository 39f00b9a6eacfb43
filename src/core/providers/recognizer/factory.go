package recognizer

import (
	"fmt"
	"sort"
	"sync"

	"ewaste-server-go/src/core/utils"
)

// Factory 识别提供者工厂函数类型
type Factory func(config *Config, deps Deps) (Provider, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register 注册识别提供者工厂. Variants call it from init().
func Register(typ string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[typ] = factory
}

// Create builds and initializes the provider registered under config.Type.
func Create(config *Config, deps Deps) (Provider, error) {
	mu.RLock()
	factory, ok := factories[config.Type]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown recognizer type %q (registered: %v)", config.Type, GetRegisteredProviders())
	}

	provider, err := factory(config, deps)
	if err != nil {
		return nil, fmt.Errorf("create recognizer %s: %w", config.Name, err)
	}

	if err := provider.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize recognizer %s: %w", config.Name, err)
	}

	if deps.Logger != nil {
		deps.Logger.Info("recognizer ready", utils.Fields{
			"name":       config.Name,
			"type":       config.Type,
			"model_name": config.ModelName,
		})
	}

	return provider, nil
}

// GetRegisteredProviders 获取已注册的提供者类型
func GetRegisteredProviders() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
