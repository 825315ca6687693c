package config

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	dotenvOnce sync.Once

	mu    sync.Mutex
	cache = make(map[reflect.Type]any)
)

// Load populates cfg from environment variables using `env` struct tags.
// Each configuration type is parsed once per process; later calls for the
// same type return the cached value. A .env file in the working directory
// is loaded before the first parse, without overriding real environment
// variables.
func Load[T any](cfg *T) error {
	dotenvOnce.Do(func() {
		// Missing .env is the normal production case.
		_ = godotenv.Load()
	})

	mu.Lock()
	defer mu.Unlock()

	t := reflect.TypeOf(*cfg)
	if cached, ok := cache[t]; ok {
		*cfg = cached.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: failed to load %s: %w", t, err)
	}

	cache[t] = *cfg
	return nil
}

// MustLoad is Load that panics on failure. Intended for application startup
// where a missing required variable should stop the process.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
