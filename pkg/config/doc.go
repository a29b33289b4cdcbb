// Package config provides a type-safe, generic and cached way to load
// application configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11 to
// deliver a convenient API that:
//
//   - Loads values from one or multiple .env files (falling back to the
//     default .env in the current working directory).
//   - Parses the environment into any Go struct using `env` field tags.
//   - Caches each successfully loaded configuration type so it is only parsed
//     once for the lifetime of the process.
//   - Exposes helpers that panic on failure (MustLoadEnv, MustLoad) for
//     configuration the application cannot start without.
//
// # Architecture
//
// Internally the package keeps a singleton cache that stores parsed struct
// copies keyed by their fully-qualified type name. Each key also holds a
// sync.Once guaranteeing the parsing work is executed at most once per
// configuration type even when accessed from multiple goroutines.
//
// # Usage
//
//	import "github.com/fleetward/quotakit/pkg/config"
//
//	type AppConfig struct {
//	    Postgres pg.Config
//	    Redis    redis.Config
//	    PlansFile string `env:"PLANS_FILE" envDefault:"plans.yml"`
//	}
//
//	func main() {
//	    var cfg AppConfig
//	    config.MustLoad(&cfg)
//	    // cfg is now populated and cached for future calls.
//	}
//
// # Error Handling
//
// The package defines sentinel errors comparable with errors.Is:
//
//   - ErrParsingConfig – failed to parse env vars into struct.
//   - ErrLoadingEnvFile – an explicitly requested .env file could not be read.
//   - ErrConfigNotLoaded – requested config type has not been loaded yet.
//   - ErrNilPointer – nil pointer passed to Load/MustLoad.
//
// # Testing Helpers
//
// Use ResetCache to clear the global cache between tests after the process
// environment changes.
package config
