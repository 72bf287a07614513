// Package config loads library-wide settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/haukened/dnscore/internal/dns/services/dnssec"
	"github.com/haukened/dnscore/internal/dns/services/tsig"
)

// AppConfig holds configuration values parsed from environment variables.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// CacheSize is the capacity of the validation-outcome cache.
	// Zero disables outcome caching.
	CacheSize uint `koanf:"cache_size"`

	// KeystorePath is the Bolt database holding trust anchors and TSIG
	// secrets. Empty selects the in-memory keystore.
	KeystorePath string `koanf:"keystore_path"`

	// ClockSkew widens RRSIG validity windows, in seconds.
	ClockSkew uint `koanf:"clock_skew" validate:"lte=86400"`

	// MaxChainDepth bounds the number of zone cuts walked between a
	// trust anchor and a validated name.
	MaxChainDepth uint `koanf:"max_chain_depth" validate:"required,gte=1,lte=64"`

	// MaxNSEC3Iterations caps the NSEC3 iteration count accepted as a
	// denial proof.
	MaxNSEC3Iterations uint `koanf:"max_nsec3_iterations" validate:"required,lte=2500"`

	// TSIGFudge is the clock-skew allowance stamped into TSIG records,
	// in seconds.
	TSIGFudge uint `koanf:"tsig_fudge" validate:"required,gte=1,lte=3600"`
}

// DEFAULT_APP_CONFIG defines the default configuration settings.
var DEFAULT_APP_CONFIG = AppConfig{
	Env:                "prod",
	LogLevel:           "info",
	CacheSize:          1000,
	KeystorePath:       "",
	ClockSkew:          0,
	MaxChainDepth:      16,
	MaxNSEC3Iterations: 150,
	TSIGFudge:          300,
}

// ValidatorOptions converts the loaded settings into validation-engine
// options.
func (c *AppConfig) ValidatorOptions() dnssec.ValidatorOptions {
	return dnssec.ValidatorOptions{
		ClockSkew:          time.Duration(c.ClockSkew) * time.Second,
		MaxChainDepth:      int(c.MaxChainDepth),
		MaxNSEC3Iterations: uint16(c.MaxNSEC3Iterations),
	}
}

// TSIGOptions converts the loaded settings into TSIG-engine options.
func (c *AppConfig) TSIGOptions() tsig.Options {
	return tsig.Options{
		Fudge: time.Duration(c.TSIGFudge) * time.Second,
	}
}

// envLoader is a function that loads environment variables with the
// prefix "DNSCORE_". It transforms the keys to lowercase and removes
// the prefix, and can be mocked in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: "DNSCORE_",
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, "DNSCORE_"))
			value = strings.TrimSpace(value)
			return key, value
		},
	}), nil)
}

// defaultLoader loads default configuration values into the provided
// Koanf instance using the structs provider.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// Load parses environment variables and returns an AppConfig instance.
// It applies default values and runs validation automatically.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	err := defaultLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	err = envLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	err = validate.Struct(&cfg)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
