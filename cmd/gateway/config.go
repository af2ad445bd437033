package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// envPrefix: GATEWAY_DEBOUNCE__RATE=300ms -> debounce.rate
const envPrefix = "GATEWAY_"

type config struct {
	ListenAddr  string         `koanf:"listen_addr" validate:"required"`
	UpstreamURL string         `koanf:"upstream_url" validate:"required,url"`
	Debounce    debounceConfig `koanf:"debounce"`
	Rate        rateConfig     `koanf:"rate"`
	Stats       statsConfig    `koanf:"stats"`
	Log         logConfig      `koanf:"log"`
}

type debounceConfig struct {
	// Rate > 0 aplica debounce trailing-edge ao disparo para o upstream.
	Rate            time.Duration `koanf:"rate" validate:"gte=0"`
	KeyHeader       string        `koanf:"key_header"`
	TrustXFF        bool          `koanf:"trust_xff"`
	IdleTTL         time.Duration `koanf:"idle_ttl" validate:"gte=0"`
	CleanupEvery    time.Duration `koanf:"cleanup_every" validate:"gte=0"`
	MaxRequestBody  int64         `koanf:"max_request_body" validate:"gte=0"`
	MaxResponseBody int64         `koanf:"max_response_body" validate:"gte=0"`
	UpstreamTimeout time.Duration `koanf:"upstream_timeout" validate:"gte=0"`
}

type rateConfig struct {
	Enabled       bool          `koanf:"enabled"`
	RunsPerSecond float64       `koanf:"runs_per_second" validate:"gt=0"`
	Burst         int           `koanf:"burst" validate:"gt=0"`
	RetryAfter    time.Duration `koanf:"retry_after" validate:"gte=0"`
	AddHeaders    bool          `koanf:"add_headers"`
}

type statsConfig struct {
	Backend       string        `koanf:"backend" validate:"oneof=none memory redis"`
	RedisAddr     string        `koanf:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db" validate:"gte=0"`
	Prefix        string        `koanf:"prefix"`
	TTL           time.Duration `koanf:"ttl" validate:"gte=0"`
	Bucket        string        `koanf:"bucket" validate:"oneof=minute none"`
	TrackKeys     bool          `koanf:"track_keys"`
}

type logConfig struct {
	Level      string `koanf:"level" validate:"oneof=trace debug info warn error"`
	JSON       bool   `koanf:"json"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `koanf:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `koanf:"max_age_days" validate:"gte=0"`
}

func defaultConfig() config {
	return config{
		ListenAddr: ":8080",
		Debounce: debounceConfig{
			IdleTTL:         15 * time.Minute,
			CleanupEvery:    2 * time.Minute,
			MaxRequestBody:  1 << 20,
			MaxResponseBody: 10 << 20,
			UpstreamTimeout: 30 * time.Second,
		},
		Rate: rateConfig{
			Enabled:       true,
			RunsPerSecond: 10,
			Burst:         20,
			RetryAfter:    1 * time.Second,
		},
		Stats: statsConfig{
			Backend: "none",
			Prefix:  "debounce:stats",
			TTL:     24 * time.Hour,
			Bucket:  "minute",
		},
		Log: logConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 7,
			MaxAgeDays: 30,
		},
	}
}

// loadConfig aplica, em ordem de prioridade crescente: defaults, arquivo JSON
// (opcional) e variáveis de ambiente GATEWAY_*.
func loadConfig(path string) (config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), json.Parser()); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return config{}, fmt.Errorf("config file not found: %q: %w", path, err)
			}
			return config{}, fmt.Errorf("load config file %q: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return config{}, fmt.Errorf("load env: %w", err)
	}

	var cfg config
	err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			ErrorUnused:      true,
			WeaklyTypedInput: true,
			Result:           &cfg,
		},
	})
	if err != nil {
		return config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func (c config) validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
