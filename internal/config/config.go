package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// MainConfig is the one-time startup configuration for the intake
// pipeline. Invalid values fail Load outright; this is the only place
// the module rejects input instead of degrading.
type MainConfig struct {
	ProviderPriority      []string `yaml:"provider_priority" validate:"dive,oneof=cloudflare cloudfront vercel generic"`
	PrecisionLevel        string   `yaml:"precision_level" validate:"oneof=country region city full"`
	PrivacyMode           bool     `yaml:"privacy_mode"`
	DetectVPN             bool     `yaml:"detect_vpn"`
	AnonymizeAddressLevel string   `yaml:"anonymize_address_level" validate:"oneof=none partial full"`
	CacheTTLSeconds       int64    `yaml:"cache_ttl_seconds" validate:"min=0"`
	ExcludeMethods        []string `yaml:"exclude_methods"`
	ExcludeExtensions     []string `yaml:"exclude_extensions"`
	MaxPathLength         int      `yaml:"max_path_length" validate:"min=0"`
	TrustedProxies        []string `yaml:"trusted_proxies" validate:"dive,cidr"`
	BotFrequencyLimit     string   `yaml:"bot_frequency_limit"`
	ClientIPHeaders       []string `yaml:"client_ip_headers"`
	LogPath               string   `yaml:"log_path"`
	RulePath              string   `yaml:"rule_path"`
}

// Default returns the configuration used when no file overrides it.
func Default() *MainConfig {
	return &MainConfig{
		ProviderPriority:      []string{"cloudflare", "cloudfront", "vercel", "generic"},
		PrecisionLevel:        "city",
		PrivacyMode:           false,
		DetectVPN:             false,
		AnonymizeAddressLevel: "partial",
		CacheTTLSeconds:       3600,
		ExcludeMethods:        []string{"OPTIONS", "HEAD", "TRACE"},
		ExcludeExtensions: []string{
			".css", ".js", ".map", ".png", ".jpg", ".jpeg", ".gif", ".svg",
			".ico", ".woff", ".woff2", ".ttf", ".eot", ".webp", ".avif",
			".mp4", ".webm", ".pdf", ".txt", ".xml", ".json",
		},
		MaxPathLength:     2000,
		TrustedProxies:    nil,
		BotFrequencyLimit: "60/1m",
		ClientIPHeaders:   []string{"CF-Connecting-IP", "X-Real-IP"},
		LogPath:           "",
		RulePath:          "",
	}
}

// LoadMainConfig reads config/visitgate.yml under basePath, fills in
// defaults for anything the file omits, and validates the result.
func LoadMainConfig(basePath string) (*MainConfig, error) {
	cfg := Default()

	if basePath == "" {
		exePath, err := os.Executable()
		if err != nil {
			return nil, err
		}
		basePath = filepath.Dir(exePath)
	}
	configPath := filepath.Join(basePath, "config", "visitgate.yml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// No file means defaults, not an error.
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *MainConfig) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
