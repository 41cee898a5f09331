package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// OperationTimeout bounds one admin operation, batches included.  A
// workspace lock must outlive it.
const OperationTimeout = 30 * time.Second

// CatalogConfig tunes the admin workspace.  It is read from the YAML file
// named by CATALOG_CONFIG; every field is optional.
type CatalogConfig struct {
	DefaultPageSize  int           `yaml:"default_page_size"`
	MaxPageSize      int           `yaml:"max_page_size"`
	BatchConcurrency int           `yaml:"batch_concurrency"`
	WorkspaceTTL     time.Duration `yaml:"workspace_ttl"`
	LockTTL          time.Duration `yaml:"lock_ttl"`
	StoreLatency     time.Duration `yaml:"store_latency"`
	SessionPrefix    string        `yaml:"session_prefix"`
}

// DefaultCatalogConfig is used for any field the file leaves out.
func DefaultCatalogConfig() CatalogConfig {
	return CatalogConfig{
		DefaultPageSize:  10,
		MaxPageSize:      100,
		BatchConcurrency: 4,
		WorkspaceTTL:     12 * time.Hour,
		LockTTL:          30 * time.Second,
		SessionPrefix:    "catalog:ws",
	}
}

// LoadCatalogConfig reads path.  An empty path yields the defaults.
func LoadCatalogConfig(path string) (CatalogConfig, error) {
	cfg := DefaultCatalogConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read catalog config: %w", err)
	}
	return ParseCatalogConfig(b)
}

// ParseCatalogConfig overlays the YAML document b on the defaults.
func ParseCatalogConfig(b []byte) (CatalogConfig, error) {
	cfg := DefaultCatalogConfig()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse catalog config: %w", err)
	}
	switch {
	case cfg.DefaultPageSize < 1:
		return cfg, fmt.Errorf("default_page_size must be positive")
	case cfg.MaxPageSize < cfg.DefaultPageSize:
		return cfg, fmt.Errorf("max_page_size must be at least default_page_size")
	case cfg.BatchConcurrency < 1:
		return cfg, fmt.Errorf("batch_concurrency must be positive")
	case cfg.StoreLatency < 0:
		return cfg, fmt.Errorf("store_latency must not be negative")
	case cfg.LockTTL < OperationTimeout:
		return cfg, fmt.Errorf("lock_ttl must be at least %s", OperationTimeout)
	}
	return cfg, nil
}
