package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/chatfs/internal/util"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g. CHATFS_STORE_TYPE
const EnvPrefix = "chatfs"

// CLI verbosity values accepted by [ConfigOverride.LogLvl]
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultFsName = "chatfs"
	DefaultName   = "chatfs"
	DefaultLogLvl = util.InfoLevel

	DefaultStoreType     = "file"
	DefaultStoreKey      = "chatfs:snapshot"
	DefaultStoreDir      = ".chatfs"
	DefaultRedisAddr     = "localhost:6379"
	DefaultRedisPassword = ""
	DefaultRedisDB       = 0

	// DefaultSeedSamples populates a freshly initialized namespace with sample content
	DefaultSeedSamples = true

	// DefaultMetricsAddr is empty so metrics are only served when asked for
	DefaultMetricsAddr = ""

	// DefaultAttrTimeout is the attribute cache timeout in seconds
	DefaultAttrTimeout = 1.0

	// DefaultEntryTimeout is the directory entry cache timeout in seconds
	DefaultEntryTimeout = 1.0
)

// Config contains runtime configuration values for chatfs.
type Config struct {
	MountOptions
	Store        StoreOptions
	LogLvl       util.LogLevel // Internal log level (Default info)
	SeedSamples  bool          // Seed sample files when no snapshot was restored (Default true)
	MetricsAddr  string        // Address for the prometheus /metrics endpoint; disabled when empty
	AttrTimeout  float64       // Mount attribute cache timeout in seconds (Default 1.0)
	EntryTimeout float64       // Mount directory entry cache timeout in seconds (Default 1.0)
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
//
// LogLvl is a CLI style verbosity between 1 (error) and 5 (trace) and is
// clamped into that range when merged.
type ConfigOverride struct {
	LogLvl        *int     `yaml:"verbose,omitempty" json:"verbose,omitempty" envconfig:"VERBOSE"`
	FsName        *string  `yaml:"fs_name,omitempty" json:"fs_name,omitempty" envconfig:"FS_NAME"`
	Name          *string  `yaml:"name,omitempty" json:"name,omitempty" envconfig:"NAME"`
	Debug         *bool    `yaml:"debug,omitempty" json:"debug,omitempty" envconfig:"DEBUG"`
	StoreType     *string  `yaml:"store_type,omitempty" json:"store_type,omitempty" envconfig:"STORE_TYPE"`
	StoreKey      *string  `yaml:"store_key,omitempty" json:"store_key,omitempty" envconfig:"STORE_KEY"`
	StoreDir      *string  `yaml:"store_dir,omitempty" json:"store_dir,omitempty" envconfig:"STORE_DIR"`
	RedisAddr     *string  `yaml:"redis_addr,omitempty" json:"redis_addr,omitempty" envconfig:"REDIS_ADDR"`
	RedisPassword *string  `yaml:"redis_password,omitempty" json:"redis_password,omitempty" envconfig:"REDIS_PASSWORD"`
	RedisDB       *int     `yaml:"redis_db,omitempty" json:"redis_db,omitempty" envconfig:"REDIS_DB"`
	SeedSamples   *bool    `yaml:"seed_samples,omitempty" json:"seed_samples,omitempty" envconfig:"SEED_SAMPLES"`
	MetricsAddr   *string  `yaml:"metrics_addr,omitempty" json:"metrics_addr,omitempty" envconfig:"METRICS_ADDR"`
	AttrTimeout   *float64 `yaml:"attr_timeout,omitempty" json:"attr_timeout,omitempty" envconfig:"ATTR_TIMEOUT"`
	EntryTimeout  *float64 `yaml:"entry_timeout,omitempty" json:"entry_timeout,omitempty" envconfig:"ENTRY_TIMEOUT"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		MountOptions: MountOptions{
			FsName: DefaultFsName,
			Name:   DefaultName,
		},
		Store: StoreOptions{
			Type:          DefaultStoreType,
			Key:           DefaultStoreKey,
			Dir:           DefaultStoreDir,
			RedisAddr:     DefaultRedisAddr,
			RedisPassword: DefaultRedisPassword,
			RedisDB:       DefaultRedisDB,
		},
		LogLvl:       DefaultLogLvl,
		SeedSamples:  DefaultSeedSamples,
		MetricsAddr:  DefaultMetricsAddr,
		AttrTimeout:  DefaultAttrTimeout,
		EntryTimeout: DefaultEntryTimeout,
	}
}

// NewConfig returns the defaults with override applied. A nil override
// yields the defaults.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// VerbosityToLogLevel clamps a CLI verbosity into 1..5 and maps it to a
// [util.LogLevel].
func VerbosityToLogLevel(verbose int) util.LogLevel {
	verbose = min(max(verbose, ErrorVerbose), TraceVerbose)
	logLvls := [5]util.LogLevel{util.ErrorLevel, util.WarnLevel, util.InfoLevel, util.DebugLevel, util.TraceLevel}
	return logLvls[verbose-1]
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.LogLvl != nil {
		c.LogLvl = VerbosityToLogLevel(*override.LogLvl)
	}
	if override.FsName != nil {
		c.FsName = *override.FsName
	}
	if override.Name != nil {
		c.Name = *override.Name
	}
	if override.Debug != nil {
		c.Debug = *override.Debug
	}
	if override.StoreType != nil {
		c.Store.Type = *override.StoreType
	}
	if override.StoreKey != nil {
		c.Store.Key = *override.StoreKey
	}
	if override.StoreDir != nil {
		c.Store.Dir = *override.StoreDir
	}
	if override.RedisAddr != nil {
		c.Store.RedisAddr = *override.RedisAddr
	}
	if override.RedisPassword != nil {
		c.Store.RedisPassword = *override.RedisPassword
	}
	if override.RedisDB != nil {
		c.Store.RedisDB = *override.RedisDB
	}
	if override.SeedSamples != nil {
		c.SeedSamples = *override.SeedSamples
	}
	if override.MetricsAddr != nil {
		c.MetricsAddr = *override.MetricsAddr
	}
	if override.AttrTimeout != nil {
		c.AttrTimeout = *override.AttrTimeout
	}
	if override.EntryTimeout != nil {
		c.EntryTimeout = *override.EntryTimeout
	}
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// LoadConfigOverrideEnv reads CHATFS_* environment variables into an override.
// Unset variables leave the matching field nil.
func LoadConfigOverrideEnv() (*ConfigOverride, error) {
	var override ConfigOverride
	if err := envconfig.Process(EnvPrefix, &override); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}
	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// This is a convenience function that combines NewDefaultConfig, LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Merge(override)
	return cfg, nil
}
