package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Media   MediaConfig   `mapstructure:"media"`
	Session SessionConfig `mapstructure:"session"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	Path      string `mapstructure:"path"`
	BackupDir string `mapstructure:"backup_dir"`
}

// MediaConfig holds uploaded file settings
type MediaConfig struct {
	Root        string `mapstructure:"root"`
	URL         string `mapstructure:"url"`
	MaxUploadMB int64  `mapstructure:"max_upload_mb"`
}

// SessionConfig holds cookie session settings
type SessionConfig struct {
	Name   string `mapstructure:"name"`
	Key    string `mapstructure:"key"`
	Secure bool   `mapstructure:"secure"`
}

// CacheConfig holds page cache settings
type CacheConfig struct {
	IndexTTL time.Duration `mapstructure:"index_ttl"`
	MaxBytes int64         `mapstructure:"max_bytes"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("storage.path", "data/badger")
	v.SetDefault("storage.backup_dir", "data/backups")
	v.SetDefault("media.root", "media")
	v.SetDefault("media.url", "/media/")
	v.SetDefault("media.max_upload_mb", 10)
	v.SetDefault("session.name", "yatube-session")
	v.SetDefault("session.key", "")
	v.SetDefault("session.secure", false)
	v.SetDefault("cache.index_ttl", 20*time.Second)
	v.SetDefault("cache.max_bytes", 32<<20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Load reads configuration from an optional config file (config.yaml in
// the working directory or ./config, or the explicit path) and YATUBE_*
// environment variables, on top of the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("YATUBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration without reading files or
// the environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func (c *Config) validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr must be set")
	}
	if c.Storage.Path == "" {
		return errors.New("storage.path must be set")
	}
	if c.Media.Root == "" {
		return errors.New("media.root must be set")
	}
	if c.Media.MaxUploadMB <= 0 {
		return errors.New("media.max_upload_mb must be positive")
	}
	return nil
}

// SessionKey returns the configured session signing key. When none is set
// a random one is generated, so sessions do not survive a restart.
func (c *Config) SessionKey() []byte {
	if c.Session.Key != "" {
		if decoded, err := base64.StdEncoding.DecodeString(c.Session.Key); err == nil && len(decoded) >= 32 {
			return decoded
		}
		return []byte(c.Session.Key)
	}
	return securecookie.GenerateRandomKey(32)
}

// MaxUploadBytes is the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.Media.MaxUploadMB << 20
}
