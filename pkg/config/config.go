// Package config loads lostfound settings from .lostfound.yaml and
// LOSTFOUND_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gookit/validate"
	"github.com/spf13/viper"

	"tableflip.dev/lostfound/pkg/identity"
	"tableflip.dev/lostfound/pkg/store"
)

const (
	EnvPrefix = "LOSTFOUND"
	// PathEnv names an extra directory to search for the config file.
	PathEnv = EnvPrefix + "_CONFIG_PATH"
)

type User struct {
	UID    string `mapstructure:"uid"`
	Name   string `mapstructure:"name"`
	Avatar string `mapstructure:"avatar" validate:"url"`
}

type Log struct {
	Level string `mapstructure:"level" validate:"required|in:trace,debug,info,warn,error,disabled"`
	File  string `mapstructure:"file"`
}

type Cache struct {
	// Size is the point-read cache size in MB. Zero turns the cache off.
	Size int           `mapstructure:"size" validate:"min:0"`
	TTL  time.Duration `mapstructure:"ttl"`
}

type Page struct {
	Size int `mapstructure:"size" validate:"required|min:1"`
}

// Config is the decoded settings file.
type Config struct {
	Path  string `mapstructure:"path" validate:"required"`
	User  User   `mapstructure:"user"`
	Log   Log    `mapstructure:"log"`
	Cache Cache  `mapstructure:"cache"`
	Page  Page   `mapstructure:"page"`
}

var _ store.Config = (*Config)(nil)

// BasePath implements store.Config.
func (c *Config) BasePath() string {
	return c.Path
}

// Identity is the configured user. Without user.uid nobody is signed in.
func (c *Config) Identity() identity.Provider {
	return identity.Static{UID: c.User.UID, DisplayName: c.User.Name, AvatarURL: c.User.Avatar}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("path", "~/.lostfound.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("cache.size", 1)
	v.SetDefault("cache.ttl", 30*time.Second)
	v.SetDefault("page.size", 6)
	v.SetDefault("user.uid", "")
	v.SetDefault("user.name", "")
	v.SetDefault("user.avatar", "")
}

// Load reads the config file, if there is one, and the environment.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName(".lostfound") // .yaml is implicit
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv(PathEnv); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	v.AddConfigPath("$HOME")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: unable to decode into config struct: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks every section of c.
func (c *Config) Validate() error {
	for _, section := range []any{c, &c.User, &c.Log, &c.Cache, &c.Page} {
		v := validate.Struct(section)
		if !v.Validate() {
			return fmt.Errorf("config: %s", v.Errors.One())
		}
	}
	return nil
}
