package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/codehive/codehive/globals"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultInviteCodeLength = 7
	defaultLinkOrigin       = "http://localhost:5173"
	defaultNotifierType     = "local"
	defaultRedisChannel     = "codehive:notify"
	defaultRetentionSweep   = "@every 1h"
	defaultTokenCacheSize   = 1024
)

// Config is the global configuration object which is filled via the configuration file.
type Config struct {
	PersistenceConfig PersistenceConfig `mapstructure:"persistence"`
	AuthConfig        AuthConfig        `mapstructure:"auth"`
	InviteConfig      InviteConfig      `mapstructure:"invite"`
	NotifierConfig    NotifierConfig    `mapstructure:"notifier"`
	RetentionConfig   RetentionConfig   `mapstructure:"retention"`
	LogLevel          string            `mapstructure:"log_level"`
	AdminUser         string            `mapstructure:"admin_user"`
}

// PersistenceConfig selects the storage backend. Type is one of "sqlite",
// "postgres" or "buntdb"; DSN is the gorm DSN, or the db file for buntdb.
type PersistenceConfig struct {
	Type string `mapstructure:"type"`
	DSN  string `mapstructure:"dsn"`
}

// AuthConfig configures bearer-token verification. JWTSecret enables the
// built-in HS256 tokens; each OIDCConfig block additionally accepts ID tokens
// from the given OpenID Connect provider.
type AuthConfig struct {
	JWTSecret      string       `mapstructure:"jwt_secret"`
	TokenCacheSize int          `mapstructure:"token_cache_size"`
	OIDCConfigs    []OIDCConfig `mapstructure:"oidc"`
}

// An OIDCConfig object configures an OpenID Connect provider that is used to
// authenticate users. Users provide an ID token and the name of the provider,
// the authentication is then performed via verification of the token.
type OIDCConfig struct {
	Name        string `mapstructure:"name"`
	ClientId    string `mapstructure:"client_id"`
	ProviderUrl string `mapstructure:"provider_url"`
}

// InviteConfig configures room invite codes and the invite links returned to
// the host.
type InviteConfig struct {
	CodeLength int    `mapstructure:"code_length"`
	LinkOrigin string `mapstructure:"link_origin"`
}

// NotifierConfig selects how file-mutation endpoints reach the realtime
// gateway. "local" dispatches in-process, "redis" publishes on a pub/sub
// channel so API and gateway can run as separate services.
type NotifierConfig struct {
	Type           string `mapstructure:"type"`
	RedisAddr      string `mapstructure:"redis_addr"`
	RedisPassword  string `mapstructure:"redis_password"`
	RedisChannel   string `mapstructure:"redis_channel"`
	InternalSecret string `mapstructure:"internal_secret"`
}

// RetentionConfig configures the stale-room sweeper. MaxIdle of 0 disables
// sweeping entirely.
type RetentionConfig struct {
	MaxIdle  time.Duration `mapstructure:"max_idle"`
	Schedule string        `mapstructure:"schedule"`
}

func GetFlagSet() *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("configuration", pflag.ContinueOnError)
	flagSet.StringP("admin-user", "a", "", "id of the admin user")
	flagSet.String("log-level", "", "log level (trace, debug, info, warn, error)")
	return flagSet
}

// wordSepNormalizeFunc allows for normalization of the flag names (which use - as a separator)
func wordSepNormalizeFunc(f *pflag.FlagSet, name string) pflag.NormalizedName {
	from := "-"
	to := "_"
	name = strings.Replace(name, from, to, -1)
	return pflag.NormalizedName(name)
}

// ReadConfiguration reads and parses the configuration located at configPath,
// which can either point to a single TOML file or to a directory, in which
// case all *.toml files in this directory are concatenated. It returns a
// Config object.
func ReadConfiguration(configPath string, flagSet *pflag.FlagSet) (*Config, error) {
	cfg := Config{}
	flagSet.SetNormalizeFunc(wordSepNormalizeFunc)
	viper.SetDefault("log_level", "INFO")
	viper.SetDefault("invite.code_length", defaultInviteCodeLength)
	viper.SetDefault("invite.link_origin", defaultLinkOrigin)
	viper.SetDefault("notifier.type", defaultNotifierType)
	viper.SetDefault("notifier.redis_channel", defaultRedisChannel)
	viper.SetDefault("retention.schedule", defaultRetentionSweep)
	viper.SetDefault("auth.token_cache_size", defaultTokenCacheSize)
	err := viper.BindPFlags(flagSet)
	if err != nil {
		globals.AppLogger.Error("could not bind flags (ignored)", "error", err)
	}
	viper.SetEnvPrefix("CODEHIVE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if configPath != "" {
		fi, err := os.Stat(configPath)
		if err != nil {
			return nil, err
		}
		contents := make([]byte, 0)
		files := []string{configPath}
		if fi.IsDir() {
			files, err = filepath.Glob(filepath.Join(configPath, "*.toml"))
			if err != nil {
				return nil, err
			}
		}
		for _, configFile := range files {
			fileContents, err := os.ReadFile(configFile)
			if err != nil {
				return nil, err
			}
			contents = append(contents, fileContents...)
			contents = append(contents, '\n')
		}
		viper.SetConfigType("toml")
		err = viper.ReadConfig(bytes.NewBuffer(contents))
		if err != nil {
			globals.AppLogger.Error("could not read config:", "error", err)
		}
	}
	err = viper.Unmarshal(&cfg)
	if err != nil {
		globals.AppLogger.Error("could not unmarshal config:", "error", err)
	}

	globals.AppLogger.Debug("config", "cfg", cfg)
	return &cfg, nil
}
