// Package config loads the runtime configuration for both the daily report
// job and the snapshot collector. Values come from an optional config.ini
// file with environment variables layered on top.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
)

// APIConfig holds the credentials and retry policy for the billing API.
type APIConfig struct {
	Username string
	APIKey   string
	Endpoint string
	Timeout  time.Duration

	// MaxAttempts bounds the retry loop for invoice and detail lookups.
	// Zero keeps the retry-forever behavior of the nightly batch.
	MaxAttempts int
	// RetryDelay is the pause after a failed API call before retrying.
	RetryDelay time.Duration
	// DetailPause is the cooperative rate-limit pause between successive
	// per-item detail calls.
	DetailPause time.Duration
}

// SMTPConfig holds the email dispatch settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
	Subject  string
}

// Validate checks that the fields required to send mail are present.
func (c SMTPConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("smtp host is required")
	}
	if c.Port == 0 {
		return fmt.Errorf("smtp port is required")
	}
	if c.From == "" {
		return fmt.Errorf("smtp from address is required")
	}
	if len(c.To) == 0 {
		return fmt.Errorf("smtp recipient list is required")
	}
	return nil
}

// RedisConfig holds the snapshot store connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Config is the full configuration surface.
type Config struct {
	API   APIConfig
	SMTP  SMTPConfig
	Redis RedisConfig
}

// envBindings maps config keys to the environment variables that override
// them. The lowercase forms match the variable names the original cron
// deployments exported.
var envBindings = map[string][]string{
	"api.username":      {"SL_USERNAME", "sl_username"},
	"api.apikey":        {"SL_APIKEY", "sl_apikey"},
	"api.endpoint":      {"SL_ENDPOINT"},
	"smtp.host":         {"SMTP_HOST"},
	"smtp.port":         {"SMTP_PORT"},
	"smtp.username":     {"SMTP_USERNAME"},
	"smtp.password":     {"SMTP_PASSWORD"},
	"smtp.from":         {"SMTP_FROM"},
	"smtp.to":           {"SMTP_TO"},
	"smtp.subject":      {"SMTP_SUBJECT"},
	"redis.addr":        {"REDIS_ADDR"},
	"redis.password":    {"REDIS_PASSWORD"},
	"redis.db":          {"REDIS_DB"},
	"api.max_attempts":  {"SL_MAX_ATTEMPTS"},
	"api.retry_delay":   {"SL_RETRY_DELAY"},
	"api.detail_pause":  {"SL_DETAIL_PAUSE"},
	"api.timeout":       {"SL_TIMEOUT"},
}

// Load reads configuration from path (default "config.ini" when present)
// and the environment. A missing file is not an error; missing credentials
// are.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, envs := range envBindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return nil, err
		}
	}

	if path == "" {
		if _, err := os.Stat("config.ini"); err == nil {
			path = "config.ini"
		}
	}
	if path != "" {
		file, err := ini.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
		if err := v.MergeConfigMap(iniToMap(file)); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		API: APIConfig{
			Username:    v.GetString("api.username"),
			APIKey:      v.GetString("api.apikey"),
			Endpoint:    v.GetString("api.endpoint"),
			Timeout:     v.GetDuration("api.timeout"),
			MaxAttempts: v.GetInt("api.max_attempts"),
			RetryDelay:  v.GetDuration("api.retry_delay"),
			DetailPause: v.GetDuration("api.detail_pause"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("smtp.host"),
			Port:     v.GetInt("smtp.port"),
			Username: v.GetString("smtp.username"),
			Password: v.GetString("smtp.password"),
			From:     v.GetString("smtp.from"),
			To:       splitList(v.GetString("smtp.to")),
			Subject:  v.GetString("smtp.subject"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
	}

	if cfg.API.Username == "" || cfg.API.APIKey == "" {
		return nil, fmt.Errorf("api credentials are required (set SL_USERNAME and SL_APIKEY or the [api] section)")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.timeout", "240s")
	v.SetDefault("api.max_attempts", 0)
	v.SetDefault("api.retry_delay", "5s")
	v.SetDefault("api.detail_pause", "1s")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.subject", "Daily Provisioning Report")
	v.SetDefault("redis.db", 0)
}

// iniToMap converts an ini file into the nested map viper merges at
// config-file precedence, below environment variables.
func iniToMap(file *ini.File) map[string]interface{} {
	out := make(map[string]interface{})
	for _, section := range file.Sections() {
		name := strings.ToLower(section.Name())
		if name == ini.DefaultSection {
			continue
		}
		values := make(map[string]interface{}, len(section.Keys()))
		for _, key := range section.Keys() {
			values[strings.ToLower(key.Name())] = key.Value()
		}
		out[name] = values
	}
	return out
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
