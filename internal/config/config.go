package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides
const EnvPrefix = "KEYWORD_TAGGER"

// DashScopeKeyEnv is the conventional variable holding the DashScope API key
const DashScopeKeyEnv = "DASHSCOPE_API_KEY"

// DefaultDotEnvFile is read from the working directory when present
const DefaultDotEnvFile = ".env"

// ErrMissingCredential is returned when the selected provider has no API key
var ErrMissingCredential = errors.New("missing API credential")

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance. An explicit configFile takes
// precedence over the search path.
func New(configFile string) (*Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/keyword-tagger/")
		v.AddConfigPath("$HOME/.keyword-tagger")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := mergeDotEnv(v, DefaultDotEnvFile); err != nil {
		return nil, err
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The key is also accepted under the name the DashScope docs use.
	_ = v.BindEnv("openai.api_key", EnvPrefix+"_OPENAI_API_KEY", DashScopeKeyEnv)
}

// mergeDotEnv copies the API key from a dotenv file when the environment
// and config file did not provide one.
func mergeDotEnv(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	dv := viper.New()
	dv.SetConfigFile(path)
	dv.SetConfigType("env")
	if err := dv.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if v.GetString("openai.api_key") == "" {
		for _, key := range []string{DashScopeKeyEnv, EnvPrefix + "_OPENAI_API_KEY"} {
			if val := dv.GetString(key); val != "" {
				v.Set("openai.api_key", val)
				break
			}
		}
	}
	if v.GetString("gemini.api_key") == "" {
		if val := dv.GetString(EnvPrefix + "_GEMINI_API_KEY"); val != "" {
			v.Set("gemini.api_key", val)
		}
	}
	return nil
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.timeout", "5m")
	v.SetDefault("llm.max_text_size", 0)

	// DashScope compatible mode
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "https://dashscope.aliyuncs.com/compatible-mode/v1")
	v.SetDefault("openai.model_name", "qwen-max")
	v.SetDefault("openai.max_tokens", 8096)
	v.SetDefault("openai.temperature", 0.5)
	v.SetDefault("openai.stream", false)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-1.5-flash")
	v.SetDefault("gemini.max_tokens", 8096)
	v.SetDefault("gemini.temperature", 0.5)
	v.SetDefault("gemini.stream", false)

	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-3-haiku-20240307-v1:0")
	v.SetDefault("bedrock.max_tokens", 4096)
	v.SetDefault("bedrock.temperature", 0.5)
	v.SetDefault("bedrock.stream", false)

	v.SetDefault("pipeline.input_dir", "input")
	v.SetDefault("pipeline.data_dir", "data")
	v.SetDefault("pipeline.subject_column", 0)
	v.SetDefault("pipeline.keyword_column", 1)
	v.SetDefault("pipeline.result_header", "keyword_verdict")
	v.SetDefault("pipeline.keyword_sheets", []string{})
	v.SetDefault("pipeline.input_sheets", []string{})
	v.SetDefault("pipeline.max_retries", 0)
	v.SetDefault("pipeline.retry_interval", "2s")

	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "168h")
	v.SetDefault("cache.cleanup_frequency", "1h")
	v.SetDefault("cache.sqlite_path", "./keyword_tagger_cache.db")
	v.SetDefault("cache.mysql_dsn", "user:password@tcp(localhost:3306)/keyword_tagger")

	v.SetDefault("metrics.textfile_path", "")

	v.SetDefault("notify.enabled", false)
	v.SetDefault("notify.smtp_address", "localhost:25")
	v.SetDefault("notify.username", "")
	v.SetDefault("notify.password", "")
	v.SetDefault("notify.from", "keyword-tagger@localhost")
	v.SetDefault("notify.to", []string{})
	v.SetDefault("notify.subject_prefix", "[keyword-tagger]")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	d, err := time.ParseDuration(c.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
