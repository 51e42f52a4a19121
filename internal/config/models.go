package config

import (
	"fmt"
	"time"
)

// LLMConfig represents the provider selection and call limits
type LLMConfig struct {
	Provider    string
	Timeout     time.Duration
	MaxTextSize int
}

// OpenAIConfig represents the configuration for OpenAI-compatible endpoints
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	MaxTokens   int
	Temperature float32
	Stream      bool
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	Stream      bool
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	Stream      bool
}

// PipelineConfig represents the directory layout and row policy
type PipelineConfig struct {
	InputDir      string
	DataDir       string
	SubjectColumn int
	KeywordColumn int
	ResultHeader  string
	KeywordSheets []string
	InputSheets   []string
	MaxRetries    int
	RetryInterval time.Duration
}

// CacheConfig represents the verdict cache settings
type CacheConfig struct {
	Type             string
	Enabled          bool
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
}

// NotifyConfig represents the run report mail settings
type NotifyConfig struct {
	Enabled       bool
	SMTPAddress   string
	Username      string
	Password      string
	From          string
	To            []string
	SubjectPrefix string
}

// MetricsConfig represents where run metrics are exported
type MetricsConfig struct {
	TextfilePath string
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() (LLMConfig, error) {
	timeout, err := c.GetDuration("llm.timeout")
	if err != nil {
		return LLMConfig{}, err
	}
	return LLMConfig{
		Provider:    c.GetString("llm.provider"),
		Timeout:     timeout,
		MaxTextSize: c.GetInt("llm.max_text_size"),
	}, nil
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		BaseURL:     c.GetString("openai.base_url"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		Stream:      c.GetBool("openai.stream"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		Stream:      c.GetBool("gemini.stream"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		Stream:      c.GetBool("bedrock.stream"),
	}
}

// GetPipeline returns the pipeline configuration
func (c *Config) GetPipeline() (PipelineConfig, error) {
	interval, err := c.GetDuration("pipeline.retry_interval")
	if err != nil {
		return PipelineConfig{}, err
	}
	pc := PipelineConfig{
		InputDir:      c.GetString("pipeline.input_dir"),
		DataDir:       c.GetString("pipeline.data_dir"),
		SubjectColumn: c.GetInt("pipeline.subject_column"),
		KeywordColumn: c.GetInt("pipeline.keyword_column"),
		ResultHeader:  c.GetString("pipeline.result_header"),
		KeywordSheets: c.GetStringSlice("pipeline.keyword_sheets"),
		InputSheets:   c.GetStringSlice("pipeline.input_sheets"),
		MaxRetries:    c.GetInt("pipeline.max_retries"),
		RetryInterval: interval,
	}
	if pc.SubjectColumn < 0 || pc.KeywordColumn < 0 {
		return PipelineConfig{}, fmt.Errorf("column indexes must not be negative")
	}
	if pc.MaxRetries < 0 {
		return PipelineConfig{}, fmt.Errorf("pipeline.max_retries must not be negative")
	}
	return pc, nil
}

// GetCache returns the cache configuration
func (c *Config) GetCache() (CacheConfig, error) {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		return CacheConfig{}, err
	}
	cleanup, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return CacheConfig{}, err
	}
	return CacheConfig{
		Type:             c.GetString("cache.type"),
		Enabled:          c.GetBool("cache.enabled"),
		TTL:              ttl,
		CleanupFrequency: cleanup,
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
	}, nil
}

// GetNotify returns the notification configuration
func (c *Config) GetNotify() NotifyConfig {
	return NotifyConfig{
		Enabled:       c.GetBool("notify.enabled"),
		SMTPAddress:   c.GetString("notify.smtp_address"),
		Username:      c.GetString("notify.username"),
		Password:      c.GetString("notify.password"),
		From:          c.GetString("notify.from"),
		To:            c.GetStringSlice("notify.to"),
		SubjectPrefix: c.GetString("notify.subject_prefix"),
	}
}

// GetMetrics returns the metrics configuration
func (c *Config) GetMetrics() MetricsConfig {
	return MetricsConfig{
		TextfilePath: c.GetString("metrics.textfile_path"),
	}
}
