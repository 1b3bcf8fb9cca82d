// Package config loads outreach settings from defaults, config.yaml, an
// optional .env file and the environment.
package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is the top-level application configuration.
type Config struct {
	SMTP     SMTPConfig     `yaml:"smtp" mapstructure:"smtp"`
	LLM      LLMConfig      `yaml:"llm" mapstructure:"llm"`
	Scrape   ScrapeConfig   `yaml:"scrape" mapstructure:"scrape"`
	Profile  ProfileConfig  `yaml:"profile" mapstructure:"profile"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// SMTPConfig configures the delivery channel.
type SMTPConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"`
	Host        string  `yaml:"host" mapstructure:"host"`
	Port        int     `yaml:"port" mapstructure:"port"`
	Address     string  `yaml:"address" mapstructure:"address"`
	Password    string  `yaml:"password" mapstructure:"password"`
	SenderName  string  `yaml:"sender_name" mapstructure:"sender_name"`
	UseTLS      bool    `yaml:"use_tls" mapstructure:"use_tls"`
	UseSSL      bool    `yaml:"use_ssl" mapstructure:"use_ssl"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	DelaySecs   float64 `yaml:"delay_secs" mapstructure:"delay_secs"`
}

// LLMConfig selects and tunes the completion provider.
type LLMConfig struct {
	Provider          string  `yaml:"provider" mapstructure:"provider"`
	Model             string  `yaml:"model" mapstructure:"model"`
	OpenAIKey         string  `yaml:"openai_key" mapstructure:"openai_key"`
	AnthropicKey      string  `yaml:"anthropic_key" mapstructure:"anthropic_key"`
	GeminiKey         string  `yaml:"gemini_key" mapstructure:"gemini_key"`
	Region            string  `yaml:"region" mapstructure:"region"`
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	MaxTokens         int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature       float64 `yaml:"temperature" mapstructure:"temperature"`
	MaxRetries        int     `yaml:"max_retries" mapstructure:"max_retries"`
	RequestsPerMinute int     `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ScrapeConfig configures website fetching.
type ScrapeConfig struct {
	Backend     string `yaml:"backend" mapstructure:"backend"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
}

// ProfileConfig points at an optional heuristic rules override.
type ProfileConfig struct {
	RulesFile string `yaml:"rules_file" mapstructure:"rules_file"`
}

// PipelineConfig tunes the per-prospect pipeline.
type PipelineConfig struct {
	DelaySecs          float64 `yaml:"delay_secs" mapstructure:"delay_secs"`
	MaxInsightAttempts int     `yaml:"max_insight_attempts" mapstructure:"max_insight_attempts"`
	TemperatureStep    float64 `yaml:"temperature_step" mapstructure:"temperature_step"`
	Tone               string  `yaml:"tone" mapstructure:"tone"`
	TargetWords        int     `yaml:"target_words" mapstructure:"target_words"`
	OptimizeLength     bool    `yaml:"optimize_length" mapstructure:"optimize_length"`
}

// StoreConfig selects the run history backend: none, sqlite or postgres.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the history API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// legacyEnv maps config keys to the plain environment names older .env
// files use. OUTREACH_-prefixed names are bound as well and take priority.
var legacyEnv = map[string][]string{
	"smtp.address":            {"EMAIL_ADDRESS"},
	"smtp.password":           {"EMAIL_PASSWORD"},
	"smtp.sender_name":        {"SENDER_NAME"},
	"smtp.host":               {"SMTP_SERVER"},
	"smtp.port":               {"SMTP_PORT"},
	"smtp.use_tls":            {"USE_TLS"},
	"smtp.use_ssl":            {"USE_SSL"},
	"smtp.provider":           {"SMTP_PROVIDER"},
	"llm.openai_key":          {"OPENAI_API_KEY"},
	"llm.anthropic_key":       {"ANTHROPIC_API_KEY"},
	"llm.gemini_key":          {"GEMINI_API_KEY"},
	"llm.region":              {"AWS_REGION"},
	"llm.model":               {"OPENAI_MODEL"},
	"llm.max_tokens":          {"MAX_TOKENS"},
	"llm.temperature":         {"TEMPERATURE"},
	"llm.max_retries":         {"MAX_RETRIES"},
	"scrape.timeout_secs":     {"REQUEST_TIMEOUT"},
	"scrape.user_agent":       {"USER_AGENT"},
	"pipeline.delay_secs":     {"DELAY_BETWEEN_REQUESTS"},
	"log.level":               {"LOG_LEVEL"},
	"store.database_url":      {"DATABASE_URL"},
	"llm.provider":            nil,
	"llm.base_url":            nil,
	"profile.rules_file":      nil,
	"smtp.delay_secs":         nil,
	"smtp.timeout_secs":       nil,
	"llm.requests_per_minute": nil,
}

const envPrefix = "OUTREACH"

// Load reads configuration. envFile, when non-empty and present, is loaded
// into the process environment first; existing variables are not replaced.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, eris.Wrapf(err, "config: load env file %s", envFile)
		}
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(append([]string{key, prefixed}, names...)...); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.use_tls", true)
	v.SetDefault("smtp.use_ssl", false)
	v.SetDefault("smtp.timeout_secs", 30)
	v.SetDefault("smtp.delay_secs", 0)
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-3.5-turbo")
	v.SetDefault("llm.max_tokens", 1000)
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.requests_per_minute", 0)
	v.SetDefault("llm.timeout_secs", 60)
	v.SetDefault("scrape.backend", "http")
	v.SetDefault("scrape.timeout_secs", 10)
	v.SetDefault("scrape.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("pipeline.delay_secs", 30)
	v.SetDefault("pipeline.max_insight_attempts", 2)
	v.SetDefault("pipeline.temperature_step", 0.2)
	v.SetDefault("pipeline.tone", "professional")
	v.SetDefault("pipeline.target_words", 150)
	v.SetDefault("pipeline.optimize_length", false)
	v.SetDefault("store.driver", "none")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	cfg.SMTP.ApplyPreset()
	return &cfg, nil
}

// SMTPPreset holds the server settings of a well-known mail provider.
type SMTPPreset struct {
	Host   string
	Port   int
	UseTLS bool
}

// SMTPPresets lists the supported smtp.provider values.
var SMTPPresets = map[string]SMTPPreset{
	"gmail":   {Host: "smtp.gmail.com", Port: 587, UseTLS: true},
	"outlook": {Host: "smtp-mail.outlook.com", Port: 587, UseTLS: true},
	"yahoo":   {Host: "smtp.mail.yahoo.com", Port: 587, UseTLS: true},
}

// ApplyPreset overwrites host, port and TLS from the named provider preset.
// Unknown or empty providers leave the explicit settings alone.
func (s *SMTPConfig) ApplyPreset() {
	p, ok := SMTPPresets[strings.ToLower(s.Provider)]
	if !ok {
		return
	}
	s.Host, s.Port, s.UseTLS = p.Host, p.Port, p.UseTLS
}

// Validation modes.
const (
	ModeSend   = "send"   // live run: SMTP and LLM
	ModeDraft  = "draft"  // dry run or subjects: LLM and sender name
	ModeSMTP   = "smtp"   // connection check
	ModeServe  = "serve"  // history API
	ModeReport = "report" // prospects and history: nothing required
)

// Validate checks that the fields a command needs are present.
func (c *Config) Validate(mode string) error {
	var missing []string
	switch mode {
	case ModeSend:
		missing = append(c.smtpMissing(), c.llmMissing()...)
	case ModeDraft:
		missing = c.llmMissing()
		if c.SMTP.SenderName == "" {
			missing = append(missing, "smtp.sender_name (SENDER_NAME)")
		}
	case ModeSMTP:
		missing = c.smtpMissing()
	case ModeServe:
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			return eris.Errorf("config: invalid server.port %d", c.Server.Port)
		}
		if c.Store.Driver == "" || c.Store.Driver == "none" {
			missing = append(missing, "store.driver")
		}
	case ModeReport:
	default:
		return eris.Errorf("config: unknown validation mode %q", mode)
	}

	if len(missing) > 0 {
		return eris.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) smtpMissing() []string {
	var missing []string
	if c.SMTP.Address == "" {
		missing = append(missing, "smtp.address (EMAIL_ADDRESS)")
	}
	if c.SMTP.Password == "" {
		missing = append(missing, "smtp.password (EMAIL_PASSWORD)")
	}
	if c.SMTP.SenderName == "" {
		missing = append(missing, "smtp.sender_name (SENDER_NAME)")
	}
	return missing
}

func (c *Config) llmMissing() []string {
	switch strings.ToLower(c.LLM.Provider) {
	case "openai":
		if c.LLM.OpenAIKey == "" {
			return []string{"llm.openai_key (OPENAI_API_KEY)"}
		}
	case "anthropic":
		if c.LLM.AnthropicKey == "" {
			return []string{"llm.anthropic_key (ANTHROPIC_API_KEY)"}
		}
	case "gemini":
		if c.LLM.GeminiKey == "" {
			return []string{"llm.gemini_key (GEMINI_API_KEY)"}
		}
	case "bedrock":
		if c.LLM.Region == "" {
			return []string{"llm.region (AWS_REGION)"}
		}
	default:
		return []string{"llm.provider (openai, anthropic, gemini or bedrock)"}
	}
	return nil
}

// InitLogger builds the global zap logger: development config for
// "console", production otherwise.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)
	return nil
}
