package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/fundingforward/outreach/internal/gate"
)

// Config holds all configuration for the outreach engine.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Reference ReferenceConfig `yaml:"reference"`
	Paths     PathsConfig     `yaml:"paths"`
	AI        AIConfig        `yaml:"ai"`
	Delivery  DeliveryConfig  `yaml:"delivery"`
	SES       SESConfig       `yaml:"ses"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Rules     gate.Rules      `yaml:"rules"`
	Sender    SenderConfig    `yaml:"sender"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds the review API listener settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ReferenceConfig holds batch-wide reference settings. Timezone is the
// IANA location used to localize zone-naive application deadlines.
type ReferenceConfig struct {
	Timezone string `yaml:"timezone"`
}

// PathsConfig holds filesystem locations for source data and artifacts.
type PathsConfig struct {
	Recipients string `yaml:"recipients"`
	Events     string `yaml:"events"`
	OutputDir  string `yaml:"output_dir"`
	SendLogDir string `yaml:"send_log_dir"`
}

// AIConfig holds content generation provider settings.
type AIConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Backend        string `yaml:"backend"` // "groq" or "bedrock"
	Model          string `yaml:"model"`
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	Region         string `yaml:"region"` // bedrock only
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// DeliveryConfig holds email delivery settings. Every field can be
// overridden from the environment with an EMAIL_ prefix, for example
// EMAIL_HOST or EMAIL_RATE_PER_MINUTE.
type DeliveryConfig struct {
	Backend           string `yaml:"backend" envconfig:"BACKEND"` // "smtp" or "ses"
	Host              string `yaml:"host" envconfig:"HOST"`
	Port              int    `yaml:"port" envconfig:"PORT" validate:"gte=0,lte=65535"`
	User              string `yaml:"user" envconfig:"USER"`
	Password          string `yaml:"password" envconfig:"PASSWORD"`
	TLS               *bool  `yaml:"use_tls" envconfig:"USE_TLS"`
	From              string `yaml:"from" envconfig:"FROM" validate:"omitempty,email"`
	FromName          string `yaml:"from_name" envconfig:"FROM_NAME"`
	ReplyTo           string `yaml:"reply_to" envconfig:"REPLY_TO" validate:"omitempty,email"`
	RatePerMinute     int    `yaml:"rate_per_minute" envconfig:"RATE_PER_MINUTE" validate:"gte=0"`
	BatchSize         int    `yaml:"batch_size" envconfig:"BATCH_SIZE" validate:"gte=0"`
	BatchPauseSeconds int    `yaml:"batch_pause_seconds" envconfig:"BATCH_PAUSE_SECONDS" validate:"gte=0"`
	MaxRetries        int    `yaml:"max_retries" envconfig:"MAX_RETRIES" validate:"gte=0"`
	RetryDelaySeconds int    `yaml:"retry_delay_seconds" envconfig:"RETRY_DELAY_SECONDS" validate:"gte=0"`
}

// UseTLS reports whether SMTP connections should upgrade to TLS.
// Defaults to true when unset.
func (d DeliveryConfig) UseTLS() bool {
	if d.TLS == nil {
		return true
	}
	return *d.TLS
}

// SESConfig holds AWS SES credentials for the "ses" delivery backend.
type SESConfig struct {
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// LedgerConfig holds the Redis send-ledger settings. When enabled, a
// (day, recipient, event) triple is delivered at most once across runs.
type LedgerConfig struct {
	Enabled   bool   `yaml:"enabled"`
	RedisAddr string `yaml:"redis_addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	TTLHours  int    `yaml:"ttl_hours"`
}

// SenderConfig is the identity block signed into outgoing emails.
type SenderConfig struct {
	Name         string `yaml:"name"`
	Title        string `yaml:"title"`
	Organization string `yaml:"organization"`
}

// LoggingConfig holds log output settings. PlainEmails opts out of the
// default email redaction, for local debugging only.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	PlainEmails bool   `yaml:"plain_emails"`
}

// Default returns a config with every default applied, for running
// without a config file.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// Load reads a YAML config file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads the config file, then applies .env and process
// environment overrides. Delivery settings use the EMAIL_ prefix; the
// AI key falls back to GROQ_API_KEY. A missing config file is not an
// error: defaults plus environment cover the simple case.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		cfg = Default()
	}

	if err := envconfig.Process("email", &cfg.Delivery); err != nil {
		return nil, fmt.Errorf("delivery env overrides: %w", err)
	}

	if key := os.Getenv("GROQ_API_KEY"); key != "" && cfg.AI.APIKey == "" {
		cfg.AI.APIKey = key
	}
	if key := os.Getenv("AI_API_KEY"); key != "" {
		cfg.AI.APIKey = key
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Ledger.RedisAddr = addr
	}
	if region := os.Getenv("AWS_SES_REGION"); region != "" {
		cfg.SES.Region = region
	}
	if accessKey := os.Getenv("AWS_SES_ACCESS_KEY"); accessKey != "" {
		cfg.SES.AccessKey = accessKey
	}
	if secretKey := os.Getenv("AWS_SES_SECRET_KEY"); secretKey != "" {
		cfg.SES.SecretKey = secretKey
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Host == "" {
		c.Server.Host = "localhost"
	}
	if c.Reference.Timezone == "" {
		c.Reference.Timezone = "Asia/Kolkata"
	}
	if c.Paths.Recipients == "" {
		c.Paths.Recipients = "data/recipients.json"
	}
	if c.Paths.Events == "" {
		c.Paths.Events = "data/events.json"
	}
	if c.Paths.OutputDir == "" {
		c.Paths.OutputDir = "output"
	}
	if c.Paths.SendLogDir == "" {
		c.Paths.SendLogDir = "output/send_logs"
	}
	if c.AI.Backend == "" {
		c.AI.Backend = "groq"
	}
	if c.AI.Model == "" {
		c.AI.Model = "llama-3.3-70b-versatile"
	}
	if c.AI.BaseURL == "" {
		c.AI.BaseURL = "https://api.groq.com/openai/v1"
	}
	if c.AI.Region == "" {
		c.AI.Region = "us-east-1"
	}
	if c.AI.TimeoutSeconds == 0 {
		c.AI.TimeoutSeconds = 30
	}
	if c.Delivery.Backend == "" {
		c.Delivery.Backend = "smtp"
	}
	if c.Delivery.Port == 0 {
		c.Delivery.Port = 587
	}
	if c.Delivery.RatePerMinute == 0 {
		c.Delivery.RatePerMinute = 10
	}
	if c.Delivery.BatchSize == 0 {
		c.Delivery.BatchSize = 10
	}
	if c.Delivery.BatchPauseSeconds == 0 {
		c.Delivery.BatchPauseSeconds = 60
	}
	if c.Delivery.MaxRetries == 0 {
		c.Delivery.MaxRetries = 3
	}
	if c.Delivery.RetryDelaySeconds == 0 {
		c.Delivery.RetryDelaySeconds = 5
	}
	if c.SES.Region == "" {
		c.SES.Region = "us-east-1"
	}
	if c.Ledger.RedisAddr == "" {
		c.Ledger.RedisAddr = "localhost:6379"
	}
	if c.Ledger.TTLHours == 0 {
		c.Ledger.TTLHours = 240
	}
	if c.Sender.Name == "" {
		c.Sender.Name = "Outreach Team"
	}
	if c.Sender.Organization == "" {
		c.Sender.Organization = "Funding Forward"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

var validate = validator.New()

// ValidateForSending checks that the delivery configuration is complete
// enough to actually send email. Generation-only runs never call this.
func (c *Config) ValidateForSending() error {
	if err := validate.Struct(c.Delivery); err != nil {
		return fmt.Errorf("delivery config: %w", err)
	}
	if c.Delivery.From == "" {
		return fmt.Errorf("delivery config: from address is required")
	}

	switch c.Delivery.Backend {
	case "smtp":
		if c.Delivery.Host == "" {
			return fmt.Errorf("delivery config: smtp host is required")
		}
		if c.Delivery.User == "" || c.Delivery.Password == "" {
			return fmt.Errorf("delivery config: smtp credentials are required")
		}
	case "ses":
		if c.SES.AccessKey == "" || c.SES.SecretKey == "" {
			return fmt.Errorf("delivery config: ses credentials are required")
		}
	default:
		return fmt.Errorf("delivery config: unknown backend %q", c.Delivery.Backend)
	}
	return nil
}
