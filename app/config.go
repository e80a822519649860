package main

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"

	"github.com/sushihentaime/quillpress/internal/genservice"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Environment string `mapstructure:"ENVIRONMENT"`
	Version     string `mapstructure:"VERSION"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	LogFormat   string `mapstructure:"LOG_FORMAT"`
	TLSCertFile string `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile  string `mapstructure:"TLS_KEY_FILE"`
	RedisURL    string `mapstructure:"REDIS_URL"`

	DB       DBConfig       `mapstructure:",squash"`
	Mail     MailConfig     `mapstructure:",squash"`
	RabbitMQ RabbitMQConfig `mapstructure:",squash"`
	OpenAI   OpenAIConfig   `mapstructure:",squash"`
	Gen      GenConfig      `mapstructure:",squash"`
	Auth     AuthConfig     `mapstructure:",squash"`
}

type DBConfig struct {
	Host     string `mapstructure:"POSTGRES_HOST"`
	Port     string `mapstructure:"POSTGRES_PORT"`
	User     string `mapstructure:"POSTGRES_USER"`
	Password string `mapstructure:"POSTGRES_PASSWORD"`
	Name     string `mapstructure:"POSTGRES_DB"`
	SSLMode  string `mapstructure:"POSTGRES_SSLMODE"`
}

type MailConfig struct {
	Host     string `mapstructure:"MAIL_HOST"`
	Port     int    `mapstructure:"MAIL_PORT"`
	User     string `mapstructure:"MAIL_USER"`
	Password string `mapstructure:"MAIL_PASSWORD"`
	Sender   string `mapstructure:"MAIL_SENDER"`
	AppURL   string `mapstructure:"MAIL_APP_URL"`
}

type RabbitMQConfig struct {
	Host     string `mapstructure:"RABBITMQ_HOST"`
	Port     string `mapstructure:"RABBITMQ_PORT"`
	User     string `mapstructure:"RABBITMQ_USER"`
	Password string `mapstructure:"RABBITMQ_PASSWORD"`
}

type OpenAIConfig struct {
	APIKey       string `mapstructure:"OPENAI_API_KEY"`
	BaseURL      string `mapstructure:"OPENAI_BASE_URL"`
	TextModel    string `mapstructure:"OPENAI_TEXT_MODEL"`
	ImageModel   string `mapstructure:"OPENAI_IMAGE_MODEL"`
	ImageSize    string `mapstructure:"OPENAI_IMAGE_SIZE"`
	ImageQuality string `mapstructure:"OPENAI_IMAGE_QUALITY"`
}

type GenConfig struct {
	TextTimeout   time.Duration `mapstructure:"GENERATION_TEXT_TIMEOUT"`
	ImageTimeout  time.Duration `mapstructure:"GENERATION_IMAGE_TIMEOUT"`
	RatePerMinute int           `mapstructure:"GENERATION_RATE_PER_MINUTE"`
	Burst         int           `mapstructure:"GENERATION_BURST"`
}

type AuthConfig struct {
	JWTSecret     string `mapstructure:"AUTH_JWT_SECRET"`
	JWTIssuer     string `mapstructure:"AUTH_JWT_ISSUER"`
	WebhookSecret string `mapstructure:"WEBHOOK_SECRET"`
}

var configDefaults = map[string]any{
	"PORT":                       ":4000",
	"ENVIRONMENT":                "development",
	"VERSION":                    "dev",
	"LOG_LEVEL":                  "info",
	"LOG_FORMAT":                 "text",
	"TLS_CERT_FILE":              "",
	"TLS_KEY_FILE":               "",
	"REDIS_URL":                  "",
	"POSTGRES_HOST":              "localhost",
	"POSTGRES_PORT":              "5432",
	"POSTGRES_USER":              "",
	"POSTGRES_PASSWORD":          "",
	"POSTGRES_DB":                "quillpress",
	"POSTGRES_SSLMODE":           "disable",
	"MAIL_HOST":                  "",
	"MAIL_PORT":                  587,
	"MAIL_USER":                  "",
	"MAIL_PASSWORD":              "",
	"MAIL_SENDER":                "",
	"MAIL_APP_URL":               "http://localhost:3000",
	"RABBITMQ_HOST":              "localhost",
	"RABBITMQ_PORT":              "5672",
	"RABBITMQ_USER":              "guest",
	"RABBITMQ_PASSWORD":          "guest",
	"OPENAI_API_KEY":             "",
	"OPENAI_BASE_URL":            "",
	"OPENAI_TEXT_MODEL":          "",
	"OPENAI_IMAGE_MODEL":         "",
	"OPENAI_IMAGE_SIZE":          "1792x1024",
	"OPENAI_IMAGE_QUALITY":       "standard",
	"GENERATION_TEXT_TIMEOUT":    "120s",
	"GENERATION_IMAGE_TIMEOUT":   "60s",
	"GENERATION_RATE_PER_MINUTE": 5,
	"GENERATION_BURST":           2,
	"AUTH_JWT_SECRET":            "",
	"AUTH_JWT_ISSUER":            "",
	"WEBHOOK_SECRET":             "",
}

// loadConfig reads the env file at path, if it exists, and lets the environment override it.
func loadConfig(path string) (*Config, error) {
	v := viper.New()
	for key, value := range configDefaults {
		v.SetDefault(key, value)
	}

	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	switch {
	case c.Auth.JWTSecret == "":
		return errors.New("AUTH_JWT_SECRET must be set")
	case c.OpenAI.APIKey == "":
		return errors.New("OPENAI_API_KEY must be set")
	case c.Auth.WebhookSecret == "":
		return errors.New("WEBHOOK_SECRET must be set")
	case c.Environment == "production" && (c.TLSCertFile == "" || c.TLSKeyFile == ""):
		return errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set in production")
	case c.Gen.RatePerMinute > 0 && c.Gen.Burst < 1:
		return errors.New("GENERATION_BURST must be at least 1 when GENERATION_RATE_PER_MINUTE is set")
	}

	if err := genservice.ValidateImageOptions(c.OpenAI.ImageSize, c.OpenAI.ImageQuality); err != nil {
		return fmt.Errorf("OPENAI_IMAGE_SIZE or OPENAI_IMAGE_QUALITY: %w", err)
	}

	return nil
}

func (c *Config) rabbitMQURI() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", c.RabbitMQ.User, c.RabbitMQ.Password, c.RabbitMQ.Host, c.RabbitMQ.Port)
}
