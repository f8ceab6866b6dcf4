package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values. It is built once by Load and passed to every component.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	JWTTTLHours       int    `mapstructure:"JWT_TTL_HOURS"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	CORSOrigins       string `mapstructure:"CORS_ORIGINS"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisAuthDB   int    `mapstructure:"REDIS_AUTH_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Payments.
	PaymentGateway       string `mapstructure:"PAYMENT_GATEWAY"`
	PaymentCurrency      string `mapstructure:"PAYMENT_CURRENCY"`
	RazorpayKeyID        string `mapstructure:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret    string `mapstructure:"RAZORPAY_KEY_SECRET"`
	StripeSecretKey      string `mapstructure:"STRIPE_SECRET_KEY"`
	StripePublishableKey string `mapstructure:"STRIPE_PUBLISHABLE_KEY"`

	// Chat assistant.
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel  string `mapstructure:"GEMINI_MODEL"`

	// Image host.
	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`

	// Push notifications.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	// Email.
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`
}

var defaults = map[string]any{
	"APP_PORT":                  "8080",
	"ENV":                       "development",
	"LOG_LEVEL":                 "info",
	"MAX_REQUESTS_PER_MIN":      100,
	"CORS_ORIGINS":              "*",
	"DATABASE_URL":              "mongodb://localhost:27017",
	"DATABASE_NAME":             "cropconnect",
	"JWT_SECRET":                "",
	"JWT_TTL_HOURS":             72,
	"REDIS_ADDR":                "localhost:6379",
	"REDIS_PASSWORD":            "",
	"REDIS_CACHE_DB":            0,
	"REDIS_AUTH_DB":             1,
	"REDIS_QUEUE_DB":            2,
	"PAYMENT_GATEWAY":           "razorpay",
	"PAYMENT_CURRENCY":          "INR",
	"RAZORPAY_KEY_ID":           "",
	"RAZORPAY_KEY_SECRET":       "",
	"STRIPE_SECRET_KEY":         "",
	"STRIPE_PUBLISHABLE_KEY":    "",
	"GEMINI_API_KEY":            "",
	"GEMINI_MODEL":              "gemini-1.5-flash",
	"CLOUDINARY_CLOUD_NAME":     "",
	"CLOUDINARY_API_KEY":        "",
	"CLOUDINARY_API_SECRET":     "",
	"FIREBASE_CREDENTIALS_FILE": "",
	"SMTP_HOST":                 "",
	"SMTP_PORT":                 587,
	"SMTP_USER":                 "",
	"SMTP_PASSWORD":             "",
	"SMTP_FROM":                 "",
}

// Load reads config.yaml (current or ./config directory), a .env file and the environment.
// Environment variables win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	// Every key needs a default so AutomaticEnv can see it during Unmarshal.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.PaymentGateway = strings.ToLower(cfg.PaymentGateway)
	if cfg.IsProduction() && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "cropconnect-dev-secret"
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// RazorpayConfigured reports whether gateway credentials are present.
func (c *Config) RazorpayConfigured() bool {
	return c.RazorpayKeyID != "" && c.RazorpayKeySecret != ""
}

func (c *Config) StripeConfigured() bool {
	return c.StripeSecretKey != ""
}

func (c *Config) CloudinaryConfigured() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}
