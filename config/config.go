package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backends.
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

var defaultPorts = map[string]string{
	"auth":      "3000",
	"product":   "3001",
	"cart":      "3002",
	"order":     "3003",
	"payment":   "3004",
	"assistant": "3005",
}

// Config is the runtime configuration shared by every service binary.
type Config struct {
	Service string
	Port    string
	Store   string

	MongoURI string
	DBName   string

	JWTSecret    string
	TokenTTL     time.Duration
	CookieSecure bool
	RedisAddr    string

	CartURL       string
	ProductURL    string
	OrderURL      string
	ClientTimeout time.Duration

	AMQPURL   string
	JaegerURL string

	RazorpayKeyID     string
	RazorpayKeySecret string

	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string
	MaxSteps   int

	AllowedOrigins []string
	LogLevel       string
}

// LoadEnv loads a .env file when present and binds the environment to viper.
func LoadEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/supernova")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("failed to read config file", "error", err)
		}
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// GetEnv returns the value of key or fallback when it is unset.
func GetEnv(key, fallback string) string {
	if value := viper.GetString(key); value != "" {
		return value
	}
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// Load builds the configuration for the named service.
func Load(service string) Config {
	v := viper.GetViper()
	v.SetDefault("DB_NAME", "supernova")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("STORE", StoreMongo)
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("CLIENT_TIMEOUT", "5s")
	v.SetDefault("CART_URL", "http://localhost:3002")
	v.SetDefault("PRODUCT_URL", "http://localhost:3001")
	v.SetDefault("ORDER_URL", "http://localhost:3003")
	v.SetDefault("LLM_BASE_URL", "https://api.groq.com/openai/v1")
	v.SetDefault("LLM_MODEL", "llama-3.1-8b-instant")
	v.SetDefault("ASSISTANT_MAX_STEPS", 8)
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("LOG_LEVEL", "info")

	return Config{
		Service:           service,
		Port:              GetEnv("PORT", defaultPorts[service]),
		Store:             strings.ToLower(v.GetString("STORE")),
		MongoURI:          v.GetString("MONGO_URI"),
		DBName:            v.GetString("DB_NAME"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		TokenTTL:          v.GetDuration("TOKEN_TTL"),
		CookieSecure:      v.GetBool("COOKIE_SECURE"),
		RedisAddr:         v.GetString("REDIS_ADDR"),
		CartURL:           v.GetString("CART_URL"),
		ProductURL:        v.GetString("PRODUCT_URL"),
		OrderURL:          v.GetString("ORDER_URL"),
		ClientTimeout:     v.GetDuration("CLIENT_TIMEOUT"),
		AMQPURL:           v.GetString("AMQP_URL"),
		JaegerURL:         v.GetString("JAEGER_URL"),
		RazorpayKeyID:     v.GetString("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: v.GetString("RAZORPAY_KEY_SECRET"),
		LLMBaseURL:        v.GetString("LLM_BASE_URL"),
		LLMModel:          v.GetString("LLM_MODEL"),
		LLMAPIKey:         v.GetString("LLM_API_KEY"),
		MaxSteps:          v.GetInt("ASSISTANT_MAX_STEPS"),
		AllowedOrigins:    splitList(v.GetString("ALLOWED_ORIGINS")),
		LogLevel:          v.GetString("LOG_LEVEL"),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// SetupLogger installs a JSON slog logger tagged with the service name.
func SetupLogger(cfg Config) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler).With("service", cfg.Service))
}
