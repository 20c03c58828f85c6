package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every service setting.
type Config struct {
	Server  ServerConfig
	Auth    AuthConfig
	Limiter LimiterConfig
	Session SessionConfig
	Typing  TypingConfig
	Locale  LocaleConfig
	AI      AIConfig
}

// Load reads configuration from environment variables. Structural
// misconfiguration fails here and prevents startup.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	limiter, err := loadLimiterConfig()
	if err != nil {
		return nil, err
	}

	sess, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	typing, err := loadTypingConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		Auth:    AuthConfig{JWTSecret: strings.TrimSpace(os.Getenv("AUTH_JWT_SECRET"))},
		Limiter: limiter,
		Session: sess,
		Typing:  typing,
		Locale:  LocaleConfig{Default: getEnvOrDefault("DEFAULT_LOCALE", "en")},
		AI:      ai,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" verbatim.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AuthConfig holds the handshake credential settings. An empty JWTSecret
// disables verification and admits anonymous connections.
type AuthConfig struct {
	JWTSecret string
}

// Enabled reports whether credential verification is required.
func (c AuthConfig) Enabled() bool {
	return c.JWTSecret != ""
}

// LimiterConfig tunes admission control.
type LimiterConfig struct {
	RatePerWindow float64
	BurstCapacity float64
	WindowSeconds int
	BucketMaxIdle time.Duration
	PurgeInterval time.Duration
}

func loadLimiterConfig() (LimiterConfig, error) {
	rate, err := parseOptionalFloatEnv("LIMITER_RATE_PER_WINDOW")
	if err != nil {
		return LimiterConfig{}, err
	}
	burst, err := parseOptionalFloatEnv("LIMITER_BURST_CAPACITY")
	if err != nil {
		return LimiterConfig{}, err
	}
	window, err := parseOptionalIntEnv("LIMITER_WINDOW_SECONDS")
	if err != nil {
		return LimiterConfig{}, err
	}
	maxIdle, err := parseOptionalIntEnv("LIMITER_BUCKET_MAX_IDLE_SECONDS")
	if err != nil {
		return LimiterConfig{}, err
	}
	purge, err := parseOptionalIntEnv("LIMITER_PURGE_SECONDS")
	if err != nil {
		return LimiterConfig{}, err
	}

	cfg := LimiterConfig{
		RatePerWindow: 60,
		BurstCapacity: 10,
		WindowSeconds: 60,
		BucketMaxIdle: time.Hour,
		PurgeInterval: 5 * time.Minute,
	}
	if rate != nil {
		cfg.RatePerWindow = *rate
	}
	if burst != nil {
		cfg.BurstCapacity = *burst
	}
	if window != nil {
		cfg.WindowSeconds = *window
	}
	if maxIdle != nil {
		cfg.BucketMaxIdle = time.Duration(*maxIdle) * time.Second
	}
	if purge != nil {
		cfg.PurgeInterval = time.Duration(*purge) * time.Second
	}
	return cfg, nil
}

// SessionConfig tunes the session registry and liveness monitoring.
type SessionConfig struct {
	MaxSessions       int
	IdleCeiling       time.Duration
	SweepInterval     time.Duration
	HeartbeatInterval time.Duration
	ReadTimeout       time.Duration
}

func loadSessionConfig() (SessionConfig, error) {
	maxSessions, err := parseOptionalIntEnv("SESSION_MAX")
	if err != nil {
		return SessionConfig{}, err
	}
	idle, err := parseOptionalIntEnv("SESSION_IDLE_CEILING_SECONDS")
	if err != nil {
		return SessionConfig{}, err
	}
	sweep, err := parseOptionalIntEnv("SESSION_SWEEP_SECONDS")
	if err != nil {
		return SessionConfig{}, err
	}
	heartbeat, err := parseOptionalIntEnv("HEARTBEAT_INTERVAL_SECONDS")
	if err != nil {
		return SessionConfig{}, err
	}
	readTimeout, err := parseOptionalIntEnv("SESSION_READ_TIMEOUT_SECONDS")
	if err != nil {
		return SessionConfig{}, err
	}

	cfg := SessionConfig{
		MaxSessions:       500,
		IdleCeiling:       30 * time.Minute,
		SweepInterval:     60 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		ReadTimeout:       60 * time.Second,
	}
	if maxSessions != nil {
		cfg.MaxSessions = *maxSessions
	}
	if idle != nil {
		cfg.IdleCeiling = time.Duration(*idle) * time.Second
	}
	if sweep != nil {
		cfg.SweepInterval = time.Duration(*sweep) * time.Second
	}
	if heartbeat != nil {
		cfg.HeartbeatInterval = time.Duration(*heartbeat) * time.Second
	}
	if readTimeout != nil {
		cfg.ReadTimeout = time.Duration(*readTimeout) * time.Second
	}
	return cfg, nil
}

// TypingConfig bounds simulated typing delays.
type TypingConfig struct {
	MinDelay float64
	MaxDelay float64
}

func loadTypingConfig() (TypingConfig, error) {
	minDelay, err := parseOptionalFloatEnv("TYPING_MIN_DELAY")
	if err != nil {
		return TypingConfig{}, err
	}
	maxDelay, err := parseOptionalFloatEnv("TYPING_MAX_DELAY")
	if err != nil {
		return TypingConfig{}, err
	}

	cfg := TypingConfig{MinDelay: 0.5, MaxDelay: 8.0}
	if minDelay != nil {
		cfg.MinDelay = *minDelay
	}
	if maxDelay != nil {
		cfg.MaxDelay = *maxDelay
	}
	if cfg.MinDelay <= 0 || cfg.MaxDelay < cfg.MinDelay {
		return TypingConfig{}, fmt.Errorf("invalid typing delay bounds: min=%v max=%v", cfg.MinDelay, cfg.MaxDelay)
	}
	return cfg, nil
}

// LocaleConfig selects the fallback locale.
type LocaleConfig struct {
	Default string
}

// AIConfig describes the optional chat-model backend for decoy replies.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled reports whether the required model credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel constructs a model instance from this configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("model credentials missing: provide ARK_API_KEY + ARK_MODEL, or AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
