package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		return name
	})
	return v
}()

// Config holds cinemind configuration.
// Stored at: ./config.yaml or ~/.cinemind/config.yaml
type Config struct {
	Server    ServerCfg    `mapstructure:"server" yaml:"server"`
	Logging   LoggingCfg   `mapstructure:"logging" yaml:"logging"`
	Store     StoreCfg     `mapstructure:"store" yaml:"store"`
	Auth      AuthCfg      `mapstructure:"auth" yaml:"auth"`
	AI        AICfg        `mapstructure:"ai" yaml:"ai"`
	RateLimit RateLimitCfg `mapstructure:"rate_limit" yaml:"rate_limit"`
}

// ServerCfg configures the HTTP listener.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port" validate:"required,numeric"`
}

// LoggingCfg configures the slog handler. Level is hot-reloadable.
type LoggingCfg struct {
	Level  string `mapstructure:"level" yaml:"level"` // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
}

// StoreCfg selects and configures catalog and user persistence.
type StoreCfg struct {
	Backend  string      `mapstructure:"backend" yaml:"backend" validate:"oneof=memory defra"`
	SeedFile string      `mapstructure:"seed_file" yaml:"seed_file"` // YAML catalog loaded into an empty store
	Defra    DefraConfig `mapstructure:"defra" yaml:"defra"`
}

// DefraConfig holds DefraDB settings.
type DefraConfig struct {
	// URL of an already running DefraDB. When empty, a managed container is started.
	URL string `mapstructure:"url" yaml:"url"`
	// ContainerName is the Docker container name (default: cinemind-defra)
	ContainerName string `mapstructure:"container_name" yaml:"container_name"`
	// Image is the Docker image to use (default: sourcenetwork/defradb:latest)
	Image string `mapstructure:"image" yaml:"image"`
	// Port is the host port to bind (default: 9181)
	Port string `mapstructure:"port" yaml:"port"`
}

// AuthCfg configures identity tokens and admin assignment.
type AuthCfg struct {
	JWTSecret   string        `mapstructure:"jwt_secret" yaml:"jwt_secret"` // supports ${ENV_VAR}
	TokenTTL    time.Duration `mapstructure:"token_ttl" yaml:"token_ttl" validate:"gt=0"`
	AdminEmails []string      `mapstructure:"admin_emails" yaml:"admin_emails" validate:"dive,email"`
}

// AICfg configures the generative model. It is read once at startup.
type AICfg struct {
	Provider string        `mapstructure:"provider" yaml:"provider" validate:"oneof=gemini openai mock"`
	Endpoint string        `mapstructure:"endpoint" yaml:"endpoint"` // optional base URL override
	Model    string        `mapstructure:"model" yaml:"model"`
	APIKey   string        `mapstructure:"api_key" yaml:"api_key"` // supports ${ENV_VAR}; empty disables AI
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`

	MaxRecommendations       int `mapstructure:"max_recommendations" yaml:"max_recommendations" validate:"gte=1"`
	SnapshotDescriptionLimit int `mapstructure:"snapshot_description_limit" yaml:"snapshot_description_limit" validate:"gte=0"`

	// CallLogSize bounds the in-memory model call log.
	CallLogSize int `mapstructure:"call_log_size" yaml:"call_log_size" validate:"gte=0"`

	// MockResponse is returned by the mock provider.
	MockResponse string `mapstructure:"mock_response" yaml:"mock_response"`
}

// RateLimitCfg bounds requests to the AI endpoints per client IP.
type RateLimitCfg struct {
	AIRequests int           `mapstructure:"ai_requests" yaml:"ai_requests" validate:"gte=0"`
	AIWindow   time.Duration `mapstructure:"ai_window" yaml:"ai_window" validate:"gt=0"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: "8080",
		},
		Logging: LoggingCfg{
			Level:  "info",
			Format: "text",
		},
		Store: StoreCfg{
			Backend: "memory",
			Defra: DefraConfig{
				ContainerName: "cinemind-defra",
				Image:         "sourcenetwork/defradb:latest",
				Port:          "9181",
			},
		},
		Auth: AuthCfg{
			JWTSecret:   "${CINEMIND_JWT_SECRET}",
			TokenTTL:    30 * 24 * time.Hour,
			AdminEmails: []string{},
		},
		AI: AICfg{
			Provider:                 "gemini",
			Model:                    "gemini-2.5-flash",
			APIKey:                   "${GEMINI_API_KEY}",
			Timeout:                  15 * time.Second,
			MaxRecommendations:       5,
			SnapshotDescriptionLimit: 300,
			CallLogSize:              200,
		},
		RateLimit: RateLimitCfg{
			AIRequests: 20,
			AIWindow:   time.Minute,
		},
	}
}

// AIKey returns the API key with ${ENV_VAR} references expanded.
func (c *Config) AIKey() string {
	return ResolveEnvVars(c.AI.APIKey)
}

// AIEnabled reports whether a usable credential is configured. The mock
// provider needs none.
func (c *Config) AIEnabled() bool {
	return c.AI.Provider == "mock" || c.AIKey() != ""
}

// Secret returns the JWT signing secret with ${ENV_VAR} references expanded.
func (c *Config) Secret() string {
	return ResolveEnvVars(c.Auth.JWTSecret)
}

// Validate rejects settings the server cannot start with. Errors name the
// config key, e.g. "store.backend".
func (c *Config) Validate() error {
	err := validate.Struct(c)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, len(ve))
	for i, fe := range ve {
		msgs[i] = fmt.Sprintf("%s: failed %q (got %v)", configKey(fe.Namespace()), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// configKey turns "Config.store.backend" into "store.backend".
func configKey(namespace string) string {
	_, key, _ := strings.Cut(namespace, ".")
	return key
}
