package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Environment string

const (
	EnvLocal      Environment = "local"
	EnvDev        Environment = "dev"
	EnvStage      Environment = "stage"
	EnvProduction Environment = "production"
)

type Backend string

const (
	BackendGraph Backend = "graph"
	BackendEWS   Backend = "ews"
)

type ConfigBasicClient struct {
	Username string
	Password string
}

type Config struct {
	App struct {
		Version  string      `env:"APP_VERSION" envDefault:"local"`
		Env      Environment `env:"APP_ENV" envDefault:"local"`
		Timezone string      `env:"APP_TIMEZONE" envDefault:"Europe/Moscow"`
		LogLevel string      `env:"APP_LOG_LEVEL" envDefault:"debug"`
	}

	HTTP struct {
		Port string `env:"HTTP_SERVER_PORT" envDefault:"8080"`
		Host string `env:"HTTP_SERVER_HOST" envDefault:"localhost"`
	}

	// Корпоративный домен, на который переписываются адреса переговорок
	Domain string `env:"CORPORATE_DOMAIN"`

	Backend Backend `env:"DIRECTORY_BACKEND" envDefault:"graph"`

	Graph struct {
		TenantID     string `env:"OAUTH_TENANT_ID"`
		ClientID     string `env:"OAUTH_CLIENT_ID"`
		ClientSecret string `env:"OAUTH_CLIENT_SECRET"`
		Authority    string `env:"OAUTH_AUTHORITY" envDefault:"https://login.microsoftonline.com"`
		BaseURL      string `env:"GRAPH_BASE_URL" envDefault:"https://graph.microsoft.com/v1.0"`
	}

	EWS struct {
		URL      string `env:"EWS_URL"`
		Username string `env:"EWS_USERNAME"`
		Password string `env:"EWS_PASSWORD"`
	}

	Search struct {
		MaxDays      int `env:"SEARCH_MAXDAYS" envDefault:"10"`
		MaxRoomLists int `env:"SEARCH_MAXROOMLISTS" envDefault:"10"`
		MaxRooms     int `env:"SEARCH_MAXROOMS" envDefault:"10"`
		MaxItems     int `env:"SEARCH_MAXITEMS" envDefault:"6"`
	}

	Pipeline struct {
		RoomsConcurrency        int           `env:"PIPELINE_ROOMS_CONCURRENCY" envDefault:"4"`
		AppointmentsConcurrency int           `env:"PIPELINE_APPOINTMENTS_CONCURRENCY" envDefault:"8"`
		RequestTimeout          time.Duration `env:"PIPELINE_REQUEST_TIMEOUT" envDefault:"15s"`
	}

	Exclusion struct {
		File  string   `env:"EXCLUSION_FILE"`
		Rooms []string `env:"EXCLUSION_ROOMS" envSeparator:","`
	}

	Auth struct {
		BasicClientsString string `env:"AUTH_BASIC_CLIENTS" envDefault:"rooms:rooms"`
		BasicClients       []ConfigBasicClient
	}

	RabbitMQ struct {
		Enabled  bool   `env:"RABBITMQ_ENABLED"`
		URL      string `env:"RABBITMQ_URL"`
		Queue    string `env:"RABBITMQ_QUEUE" envDefault:"meeting-rooms.rooms"`
		Exchange string `env:"RABBITMQ_EXCHANGE" envDefault:"directory"`
		Bind     string `env:"RABBITMQ_BIND" envDefault:"*.meeting-rooms-svc.rooms.*"`
	}

	Cache struct {
		Enabled  bool          `env:"CACHE_ENABLED" envDefault:"true"`
		Size     int           `env:"CACHE_SIZE" envDefault:"16"`
		TTL      time.Duration `env:"CACHE_TTL" envDefault:"60s"`
		RedisURL string        `env:"CACHE_REDIS_URL"`
	}

	Tracing struct {
		Endpoint string `env:"TRACING_ENDPOINT"`
	}
}

// NewConfig читает .env (если есть) и переменные окружения
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Приведение окружения к нижнему регистру для унификации
	cfg.App.Env = Environment(strings.ToLower(string(cfg.App.Env)))
	cfg.Backend = Backend(strings.ToLower(string(cfg.Backend)))

	cfg.Auth.BasicClients = parseBasicClients(cfg.Auth.BasicClientsString)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseBasicClients(raw string) []ConfigBasicClient {
	clients := []ConfigBasicClient{}
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) == 2 && parts[0] != "" {
			clients = append(clients, ConfigBasicClient{
				Username: parts[0],
				Password: parts[1],
			})
		}
	}
	return clients
}

func (c *Config) Validate() error {
	var errs []error

	limits := map[string]int{
		"SEARCH_MAXDAYS":                    c.Search.MaxDays,
		"SEARCH_MAXROOMLISTS":               c.Search.MaxRoomLists,
		"SEARCH_MAXROOMS":                   c.Search.MaxRooms,
		"SEARCH_MAXITEMS":                   c.Search.MaxItems,
		"PIPELINE_ROOMS_CONCURRENCY":        c.Pipeline.RoomsConcurrency,
		"PIPELINE_APPOINTMENTS_CONCURRENCY": c.Pipeline.AppointmentsConcurrency,
	}
	for name, value := range limits {
		if value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", name, value))
		}
	}

	if c.Pipeline.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("PIPELINE_REQUEST_TIMEOUT must be positive"))
	}

	switch c.Backend {
	case BackendGraph, BackendEWS:
	default:
		errs = append(errs, fmt.Errorf("unknown DIRECTORY_BACKEND %q", c.Backend))
	}

	if c.RabbitMQ.Enabled && c.RabbitMQ.URL == "" {
		errs = append(errs, fmt.Errorf("RABBITMQ_URL is required when RABBITMQ_ENABLED"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsLocal() bool {
	return c.App.Env == EnvLocal
}

func (c *Config) IsNotLocal() bool {
	return c.App.Env == EnvDev || c.App.Env == EnvStage || c.App.Env == EnvProduction
}

// Location возвращает таймзону приложения, при ошибке UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
