package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

type RedisConfig struct {
	URL      string        `mapstructure:"url"`
	TTL      time.Duration `mapstructure:"ttl"`
	PoolSize int           `mapstructure:"pool_size"`
	MinIdle  int           `mapstructure:"min_idle_conns"`
}

// GatewayConfig selects the downstream base URL per path prefix. The env
// variables win over the config file so deployments can rewire the gateway
// without shipping a new config.
type GatewayConfig struct {
	AppointmentsURL   string `mapstructure:"appointments_url" envconfig:"APPOINTMENTS_SERVICE_URL"`
	ItemsURL          string `mapstructure:"items_url" envconfig:"ITEMS_SERVICE_URL"`
	ProxyAppointments bool   `mapstructure:"proxy_appointments" envconfig:"GATEWAY_PROXY_APPOINTMENTS"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type SeedConfig struct {
	FirstSuperuser         string `mapstructure:"first_superuser"`
	FirstSuperuserPassword string `mapstructure:"first_superuser_password"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

func defaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 15*time.Second)
	viper.SetDefault("server.write_timeout", 15*time.Second)
	viper.SetDefault("server.max_header_bytes", 1<<20)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("jwt.expiry_hours", 24)
	viper.SetDefault("redis.ttl", 5*time.Minute)
	viper.SetDefault("gateway.appointments_url", "http://localhost:8001/api/v1/appointments")
	viper.SetDefault("gateway.items_url", "http://localhost:8002/api/v1/items")
	viper.SetDefault("gateway.proxy_appointments", true)
}

// LoadConfig reads config.yaml (optional) and overlays gateway settings from
// the environment.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()
	defaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("", &config.Gateway); err != nil {
		return nil, fmt.Errorf("failed to read gateway environment: %w", err)
	}

	return &config, nil
}
