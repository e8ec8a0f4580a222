package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port         int           `mapstructure:"port" envconfig:"SERVER_PORT"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" envconfig:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host" envconfig:"DB_HOST"`
	Port         int    `mapstructure:"port" envconfig:"DB_PORT"`
	User         string `mapstructure:"user" envconfig:"DB_USER"`
	Password     string `mapstructure:"password" envconfig:"DB_PASSWORD"`
	Name         string `mapstructure:"name" envconfig:"DB_NAME"`
	SSLMode      string `mapstructure:"sslmode" envconfig:"DB_SSLMODE"`
	MaxOpenConns int    `mapstructure:"max_open_conns" envconfig:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" envconfig:"DB_MAX_IDLE_CONNS"`
}

type JWTConfig struct {
	Secret            string `mapstructure:"secret" envconfig:"JWT_SECRET"`
	RefreshSecret     string `mapstructure:"refresh_secret" envconfig:"JWT_REFRESH_SECRET"`
	AccessExpiryMins  int    `mapstructure:"access_expiry_minutes" envconfig:"JWT_ACCESS_EXPIRY_MINUTES"`
	RefreshExpiryDays int    `mapstructure:"refresh_expiry_days" envconfig:"JWT_REFRESH_EXPIRY_DAYS"`
}

type RedisConfig struct {
	Enabled bool   `mapstructure:"enabled" envconfig:"REDIS_ENABLED"`
	URL     string `mapstructure:"url" envconfig:"REDIS_URL"`
}

type SMTPConfig struct {
	Enabled  bool   `mapstructure:"enabled" envconfig:"SMTP_ENABLED"`
	Host     string `mapstructure:"host" envconfig:"SMTP_HOST"`
	Port     int    `mapstructure:"port" envconfig:"SMTP_PORT"`
	Username string `mapstructure:"username" envconfig:"SMTP_USERNAME"`
	Password string `mapstructure:"password" envconfig:"SMTP_PASSWORD"`
	From     string `mapstructure:"from" envconfig:"SMTP_FROM"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled" envconfig:"RATELIMIT_ENABLED"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" envconfig:"RATELIMIT_RPS"`
	Burst             int     `mapstructure:"burst" envconfig:"RATELIMIT_BURST"`
}

// AppointmentsConfig selects which visiting-hours policy is enforced.
// Both variants existed in the product; neither is authoritative yet.
// Timezone is the clinic's IANA zone; the booking date boundary is
// computed in it, not in server time.
type AppointmentsConfig struct {
	SchedulePolicy string `mapstructure:"schedule_policy" envconfig:"APPOINTMENTS_SCHEDULE_POLICY"`
	Timezone       string `mapstructure:"timezone" envconfig:"APPOINTMENTS_TIMEZONE"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" envconfig:"LOG_LEVEL"`
	Pretty bool   `mapstructure:"pretty" envconfig:"LOG_PRETTY"`
}

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	Redis        RedisConfig        `mapstructure:"redis"`
	SMTP         SMTPConfig         `mapstructure:"smtp"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	Appointments AppointmentsConfig `mapstructure:"appointments"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// LoadConfig reads config.yaml and then applies CLINIC_* environment
// overrides on top.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("clinic", &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply env overrides: %w", err)
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("jwt.access_expiry_minutes", 30)
	viper.SetDefault("jwt.refresh_expiry_days", 7)
	viper.SetDefault("rate_limit.requests_per_second", 50)
	viper.SetDefault("rate_limit.burst", 100)
	viper.SetDefault("appointments.schedule_policy", "uniform")
	viper.SetDefault("appointments.timezone", "Asia/Ho_Chi_Minh")
	viper.SetDefault("logging.level", "info")
}
