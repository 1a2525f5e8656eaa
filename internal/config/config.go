package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const defaultConfigPath = "./config/local.yaml"

type Config struct {
	Env         string `yaml:"env" env:"ENV" env-default:"local"`
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-required:"true"`
	HTTPServer  `yaml:"http_server"`
	Redis       Redis   `yaml:"redis"`
	Booking     Booking `yaml:"booking"`
	Auth        Auth    `yaml:"auth"`
	Kafka       Kafka   `yaml:"kafka"`
	Files       Files   `yaml:"files"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout         time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"4s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"15s"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" env:"HTTP_MAX_UPLOAD_BYTES" env-default:"10485760"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS" env-separator:","`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Booking struct {
	LockTTL  time.Duration `yaml:"lock_ttl" env:"BOOKING_LOCK_TTL" env-default:"10s"`
	LockWait time.Duration `yaml:"lock_wait" env:"BOOKING_LOCK_WAIT" env-default:"2s"`
	// Location is an IANA zone name. Empty means the process local zone.
	Location string `yaml:"location" env:"BOOKING_LOCATION"`
}

type Auth struct {
	SessionTTL    time.Duration `yaml:"session_ttl" env:"AUTH_SESSION_TTL" env-default:"24h"`
	LoginAttempts int           `yaml:"login_attempts" env:"AUTH_LOGIN_ATTEMPTS" env-default:"5"`
	LoginWindow   time.Duration `yaml:"login_window" env:"AUTH_LOGIN_WINDOW" env-default:"15m"`
	AdminEmail    string        `yaml:"admin_email" env:"AUTH_ADMIN_EMAIL"`
	AdminPassword string        `yaml:"admin_password" env:"AUTH_ADMIN_PASSWORD"`
	AdminName     string        `yaml:"admin_name" env:"AUTH_ADMIN_NAME" env-default:"Administrator"`
}

type Kafka struct {
	Brokers      []string      `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	Topic        string        `yaml:"topic" env:"KAFKA_TOPIC" env-default:"booking-events"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"KAFKA_WRITE_TIMEOUT" env-default:"5s"`
}

type Files struct {
	Dir string `yaml:"dir" env:"FILES_DIR" env-default:"./data/documents"`
}

// Loc resolves Location.
func (b Booking) Loc() (*time.Location, error) {
	if b.Location == "" {
		return time.Local, nil
	}
	return time.LoadLocation(b.Location)
}

func Load(configPath string) (*Config, error) {
	const op = "config.Load"

	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("%s: config file does not exist: %s", op, configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := cfg.Booking.Loc(); err != nil {
		return nil, fmt.Errorf("%s: booking.location: %w", op, err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Failed to read .env file: %v", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	return cfg
}
