package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Email    EmailConfig    `yaml:"email"`
	Frontend FrontendConfig `yaml:"frontend"`
	Redis    RedisConfig    `yaml:"redis"`
	Storage  StorageConfig  `yaml:"storage"`
	Cleanup  CleanupConfig  `yaml:"cleanup"`
	Admin    AdminConfig    `yaml:"admin"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	GinMode         string        `yaml:"gin_mode"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// GetDSN returns the explicit DSN if set, otherwise builds one for the driver.
func (d DatabaseConfig) GetDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	switch d.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			d.Host, d.Port, d.User, d.Password, d.Name)
	case "sqlite":
		return d.Name
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.User, d.Password, d.Host, d.Port, d.Name)
	}
}

type JWTConfig struct {
	Secret   string        `yaml:"secret"`
	Issuer   string        `yaml:"issuer"`
	Audience string        `yaml:"audience"`
	TokenTTL time.Duration `yaml:"token_ttl"`
	ResetTTL time.Duration `yaml:"reset_ttl"`
}

type EmailConfig struct {
	SMTPHost  string `yaml:"smtp_host"`
	SMTPPort  int    `yaml:"smtp_port"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

type FrontendConfig struct {
	BaseURL string `yaml:"base_url"`
}

type RedisConfig struct {
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	UnreadTTL time.Duration `yaml:"unread_ttl"`
}

type StorageConfig struct {
	LocalDir  string `yaml:"local_dir"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	MaxUpload int64  `yaml:"max_upload_bytes"`
}

type CleanupConfig struct {
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
}

// AdminConfig seeds the first administrator so that admin-only registration
// has someone to call it.
type AdminConfig struct {
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file or environment overrides exist.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			GinMode:         "debug",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     "3306",
			User:     "portal",
			Password: "portalpassword",
			Name:     "custor_portal",
		},
		JWT: JWTConfig{
			Secret:   "default-secret-key-change-me",
			Issuer:   "custor-portal",
			Audience: "custor-portal-clients",
			TokenTTL: time.Hour,
			ResetTTL: 30 * time.Minute,
		},
		Email: EmailConfig{
			SMTPHost: "smtp.gmail.com",
			SMTPPort: 587,
			FromName: "Custor Portal",
		},
		Frontend: FrontendConfig{
			BaseURL: "http://localhost:4200",
		},
		Redis: RedisConfig{
			UnreadTTL: 5 * time.Minute,
		},
		Storage: StorageConfig{
			LocalDir:  "./uploads",
			MaxUpload: 50 << 20,
		},
		Cleanup: CleanupConfig{
			Schedule:      "0 3 * * *",
			RetentionDays: 30,
		},
		Admin: AdminConfig{
			FirstName: "Portal",
			LastName:  "Admin",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path (a missing file is not an error) and then
// applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Server.GinMode = getEnv("GIN_MODE", cfg.Server.GinMode)

	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.DSN = getEnv("DATABASE_URL", cfg.Database.DSN)
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnv("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = getEnv("DB_NAME", cfg.Database.Name)

	cfg.JWT.Secret = getEnv("JWT_SECRET", cfg.JWT.Secret)
	cfg.JWT.Issuer = getEnv("JWT_ISSUER", cfg.JWT.Issuer)
	cfg.JWT.Audience = getEnv("JWT_AUDIENCE", cfg.JWT.Audience)
	cfg.JWT.TokenTTL = getEnvDuration("JWT_TOKEN_TTL", cfg.JWT.TokenTTL)
	cfg.JWT.ResetTTL = getEnvDuration("JWT_RESET_TTL", cfg.JWT.ResetTTL)

	cfg.Email.SMTPHost = getEnv("SMTP_HOST", cfg.Email.SMTPHost)
	cfg.Email.SMTPPort = getEnvInt("SMTP_PORT", cfg.Email.SMTPPort)
	cfg.Email.Username = getEnv("SMTP_USERNAME", cfg.Email.Username)
	cfg.Email.Password = getEnv("SMTP_PASSWORD", cfg.Email.Password)
	cfg.Email.FromEmail = getEnv("SMTP_FROM", cfg.Email.FromEmail)

	cfg.Frontend.BaseURL = getEnv("FRONTEND_BASE_URL", cfg.Frontend.BaseURL)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)

	cfg.Storage.LocalDir = getEnv("STORAGE_LOCAL_DIR", cfg.Storage.LocalDir)
	cfg.Storage.Bucket = getEnv("S3_BUCKET", cfg.Storage.Bucket)
	cfg.Storage.Region = getEnv("S3_REGION", cfg.Storage.Region)
	cfg.Storage.Endpoint = getEnv("S3_ENDPOINT", cfg.Storage.Endpoint)
	cfg.Storage.AccessKey = getEnv("S3_ACCESS_KEY", cfg.Storage.AccessKey)
	cfg.Storage.SecretKey = getEnv("S3_SECRET_KEY", cfg.Storage.SecretKey)

	cfg.Cleanup.Schedule = getEnv("CLEANUP_SCHEDULE", cfg.Cleanup.Schedule)
	cfg.Cleanup.RetentionDays = getEnvInt("CLEANUP_RETENTION_DAYS", cfg.Cleanup.RetentionDays)

	cfg.Admin.Email = getEnv("ADMIN_EMAIL", cfg.Admin.Email)
	cfg.Admin.Password = getEnv("ADMIN_PASSWORD", cfg.Admin.Password)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
