// Package config loads process configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the service reads at startup.
type Config struct {
	AppPort string
	AppEnv  string

	DatabaseDriver string // "postgres" or "sqlite"
	DatabaseDSN    string
	StoreTimeout   time.Duration

	AccessTokenSecret  string
	AccessTokenExpiry  time.Duration
	RefreshTokenSecret string
	RefreshTokenExpiry time.Duration
	BcryptCost         int

	RabbitMQURL string

	RedisURL       string
	AuthRateLimit  int
	AuthRateWindow time.Duration

	Upload UploadConfig
}

// UploadConfig selects and configures the asset uploader.
type UploadConfig struct {
	Driver  string // "cloudinary" or "s3"
	TempDir string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	S3Region    string
	S3Bucket    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=vidtube port=5432 sslmode=disable")
	v.SetDefault("STORE_TIMEOUT", "5s")
	v.SetDefault("ACCESS_TOKEN_EXPIRY", "1h")
	v.SetDefault("REFRESH_TOKEN_EXPIRY", "240h")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("AUTH_RATE_LIMIT", 20)
	v.SetDefault("AUTH_RATE_WINDOW", "1m")
	v.SetDefault("UPLOAD_DRIVER", "cloudinary")
	v.SetDefault("UPLOAD_TEMP_DIR", "./public/temp")
	v.SetDefault("CLOUDINARY_FOLDER", "vidtube")
	v.SetDefault("S3_REGION", "us-east-1")
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:            v.GetString("APP_PORT"),
		AppEnv:             strings.ToLower(v.GetString("APP_ENV")),
		DatabaseDriver:     strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:        v.GetString("DATABASE_DSN"),
		StoreTimeout:       v.GetDuration("STORE_TIMEOUT"),
		AccessTokenSecret:  v.GetString("ACCESS_TOKEN_SECRET"),
		AccessTokenExpiry:  v.GetDuration("ACCESS_TOKEN_EXPIRY"),
		RefreshTokenSecret: v.GetString("REFRESH_TOKEN_SECRET"),
		RefreshTokenExpiry: v.GetDuration("REFRESH_TOKEN_EXPIRY"),
		BcryptCost:         v.GetInt("BCRYPT_COST"),
		RabbitMQURL:        v.GetString("RABBITMQ_URL"),
		RedisURL:           v.GetString("REDIS_URL"),
		AuthRateLimit:      v.GetInt("AUTH_RATE_LIMIT"),
		AuthRateWindow:     v.GetDuration("AUTH_RATE_WINDOW"),
		Upload: UploadConfig{
			Driver:              strings.ToLower(v.GetString("UPLOAD_DRIVER")),
			TempDir:             v.GetString("UPLOAD_TEMP_DIR"),
			CloudinaryCloudName: v.GetString("CLOUDINARY_CLOUD_NAME"),
			CloudinaryAPIKey:    v.GetString("CLOUDINARY_API_KEY"),
			CloudinaryAPISecret: v.GetString("CLOUDINARY_API_SECRET"),
			CloudinaryFolder:    v.GetString("CLOUDINARY_FOLDER"),
			S3Region:            v.GetString("S3_REGION"),
			S3Bucket:            v.GetString("S3_BUCKET"),
			S3Endpoint:          v.GetString("S3_ENDPOINT"),
			S3AccessKey:         v.GetString("S3_ACCESS_KEY"),
			S3SecretKey:         v.GetString("S3_SECRET_KEY"),
			S3PublicURL:         v.GetString("S3_PUBLIC_URL"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service must not start with.
func (c *Config) Validate() error {
	var errs []error
	if c.AccessTokenSecret == "" {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET is required"))
	}
	if c.RefreshTokenSecret == "" {
		errs = append(errs, errors.New("REFRESH_TOKEN_SECRET is required"))
	}
	if c.AccessTokenSecret != "" && c.AccessTokenSecret == c.RefreshTokenSecret {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ"))
	}
	if c.AccessTokenExpiry <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRY must be positive"))
	}
	if c.RefreshTokenExpiry <= 0 {
		errs = append(errs, errors.New("REFRESH_TOKEN_EXPIRY must be positive"))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT must be positive"))
	}
	if c.RedisURL != "" && (c.AuthRateLimit <= 0 || c.AuthRateWindow <= 0) {
		errs = append(errs, errors.New("AUTH_RATE_LIMIT and AUTH_RATE_WINDOW must be positive when REDIS_URL is set"))
	}
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver))
	}
	switch c.Upload.Driver {
	case "cloudinary", "s3":
	default:
		errs = append(errs, fmt.Errorf("unsupported UPLOAD_DRIVER %q", c.Upload.Driver))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
