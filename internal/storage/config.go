package storage

import "github.com/pantrypal/pantrypal/backend/go-services/internal/config"

// MinIOConfig holds MinIO connection configuration
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// FromConfig maps the application config onto the storage package's own
// config type, keeping the minio wrapper importable without viper.
func FromConfig(cfg config.MinIOConfig) *MinIOConfig {
	return &MinIOConfig{
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		UseSSL:    cfg.UseSSL,
		Bucket:    cfg.Bucket,
	}
}
