package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"lecture-sync/pkg/storage"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	LogFormat   string

	Backend BackendConfig
	Polling PollingConfig
	Storage *storage.StorageConfig
	Cache   CacheConfig
	Events  EventsConfig

	CleanupInterval time.Duration
	TrackerMaxAge   time.Duration
	MaxUploadBytes  int64
}

// BackendConfig décrit l'accès au backend de traitement
type BackendConfig struct {
	URL     string
	UserID  string
	Timeout time.Duration
}

// PollingConfig contient la cadence de polling partagée par tous les syncs
type PollingConfig struct {
	Interval     time.Duration
	FetchTimeout time.Duration
}

// CacheConfig configure le cache partagé des snapshots de jobs
type CacheConfig struct {
	Type          string // "memory", "redis" ou "none"
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// EventsConfig configure l'export des événements vers AMQP (optionnel)
type EventsConfig struct {
	AMQPURL string
}

// NewViper retourne une instance viper avec les variables d'environnement et les valeurs par défaut
func NewViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	bind := func(key, env string, def interface{}) {
		_ = v.BindEnv(key, env)
		v.SetDefault(key, def)
	}

	bind("server.port", "PORT", "8090")
	bind("server.environment", "ENVIRONMENT", "development")
	bind("log.level", "LOG_LEVEL", "info")
	bind("log.format", "LOG_FORMAT", "console")

	bind("backend.url", "BACKEND_URL", "http://localhost:8000/api")
	bind("backend.user_id", "BACKEND_USER_ID", "")
	bind("backend.timeout", "BACKEND_TIMEOUT", "30s")

	bind("polling.interval", "POLL_INTERVAL", "5s")
	bind("polling.fetch_timeout", "FETCH_TIMEOUT", "30s")

	bind("storage.type", "STORAGE_TYPE", "filesystem")
	bind("storage.path", "STORAGE_PATH", defaultStoragePath())
	bind("garage.endpoint", "GARAGE_ENDPOINT", "")
	bind("garage.access_key", "GARAGE_ACCESS_KEY", "")
	bind("garage.secret_key", "GARAGE_SECRET_KEY", "")
	bind("garage.bucket", "GARAGE_BUCKET", "lectures")
	bind("garage.region", "GARAGE_REGION", "garage")
	bind("minio.endpoint", "MINIO_ENDPOINT", "localhost:9000")
	bind("minio.access_key", "MINIO_ACCESS_KEY", "minioadmin")
	bind("minio.secret_key", "MINIO_SECRET_KEY", "minioadmin")
	bind("minio.bucket", "MINIO_BUCKET", "lectures")
	bind("minio.use_ssl", "MINIO_USE_SSL", false)

	bind("cache.type", "CACHE_TYPE", "memory")
	bind("cache.redis_addr", "REDIS_ADDR", "localhost:6379")
	bind("cache.redis_password", "REDIS_PASSWORD", "")
	bind("cache.redis_db", "REDIS_DB", 0)
	bind("cache.ttl", "CACHE_TTL", "1h")

	bind("events.amqp_url", "AMQP_URL", "")

	bind("cleanup.interval", "CLEANUP_INTERVAL", "1m")
	bind("cleanup.tracker_max_age", "TRACKER_MAX_AGE", "10m")
	bind("upload.max_mb", "MAX_UPLOAD_MB", 200)

	return v
}

// Load lit la configuration depuis l'environnement
func Load() *Config {
	return FromViper(NewViper())
}

// FromViper construit la configuration depuis une instance viper déjà alimentée
// (variables d'environnement, flags cobra)
func FromViper(v *viper.Viper) *Config {
	storageType := strings.ToLower(v.GetString("storage.type"))

	storageCfg := &storage.StorageConfig{
		Type:     storageType,
		BasePath: v.GetString("storage.path"),
	}
	switch storageType {
	case "garage":
		storageCfg.Endpoint = v.GetString("garage.endpoint")
		storageCfg.AccessKey = v.GetString("garage.access_key")
		storageCfg.SecretKey = v.GetString("garage.secret_key")
		storageCfg.Bucket = v.GetString("garage.bucket")
		storageCfg.Region = v.GetString("garage.region")
	case "minio":
		storageCfg.Endpoint = v.GetString("minio.endpoint")
		storageCfg.AccessKey = v.GetString("minio.access_key")
		storageCfg.SecretKey = v.GetString("minio.secret_key")
		storageCfg.Bucket = v.GetString("minio.bucket")
		storageCfg.UseSSL = v.GetBool("minio.use_ssl")
	}

	return &Config{
		Port:        v.GetString("server.port"),
		Environment: v.GetString("server.environment"),
		LogLevel:    v.GetString("log.level"),
		LogFormat:   v.GetString("log.format"),
		Backend: BackendConfig{
			URL:     strings.TrimRight(v.GetString("backend.url"), "/"),
			UserID:  v.GetString("backend.user_id"),
			Timeout: v.GetDuration("backend.timeout"),
		},
		Polling: PollingConfig{
			Interval:     v.GetDuration("polling.interval"),
			FetchTimeout: v.GetDuration("polling.fetch_timeout"),
		},
		Storage: storageCfg,
		Cache: CacheConfig{
			Type:          strings.ToLower(v.GetString("cache.type")),
			RedisAddr:     v.GetString("cache.redis_addr"),
			RedisPassword: v.GetString("cache.redis_password"),
			RedisDB:       v.GetInt("cache.redis_db"),
			TTL:           v.GetDuration("cache.ttl"),
		},
		Events: EventsConfig{
			AMQPURL: v.GetString("events.amqp_url"),
		},
		CleanupInterval: v.GetDuration("cleanup.interval"),
		TrackerMaxAge:   v.GetDuration("cleanup.tracker_max_age"),
		MaxUploadBytes:  v.GetInt64("upload.max_mb") * 1024 * 1024,
	}
}

// Validate vérifie les valeurs qui rendraient le client inutilisable
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid backend url %q", c.Backend.URL)
	}
	if c.Polling.Interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", c.Polling.Interval)
	}
	if c.Polling.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %v", c.Polling.FetchTimeout)
	}
	switch c.Cache.Type {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("unknown cache type: %s", c.Cache.Type)
	}
	if c.CleanupInterval <= 0 {
		return fmt.Errorf("cleanup interval must be positive, got %v", c.CleanupInterval)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}
	return nil
}

// IsDevelopment indique si l'environnement autorise les outils de debug (swagger)
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "test"
}

func defaultStoragePath() string {
	if isDockerEnvironment() {
		return "/app/uploads"
	}
	return "./uploads"
}

func isDockerEnvironment() bool {
	if os.Getenv("DOCKER_CONTAINER") != "" {
		return true
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}
