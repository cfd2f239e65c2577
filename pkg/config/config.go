package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Persistence drivers understood by the snapshot store.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Backup drivers for off-site snapshot copies.
const (
	BackupDriverLocal = "local"
	BackupDriverS3    = "s3"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Analytics AnalyticsConfig
	Scheduler SchedulerConfig
	Backup    BackupConfig
	Exports   ExportsConfig
}

type DatabaseConfig struct {
	Driver       string
	SQLitePath   string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Enabled    bool
	Secret     string
	Issuer     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AnalyticsConfig governs the report cache.
type AnalyticsConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// SchedulerConfig tunes the scheduling engine and the autosave loop.
type SchedulerConfig struct {
	EffectiveCapacityRatio float64
	CandidateStrategy      string
	LateStartThreshold     string
	RejectOverlaps         bool
	SaveDebounce           time.Duration
	SaveRetries            int
	SaveRetryDelay         time.Duration
}

// BackupConfig controls off-site snapshot copies.
type BackupConfig struct {
	Enabled         bool
	Driver          string
	LocalDir        string
	Retention       time.Duration
	CleanupInterval time.Duration
	SignedURLSecret string
	SignedURLTTL    time.Duration
	S3              S3Config
}

// S3Config points the backup store at a bucket.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// ExportsConfig sets report rendering defaults.
type ExportsConfig struct {
	ClinicName string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Driver:       strings.ToLower(v.GetString("DB_DRIVER")),
		SQLitePath:   v.GetString("DB_SQLITE_PATH"),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Enabled:    v.GetBool("ENABLE_AUTH"),
		Secret:     v.GetString("JWT_SECRET"),
		Issuer:     v.GetString("JWT_ISSUER"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Analytics = AnalyticsConfig{
		CacheEnabled: v.GetBool("ANALYTICS_CACHE_ENABLED"),
		CacheTTL:     parseDuration(v.GetString("ANALYTICS_CACHE_TTL"), 10*time.Minute),
	}

	ratio := v.GetFloat64("SCHEDULER_EFFECTIVE_CAPACITY_RATIO")
	if ratio <= 0 || ratio > 1 {
		ratio = 1.0
	}
	cfg.Scheduler = SchedulerConfig{
		EffectiveCapacityRatio: ratio,
		CandidateStrategy:      strings.ToLower(v.GetString("SCHEDULER_CANDIDATE_STRATEGY")),
		LateStartThreshold:     v.GetString("SCHEDULER_LATE_START_THRESHOLD"),
		RejectOverlaps:         v.GetBool("SCHEDULER_REJECT_OVERLAPS"),
		SaveDebounce:           parseDuration(v.GetString("SCHEDULER_SAVE_DEBOUNCE"), 500*time.Millisecond),
		SaveRetries:            v.GetInt("SCHEDULER_SAVE_RETRIES"),
		SaveRetryDelay:         parseDuration(v.GetString("SCHEDULER_SAVE_RETRY_DELAY"), time.Second),
	}

	cfg.Backup = BackupConfig{
		Enabled:         v.GetBool("ENABLE_BACKUPS"),
		Driver:          strings.ToLower(v.GetString("BACKUP_DRIVER")),
		LocalDir:        v.GetString("BACKUP_LOCAL_DIR"),
		Retention:       parseDuration(v.GetString("BACKUP_RETENTION"), 30*24*time.Hour),
		CleanupInterval: parseDuration(v.GetString("BACKUP_CLEANUP_INTERVAL"), 6*time.Hour),
		SignedURLSecret: v.GetString("BACKUP_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("BACKUP_SIGNED_URL_TTL"), 15*time.Minute),
		S3: S3Config{
			Bucket:          v.GetString("BACKUP_S3_BUCKET"),
			Region:          v.GetString("BACKUP_S3_REGION"),
			Endpoint:        v.GetString("BACKUP_S3_ENDPOINT"),
			Prefix:          v.GetString("BACKUP_S3_PREFIX"),
			AccessKeyID:     v.GetString("BACKUP_S3_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("BACKUP_S3_SECRET_ACCESS_KEY"),
			UsePathStyle:    v.GetBool("BACKUP_S3_USE_PATH_STYLE"),
		},
	}

	cfg.Exports = ExportsConfig{
		ClinicName: v.GetString("EXPORTS_CLINIC_NAME"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DB_SQLITE_PATH", "./data/hemo.db")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "hemo_scheduler")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ENABLE_AUTH", true)
	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "hemo-scheduler")
	v.SetDefault("JWT_EXPIRATION", "12h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ANALYTICS_CACHE_ENABLED", false)
	v.SetDefault("ANALYTICS_CACHE_TTL", "10m")

	v.SetDefault("SCHEDULER_EFFECTIVE_CAPACITY_RATIO", 1.0)
	v.SetDefault("SCHEDULER_CANDIDATE_STRATEGY", "late_start")
	v.SetDefault("SCHEDULER_LATE_START_THRESHOLD", "06:00")
	v.SetDefault("SCHEDULER_REJECT_OVERLAPS", true)
	v.SetDefault("SCHEDULER_SAVE_DEBOUNCE", "500ms")
	v.SetDefault("SCHEDULER_SAVE_RETRIES", 3)
	v.SetDefault("SCHEDULER_SAVE_RETRY_DELAY", "1s")

	v.SetDefault("ENABLE_BACKUPS", false)
	v.SetDefault("BACKUP_DRIVER", BackupDriverLocal)
	v.SetDefault("BACKUP_LOCAL_DIR", "./backups")
	v.SetDefault("BACKUP_RETENTION", "720h")
	v.SetDefault("BACKUP_CLEANUP_INTERVAL", "6h")
	v.SetDefault("BACKUP_SIGNED_URL_SECRET", "dev_backup_secret")
	v.SetDefault("BACKUP_SIGNED_URL_TTL", "15m")
	v.SetDefault("BACKUP_S3_BUCKET", "")
	v.SetDefault("BACKUP_S3_REGION", "us-east-1")
	v.SetDefault("BACKUP_S3_ENDPOINT", "")
	v.SetDefault("BACKUP_S3_PREFIX", "hemo-backups")
	v.SetDefault("BACKUP_S3_USE_PATH_STYLE", false)

	v.SetDefault("EXPORTS_CLINIC_NAME", "Hemodialysis Unit")
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
