package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the process-wide configuration, loaded once at startup and handed
// to each component's constructor.
type Config struct {
	Environment string
	Port        string

	LogLevel string
	LogFile  string

	Database      DatabaseConfig
	Elasticsearch ElasticsearchConfig
	Redis         RedisConfig
	Telemetry     TelemetryConfig

	CitiesIndex    string
	DocumentsIndex string

	CORSAllowedOrigins []string
	// RateLimitPerMinute of 0 disables the /api limiter
	RateLimitPerMinute int
	ReindexTimeout     time.Duration
	ReconcileInterval  time.Duration

	RequireElasticsearch bool
	RequireDatabase      bool
	RequireRedis         bool
}

// DatabaseConfig holds the Postgres connection settings
type DatabaseConfig struct {
	URL         string
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	CitiesTable string
}

// DSN returns DATABASE_URL when set, otherwise a key/value DSN built from the parts
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Name, d.SSLMode)
	if d.Password != "" {
		dsn += " password=" + d.Password
	}
	return dsn
}

// ElasticsearchConfig holds connection details for the search engine
type ElasticsearchConfig struct {
	URL         string
	Username    string
	Password    string
	InsecureTLS bool
	CACertPath  string
	MaxRetries  int
	PingTimeout time.Duration
}

// RedisConfig holds the search cache settings. An empty URL disables caching.
type RedisConfig struct {
	URL      string
	CacheTTL time.Duration
}

// TelemetryConfig holds OpenTelemetry exporter settings
type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	OTLPEndpoint string
	SamplingRate float64
}

// tableName accepts a plain or schema-qualified SQL identifier
var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("port", "8787")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "server.log")

	v.SetDefault("database_url", "")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "citysearch")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("cities_table", "cities")

	v.SetDefault("elasticsearch_url", "http://localhost:9200")
	v.SetDefault("elasticsearch_username", "")
	v.SetDefault("elasticsearch_password", "")
	v.SetDefault("elasticsearch_insecure_tls", false)
	v.SetDefault("elasticsearch_ca_cert", "")
	v.SetDefault("elasticsearch_max_retries", 3)
	v.SetDefault("elasticsearch_ping_timeout", "3s")

	v.SetDefault("cities_index", "cities")
	v.SetDefault("documents_index", "documents")

	v.SetDefault("redis_url", "")
	v.SetDefault("search_cache_ttl", "5m")

	v.SetDefault("otel_enabled", false)
	v.SetDefault("otel_service_name", "citysearch")
	v.SetDefault("otel_exporter_otlp_endpoint", "localhost:4318")
	v.SetDefault("otel_sampling_rate", 1.0)

	v.SetDefault("cors_allowed_origins", "*")
	v.SetDefault("rate_limit_per_minute", 120)
	v.SetDefault("reindex_timeout", "5m")
	v.SetDefault("reconcile_interval", "0s")

	v.SetDefault("require_elasticsearch", false)
	v.SetDefault("require_database", false)
	v.SetDefault("require_redis", false)
}

// Load reads .env (if present) and the environment into a Config.
func Load() (*Config, error) {
	// .env is optional; the real environment always wins
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Environment: v.GetString("environment"),
		Port:        v.GetString("port"),
		LogLevel:    v.GetString("log_level"),
		LogFile:     v.GetString("log_file"),
		Database: DatabaseConfig{
			URL:         v.GetString("database_url"),
			Host:        v.GetString("db_host"),
			Port:        v.GetString("db_port"),
			User:        v.GetString("db_user"),
			Password:    v.GetString("db_password"),
			Name:        v.GetString("db_name"),
			SSLMode:     v.GetString("db_sslmode"),
			CitiesTable: v.GetString("cities_table"),
		},
		Elasticsearch: ElasticsearchConfig{
			URL:         strings.TrimRight(v.GetString("elasticsearch_url"), "/"),
			Username:    v.GetString("elasticsearch_username"),
			Password:    v.GetString("elasticsearch_password"),
			InsecureTLS: v.GetBool("elasticsearch_insecure_tls"),
			CACertPath:  v.GetString("elasticsearch_ca_cert"),
			MaxRetries:  v.GetInt("elasticsearch_max_retries"),
			PingTimeout: v.GetDuration("elasticsearch_ping_timeout"),
		},
		Redis: RedisConfig{
			URL:      v.GetString("redis_url"),
			CacheTTL: v.GetDuration("search_cache_ttl"),
		},
		Telemetry: TelemetryConfig{
			Enabled:      v.GetBool("otel_enabled"),
			ServiceName:  v.GetString("otel_service_name"),
			OTLPEndpoint: v.GetString("otel_exporter_otlp_endpoint"),
			SamplingRate: v.GetFloat64("otel_sampling_rate"),
		},
		CitiesIndex:          v.GetString("cities_index"),
		DocumentsIndex:       v.GetString("documents_index"),
		CORSAllowedOrigins:   splitList(v.GetString("cors_allowed_origins")),
		RateLimitPerMinute:   v.GetInt("rate_limit_per_minute"),
		ReindexTimeout:       v.GetDuration("reindex_timeout"),
		ReconcileInterval:    v.GetDuration("reconcile_interval"),
		RequireElasticsearch: v.GetBool("require_elasticsearch"),
		RequireDatabase:      v.GetBool("require_database"),
		RequireRedis:         v.GetBool("require_redis"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values that would only fail later at connection time
func (c *Config) Validate() error {
	u, err := url.Parse(c.Elasticsearch.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid ELASTICSEARCH_URL %q", c.Elasticsearch.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("ELASTICSEARCH_URL must use http or https, got %q", u.Scheme)
	}
	if c.Elasticsearch.MaxRetries < 0 {
		return fmt.Errorf("ELASTICSEARCH_MAX_RETRIES must not be negative")
	}
	if c.Elasticsearch.PingTimeout <= 0 {
		return fmt.Errorf("ELASTICSEARCH_PING_TIMEOUT must be positive")
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	if c.ReindexTimeout <= 0 {
		return fmt.Errorf("REINDEX_TIMEOUT must be positive")
	}
	if c.ReconcileInterval < 0 {
		return fmt.Errorf("RECONCILE_INTERVAL must not be negative")
	}
	if c.Redis.CacheTTL < 0 {
		return fmt.Errorf("SEARCH_CACHE_TTL must not be negative")
	}
	if c.Telemetry.SamplingRate < 0 || c.Telemetry.SamplingRate > 1 {
		return fmt.Errorf("OTEL_SAMPLING_RATE must be between 0 and 1")
	}
	if c.CitiesIndex == "" || c.DocumentsIndex == "" {
		return fmt.Errorf("index names must not be empty")
	}
	if !tableName.MatchString(c.Database.CitiesTable) {
		return fmt.Errorf("CITIES_TABLE %q is not a valid table name", c.Database.CitiesTable)
	}
	return nil
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
