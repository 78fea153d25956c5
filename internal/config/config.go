package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Cache backends
const (
	CacheBackendRedis   = "redis"
	CacheBackendUpstash = "upstash"
	CacheBackendNone    = "none"
)

// Config represents the complete service configuration
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Mongo      MongoConfig      `toml:"mongo"`
	Cache      CacheConfig      `toml:"cache"`
	Auth       AuthConfig       `toml:"auth"`
	SuperAdmin SuperAdminConfig `toml:"super_admin"`
	Orders     OrdersConfig     `toml:"orders"`
	Audit      AuditConfig      `toml:"audit"`
	Storage    StorageConfig    `toml:"storage"`
	Kafka      KafkaConfig      `toml:"kafka"`
	Log        LogConfig        `toml:"log"`
}

type ServerConfig struct {
	Port int `toml:"port"`
}

type MongoConfig struct {
	URL      string `toml:"url"`
	Database string `toml:"database"`
}

// CacheConfig contains the cache backend and per-endpoint TTLs in seconds
type CacheConfig struct {
	Backend              string `toml:"backend"`
	RedisURL             string `toml:"redis_url"`
	RedisPassword        string `toml:"redis_password"`
	RedisDB              int    `toml:"redis_db"`
	UpstashURL           string `toml:"upstash_url"`
	UpstashToken         string `toml:"upstash_token"`
	ActiveOrdersTTL      int    `toml:"active_orders_ttl_seconds"`
	TodayBillsTTL        int    `toml:"today_bills_ttl_seconds"`
	TablesTTL            int    `toml:"tables_ttl_seconds"`
	MenuTTL              int    `toml:"menu_ttl_seconds"`
	SuperAdminTTL        int    `toml:"super_admin_ttl_seconds"`
	RequestTimeoutMillis int    `toml:"request_timeout_millis"`
}

type AuthConfig struct {
	JWTSecret   string `toml:"jwt_secret"`
	JWTTTLHours int    `toml:"jwt_ttl_hours"`
	TrialDays   int    `toml:"trial_days"`
}

// SuperAdminConfig drives the single super-admin panel module
type SuperAdminConfig struct {
	Username     string   `toml:"username"`
	Password     string   `toml:"password"`
	JWKSURL      string   `toml:"jwks_url"`
	JWTIssuer    string   `toml:"jwt_issuer"`
	JWTAudience  string   `toml:"jwt_audience"`
	PanelVersion string   `toml:"panel_version"`
	Features     []string `toml:"features"`
}

type OrdersConfig struct {
	ActiveOrdersPolicy string `toml:"active_orders_policy"`
}

type AuditConfig struct {
	DatabaseURL string `toml:"database_url"`
}

type StorageConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
	Region    string `toml:"region"`
	Bucket    string `toml:"bucket"`
	// ImageURLHours is the lifetime of signed menu image links
	ImageURLHours int `toml:"image_url_hours"`
}

type KafkaConfig struct {
	Brokers    []string `toml:"brokers"`
	OrderTopic string   `toml:"order_topic"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// AllSuperAdminFeatures lists every panel feature that can be toggled
var AllSuperAdminFeatures = []string{"dashboard", "users", "subscriptions", "tickets", "audit", "metrics", "diagnostics"}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8000},
		Mongo:  MongoConfig{URL: "mongodb://localhost:27017", Database: "restaurant_billing"},
		Cache: CacheConfig{
			Backend:              CacheBackendRedis,
			RedisURL:             "localhost:6379",
			ActiveOrdersTTL:      120,
			TodayBillsTTL:        300,
			TablesTTL:            120,
			MenuTTL:              900,
			SuperAdminTTL:        300,
			RequestTimeoutMillis: 2000,
		},
		Auth:       AuthConfig{JWTTTLHours: 24, TrialDays: 30},
		SuperAdmin: SuperAdminConfig{PanelVersion: "v1", Features: append([]string(nil), AllSuperAdminFeatures...)},
		Orders:     OrdersConfig{ActiveOrdersPolicy: "all_open"},
		Storage:    StorageConfig{Bucket: "menu-images", ImageURLHours: 168},
		Kafka:      KafkaConfig{OrderTopic: "restobill.orders"},
		Log:        LogConfig{Level: "info", Format: "json"},
	}
}

// Load builds the configuration from defaults, an optional TOML file and the environment
func Load(filename string) (*Config, error) {
	cfg := Default()
	if filename != "" {
		if _, err := toml.DecodeFile(filename, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Mongo.URL, "MONGO_URL")
	setString(&c.Mongo.Database, "DB_NAME")

	setString(&c.Cache.Backend, "CACHE_BACKEND")
	setString(&c.Cache.RedisURL, "REDIS_URL")
	setString(&c.Cache.RedisPassword, "REDIS_PASSWORD")
	setString(&c.Cache.UpstashURL, "UPSTASH_REDIS_REST_URL")
	setString(&c.Cache.UpstashToken, "UPSTASH_REDIS_REST_TOKEN")

	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.SuperAdmin.Username, "SUPER_ADMIN_USERNAME")
	setString(&c.SuperAdmin.Password, "SUPER_ADMIN_PASSWORD")
	setString(&c.SuperAdmin.JWKSURL, "SUPER_ADMIN_JWKS_URL")
	setString(&c.SuperAdmin.JWTIssuer, "SUPER_ADMIN_JWT_ISSUER")
	setString(&c.SuperAdmin.JWTAudience, "SUPER_ADMIN_JWT_AUDIENCE")
	setString(&c.SuperAdmin.PanelVersion, "SUPER_ADMIN_PANEL_VERSION")
	setList(&c.SuperAdmin.Features, "SUPER_ADMIN_FEATURES")

	setString(&c.Orders.ActiveOrdersPolicy, "ACTIVE_ORDERS_POLICY")
	setString(&c.Audit.DatabaseURL, "AUDIT_DATABASE_URL")

	setString(&c.Storage.Endpoint, "MINIO_ENDPOINT")
	setString(&c.Storage.AccessKey, "MINIO_ACCESS_KEY")
	setString(&c.Storage.SecretKey, "MINIO_SECRET_KEY")
	setString(&c.Storage.Bucket, "MINIO_BUCKET")
	setString(&c.Storage.Region, "MINIO_REGION")
	c.Storage.UseSSL = c.Storage.UseSSL || os.Getenv("MINIO_USE_SSL") == "true"

	setList(&c.Kafka.Brokers, "KAFKA_BROKERS")
	setString(&c.Kafka.OrderTopic, "KAFKA_ORDER_TOPIC")

	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	ints := []struct {
		dst *int
		key string
	}{
		{&c.Server.Port, "PORT"},
		{&c.Cache.RedisDB, "REDIS_DB"},
		{&c.Cache.ActiveOrdersTTL, "CACHE_TTL_ACTIVE_ORDERS_SECONDS"},
		{&c.Cache.TodayBillsTTL, "CACHE_TTL_TODAY_BILLS_SECONDS"},
		{&c.Cache.TablesTTL, "CACHE_TTL_TABLES_SECONDS"},
		{&c.Cache.MenuTTL, "CACHE_TTL_MENU_SECONDS"},
		{&c.Cache.SuperAdminTTL, "CACHE_TTL_SUPER_ADMIN_SECONDS"},
		{&c.Auth.JWTTTLHours, "JWT_TTL_HOURS"},
		{&c.Auth.TrialDays, "TRIAL_DAYS"},
		{&c.Storage.ImageURLHours, "MINIO_IMAGE_URL_HOURS"},
	}
	for _, i := range ints {
		if err := setInt(i.dst, i.key); err != nil {
			return err
		}
	}
	return nil
}

// Validate rejects configurations the service cannot start with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Mongo.URL) == "" {
		return fmt.Errorf("MONGO_URL is required")
	}
	switch c.Cache.Backend {
	case CacheBackendRedis, CacheBackendNone:
	case CacheBackendUpstash:
		if c.Cache.UpstashURL == "" || c.Cache.UpstashToken == "" {
			return fmt.Errorf("upstash cache requires UPSTASH_REDIS_REST_URL and UPSTASH_REDIS_REST_TOKEN")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Orders.ActiveOrdersPolicy {
	case "all_open", "today_only":
	default:
		return fmt.Errorf("unknown active orders policy %q", c.Orders.ActiveOrdersPolicy)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	return nil
}

// FeatureEnabled reports whether a super-admin panel feature is switched on
func (s SuperAdminConfig) FeatureEnabled(feature string) bool {
	for _, f := range s.Features {
		if f == feature {
			return true
		}
	}
	return false
}

// TTL converts a seconds setting to a duration
func TTL(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setList(dst *[]string, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

func setInt(dst *int, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}
