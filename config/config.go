package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DBUrl         string
	JWTSecret     string
	AllowedOrigin string
	FrontendURL   string // Storefront URL used in sitemaps
	TokenExpiry   time.Duration
	// DB Config
	DBMaxConns          int32
	DBMinConns          int32
	DBMaxConnIdleTime   time.Duration
	DBMaxConnLifetime   time.Duration
	DBHealthCheckPeriod time.Duration
	AutoMigrate         bool
	// Object storage (S3 compatible)
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string
	// Cache
	CacheCatalogTTL time.Duration
	CacheProductTTL time.Duration
	CacheSitemapTTL time.Duration
	// Upload Configuration
	MaxUploadSizeMB int64
	UploadTimeout   time.Duration
	// Rate limiting
	RateLimitRPS   float64
	RateLimitBurst int
	// Business Rules
	MaxCartQuantity int
	BcryptCost      int
}

// loadEnvFile loads CONFIG_FILE when set, otherwise a local .env if present.
func loadEnvFile() {
	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			log.Printf("Warning: Failed to load config file '%s': %v", configFile, err)
		} else {
			log.Printf("Loaded configuration from %s", configFile)
		}
		return
	}
	// In containers .env usually does not exist and system env vars are used.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading it, relying on system env vars")
	}
}

func LoadConfig() *Config {
	loadEnvFile()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DBUrl:         getEnv("DB_DSN", ""),
		JWTSecret:     getEnv("JWT_SECRET", "default_secret_CHANGE_ME"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:3000"),
		TokenExpiry:   getDurationEnv("TOKEN_EXPIRY", 24*time.Hour),

		DBMaxConns:        getInt32Env("DB_MAX_CONNS", 20),
		DBMinConns:        getInt32Env("DB_MIN_CONNS", 2),
		DBMaxConnIdleTime: getDurationEnv("DB_MAX_CONN_IDLE_TIME", 15*time.Minute),

		DBMaxConnLifetime:   getDurationEnv("DB_MAX_CONN_LIFETIME", time.Hour),
		DBHealthCheckPeriod: getDurationEnv("DB_HEALTH_CHECK_PERIOD", 30*time.Second),
		AutoMigrate:         getBoolEnv("DB_AUTO_MIGRATE", true),

		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3Region:    getEnv("S3_REGION", "auto"),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3PublicURL: getEnv("S3_PUBLIC_URL", ""),

		CacheCatalogTTL: getDurationEnv("CACHE_CATALOG_TTL", 30*time.Minute),
		CacheProductTTL: getDurationEnv("CACHE_PRODUCT_TTL", 10*time.Minute),
		CacheSitemapTTL: getDurationEnv("CACHE_SITEMAP_TTL", 6*time.Hour),

		MaxUploadSizeMB: getInt64Env("MAX_UPLOAD_SIZE_MB", 10),
		UploadTimeout:   getDurationEnv("UPLOAD_TIMEOUT", 30*time.Second),

		RateLimitRPS:   getFloatEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 100),

		MaxCartQuantity: getIntEnv("MAX_CART_QUANTITY", 20),
		BcryptCost:      getIntEnv("BCRYPT_COST", 10),
	}

	cfg.Validate()
	return cfg
}

func (c *Config) Validate() {
	if c.DBUrl == "" {
		log.Fatal("CRITICAL: DB_DSN environment variable is required")
	}
	if c.JWTSecret == "default_secret_CHANGE_ME" {
		log.Println("WARNING: Using default JWT secret. Setting up for failure in production.")
	}
	if c.S3Bucket == "" {
		log.Println("WARNING: S3_BUCKET not set, image uploads are disabled")
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using fallback", key)
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s, using fallback", key)
	}
	return fallback
}

func getInt64Env(key string, fallback int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
		log.Printf("Invalid int64 for %s, using fallback", key)
	}
	return fallback
}
