package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	JWTSecret   string
	MongoURI    string
	DBName      string
	SkipAuth    bool
	Environment string
	AppId       string
	TokenTTL    time.Duration

	Storage     string // "mongo" or "postgres" for inventory items
	PostgresDSN string

	PageSize        int
	SessionTTL      time.Duration
	SweepSchedule   string // cron expression for idle session eviction
	CatalogSchedule string // cron expression for options catalog refresh
	RefreshPolicy   string // source | on-change | on-submit
	ExclusiveRanges bool

	UploadPath string // import files are staged here
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "30m"))
	if err != nil {
		return nil, err
	}

	tokenTTL, err := time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		return nil, err
	}

	pageSize, err := strconv.Atoi(getEnv("PAGE_SIZE", "20"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", "secret"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:      getEnv("DB_NAME", "agrofleet"),
		SkipAuth:    getEnv("SKIP_AUTH", "false") == "true",
		Environment: getEnv("ENVIRONMENT", "development"),
		AppId:       getEnv("APP_ID", "agrofleet"),
		TokenTTL:    tokenTTL,

		Storage:     getEnv("STORAGE", "mongo"),
		PostgresDSN: getEnv("POSTGRES_DSN", ""),

		PageSize:        pageSize,
		SessionTTL:      ttl,
		SweepSchedule:   getEnv("SESSION_SWEEP_SCHEDULE", "*/5 * * * *"),
		CatalogSchedule: getEnv("CATALOG_REFRESH_SCHEDULE", "0 * * * *"),
		RefreshPolicy:   getEnv("REFRESH_POLICY", "source"),
		ExclusiveRanges: getEnv("EXCLUSIVE_RANGES", "false") == "true",

		UploadPath: getEnv("UPLOAD_PATH", "./uploads"),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
