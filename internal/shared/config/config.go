package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all configuration for the booking bot
type Config struct {
	// Remote e-ticket API
	API APIConfig

	// Account credentials and token persistence
	Auth AuthConfig

	// Journey to book
	Journey JourneyConfig

	// Race and retry behavior
	Booking BookingConfig

	// Passenger roster
	Passengers PassengerConfig

	// Trip search cache
	Cache CacheConfig

	// Receipt persistence
	Receipts ReceiptsConfig

	// Optional booking event stream
	Kafka KafkaConfig

	// Logging
	LogLevel string
}

// APIConfig holds remote API configuration
type APIConfig struct {
	BaseURL        string        `validate:"required,url"`
	RequestTimeout time.Duration `validate:"gt=0"`
}

// AuthConfig holds account credentials and token persistence configuration
type AuthConfig struct {
	MobileNumber string
	Password     string
	TokenFile    string `validate:"required"`
}

// JourneyConfig holds the journey to book
type JourneyConfig struct {
	FromCity string `validate:"required"`
	ToCity   string `validate:"required"`
	// Date is DD-MMM-YYYY, or "auto"/"auto+N" for today plus N days
	Date            string `validate:"required"`
	SeatClass       string `validate:"required"`
	PreferredTrain  string
	AutoSelectTrain bool
}

// BookingConfig holds race and retry configuration
type BookingConfig struct {
	// WorkerCount is the number of concurrent acquisition workers.
	// Zero means one worker per CPU.
	WorkerCount int `validate:"gte=0"`
	// MaxAttempts bounds the outer retry loop. Zero means unbounded,
	// which must be an explicit operator choice.
	MaxAttempts  int           `validate:"gte=0"`
	RetryPause   time.Duration `validate:"gt=0"`
	SaveReceipts bool
}

// PassengerConfig holds passenger roster configuration
type PassengerConfig struct {
	RosterFile string `validate:"required"`
}

// CacheConfig holds trip search cache configuration
type CacheConfig struct {
	Backend string        `validate:"oneof=file redis"`
	Dir     string
	TTL     time.Duration `validate:"gt=0"`
	Redis   RedisConfig
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string
}

// ReceiptsConfig holds receipt persistence configuration
type ReceiptsConfig struct {
	Backend  string `validate:"oneof=file postgres"`
	Dir      string
	Database DatabaseConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	DSN      string
}

// KafkaConfig holds booking event stream configuration
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		API: APIConfig{
			BaseURL:        getEnv("RAIL_API_BASE_URL", "https://railspaapi.shohoz.com/v1.0/web"),
			RequestTimeout: getDurationEnv("RAIL_API_TIMEOUT", 30*time.Second),
		},

		Auth: AuthConfig{
			MobileNumber: getEnv("RAIL_MOBILE_NUMBER", ""),
			Password:     getEnv("RAIL_PASSWORD", ""),
			TokenFile:    getEnv("RAIL_TOKEN_FILE", "auth_token.txt"),
		},

		Journey: JourneyConfig{
			FromCity:        getEnv("JOURNEY_FROM", ""),
			ToCity:          getEnv("JOURNEY_TO", ""),
			Date:            getEnv("JOURNEY_DATE", "auto"),
			SeatClass:       getEnv("JOURNEY_SEAT_CLASS", "SNIGDHA"),
			PreferredTrain:  getEnv("JOURNEY_PREFERRED_TRAIN", ""),
			AutoSelectTrain: getBoolEnv("JOURNEY_AUTO_SELECT_TRAIN", false),
		},

		Booking: BookingConfig{
			WorkerCount:  getIntEnv("BOOKING_WORKER_COUNT", 0),
			MaxAttempts:  getIntEnv("BOOKING_MAX_ATTEMPTS", 3),
			RetryPause:   getDurationEnv("BOOKING_RETRY_PAUSE", 100*time.Millisecond),
			SaveReceipts: getBoolEnv("BOOKING_SAVE_RECEIPTS", true),
		},

		Passengers: PassengerConfig{
			RosterFile: getEnv("PASSENGER_ROSTER_FILE", "passengers.yaml"),
		},

		Cache: CacheConfig{
			Backend: getEnv("CACHE_BACKEND", "file"),
			Dir:     getEnv("CACHE_DIR", "cache"),
			TTL:     getDurationEnv("CACHE_TTL", 1*time.Hour),
			Redis: RedisConfig{
				Host:     getEnv("REDIS_HOST", "localhost"),
				Port:     getEnv("REDIS_PORT", "6379"),
				Password: getEnv("REDIS_PASSWORD", ""),
				DB:       getIntEnv("REDIS_DB", 0),
			},
		},

		Receipts: ReceiptsConfig{
			Backend: getEnv("RECEIPTS_BACKEND", "file"),
			Dir:     getEnv("RECEIPTS_DIR", "booking_info"),
			Database: DatabaseConfig{
				Host:     getEnv("DB_HOST", "localhost"),
				Port:     getEnv("DB_PORT", "5432"),
				Name:     getEnv("DB_NAME", "railbooker_db"),
				User:     getEnv("DB_USER", "railbooker_user"),
				Password: getEnv("DB_PASSWORD", ""),
				SSLMode:  getEnv("DB_SSLMODE", "disable"),
			},
		},

		Kafka: KafkaConfig{
			Enabled: getBoolEnv("KAFKA_ENABLED", false),
			Brokers: getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_TOPIC", "booking-events"),
		},

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// Build composite values
	cfg.Cache.Redis.Addr = cfg.Cache.Redis.Host + ":" + cfg.Cache.Redis.Port
	cfg.Receipts.Database.DSN = buildDatabaseDSN(cfg.Receipts.Database)

	return cfg
}

// Validate checks the loaded configuration for invalid or missing values.
// A validation failure is fatal: the caller must not retry around it.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
