package configs

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type RESTConfig struct {
	Port           string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL string
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	Enabled bool
	URL     string
	Workers int
}

// ProvidersConfig - адреса и ключи внешних источников данных
type ProvidersConfig struct {
	SAFMRURL       string
	CensusURL      string
	CensusYear     int
	CensusAPIKey   string
	NominatimURL   string
	ZillowURL      string
	ZillowEnabled  bool
	RentcastURL    string
	RentcastAPIKey string
	RentcastRPS    float64
	HTTPTimeout    time.Duration
	UserAgent      string
}

// CacheConfig - время жизни записей read-through кэша по типам данных
type CacheConfig struct {
	RentTTL        time.Duration
	MarketTTL      time.Duration
	ListingTTL     time.Duration
	DescriptionTTL time.Duration
}

type StdoutLogConfig struct {
	Enabled  bool
	UseColor bool
	Level    string
}

type FluentBitConfig struct {
	Enabled bool
	Host    string
	Port    int
	Level   string
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName      string
	Rest         RESTConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	RabbitMQ     RabbitMQConfig
	Providers    ProvidersConfig
	Cache        CacheConfig
	StdoutLogger StdoutLogConfig
	FluentBit    FluentBitConfig

	UnderwriteWorkers  int
	UnderwritingPolicy string
}

// LoadConfig загружает конфигурацию из .env (если он есть) и переменных окружения
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 && envPath[0] != "" {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		if len(envPath) > 0 && envPath[0] != "" {
			return nil, err
		}
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("Warning: could not load .env file: %v\n", err)
		}
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "section8-underwriter")
	cfg.Rest.Port = getEnvAsString("REST_PORT", "8080")
	cfg.Rest.AllowedOrigins = getEnvAsList("REST_CORS_ORIGINS", []string{"*"})
	cfg.Database.URL = os.Getenv("DATABASE_URL")

	cfg.Redis.Enabled = getEnvAsBool("REDIS_ENABLED", false)
	cfg.Redis.Addr = getEnvAsString("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", 0)

	cfg.RabbitMQ.Enabled = getEnvAsBool("RABBITMQ_ENABLED", false)
	cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
	cfg.RabbitMQ.Workers = getEnvAsInt("RABBITMQ_WORKERS", 2)
	if cfg.RabbitMQ.Enabled && cfg.RabbitMQ.URL == "" {
		log.Println("WARNING: RABBITMQ_ENABLED is true, but RABBITMQ_URL is not set. Disabling RabbitMQ.")
		cfg.RabbitMQ.Enabled = false
	}

	cfg.Providers.SAFMRURL = getEnvAsString("SAFMR_URL", "https://www.huduser.gov/portal/datasets/fmr/fmr2026/fy2026_safmrs.xlsx")
	cfg.Providers.CensusURL = getEnvAsString("CENSUS_URL", "https://api.census.gov")
	cfg.Providers.CensusYear = getEnvAsInt("CENSUS_YEAR", 2022)
	cfg.Providers.CensusAPIKey = os.Getenv("CENSUS_API_KEY")
	cfg.Providers.NominatimURL = getEnvAsString("NOMINATIM_URL", "https://nominatim.openstreetmap.org")
	cfg.Providers.ZillowURL = getEnvAsString("ZILLOW_URL", "https://www.zillow.com")
	cfg.Providers.ZillowEnabled = getEnvAsBool("ZILLOW_ENABLED", true)
	cfg.Providers.RentcastURL = getEnvAsString("RENTCAST_URL", "https://api.rentcast.io")
	cfg.Providers.RentcastAPIKey = os.Getenv("RENTCAST_API_KEY")
	cfg.Providers.RentcastRPS = getEnvAsFloat("RENTCAST_RPS", 3)
	cfg.Providers.HTTPTimeout = getEnvAsDuration("HTTP_TIMEOUT", 15*time.Second)
	cfg.Providers.UserAgent = getEnvAsString("HTTP_USER_AGENT", "section8-underwriter/1.0")

	cfg.Cache.RentTTL = getEnvAsDuration("CACHE_TTL_RENT", 7*24*time.Hour)
	cfg.Cache.MarketTTL = getEnvAsDuration("CACHE_TTL_MARKET", 30*24*time.Hour)
	cfg.Cache.ListingTTL = getEnvAsDuration("CACHE_TTL_LISTING", time.Hour)
	cfg.Cache.DescriptionTTL = getEnvAsDuration("CACHE_TTL_DESCRIPTION", time.Hour)

	cfg.StdoutLogger.Enabled = getEnvAsBool("STDOUT_LOGGER_ENABLED", true)
	cfg.StdoutLogger.UseColor = getEnvAsBool("STDOUT_LOGGER_USE_COLOR", true)
	cfg.StdoutLogger.Level = getEnvAsString("LOG_LEVEL", "info")

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENT_BIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENT_BIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENT_BIT_ENABLED is true, but FLUENT_BIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENT_BIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENT_BIT_LOG_LEVEL", "info")
	}

	cfg.UnderwriteWorkers = getEnvAsInt("UNDERWRITE_WORKERS", 4)
	cfg.UnderwritingPolicy = os.Getenv("UNDERWRITING_CONFIG")

	return cfg, nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsList читает список значений через запятую
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(valueStr) == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// getEnvAsInt читает переменную окружения как int или возвращает значение по умолчанию.
// Логирует предупреждение, если значение не разбирается
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as float: %v. Using default value: %v\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as duration: %v. Using default value: %s\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return value
}
