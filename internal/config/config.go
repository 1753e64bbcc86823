package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Console  ConsoleConfig
	Database DatabaseConfig
	Gemini   GeminiConfig
	Storage  StorageConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

// ConsoleConfig drives the upload/history console and its backend client.
type ConsoleConfig struct {
	Port string
	// BackendURL is the base URL serving /upload and /resumes.
	BackendURL string
	// BackendTimeout of zero leaves the transport defaults in place.
	BackendTimeout time.Duration
	// DisplayTimezone is an IANA name used for history timestamps.
	DisplayTimezone string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type GeminiConfig struct {
	APIKey           string
	Model            string
	RetryMaxAttempts int
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Console: ConsoleConfig{
			Port:            getEnv("CONSOLE_PORT", "8080"),
			BackendURL:      getEnv("BACKEND_URL", "http://localhost:3000"),
			BackendTimeout:  getEnvAsDuration("BACKEND_TIMEOUT", "0s"),
			DisplayTimezone: getEnv("DISPLAY_TIMEZONE", "Local"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "resume_analyzer"),
		},
		Gemini: GeminiConfig{
			APIKey:           getEnv("GEMINI_API_KEY", ""),
			Model:            getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			RetryMaxAttempts: getEnvAsInt("RETRY_MAX_ATTEMPTS", 1),
		},
		Storage: StorageConfig{
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 16*1024*1024),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// DisplayLocation resolves DisplayTimezone, falling back to time.Local.
func (c *Config) DisplayLocation() *time.Location {
	if c.Console.DisplayTimezone == "" || c.Console.DisplayTimezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Console.DisplayTimezone)
	if err != nil {
		log.Printf("⚠️  Unknown DISPLAY_TIMEZONE %q, using local time: %v\n", c.Console.DisplayTimezone, err)
		return time.Local
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
