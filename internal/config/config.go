package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the clinic server
type Config struct {
	Port            string
	Origin          string
	Environment     string
	AppURL          string
	StaffPassword   string
	SessionSecret   string
	SessionTTLHours int
	Store           StoreConfig
	Database        DatabaseConfig
	Cache           CacheConfig
	Log             LogConfig
}

// Store drivers
const (
	DriverSheets = "sheets"
	DriverXLSX   = "xlsx"
	DriverMySQL  = "mysql"
)

// StoreConfig selects and configures the system of record
type StoreConfig struct {
	Driver          string
	SheetID         string
	CredentialsFile string
	CSVBaseURL      string
	PatientsGID     string
	VisitsGID       string
	XLSXPath        string
}

// DatabaseConfig holds database connection details for the mysql driver
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// CacheConfig controls how long table reads are reused
type CacheConfig struct {
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	StaffTTL      time.Duration
	PublicTTL     time.Duration
}

// LogConfig configures zap
type LogConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	storeConfig := StoreConfig{
		Driver:          getEnv("STORE_DRIVER", DriverXLSX),
		SheetID:         getEnv("SHEET_ID", ""),
		CredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "service_account.json"),
		CSVBaseURL:      getEnv("SHEET_CSV_BASE_URL", ""),
		PatientsGID:     getEnv("PATIENTS_GID", "0"),
		VisitsGID:       getEnv("VISITS_GID", "1491996218"),
		XLSXPath:        getEnv("XLSX_PATH", "asthma_db.xlsx"),
	}
	switch storeConfig.Driver {
	case DriverSheets:
		if storeConfig.SheetID == "" {
			return nil, fmt.Errorf("SHEET_ID is required for STORE_DRIVER=%s", DriverSheets)
		}
	case DriverXLSX, DriverMySQL:
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q", storeConfig.Driver)
	}
	if storeConfig.CSVBaseURL == "" && storeConfig.SheetID != "" {
		storeConfig.CSVBaseURL = fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export", storeConfig.SheetID)
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "asthma"),
	}
	dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	staffTTL, err := strconv.Atoi(getEnv("STAFF_CACHE_TTL_SECONDS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid STAFF_CACHE_TTL_SECONDS: %w", err)
	}
	publicTTL, err := strconv.Atoi(getEnv("PUBLIC_CACHE_TTL_SECONDS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid PUBLIC_CACHE_TTL_SECONDS: %w", err)
	}
	cacheConfig := CacheConfig{
		Backend:       getEnv("CACHE_BACKEND", "memory"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,
		StaffTTL:      time.Duration(staffTTL) * time.Second,
		PublicTTL:     time.Duration(publicTTL) * time.Second,
	}
	if cacheConfig.Backend != "memory" && cacheConfig.Backend != "redis" {
		return nil, fmt.Errorf("invalid CACHE_BACKEND %q", cacheConfig.Backend)
	}

	sessionTTL, err := strconv.Atoi(getEnv("SESSION_TTL_HOURS", "12"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL_HOURS: %w", err)
	}

	port := getEnv("PORT", "8501")
	return &Config{
		Port:            port,
		Origin:          getEnv("ORIGIN", "http://localhost:"+port),
		Environment:     getEnv("APP_ENV", "development"),
		AppURL:          getEnv("APP_URL", "http://localhost:"+port),
		StaffPassword:   getEnv("STAFF_PASSWORD", "1234"),
		SessionSecret:   getEnv("SESSION_SECRET", "default_session_secret"),
		SessionTTLHours: sessionTTL,
		Store:           storeConfig,
		Database:        dbConfig,
		Cache:           cacheConfig,
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
