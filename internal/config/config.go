package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/openshelf/catalog/internal/models"
)

type Config struct {
	HTTP_ADDR     string
	LOG_LEVEL     string
	DB_HOST       string
	DB_PORT       string
	DB_USER       string
	DB_PASSWORD   string
	DB_NAME       string
	ES_URL        string
	ES_USER       string
	ES_PASSWORD   string
	KAFKA_ADDRESS string

	AccessTokenLifetime  int
	RefreshTokenLifetime int
	IssueRefreshToken    bool
}

const (
	DefaultAccessTokenLifetime  = 86400
	DefaultRefreshTokenLifetime = 31536000
)

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		HTTP_ADDR:     getDefault("HTTP_ADDR", ":8080"),
		LOG_LEVEL:     getDefault("LOG_LEVEL", "info"),
		DB_HOST:       os.Getenv("DB_HOST"),
		DB_PORT:       os.Getenv("DB_PORT"),
		DB_USER:       os.Getenv("DB_USER"),
		DB_PASSWORD:   os.Getenv("DB_PASSWORD"),
		DB_NAME:       os.Getenv("DB_NAME"),
		ES_URL:        os.Getenv("ES_URL"),
		ES_USER:       os.Getenv("ES_USER"),
		ES_PASSWORD:   os.Getenv("ES_PASSWORD"),
		KAFKA_ADDRESS: os.Getenv("KAFKA_ADDRESS"),

		AccessTokenLifetime:  getIntDefault("ACCESS_TOKEN_LIFETIME", DefaultAccessTokenLifetime),
		RefreshTokenLifetime: getIntDefault("REFRESH_TOKEN_LIFETIME", DefaultRefreshTokenLifetime),
		IssueRefreshToken:    getBoolDefault("ISSUE_REFRESH_TOKEN", true),
	}

	return config, nil
}

func getDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("Notice: invalid %s=%q, using default %d", key, v, def)
		return def
	}
	return n
}

func getBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("Notice: invalid %s=%q, using default %v", key, v, def)
		return def
	}
	return b
}

func InitDB(configuration *Config) (*gorm.DB, error) {
	host := configuration.DB_HOST
	port := configuration.DB_PORT
	user := configuration.DB_USER
	password := configuration.DB_PASSWORD
	dbname := configuration.DB_NAME

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		user, password, host, port, dbname,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if err := db.AutoMigrate(
		&models.Account{},
		&models.AccessToken{},
		&models.RefreshToken{},
		&models.Library{},
		&models.Author{},
		&models.Series{},
		&models.Story{},
		&models.Volume{},
	); err != nil {
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	return db, nil
}
