package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
type Config struct {
	Port      string
	WebAppDir string // Path to the web application's UI files

	UploadDir      string // Base directory for all uploads
	AudioUploadDir string // Subdirectory for audio files: UploadDir/audio
	ImageUploadDir string // Subdirectory for cover images: UploadDir/images

	MaxUploadBytes int64 // Per-file upload cap

	// Object storage backup. Leaving MinioEndpoint empty disables the
	// backup entirely; uploads then produce local-only records.
	MinioEndpoint  string
	MinioRegion    string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	AdminUsername     string
	AdminPassword     string
	AdminAuthRequired bool // enforce bearer tokens on admin routes
	JWTSecret         string

	LogLevel string
	LogPath  string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	uploadBase := getEnv("UPLOAD_DIR", "uploads")

	return &Config{
		Port:      getEnv("PORT", "8080"),
		WebAppDir: getEnv("WEB_APP_DIR", filepath.Join("web", "ui")),

		UploadDir:      uploadBase,
		AudioUploadDir: filepath.Join(uploadBase, "audio"),
		ImageUploadDir: filepath.Join(uploadBase, "images"),

		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20,

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "wavecrate"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", true),

		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:     getEnv("ADMIN_PASSWORD", "admin123"),
		AdminAuthRequired: getEnvBool("ADMIN_AUTH_REQUIRED", false),
		JWTSecret:         getEnv("JWT_SECRET", "wavecrate-dev-secret"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogPath:  os.Getenv("LOG_PATH"),
	}
}
