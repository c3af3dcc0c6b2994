package config

import (
	"os"
	"path"

	"github.com/joho/godotenv"
)

// Config holds settings read from the environment
type Config struct {
	RootDir   string
	OutputDir string // Base directory for rendered images

	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
}

// Load reads RAYTRACER_ROOT_DIR/.env, if present, and then the environment.
// Variables already set in the environment take precedence over the file.
func Load() *Config {
	rootDir := getEnv("RAYTRACER_ROOT_DIR", ".")
	_ = godotenv.Load(path.Join(rootDir, ".env"))

	return &Config{
		RootDir:     rootDir,
		OutputDir:   getEnv("RAYTRACER_OUTPUT_DIR", "output"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
	}
}

// HasS3 reports whether enough settings are present to upload renders
func (c *Config) HasS3() bool {
	return c.S3AccessKey != "" && c.S3SecretKey != "" && c.S3Bucket != ""
}

// Helper to get environment variables with a default value.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
