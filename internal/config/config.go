// Package config provides application configuration from a .env file, an
// optional YAML file and environment variables, in increasing precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const configPathEnv = "SPACE_EXPLORER_CONFIG"

// AppConfig holds all application configuration
type AppConfig struct {
	ListenAddr     string   `yaml:"listenAddr"`
	NasaAPIURL     string   `yaml:"nasaApiUrl"`
	NasaAPIKey     string   `yaml:"nasaApiKey"`
	EonetAPIURL    string   `yaml:"eonetApiUrl"`
	EpicArchiveURL string   `yaml:"epicArchiveUrl"`
	HTTPTimeoutSec int      `yaml:"httpTimeoutSeconds"`
	CacheTTLSec    int      `yaml:"cacheTtlSeconds"`
	CorsOrigins    []string `yaml:"corsOrigins"`
	LogLevel       string   `yaml:"logLevel"`
}

// HTTPTimeout is the per-request timeout for upstream calls
func (c *AppConfig) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

// CacheTTL is how long cached responses stay fresh
func (c *AppConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		ListenAddr:     ":3000",
		NasaAPIURL:     "https://api.nasa.gov",
		NasaAPIKey:     "DEMO_KEY",
		EonetAPIURL:    "https://eonet.gsfc.nasa.gov/api/v3",
		EpicArchiveURL: "https://epic.gsfc.nasa.gov",
		HTTPTimeoutSec: 30,
		CacheTTLSec:    3600,
		CorsOrigins:    []string{"*"},
		LogLevel:       "info",
	}
}

// LoadConfig loads configuration. A missing .env or config file is not an
// error; problems reading either are returned as warnings for the caller to log.
func LoadConfig() (*AppConfig, []string) {
	var warnings []string
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		warnings = append(warnings, fmt.Sprintf("cannot load .env: %v", err))
	}

	cfg := defaultConfig()
	if path := os.Getenv(configPathEnv); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			warnings = append(warnings, fmt.Sprintf("cannot read %s, using defaults: %v", path, err))
		}
	}
	cfg.applyEnv()
	return cfg, warnings
}

func (c *AppConfig) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	// unmarshalling over the defaults keeps every key the file leaves out
	return yaml.Unmarshal(raw, c)
}

func (c *AppConfig) applyEnv() {
	c.ListenAddr = getEnv("LISTEN_ADDR", c.ListenAddr)
	c.NasaAPIURL = getEnv("NASA_API_URL", c.NasaAPIURL)
	c.NasaAPIKey = getEnv("NASA_API_KEY", c.NasaAPIKey)
	c.EonetAPIURL = getEnv("EONET_API_URL", c.EonetAPIURL)
	c.EpicArchiveURL = getEnv("EPIC_ARCHIVE_URL", c.EpicArchiveURL)
	c.HTTPTimeoutSec = getEnvInt("HTTP_TIMEOUT_SECONDS", c.HTTPTimeoutSec)
	c.CacheTTLSec = getEnvInt("CACHE_TTL_SECONDS", c.CacheTTLSec)
	c.CorsOrigins = getEnvList("CORS_ORIGINS", c.CorsOrigins)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
