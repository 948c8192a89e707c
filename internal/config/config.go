package config

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Addr      string
	DBPath    string
	NVDDBPath string
	Debug     bool

	// External provider endpoints. Empty values select the public
	// defaults; tests point them at local stubs.
	EPSSBaseURL    string
	ShodanCVEDBURL string
	ShodanAPIURL   string
	ShodanAPIKey   string
	OpenAIBaseURL  string
	OpenAIAPIKey   string
	CWEBaseURL     string

	// ProviderTimeout bounds each outbound enrichment call.
	ProviderTimeout time.Duration
}

// Load parses command line flags and environment variables to populate Config.
// Flags take precedence over environment variables.
func Load() *Config {
	cfg := &Config{}

	// Defaults and Environment Variables
	cfg.Addr = getEnv("VULNSCOPE_ADDR", ":8080")
	cfg.DBPath = getEnv("VULNSCOPE_DB", defaultPath("vulnscope.db"))
	cfg.NVDDBPath = getEnv("VULNSCOPE_NVD_DB", defaultPath("nvd.db"))
	cfg.Debug = getEnvBool("VULNSCOPE_DEBUG", false)

	cfg.EPSSBaseURL = getEnv("EPSS_API_URL", "")
	cfg.ShodanCVEDBURL = getEnv("SHODAN_CVEDB_URL", "")
	cfg.ShodanAPIURL = getEnv("SHODAN_API_URL", "")
	cfg.ShodanAPIKey = getEnv("SHODAN_API_KEY", "")
	cfg.OpenAIBaseURL = getEnv("OPENAI_API_URL", "")
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", "")
	cfg.CWEBaseURL = getEnv("CWE_API_URL", "")

	timeoutSecs := getEnvInt("VULNSCOPE_PROVIDER_TIMEOUT", 15)

	// Command Line Flags (Override Env)
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP server address")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the application SQLite database")
	flag.StringVar(&cfg.NVDDBPath, "nvd-db", cfg.NVDDBPath, "Path to the raw NVD record SQLite database")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable verbose debug logging")
	flag.IntVar(&timeoutSecs, "provider-timeout", timeoutSecs, "Per-provider HTTP timeout in seconds")

	flag.Parse()

	cfg.ProviderTimeout = time.Duration(timeoutSecs) * time.Second

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// defaultPath returns the default location for a database file in the
// user's home directory. Creates the directory if it doesn't exist.
func defaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Warning: Could not get user home directory, using current dir: %v", err)
		return name
	}

	// Use ~/.vulnscope directory
	dir := filepath.Join(home, ".vulnscope")

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("Warning: Could not create .vulnscope directory, using current dir: %v", err)
		return name
	}

	return filepath.Join(dir, name)
}
