package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"feastfox/internal/storage"
)

const fileName = "feastfox.yaml"

type Config struct {
	Client ClientConfig `yaml:"client"`
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	// LogLevel is empty unless set; each binary applies its own default.
	LogLevel string `yaml:"logLevel"`
}

type ClientConfig struct {
	APIURL  string `yaml:"apiURL"`
	UseMock bool   `yaml:"useMock"`
	// Watch subscribes the meals screen to the server's change feed.
	Watch bool `yaml:"watch"`
}

type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"corsOrigins"`
}

type StoreConfig struct {
	Backend        string `yaml:"backend"`
	DBPath         string `yaml:"dbPath"`
	Seed           bool   `yaml:"seed"`
	DynamoEndpoint string `yaml:"dynamoEndpoint"`
	Region         string `yaml:"region"`
	Table          string `yaml:"table"`
	PostgresDSN    string `yaml:"postgresDSN"`
}

func Default() *Config {
	return &Config{
		Client: ClientConfig{
			APIURL: "http://localhost:8000",
			Watch:  true,
		},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8000,
			CORSOrigins: []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		},
		Store: StoreConfig{
			Backend:        "sqlite",
			DBPath:         "feastfox.db",
			Seed:           true,
			DynamoEndpoint: "http://localhost:8001",
			Region:         "us-east-1",
			Table:          "feastfox-meals",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file (if one is
// found), then the environment. A .env file in the working directory is
// loaded into the environment first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	path := os.Getenv("FEASTFOX_CONFIG")
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Client.APIURL = getEnv("FEASTFOX_API_URL", c.Client.APIURL)
	c.Server.Host = getEnv("FEASTFOX_HOST", c.Server.Host)
	c.Store.Backend = getEnv("FEASTFOX_STORE", c.Store.Backend)
	c.Store.DBPath = getEnv("FEASTFOX_DB_PATH", c.Store.DBPath)
	c.Store.DynamoEndpoint = getEnv("DYNAMODB_ENDPOINT", c.Store.DynamoEndpoint)
	c.Store.Region = getEnv("AWS_REGION", c.Store.Region)
	c.Store.Table = getEnv("FEASTFOX_TABLE", c.Store.Table)
	c.Store.PostgresDSN = getEnv("FEASTFOX_POSTGRES_DSN", c.Store.PostgresDSN)
	c.LogLevel = getEnv("FEASTFOX_LOG_LEVEL", c.LogLevel)

	if v := os.Getenv("FEASTFOX_CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}

	var err error
	if c.Client.UseMock, err = getBool("FEASTFOX_USE_MOCK", c.Client.UseMock); err != nil {
		return err
	}
	if c.Client.Watch, err = getBool("FEASTFOX_WATCH", c.Client.Watch); err != nil {
		return err
	}
	if c.Store.Seed, err = getBool("FEASTFOX_SEED", c.Store.Seed); err != nil {
		return err
	}
	if v := os.Getenv("FEASTFOX_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid FEASTFOX_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	return nil
}

// StoreOptions converts the store section for storage.Open.
func (c *Config) StoreOptions() storage.Options {
	return storage.Options{
		Backend:        c.Store.Backend,
		DBPath:         c.Store.DBPath,
		DynamoEndpoint: c.Store.DynamoEndpoint,
		Region:         c.Store.Region,
		Table:          c.Store.Table,
		PostgresDSN:    c.Store.PostgresDSN,
		Seed:           c.Store.Seed,
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// findConfigFile walks up from the working directory looking for
// feastfox.yaml.
func findConfigFile() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		path := filepath.Join(dir, fileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
