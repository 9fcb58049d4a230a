package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Transport TransportConfig `yaml:"transport"`
	Auth      AuthConfig      `yaml:"auth"`
	Ledger    LedgerConfig    `yaml:"ledger"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// TransportConfig selects how the server speaks MCP: "http" serves the
// streamable HTTP endpoint, "stdio" speaks over stdin/stdout.
type TransportConfig struct {
	Mode string `yaml:"mode"`
}

type AuthConfig struct {
	// When disabled, the bearer token is used as the caller address
	// directly. Intended for local development only.
	Enabled     bool         `yaml:"enabled"`
	Credentials []Credential `yaml:"credentials"`
}

type Credential struct {
	Token       string `yaml:"token"`
	Address     string `yaml:"address"`
	Description string `yaml:"description"`
}

// LedgerConfig seeds the ledger on first boot. Administrator and reporter
// are only applied while both roles are unset, so restarts never undo a
// role transfer done through the API.
type LedgerConfig struct {
	Administrator  string        `yaml:"administrator"`
	Reporter       string        `yaml:"reporter"`
	TokenSymbol    string        `yaml:"token_symbol"`
	CustodyAccount string        `yaml:"custody_account"`
	SeedBalances   []SeedBalance `yaml:"seed_balances"`
}

type SeedBalance struct {
	Address string `yaml:"address"`
	Amount  uint64 `yaml:"amount"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "covenant.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		Ledger: LedgerConfig{
			TokenSymbol:    "USDC",
			CustodyAccount: "vault:custody",
		},
	}

	if path := os.Getenv("COVENANT_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("COVENANT_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("COVENANT_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid COVENANT_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("COVENANT_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("COVENANT_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if mode := os.Getenv("COVENANT_TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if admin := os.Getenv("COVENANT_ADMINISTRATOR"); admin != "" {
		cfg.Ledger.Administrator = admin
	}
	if reporter := os.Getenv("COVENANT_REPORTER"); reporter != "" {
		cfg.Ledger.Reporter = reporter
	}

	if cfg.Transport.Mode != "http" && cfg.Transport.Mode != "stdio" {
		return Config{}, fmt.Errorf("invalid transport mode %q (want http or stdio)", cfg.Transport.Mode)
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
