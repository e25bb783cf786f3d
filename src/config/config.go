package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"quote-server/src/helpers"
	"quote-server/src/models"
	"quote-server/src/storage"

	"gopkg.in/yaml.v3"
)

const (
	SourceYahoo     = "yahoo"
	SourceFinanceGo = "finance-go"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig

	// Symbols is the de-duplicated union of data_source.symbols and the
	// symbols file, in first-seen order.
	Symbols []string
}

// -----------------------------------------------------------------------------

// Defaults returns the configuration used for every key the YAML file omits.
func Defaults() *models.MConfig {
	return &models.MConfig{
		Name:     "quote-server",
		Host:     "127.0.0.1",
		Port:     7878,
		LogLevel: "INFO",
		GrpcHost: "127.0.0.1",
		GrpcPort: 0,
		Workers:  4,
		Network: models.MNetworkConfig{
			RequestTimeout:    10,
			MaxRetries:        2,
			RequestsPerSecond: 2,
			Burst:             1,
		},
		DataSource: models.MDataSourceConfig{
			Type:                  SourceYahoo,
			API:                   "quote_summary",
			SymbolsFile:           "symbols.txt",
			UpdateIntervalSeconds: 600,
			FetchTimeoutSeconds:   15,
		},
	}
}

// -----------------------------------------------------------------------------

// NewConfig loads the YAML file at configPath over the defaults, applies
// QUOTES_* environment overrides, loads the symbols file and validates.
func NewConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, helpers.NewConfigurationError(fmt.Sprintf("failed to read config file '%s'", configPath), err)
	}

	modelConfig := Defaults()
	if err := yaml.Unmarshal(data, modelConfig); err != nil {
		return nil, helpers.NewConfigurationError("failed to parse config from YAML", err)
	}

	config := &Config{MConfig: modelConfig}
	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := config.ResolveSymbols(filepath.Dir(configPath)); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, helpers.NewConfigurationError("config validation failed", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// ApplyEnv overrides file values with environment variables. lookup is
// os.LookupEnv outside of tests.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return helpers.NewConfigurationError(fmt.Sprintf("invalid %s=%q", key, v), err)
		}
		*dst = n
		return nil
	}

	str("QUOTES_HOST", &c.Host)
	str("QUOTES_LOG_LEVEL", &c.LogLevel)
	str("QUOTES_SOURCE_TYPE", &c.DataSource.Type)
	str("QUOTES_SYMBOLS_FILE", &c.DataSource.SymbolsFile)
	str("QUOTES_SYMBOLS_DB_DSN", &c.DataSource.SymbolsDB.DSN)

	for key, dst := range map[string]*int{
		"QUOTES_PORT":                    &c.Port,
		"QUOTES_GRPC_PORT":               &c.GrpcPort,
		"QUOTES_WORKERS":                 &c.Workers,
		"QUOTES_UPDATE_INTERVAL_SECONDS": &c.DataSource.UpdateIntervalSeconds,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

// ResolveSymbols merges the inline symbol list with the symbols file. A
// relative file path is tried as given, then next to the config file. A
// missing file is only an error when it was configured explicitly and no
// inline symbols exist.
func (c *Config) ResolveSymbols(configDir string) error {
	symbols := append([]string(nil), c.DataSource.Symbols...)

	if path := c.DataSource.SymbolsFile; path != "" {
		fromFile, err := loadSymbolsFile(path, configDir)
		switch {
		case err == nil:
			symbols = append(symbols, fromFile...)
		case errors.Is(err, os.ErrNotExist) && len(symbols) > 0:
			// inline list is enough
		default:
			return helpers.NewConfigurationError(fmt.Sprintf("failed to load symbols file '%s'", path), err)
		}
	}

	c.Symbols = Dedupe(symbols)
	return nil
}

// -----------------------------------------------------------------------------

func loadSymbolsFile(path, configDir string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) && !filepath.IsAbs(path) && configDir != "" {
		f, err = os.Open(filepath.Join(configDir, path))
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return LoadSymbols(f)
}

// -----------------------------------------------------------------------------

// LoadSymbols reads one symbol per line. Blank lines and lines starting with
// '#' are ignored; surrounding whitespace is trimmed.
func LoadSymbols(r io.Reader) ([]string, error) {
	var symbols []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		symbols = append(symbols, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return Dedupe(symbols), nil
}

// -----------------------------------------------------------------------------

// Dedupe drops repeated and empty symbols, keeping the first occurrence.
func Dedupe(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort != 0 {
		if c.GrpcPort <= 1024 || c.GrpcPort > 65535 {
			return fmt.Errorf("invalid grpc port number: %d (must be 0 or between 1025 and 65535)", c.GrpcPort)
		}
		if c.GrpcPort == c.Port && c.GrpcHost == c.Host {
			return fmt.Errorf("grpc port %d collides with the http port", c.GrpcPort)
		}
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0")
	}

	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.Network.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second cannot be negative")
	}
	for _, p := range c.Network.Proxies {
		if _, ok := helpers.ParseProxy(p); !ok {
			return fmt.Errorf("invalid proxy '%s'", p)
		}
	}

	switch c.DataSource.Type {
	case SourceYahoo:
		if c.DataSource.API != "chart" && c.DataSource.API != "quote_summary" {
			return fmt.Errorf("unknown yahoo api '%s' (expected chart or quote_summary)", c.DataSource.API)
		}
	case SourceFinanceGo:
	default:
		return fmt.Errorf("unknown data source type '%s'", c.DataSource.Type)
	}
	switch c.DataSource.SymbolsDB.Driver {
	case "":
	case storage.DriverPostgres, storage.DriverSQLite:
		if c.DataSource.SymbolsDB.DSN == "" {
			return fmt.Errorf("symbols_db dsn cannot be empty")
		}
	default:
		return fmt.Errorf("unknown symbols_db driver '%s'", c.DataSource.SymbolsDB.Driver)
	}
	if c.DataSource.UpdateIntervalSeconds <= 0 {
		return fmt.Errorf("update interval must be greater than 0")
	}
	if c.DataSource.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("fetch timeout must be greater than 0")
	}
	if len(c.Symbols) == 0 {
		return fmt.Errorf("at least one symbol must be tracked")
	}

	return nil
}

// -----------------------------------------------------------------------------

func (c *Config) UpdateInterval() time.Duration {
	return time.Duration(c.DataSource.UpdateIntervalSeconds) * time.Second
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.DataSource.FetchTimeoutSeconds) * time.Second
}

// HTTPAddr and GrpcAddr bracket IPv6 hosts.
func (c *Config) HTTPAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *Config) GrpcAddr() string {
	return net.JoinHostPort(c.GrpcHost, strconv.Itoa(c.GrpcPort))
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
