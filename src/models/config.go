package models

// MConfig Structure
type MConfig struct {
	Name       string            `yaml:"name"`
	Host       string            `yaml:"host"`
	Port       int               `yaml:"port"`
	LogLevel   string            `yaml:"log_level"`
	GrpcHost   string            `yaml:"grpc_host"`
	GrpcPort   int               `yaml:"grpc_port"`
	Workers    int               `yaml:"workers"`
	Network    MNetworkConfig    `yaml:"network"`
	DataSource MDataSourceConfig `yaml:"data_source"`
}

type MNetworkConfig struct {
	Proxies           []string `yaml:"proxies"`
	RequestTimeout    int      `yaml:"timeout"`
	MaxRetries        int      `yaml:"retries"`
	RequestsPerSecond float64  `yaml:"requests_per_second"`
	Burst             int      `yaml:"burst"`
	UserAgent         string   `yaml:"user_agent"`
}

type MDataSourceConfig struct {
	Type                  string   `yaml:"type"` // "yahoo" or "finance-go"
	API                   string   `yaml:"api"`  // yahoo only: "chart" or "quote_summary"
	Symbols               []string `yaml:"symbols"`
	SymbolsFile           string   `yaml:"symbols_file"`
	UpdateIntervalSeconds int      `yaml:"update_interval_seconds"`
	FetchTimeoutSeconds   int      `yaml:"fetch_timeout_seconds"`
	MarketHoursOnly       bool     `yaml:"market_hours_only"`

	// Optional database used to expand schema.table.field symbol entries
	SymbolsDB MSymbolsDBConfig `yaml:"symbols_db"`
}

type MSymbolsDBConfig struct {
	Driver string `yaml:"driver"` // "postgres" or "sqlite"
	DSN    string `yaml:"dsn"`
}
