// Package config loads, validates and documents the argo-pnl YAML
// configuration.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-pnl/internal/aggregation"
	"github.com/rxtech-lab/argo-pnl/internal/commission_fee"
	"github.com/rxtech-lab/argo-pnl/internal/types"
	"github.com/rxtech-lab/argo-pnl/internal/version"
	"github.com/rxtech-lab/argo-pnl/pkg/errors"
	"github.com/rxtech-lab/argo-pnl/pkg/utils"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// SourceType selects the trade source.
type SourceType string

const (
	SourceTypeMemory  SourceType = "memory"
	SourceTypeDuckDB  SourceType = "duckdb"
	SourceTypeBinance SourceType = "binance"
)

var AllSourceTypes = []any{
	SourceTypeMemory,
	SourceTypeDuckDB,
	SourceTypeBinance,
}

// LocalTimezone selects the process' local timezone.
const LocalTimezone = "Local"

// Environment variables read by ApplyEnv.
const (
	EnvBinanceAPIKey    = "BINANCE_API_KEY"
	EnvBinanceAPISecret = "BINANCE_API_SECRET"
	// EnvEnvironment is TEST (futures testnet) or LIVE.
	EnvEnvironment = "ENVIRONMENT"
)

type Config struct {
	Version  string         `yaml:"version" jsonschema:"title=Version,description=Version of argo-pnl the file was written for" validate:"required"`
	Trading  TradingConfig  `yaml:"trading"`
	Calendar CalendarConfig `yaml:"calendar"`
	Source   SourceConfig   `yaml:"source"`
	Output   OutputConfig   `yaml:"output"`
	Display  DisplayConfig  `yaml:"display"`
	Log      LogConfig      `yaml:"log"`
}

// TradingConfig describes the position every trade is assumed to have used.
type TradingConfig struct {
	OrderSize float64 `yaml:"order_size" jsonschema:"title=Order Size,description=Margin per order in the settlement currency,exclusiveMinimum=0" validate:"gt=0"`
	Leverage  float64 `yaml:"leverage" jsonschema:"title=Leverage,description=Leverage applied to every order,exclusiveMinimum=0" validate:"gt=0"`
	// RoundTripFeeRate is charged once on entry and once on exit.
	RoundTripFeeRate float64               `yaml:"round_trip_fee_rate" jsonschema:"title=Fee Rate Per Leg,description=Fee fraction charged on entry and again on exit,minimum=0,maximum=1" validate:"gte=0,lt=1"`
	Broker           commission_fee.Broker `yaml:"broker" jsonschema:"title=Broker,description=Fee model" validate:"required"`
}

type CalendarConfig struct {
	WeekStartsOn types.WeekStart `yaml:"week_starts_on" jsonschema:"title=Week Starts On,description=First day of the weekly bucket" validate:"required"`
	Timezone     string          `yaml:"timezone" jsonschema:"title=Timezone,description=IANA timezone of the day/week/month buckets or Local" validate:"required"`
}

type SourceConfig struct {
	Type    SourceType    `yaml:"type" jsonschema:"title=Source Type,description=Where trade records come from" validate:"required"`
	DuckDB  DuckDBConfig  `yaml:"duckdb"`
	Binance BinanceConfig `yaml:"binance"`
}

type DuckDBConfig struct {
	ParquetPath string `yaml:"parquet_path" jsonschema:"title=Parquet Path,description=File the trade table is persisted to; empty keeps it in memory"`
}

type BinanceConfig struct {
	APIKey       string        `yaml:"api_key" jsonschema:"title=API Key,description=Binance API key; defaults to $BINANCE_API_KEY"`
	SecretKey    string        `yaml:"secret_key" jsonschema:"title=Secret Key,description=Binance API secret; defaults to $BINANCE_API_SECRET"`
	Symbols      []string      `yaml:"symbols" jsonschema:"title=Symbols,description=USDT-M futures pairs to follow"`
	PollInterval time.Duration `yaml:"poll_interval" jsonschema:"title=Poll Interval"`
	Testnet      bool          `yaml:"testnet" jsonschema:"title=Testnet,description=Use the futures testnet"`
	BaseURL      string        `yaml:"base_url,omitempty" jsonschema:"title=Base URL,description=Overrides the REST endpoint"`
}

type OutputConfig struct {
	StatsPath string      `yaml:"stats_path" jsonschema:"title=Stats Path,description=YAML file kept up to date with the latest statistics; empty disables it"`
	Redis     RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" jsonschema:"title=Address,description=host:port; empty disables Redis output"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db" validate:"gte=0"`
	Key      string `yaml:"key"`
	Channel  string `yaml:"channel"`
}

type DisplayConfig struct {
	Currency string `yaml:"currency" jsonschema:"title=Currency,description=Label printed after every amount" validate:"required"`
}

type LogConfig struct {
	Level string `yaml:"level" jsonschema:"title=Level,enum=debug,enum=info,enum=warn,enum=error" validate:"oneof=debug info warn error"`
}

// Default returns a configuration that reads trades from a local parquet file.
func Default() Config {
	return Config{
		Version: strings.TrimPrefix(version.GetVersion(), "v"),
		Trading: TradingConfig{
			OrderSize:        20,
			Leverage:         10,
			RoundTripFeeRate: commission_fee.DefaultFeeRatePerLeg.InexactFloat64(),
			Broker:           commission_fee.BrokerBinanceFutures,
		},
		Calendar: CalendarConfig{
			WeekStartsOn: types.DefaultWeekStart,
			Timezone:     LocalTimezone,
		},
		Source: SourceConfig{
			Type: SourceTypeDuckDB,
			DuckDB: DuckDBConfig{
				ParquetPath: filepath.Join("data", "trades.parquet"),
			},
			Binance: BinanceConfig{
				Symbols:      []string{"BTCUSDT"},
				PollInterval: 30 * time.Second,
				Testnet:      true,
			},
		},
		Output: OutputConfig{
			StatsPath: filepath.Join("data", "stats.yaml"),
			Redis: RedisConfig{
				Key:     "argo-pnl:stats",
				Channel: "argo-pnl:stats:updates",
			},
		},
		Display: DisplayConfig{
			Currency: types.DefaultCurrency,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Parse decodes YAML on top of Default. ${VAR} references are expanded from
// the environment first.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	return cfg, nil
}

// LoadFromFile reads, parses, completes from the environment and validates a
// config file.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, err
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// SaveToFile writes the config as YAML.
func (c Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to marshal config", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(errors.ErrCodeWriteFailed, "failed to create config directory", err)
		}
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to write config", err)
	}

	return nil
}

// ApplyEnv fills Binance credentials and the testnet switch from the
// environment where the file leaves them empty.
func (c *Config) ApplyEnv() {
	if c.Source.Binance.APIKey == "" {
		c.Source.Binance.APIKey = os.Getenv(EnvBinanceAPIKey)
	}

	if c.Source.Binance.SecretKey == "" {
		c.Source.Binance.SecretKey = os.Getenv(EnvBinanceAPISecret)
	}

	switch strings.ToUpper(os.Getenv(EnvEnvironment)) {
	case "LIVE":
		c.Source.Binance.Testnet = false
	case "TEST":
		c.Source.Binance.Testnet = true
	}
}

// Validate checks field constraints and the combinations between them.
func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	if err := version.CheckConfigCompatibility(version.GetVersion(), c.Version); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidVersion, "incompatible config version", err)
	}

	if !c.Calendar.WeekStartsOn.IsValid() {
		return errors.Newf(errors.ErrCodeInvalidWeekStart, "invalid week_starts_on %q", c.Calendar.WeekStartsOn)
	}

	if _, err := c.Calendar.Location(); err != nil {
		return err
	}

	switch c.Trading.Broker {
	case commission_fee.BrokerBinanceFutures, commission_fee.BrokerZero:
	default:
		return errors.Newf(errors.ErrCodeInvalidBroker, "unsupported broker %q", c.Trading.Broker)
	}

	switch c.Source.Type {
	case SourceTypeMemory, SourceTypeDuckDB:
	case SourceTypeBinance:
		return c.Source.Binance.validate()
	default:
		return errors.Newf(errors.ErrCodeInvalidSourceType, "unsupported source type %q", c.Source.Type)
	}

	return nil
}

func (b BinanceConfig) validate() error {
	if len(b.Symbols) == 0 {
		return errors.New(errors.ErrCodeMissingParameter, "source.binance.symbols is required")
	}

	if b.APIKey == "" || b.SecretKey == "" {
		return errors.Newf(errors.ErrCodeMissingParameter,
			"binance credentials are required (set %s and %s)", EnvBinanceAPIKey, EnvBinanceAPISecret)
	}

	if b.PollInterval < time.Second {
		return errors.Newf(errors.ErrCodeInvalidParameter, "source.binance.poll_interval %s is below 1s", b.PollInterval)
	}

	return nil
}

// Location resolves the calendar timezone.
func (c CalendarConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, LocalTimezone) {
		return time.Local, nil
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidTimezone, err, "unknown timezone %q", c.Timezone)
	}

	return loc, nil
}

// PositionNotional is order size times leverage.
func (t TradingConfig) PositionNotional() decimal.Decimal {
	return decimal.NewFromFloat(t.OrderSize).Mul(decimal.NewFromFloat(t.Leverage))
}

// AggregationConfig builds the immutable configuration of the aggregation
// engine.
func (c Config) AggregationConfig() (aggregation.Config, error) {
	weekStart, err := types.ParseWeekStart(string(c.Calendar.WeekStartsOn))
	if err != nil {
		return aggregation.Config{}, errors.Wrap(errors.ErrCodeInvalidWeekStart, "invalid week_starts_on", err)
	}

	loc, err := c.Calendar.Location()
	if err != nil {
		return aggregation.Config{}, err
	}

	feeRate := decimal.NewFromFloat(c.Trading.RoundTripFeeRate)

	return aggregation.Config{
		WeekStartsOn:     weekStart,
		PositionNotional: c.Trading.PositionNotional(),
		FeeRatePerLeg:    feeRate,
		Commission:       commission_fee.GetCommissionFeeHandler(c.Trading.Broker, feeRate),
		Location:         loc,
	}, nil
}

// Schema returns the JSON schema of the config file.
func Schema() (string, error) {
	return utils.GetSchemaFromConfig(&Config{},
		utils.EnumMapper("commission_fee.Broker", commission_fee.AllBrokers),
		utils.EnumMapper("types.WeekStart", types.AllWeekStarts),
		utils.EnumMapper("config.SourceType", AllSourceTypes),
	)
}
