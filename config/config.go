package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/alejandrodnm/arbscout/internal/domain"
	"github.com/alejandrodnm/arbscout/internal/scanner"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Tipos de adapter soportados en PlatformConfig.Type.
const (
	AdapterHTTP    = "http"
	AdapterHTML    = "html"
	AdapterFixture = "fixture"
)

// Config es la configuración completa del scanner.
type Config struct {
	Scanner   ScannerConfig    `yaml:"scanner"`
	Platforms []PlatformConfig `yaml:"platforms"`
	Fees      FeesConfig       `yaml:"fees"`
	Scoring   ScoringConfig    `yaml:"scoring"`
	Storage   StorageConfig    `yaml:"storage"`
	Log       LogConfig        `yaml:"log"`
}

// ScannerConfig controla el loop y las opciones de cada scan.
type ScannerConfig struct {
	IntervalSeconds       int      `yaml:"interval_seconds"`
	AdapterTimeoutSeconds int      `yaml:"adapter_timeout_seconds"`
	PerPlatformResults    int      `yaml:"per_platform_results"`
	Query                 string   `yaml:"query"`
	Category              string   `yaml:"category"`
	CategoryFees          bool     `yaml:"category_fees"` // tarifa por categoría en vez de la base
	MinMarginPct          *float64 `yaml:"min_margin_pct"` // nil = 15; 0 explícito se respeta
	MaxResults            int      `yaml:"max_results"`
	MinPrice              float64  `yaml:"min_price"`
	MaxPrice              float64  `yaml:"max_price"`
	RequireInStock        bool     `yaml:"require_in_stock"`
	MatchedOnly           bool     `yaml:"matched_only"`
	Platforms             []string `yaml:"platforms"` // vacío = todas las configuradas
	TitleThreshold        float64  `yaml:"title_threshold"`
}

// PlatformConfig describe cómo construir el adapter de una plataforma.
type PlatformConfig struct {
	Name           string            `yaml:"name"`
	Type           string            `yaml:"type"` // http | html | fixture
	Enabled        *bool             `yaml:"enabled"`
	BaseURL        string            `yaml:"base_url"`
	APIKeyEnv      string            `yaml:"api_key_env"` // nombre de la env var con la API key
	RatePerSec     float64           `yaml:"rate_per_sec"`
	TimeoutSeconds int               `yaml:"timeout_seconds"`
	SearchURL      string            `yaml:"search_url"`
	ProductURL     string            `yaml:"product_url"`
	Selectors      map[string]string `yaml:"selectors"`
	FixtureFile    string            `yaml:"fixture_file"`
}

// FeesConfig sobreescribe la tabla de fees por defecto.
type FeesConfig struct {
	Schedules     map[string]FeeOverride        `yaml:"schedules"`
	CategoryRates map[string]map[string]float64 `yaml:"category_rates"`
}

// FeeOverride es una fila parcial: solo los campos presentes cambian.
type FeeOverride struct {
	SellerFeePct         *float64 `yaml:"seller_fee_pct"`
	FixedFee             *float64 `yaml:"fixed_fee"`
	PaymentProcessingPct *float64 `yaml:"payment_processing_pct"`
	ShippingEstimate     *float64 `yaml:"shipping_estimate"`
}

// ScoringConfig ajusta pesos y fiabilidad del scorer.
type ScoringConfig struct {
	Weights     *WeightsConfig     `yaml:"weights"`
	Reliability map[string]float64 `yaml:"reliability"`
}

// WeightsConfig son los pesos del score.
type WeightsConfig struct {
	Margin      float64 `yaml:"margin"`
	Profit      float64 `yaml:"profit"`
	Reliability float64 `yaml:"reliability"`
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del entorno sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}
	return Parse(data)
}

// Parse aplica YAML, env overrides, defaults y validación sobre data.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	setDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// ScanInterval devuelve el intervalo de escaneo como time.Duration.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.Scanner.IntervalSeconds) * time.Second
}

// ScannerSettings devuelve la configuración del Scanner.
func (c *Config) ScannerSettings() scanner.Config {
	return scanner.Config{
		AdapterTimeout:     time.Duration(c.Scanner.AdapterTimeoutSeconds) * time.Second,
		PerPlatformResults: c.Scanner.PerPlatformResults,
	}
}

// ScanOptions construye las opciones de cada scan.
func (c *Config) ScanOptions() scanner.ScanOptions {
	opts := scanner.ScanOptions{
		Query:          c.Scanner.Query,
		Category:       c.Scanner.Category,
		CategoryFees:   c.Scanner.CategoryFees,
		MaxResults:     c.Scanner.MaxResults,
		MinPrice:       c.Scanner.MinPrice,
		MaxPrice:       c.Scanner.MaxPrice,
		RequireInStock: c.Scanner.RequireInStock,
		MatchedOnly:    c.Scanner.MatchedOnly,
	}
	if c.Scanner.MinMarginPct != nil {
		opts.MinMarginPct = *c.Scanner.MinMarginPct
	}
	for _, name := range c.Scanner.Platforms {
		if p, err := domain.ParsePlatform(name); err == nil {
			opts.Platforms = append(opts.Platforms, p)
		}
	}
	return opts
}

// FeeTable devuelve la tabla por defecto con los overrides aplicados.
func (c *Config) FeeTable() domain.FeeTable {
	table := domain.DefaultFeeTable()

	for name, o := range c.Fees.Schedules {
		p, err := domain.ParsePlatform(name)
		if err != nil {
			continue
		}
		fs := table.Schedules[p]
		fs.Platform = p
		if o.SellerFeePct != nil {
			fs.SellerFeePct = *o.SellerFeePct
		}
		if o.FixedFee != nil {
			fs.FixedFee = *o.FixedFee
		}
		if o.PaymentProcessingPct != nil {
			fs.PaymentProcessingPct = *o.PaymentProcessingPct
		}
		if o.ShippingEstimate != nil {
			fs.ShippingEstimate = *o.ShippingEstimate
		}
		table.Schedules[p] = fs
	}

	for name, rates := range c.Fees.CategoryRates {
		p, err := domain.ParsePlatform(name)
		if err != nil {
			continue
		}
		if table.CategoryRates[p] == nil {
			table.CategoryRates[p] = make(map[string]float64, len(rates))
		}
		for cat, pct := range rates {
			table.CategoryRates[p][domain.NormalizeCategory(cat)] = pct
		}
	}
	return table
}

// ScorerConfig devuelve pesos y fiabilidad, con los overrides sobre los defaults.
func (c *Config) ScorerConfig() domain.ScorerConfig {
	cfg := domain.ScorerConfig{Reliability: domain.DefaultReliability()}
	if w := c.Scoring.Weights; w != nil {
		cfg.Weights = domain.Weights{Margin: w.Margin, Profit: w.Profit, Reliability: w.Reliability}
	}
	for name, v := range c.Scoring.Reliability {
		if p, err := domain.ParsePlatform(name); err == nil {
			cfg.Reliability[p] = v
		}
	}
	return cfg
}

// MatcherConfig devuelve la configuración del matcher.
func (c *Config) MatcherConfig() domain.MatcherConfig {
	return domain.MatcherConfig{TitleThreshold: c.Scanner.TitleThreshold}
}

// IsEnabled indica si la plataforma debe cablearse (default true).
func (p PlatformConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// APIKey lee la API key de la env var configurada.
func (p PlatformConfig) APIKey() string {
	if p.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(p.APIKeyEnv)
}

// Timeout devuelve el timeout HTTP del adapter (0 = default del adapter).
func (p PlatformConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// Validate comprueba nombres de plataforma, tipos de adapter y rangos.
func (c *Config) Validate() error {
	var errs []error

	seen := make(map[string]bool)
	for i, pc := range c.Platforms {
		p, err := domain.ParsePlatform(pc.Name)
		if err != nil {
			errs = append(errs, fmt.Errorf("platforms[%d]: %w", i, err))
			continue
		}
		if seen[string(p)] {
			errs = append(errs, fmt.Errorf("platforms[%d]: duplicate platform %s", i, p))
		}
		seen[string(p)] = true

		switch pc.Type {
		case AdapterHTTP:
			if pc.BaseURL == "" {
				errs = append(errs, fmt.Errorf("platforms[%d] %s: base_url required", i, p))
			}
		case AdapterHTML:
			if pc.SearchURL == "" {
				errs = append(errs, fmt.Errorf("platforms[%d] %s: search_url required", i, p))
			}
		case AdapterFixture:
			if pc.FixtureFile == "" {
				errs = append(errs, fmt.Errorf("platforms[%d] %s: fixture_file required", i, p))
			}
		default:
			errs = append(errs, fmt.Errorf("platforms[%d] %s: unknown adapter type %q", i, p, pc.Type))
		}
	}

	for _, name := range c.Scanner.Platforms {
		if _, err := domain.ParsePlatform(name); err != nil {
			errs = append(errs, fmt.Errorf("scanner.platforms: %w", err))
		}
	}
	for name := range c.Fees.Schedules {
		if _, err := domain.ParsePlatform(name); err != nil {
			errs = append(errs, fmt.Errorf("fees.schedules: %w", err))
		}
	}
	for name := range c.Fees.CategoryRates {
		if _, err := domain.ParsePlatform(name); err != nil {
			errs = append(errs, fmt.Errorf("fees.category_rates: %w", err))
		}
	}
	for name, v := range c.Scoring.Reliability {
		if _, err := domain.ParsePlatform(name); err != nil {
			errs = append(errs, fmt.Errorf("scoring.reliability: %w", err))
		} else if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("scoring.reliability.%s: %.2f outside [0,1]", name, v))
		}
	}
	if w := c.Scoring.Weights; w != nil && (w.Margin < 0 || w.Profit < 0 || w.Reliability < 0) {
		errs = append(errs, errors.New("scoring.weights: negative weight"))
	}
	if c.Scanner.TitleThreshold < 0 || c.Scanner.TitleThreshold > 1 {
		errs = append(errs, fmt.Errorf("scanner.title_threshold: %.2f outside [0,1]", c.Scanner.TitleThreshold))
	}

	return errors.Join(errs...)
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("SCAN_QUERY"); v != "" {
		cfg.Scanner.Query = v
	}
	if v := os.Getenv("SCAN_MIN_MARGIN_PCT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SCAN_MIN_MARGIN_PCT: %w", err)
		}
		cfg.Scanner.MinMarginPct = &f
	}
	if v := os.Getenv("STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	return nil
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	def := scanner.DefaultScanOptions()
	defCfg := scanner.DefaultConfig()

	if cfg.Scanner.IntervalSeconds <= 0 {
		cfg.Scanner.IntervalSeconds = 300
	}
	if cfg.Scanner.AdapterTimeoutSeconds <= 0 {
		cfg.Scanner.AdapterTimeoutSeconds = int(defCfg.AdapterTimeout / time.Second)
	}
	if cfg.Scanner.PerPlatformResults <= 0 {
		cfg.Scanner.PerPlatformResults = defCfg.PerPlatformResults
	}
	if cfg.Scanner.Query == "" {
		cfg.Scanner.Query = def.Query
	}
	if cfg.Scanner.MinMarginPct == nil {
		m := def.MinMarginPct
		cfg.Scanner.MinMarginPct = &m
	}
	if cfg.Scanner.MaxResults <= 0 {
		cfg.Scanner.MaxResults = def.MaxResults
	}
	if cfg.Scanner.TitleThreshold == 0 {
		cfg.Scanner.TitleThreshold = 0.6
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "arbscout.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
