package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del bot.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Trade   TradeConfig   `yaml:"trade"`
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// EngineConfig controla la valoración de pujas y el tracker.
type EngineConfig struct {
	PollIntervalSeconds int     `yaml:"poll_interval_seconds"`
	PendingTimeoutMin   int     `yaml:"pending_timeout_minutes"` // tras esto una puja ambigua pasa a timeout
	DefaultOverbidPct   float64 `yaml:"default_overbid_pct"`     // arranque en frío
	MaxOverbidPct       float64 `yaml:"max_overbid_pct"`         // cap normal (flips)
	PriorityOverbidPct  float64 `yaml:"priority_overbid_pct"`    // cap para adquisiciones prioritarias
	PriorityQuality     float64 `yaml:"priority_quality"`        // quality score mínimo para el cap elevado
	LearnerWindowDays   int     `yaml:"learner_window_days"`
	LearnerMaxOutcomes  int     `yaml:"learner_max_outcomes"`
	LearnerMinSamples   int     `yaml:"learner_min_samples"` // por debajo: default conservador
}

// TradeConfig controla el optimizador de swaps.
type TradeConfig struct {
	MaxDivest       int     `yaml:"max_divest"`
	MaxAcquire      int     `yaml:"max_acquire"`
	MaxHoldings     int     `yaml:"max_holdings"`
	TopK            int     `yaml:"top_k"`
	MinImprovement  float64 `yaml:"min_improvement"` // score mínimo para emitir un swap
	MinPerRole      map[string]int `yaml:"min_per_role"`
}

// APIConfig contiene el base URL, el token y la liga del mercado.
type APIConfig struct {
	BaseURL  string `yaml:"base_url"`
	Token    string `yaml:"token"` // normalmente via env MARKET_TOKEN
	LeagueID string `yaml:"league_id"`
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
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// PollInterval devuelve el intervalo de polling como time.Duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Engine.PollIntervalSeconds) * time.Second
}

// PendingTimeout devuelve el timeout de pujas ambiguas como time.Duration.
func (c *Config) PendingTimeout() time.Duration {
	return time.Duration(c.Engine.PendingTimeoutMin) * time.Minute
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MARKET_TOKEN"); v != "" {
		cfg.API.Token = v
	}
	if v := os.Getenv("MARKET_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("MARKET_LEAGUE_ID"); v != "" {
		cfg.API.LeagueID = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Engine.PollIntervalSeconds <= 0 {
		cfg.Engine.PollIntervalSeconds = 30
	}
	if cfg.Engine.PendingTimeoutMin <= 0 {
		cfg.Engine.PendingTimeoutMin = 60
	}
	if cfg.Engine.DefaultOverbidPct <= 0 {
		cfg.Engine.DefaultOverbidPct = 5.0
	}
	if cfg.Engine.MaxOverbidPct <= 0 {
		cfg.Engine.MaxOverbidPct = 15.0
	}
	if cfg.Engine.PriorityOverbidPct <= 0 {
		cfg.Engine.PriorityOverbidPct = 30.0
	}
	if cfg.Engine.PriorityQuality <= 0 {
		cfg.Engine.PriorityQuality = 0.7
	}
	if cfg.Engine.LearnerWindowDays <= 0 {
		cfg.Engine.LearnerWindowDays = 90
	}
	if cfg.Engine.LearnerMaxOutcomes <= 0 {
		cfg.Engine.LearnerMaxOutcomes = 100
	}
	if cfg.Engine.LearnerMinSamples <= 0 {
		cfg.Engine.LearnerMinSamples = 5
	}
	if cfg.Trade.MaxDivest <= 0 {
		cfg.Trade.MaxDivest = 3
	}
	if cfg.Trade.MaxAcquire <= 0 {
		cfg.Trade.MaxAcquire = 3
	}
	if cfg.Trade.MaxHoldings <= 0 {
		cfg.Trade.MaxHoldings = 15
	}
	if cfg.Trade.TopK <= 0 {
		cfg.Trade.TopK = 5
	}
	if cfg.Trade.MinImprovement <= 0 {
		cfg.Trade.MinImprovement = 2.0
	}
	if len(cfg.Trade.MinPerRole) == 0 {
		cfg.Trade.MinPerRole = map[string]int{"GK": 1, "DEF": 3, "MID": 2, "FWD": 1}
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "bidbot.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
