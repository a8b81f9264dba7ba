package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Providers ProvidersConfig `yaml:"providers" mapstructure:"providers"`
	Housing   HousingConfig   `yaml:"housing" mapstructure:"housing"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Path        string `yaml:"path" mapstructure:"path"`
}

// ProvidersConfig holds per-provider credentials and pacing.
// An empty key means the provider is not configured; the corresponding
// adapter degrades to a missing-confidence envelope without calling out.
type ProvidersConfig struct {
	Google  GoogleConfig  `yaml:"google" mapstructure:"google"`
	Census  CensusConfig  `yaml:"census" mapstructure:"census"`
	BLS     BLSConfig     `yaml:"bls" mapstructure:"bls"`
	Weather WeatherConfig `yaml:"weather" mapstructure:"weather"`
	News    NewsConfig    `yaml:"news" mapstructure:"news"`
	Flood   FloodConfig   `yaml:"flood" mapstructure:"flood"`

	// FetchTimeoutSecs bounds each provider call during fan-out so a hung
	// upstream cannot stall the whole run.
	FetchTimeoutSecs int `yaml:"fetch_timeout_secs" mapstructure:"fetch_timeout_secs"`
}

// GoogleConfig holds Google Maps Platform settings (geocoding + places).
type GoogleConfig struct {
	Key            string `yaml:"key" mapstructure:"key"`
	BaseURL        string `yaml:"base_url" mapstructure:"base_url"`
	MinIntervalMS  int    `yaml:"min_interval_ms" mapstructure:"min_interval_ms"`
	AmenityRadiusM int    `yaml:"amenity_radius_m" mapstructure:"amenity_radius_m"`
}

// CensusConfig holds Census Bureau API settings.
type CensusConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	GeoBaseURL    string `yaml:"geo_base_url" mapstructure:"geo_base_url"`
	MinIntervalMS int    `yaml:"min_interval_ms" mapstructure:"min_interval_ms"`
}

// BLSConfig holds Bureau of Labor Statistics API settings.
type BLSConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	MinIntervalMS int    `yaml:"min_interval_ms" mapstructure:"min_interval_ms"`
}

// WeatherConfig holds OpenWeather API settings.
type WeatherConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	MinIntervalMS int    `yaml:"min_interval_ms" mapstructure:"min_interval_ms"`
}

// NewsConfig holds Google Custom Search settings for news lookup.
type NewsConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	SearchID      string `yaml:"search_id" mapstructure:"search_id"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	MinIntervalMS int    `yaml:"min_interval_ms" mapstructure:"min_interval_ms"`
}

// FloodConfig holds FEMA open-data settings for flood risk lookup.
type FloodConfig struct {
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	MinIntervalMS int    `yaml:"min_interval_ms" mapstructure:"min_interval_ms"`
}

// HousingConfig configures the bulk housing-index dataset.
type HousingConfig struct {
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`
}

// ScoringConfig configures the scoring engine.
type ScoringConfig struct {
	WeightsFile string `yaml:"weights_file" mapstructure:"weights_file"`
	PeerCount   int    `yaml:"peer_count" mapstructure:"peer_count"`
	PeerSeed    int64  `yaml:"peer_seed" mapstructure:"peer_seed"`
}

// OutputConfig configures snapshot persistence.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MARKETPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "market-pulse.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("output.dir", "outputs")
	v.SetDefault("housing.data_dir", "data/housing")
	v.SetDefault("scoring.peer_count", 50)
	v.SetDefault("scoring.peer_seed", 1)
	v.SetDefault("providers.fetch_timeout_secs", 30)
	v.SetDefault("providers.google.base_url", "https://maps.googleapis.com/maps/api")
	v.SetDefault("providers.google.min_interval_ms", 100)
	v.SetDefault("providers.google.amenity_radius_m", 1600)
	v.SetDefault("providers.census.base_url", "https://api.census.gov/data")
	v.SetDefault("providers.census.geo_base_url", "https://geocoding.geo.census.gov/geocoder")
	v.SetDefault("providers.census.min_interval_ms", 200)
	v.SetDefault("providers.bls.base_url", "https://api.bls.gov/publicAPI/v2")
	v.SetDefault("providers.bls.min_interval_ms", 500)
	v.SetDefault("providers.weather.base_url", "https://api.openweathermap.org/data/2.5")
	v.SetDefault("providers.weather.min_interval_ms", 1000)
	v.SetDefault("providers.news.base_url", "https://www.googleapis.com/customsearch/v1")
	v.SetDefault("providers.news.min_interval_ms", 1000)
	v.SetDefault("providers.flood.base_url", "https://www.fema.gov/api/open/v1")
	v.SetDefault("providers.flood.min_interval_ms", 1000)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// ConfiguredFlags reports which providers have credentials present, keyed by
// provider name. Persisted in run metadata so consumers can tell "not
// configured" apart from "configured but failed".
func (p ProvidersConfig) ConfiguredFlags() map[string]bool {
	return map[string]bool{
		"google":  p.Google.Key != "",
		"census":  p.Census.Key != "",
		"bls":     p.BLS.Key != "",
		"weather": p.Weather.Key != "",
		"news":    p.News.Key != "" && p.News.SearchID != "",
		"flood":   true, // FEMA open data needs no key
	}
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
