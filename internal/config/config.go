package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/BrevinB/InkwellKeeper/internal/models"
)

// Config holds everything a pipeline run needs. The catalog maps are part of
// the config value so the pipeline stays reusable across catalog revisions
// with different code tables.
type Config struct {
	AppName  string
	LogLevel string
	DataDir  string

	Fetch  FetchConfig
	Kafka  KafkaConfig
	Server ServerConfig

	Maps CatalogMaps
}

// FetchConfig controls the upstream API client.
type FetchConfig struct {
	BaseURL    string
	Workers    int
	Retries    int
	RetryDelay time.Duration
	RequestGap time.Duration
	Timeout    time.Duration
}

// KafkaConfig controls optional event publishing.
type KafkaConfig struct {
	Enabled         bool
	Brokers         string
	CardsTopic      string
	MigrationsTopic string
}

// ServerConfig controls the catalog API server.
type ServerConfig struct {
	Addr string
}

// VariantRule classifies a print when its keyword appears in the rarity text.
// Rules are evaluated in order; the first hit wins. MatchesSet extends the
// check to the set name (promo sets carry no rarity hint).
type VariantRule struct {
	Keyword    string
	Variant    models.Variant
	MatchesSet bool
}

// CatalogMaps are the translation tables between upstream naming and the
// app's catalog naming.
type CatalogMaps struct {
	setNames     map[string]string
	setCodes     map[string]string
	VariantRules []VariantRule
}

// SetName translates an upstream set name to the app set name, defaulting to
// the upstream name when no translation exists.
func (m CatalogMaps) SetName(upstream string) string {
	if name, ok := m.setNames[strings.ToLower(upstream)]; ok {
		return name
	}
	return upstream
}

// SetCode returns the app set code for a set name, falling back to the
// upstream-provided code.
func (m CatalogMaps) SetCode(setName, upstreamCode string) string {
	if code, ok := m.setCodes[strings.ToLower(setName)]; ok {
		return code
	}
	return upstreamCode
}

// NewCatalogMaps builds catalog maps from plain tables. Keys are matched
// case-insensitively.
func NewCatalogMaps(setNames, setCodes map[string]string, rules []VariantRule) CatalogMaps {
	m := CatalogMaps{
		setNames:     make(map[string]string, len(setNames)),
		setCodes:     make(map[string]string, len(setCodes)),
		VariantRules: rules,
	}
	for k, v := range setNames {
		m.setNames[strings.ToLower(k)] = v
	}
	for k, v := range setCodes {
		m.setCodes[strings.ToLower(k)] = v
	}
	return m
}

// DefaultVariantRules returns the classification order: rarity keywords
// first, then the promo check against rarity or set name.
func DefaultVariantRules() []VariantRule {
	return []VariantRule{
		{Keyword: "enchanted", Variant: models.VariantEnchanted},
		{Keyword: "epic", Variant: models.VariantEpic},
		{Keyword: "iconic", Variant: models.VariantIconic},
		{Keyword: "promo", Variant: models.VariantPromo, MatchesSet: true},
	}
}

// DefaultMaps returns the shipped translation tables for the current
// upstream snapshot.
func DefaultMaps() CatalogMaps {
	setNames := map[string]string{
		"Promo": "Promo Set 1",
	}
	setCodes := map[string]string{
		"The First Chapter":     "TFC",
		"Rise of the Floodborn": "ROF",
		"Into the Inklands":     "ITI",
		"Ursula's Return":       "TUR",
		"Shimmering Skies":      "SSK",
		"Azurite Sea":           "AZS",
		"Archazia's Island":     "ARI",
		"Reign of Jafar":        "ROJ",
		"Fabled":                "FAB",
		"Whispers in the Well":  "WIW",
		"Promo Set 1":           "P1",
		"Promo Set 2":           "P2",
		"Challenge Promo":       "CP",
		"D23 Collection":        "D23",
	}
	return NewCatalogMaps(setNames, setCodes, DefaultVariantRules())
}

// Load reads configuration from the given file (or the default search path
// when path is empty), with INKWELL_* environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("INKWELL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && path != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		AppName:  v.GetString("app.name"),
		LogLevel: v.GetString("app.log_level"),
		DataDir:  v.GetString("app.data_dir"),
		Fetch: FetchConfig{
			BaseURL:    v.GetString("fetch.base_url"),
			Workers:    v.GetInt("fetch.workers"),
			Retries:    v.GetInt("fetch.retries"),
			RetryDelay: v.GetDuration("fetch.retry_delay"),
			RequestGap: v.GetDuration("fetch.request_gap"),
			Timeout:    v.GetDuration("fetch.timeout"),
		},
		Kafka: KafkaConfig{
			Enabled:         v.GetBool("kafka.enabled"),
			Brokers:         v.GetString("kafka.brokers"),
			CardsTopic:      v.GetString("kafka.topics.cards"),
			MigrationsTopic: v.GetString("kafka.topics.migrations"),
		},
		Server: ServerConfig{
			Addr: v.GetString("server.addr"),
		},
		Maps: DefaultMaps(),
	}

	// Config-file tables replace the shipped ones wholesale when present.
	if v.IsSet("maps.set_names") || v.IsSet("maps.set_codes") {
		names := v.GetStringMapString("maps.set_names")
		codes := v.GetStringMapString("maps.set_codes")
		cfg.Maps = NewCatalogMaps(names, codes, DefaultVariantRules())
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "inkwell-catalog")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.data_dir", "data")

	v.SetDefault("fetch.base_url", "https://api.lorcast.com/v0")
	v.SetDefault("fetch.workers", 4)
	v.SetDefault("fetch.retries", 3)
	v.SetDefault("fetch.retry_delay", "2s")
	v.SetDefault("fetch.request_gap", "500ms")
	v.SetDefault("fetch.timeout", "30s")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.topics.cards", "catalog.cards")
	v.SetDefault("kafka.topics.migrations", "catalog.migrations")

	v.SetDefault("server.addr", ":8090")
}
