package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/eventrec/feature"
	"github.com/rushteam/eventrec/interaction"
	"github.com/rushteam/eventrec/learning"
	"github.com/rushteam/eventrec/logging"
	"github.com/rushteam/eventrec/rerank"
	"github.com/rushteam/eventrec/store"
)

const (
	// EnvPrefix 环境变量前缀：EVENTREC_STORAGE_BACKEND -> storage.backend
	EnvPrefix = "EVENTREC_"

	// PathEnvVar 指定配置文件路径
	PathEnvVar = "EVENTREC_CONFIG"
)

// DefaultPaths 未指定配置文件时依次尝试的路径，都不存在时只用默认值和环境变量。
var DefaultPaths = []string{
	"eventrec.yaml",
	"eventrec.yml",
	"/etc/eventrec/config.yaml",
}

// Settings 是进程级配置。优先级：环境变量 > 配置文件 > 默认值。
type Settings struct {
	Storage      StorageSettings      `koanf:"storage"`
	Tables       TablesSettings       `koanf:"tables"`
	Interactions InteractionsSettings `koanf:"interactions"`
	Scoring      ScoringSettings      `koanf:"scoring"`
	Learning     LearningSettings     `koanf:"learning"`
	Log          logging.Config       `koanf:"log"`
}

type StorageSettings struct {
	Backend string `koanf:"backend"` // memory / file / redis / badger
	Path    string `koanf:"path"`
	Addr    string `koanf:"addr"`
	DB      int    `koanf:"db"`
}

type TablesSettings struct {
	Prefix string `koanf:"prefix"`
}

type InteractionsSettings struct {
	Key string `koanf:"key"`
}

type ScoringSettings struct {
	MaxDistanceKm   float64            `koanf:"max_distance_km"`
	ExploreRate     float64            `koanf:"explore_rate"`
	ExploreMinItems int                `koanf:"explore_min_items"`
	DefaultWeights  map[string]float64 `koanf:"default_weights"`
	Explain         bool               `koanf:"explain"`

	// Pipeline 为空时使用内置的 filter → rank.fusion → rerank.explore
	Pipeline string `koanf:"pipeline"`
}

type LearningSettings struct {
	Parallel       bool                  `koanf:"parallel"`
	Vocabularies   learning.Vocabularies `koanf:"vocabularies"`
	DefaultWeights map[string]float64    `koanf:"default_weights"`
}

// DefaultSettings 返回内置默认配置。
func DefaultSettings() *Settings {
	return &Settings{
		Storage: StorageSettings{
			Backend: "file",
			Path:    "storage",
		},
		Interactions: InteractionsSettings{Key: interaction.DefaultKey},
		Scoring: ScoringSettings{
			MaxDistanceKm:   feature.DefaultMaxDistanceKm,
			ExploreRate:     rerank.DefaultExploreRate,
			ExploreMinItems: rerank.DefaultExploreMinItems,
			DefaultWeights:  feature.RequestDefaultWeights(),
			Explain:         true,
		},
		Learning: LearningSettings{
			Vocabularies:   learning.DefaultVocabularies(),
			DefaultWeights: feature.ConfigDefaultWeights(),
		},
		Log: logging.Config{Level: "info", Format: "json"},
	}
}

// LoadSettings 分三层加载配置。path 为空时依次查找 EVENTREC_CONFIG 和 DefaultPaths。
func LoadSettings(path string) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultSettings(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = findSettingsFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	s := &Settings{}
	if err := k.Unmarshal("", s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// envTransform: EVENTREC_SCORING_MAX_DISTANCE_KM -> scoring.max_distance_km
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if key == "config" {
		return ""
	}
	return strings.Replace(key, "_", ".", 1)
}

func findSettingsFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		return p
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Validate 检查取值范围。
func (s *Settings) Validate() error {
	if s.Scoring.MaxDistanceKm <= 0 {
		return fmt.Errorf("scoring.max_distance_km must be positive, got %v", s.Scoring.MaxDistanceKm)
	}
	if s.Scoring.ExploreRate < 0 || s.Scoring.ExploreRate > 1 {
		return fmt.Errorf("scoring.explore_rate must be in [0,1], got %v", s.Scoring.ExploreRate)
	}
	if s.Scoring.ExploreMinItems < 2 {
		return fmt.Errorf("scoring.explore_min_items must be at least 2, got %d", s.Scoring.ExploreMinItems)
	}
	switch strings.ToLower(s.Storage.Backend) {
	case "memory", "file", "redis", "badger":
	default:
		return fmt.Errorf("unknown storage.backend %q", s.Storage.Backend)
	}
	return nil
}

// StoreOptions 转换为 store.Open 的参数。
func (s *Settings) StoreOptions() store.Options {
	return store.Options{
		Backend: s.Storage.Backend,
		Path:    s.Storage.Path,
		Addr:    s.Storage.Addr,
		DB:      s.Storage.DB,
	}
}
