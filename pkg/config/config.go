package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Source   SourceConfig
	Pipeline PipelineConfig
	Output   OutputConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Source.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Pipeline.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CHURNSIGHT_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"CHURNSIGHT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CHURNSIGHT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, "dev")
}

const (
	SourceKindCSV = "csv"
	SourceKindSQL = "sql"
)

type SourceConfig struct {
	Kind    string `envconfig:"CHURNSIGHT_SOURCE_KIND" default:"csv"`
	CSVPath string `envconfig:"CHURNSIGHT_SOURCE_CSV_PATH" default:"transactions.csv"`
	DSN     string `envconfig:"CHURNSIGHT_SOURCE_DSN"`
	Table   string `envconfig:"CHURNSIGHT_SOURCE_TABLE" default:"transactions"`

	// Columns stripped from CSV input before binding; absent names fail the run.
	DropColumns []string `envconfig:"CHURNSIGHT_SOURCE_DROP_COLUMNS"`
}

func (s SourceConfig) validate() error {
	switch s.Kind {
	case SourceKindCSV:
		if s.CSVPath == "" {
			return fmt.Errorf("CHURNSIGHT_SOURCE_CSV_PATH is required for the csv source")
		}
	case SourceKindSQL:
		if s.DSN == "" {
			return fmt.Errorf("CHURNSIGHT_SOURCE_DSN is required for the sql source")
		}
	default:
		return fmt.Errorf("unknown source kind %q", s.Kind)
	}
	return nil
}

type PipelineConfig struct {
	ChurnThresholdDays int     `envconfig:"CHURNSIGHT_CHURN_THRESHOLD_DAYS" default:"180"`
	Clusters           int     `envconfig:"CHURNSIGHT_CLUSTERS" default:"4"`
	Seed               int64   `envconfig:"CHURNSIGHT_SEED" default:"42"`
	TestFraction       float64 `envconfig:"CHURNSIGHT_TEST_FRACTION" default:"0.2"`
	Trees              int     `envconfig:"CHURNSIGHT_TREES" default:"100"`
	MaxDepth           int     `envconfig:"CHURNSIGHT_MAX_DEPTH" default:"8"`
	MinLeaf            int     `envconfig:"CHURNSIGHT_MIN_LEAF" default:"2"`
	CVFolds            int     `envconfig:"CHURNSIGHT_CV_FOLDS" default:"5"`
}

func (p PipelineConfig) validate() error {
	if p.ChurnThresholdDays <= 0 {
		return fmt.Errorf("churn threshold must be positive, got %d", p.ChurnThresholdDays)
	}
	if p.Clusters < 2 {
		return fmt.Errorf("cluster count must be at least 2, got %d", p.Clusters)
	}
	if p.TestFraction <= 0 || p.TestFraction >= 1 {
		return fmt.Errorf("test fraction must be in (0,1), got %v", p.TestFraction)
	}
	if p.Trees <= 0 || p.MaxDepth <= 0 || p.MinLeaf <= 0 {
		return fmt.Errorf("tree ensemble parameters must be positive")
	}
	if p.CVFolds < 2 {
		return fmt.Errorf("cross-validation needs at least 2 folds, got %d", p.CVFolds)
	}
	return nil
}

type OutputConfig struct {
	ScoresPath   string `envconfig:"CHURNSIGHT_OUTPUT_SCORES_PATH" default:"customer_scores.csv"`
	RepairedPath string `envconfig:"CHURNSIGHT_OUTPUT_REPAIRED_PATH"`
	PrintReport  bool   `envconfig:"CHURNSIGHT_OUTPUT_PRINT_REPORT" default:"true"`
}
