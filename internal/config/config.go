// Package config loads boki settings from defaults, an optional YAML file,
// BOKI_* environment variables and command-line flags, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/abhisek/boki/internal/review"
	"github.com/abhisek/boki/internal/selector"
	"github.com/abhisek/boki/internal/store"
	"github.com/abhisek/boki/internal/study"
)

// EnvPrefix prefixes every environment variable, e.g. BOKI_LOG_LEVEL.
const EnvPrefix = "BOKI"

// Config is the full application configuration.
type Config struct {
	DB     string       `mapstructure:"db"`
	Log    LogConfig    `mapstructure:"log"`
	Review ReviewConfig `mapstructure:"review"`
	Study  StudyConfig  `mapstructure:"study"`
}

// ReviewConfig mirrors review.Config.
type ReviewConfig struct {
	MasteryThreshold       int                `mapstructure:"mastery_threshold"`
	PriorityIncorrectCount int                `mapstructure:"priority_incorrect_count"`
	PriorityDemoteStreak   int                `mapstructure:"priority_demote_streak"`
	IncorrectWeight        float64            `mapstructure:"incorrect_weight"`
	RecencyWindows         []time.Duration    `mapstructure:"recency_windows"`
	WindowBoost            float64            `mapstructure:"window_boost"`
	OverdueBoostPerDay     float64            `mapstructure:"overdue_boost_per_day"`
	MaxRecencyBoost        float64            `mapstructure:"max_recency_boost"`
	CategoryBonus          map[string]float64 `mapstructure:"category_bonus"`
	MaxPriorityScore       int                `mapstructure:"max_priority_score"`
}

// StudyConfig holds selection settings.
type StudyConfig struct {
	MaxQuestions      int `mapstructure:"max_questions"`
	PerformanceWindow int `mapstructure:"performance_window"`
}

// flagKeys maps config keys to the flags that override them.
var flagKeys = map[string]string{
	"db":         "db",
	"log.level":  "log-level",
	"log.format": "log-format",
}

// Load reads the configuration. path names a YAML file; when empty the
// default location is used if it exists. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		if dir, err := DefaultConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.DB == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
		cfg.DB = p
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	rc := review.DefaultConfig()
	v.SetDefault("db", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", FormatText)
	v.SetDefault("review.mastery_threshold", rc.MasteryThreshold)
	v.SetDefault("review.priority_incorrect_count", rc.PriorityIncorrectCount)
	v.SetDefault("review.priority_demote_streak", rc.PriorityDemoteStreak)
	v.SetDefault("review.incorrect_weight", rc.IncorrectWeight)
	v.SetDefault("review.recency_windows", rc.RecencyWindows)
	v.SetDefault("review.window_boost", rc.WindowBoost)
	v.SetDefault("review.overdue_boost_per_day", rc.OverdueBoostPerDay)
	v.SetDefault("review.max_recency_boost", rc.MaxRecencyBoost)
	v.SetDefault("review.category_bonus", rc.CategoryBonus)
	v.SetDefault("review.max_priority_score", rc.MaxPriorityScore)
	v.SetDefault("study.max_questions", selector.DefaultMaxQuestions)
	v.SetDefault("study.performance_window", study.DefaultPerformanceWindow)
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.ReviewPolicy().Validate(); err != nil {
		return fmt.Errorf("review: %w", err)
	}
	if c.Study.MaxQuestions <= 0 {
		return fmt.Errorf("study.max_questions must be positive, got %d", c.Study.MaxQuestions)
	}
	if c.Study.PerformanceWindow <= 0 {
		return fmt.Errorf("study.performance_window must be positive, got %d", c.Study.PerformanceWindow)
	}
	return nil
}

// ReviewPolicy converts the review section to a review.Config.
func (c *Config) ReviewPolicy() review.Config {
	r := c.Review
	return review.Config{
		MasteryThreshold:       r.MasteryThreshold,
		PriorityIncorrectCount: r.PriorityIncorrectCount,
		PriorityDemoteStreak:   r.PriorityDemoteStreak,
		IncorrectWeight:        r.IncorrectWeight,
		RecencyWindows:         r.RecencyWindows,
		WindowBoost:            r.WindowBoost,
		OverdueBoostPerDay:     r.OverdueBoostPerDay,
		MaxRecencyBoost:        r.MaxRecencyBoost,
		CategoryBonus:          r.CategoryBonus,
		MaxPriorityScore:       r.MaxPriorityScore,
	}
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/boki, falling back to
// ~/.config/boki.
func DefaultConfigDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "boki"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".config", "boki"), nil
}
