package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	wglconfig "github.com/domino14/word-golib/config"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug             = "debug"
	ConfigLogPretty         = "log-pretty"
	ConfigFile              = "config-file"
	ConfigDataPath          = "data-path"
	ConfigLexiconPath       = "lexicon-path"
	ConfigKWGLexicon        = "kwg-lexicon"
	ConfigTimeBudget        = "time-budget"
	ConfigTickInterval      = "tick-interval"
	ConfigMatchScanInterval = "match-scan-interval"
	ConfigDisconnectGrace   = "disconnect-grace"
	ConfigRatingBackend     = "rating-backend"
	ConfigRatingsFile       = "ratings-file"
	ConfigSQLitePath        = "sqlite-path"
	ConfigRedisURL          = "redis-url"
	ConfigNatsURL           = "nats-url"
	ConfigNatsSubjectPrefix = "nats-subject-prefix"
)

const (
	RatingBackendYAML   = "yaml"
	RatingBackendSQLite = "sqlite"
	RatingBackendRedis  = "redis"
	// RatingBackendMemory keeps ratings for the life of the process only.
	RatingBackendMemory = "memory"
)

// Config wraps viper. Values come from, in increasing priority: defaults,
// an optional YAML config file, WORDDUEL_* environment variables and
// command-line flags.
type Config struct {
	*viper.Viper
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigLogPretty, false)
	v.SetDefault(ConfigDataPath, "./data")
	v.SetDefault(ConfigLexiconPath, "")
	v.SetDefault(ConfigKWGLexicon, "")
	v.SetDefault(ConfigTimeBudget, 15*time.Minute)
	v.SetDefault(ConfigTickInterval, time.Second)
	v.SetDefault(ConfigMatchScanInterval, 2*time.Second)
	v.SetDefault(ConfigDisconnectGrace, 60*time.Second)
	v.SetDefault(ConfigRatingBackend, RatingBackendYAML)
	v.SetDefault(ConfigRatingsFile, "")
	v.SetDefault(ConfigSQLitePath, "")
	v.SetDefault(ConfigRedisURL, "redis://localhost:6379/0")
	v.SetDefault(ConfigNatsURL, "nats://127.0.0.1:4222")
	v.SetDefault(ConfigNatsSubjectPrefix, "wordduel")
}

// DefaultConfig returns a config holding only the defaults.
func DefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)
	return &Config{Viper: v}
}

// Load reads the environment and the given command-line arguments.
func (c *Config) Load(args []string) error {
	c.Viper = viper.New()
	setDefaults(c.Viper)
	c.SetEnvPrefix("wordduel")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	fs := pflag.NewFlagSet("wordduel", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.Bool(ConfigLogPretty, false, "human-friendly console logs")
	fs.String(ConfigFile, "", "optional YAML config file")
	fs.String(ConfigDataPath, "./data", "directory holding lexica and ratings")
	fs.String(ConfigLexiconPath, "", "word list file, one word per line")
	fs.String(ConfigKWGLexicon, "", "name of a KWG lexicon under the data path")
	fs.Duration(ConfigTimeBudget, 15*time.Minute, "clock time per player")
	fs.Duration(ConfigTickInterval, time.Second, "clock tick interval")
	fs.Duration(ConfigMatchScanInterval, 2*time.Second, "matchmaking scan interval")
	fs.Duration(ConfigDisconnectGrace, 60*time.Second, "how long an abandoned game is kept")
	fs.String(ConfigRatingBackend, RatingBackendYAML, "ratings storage: yaml, sqlite, redis or memory")
	fs.String(ConfigRatingsFile, "", "ratings YAML file (default <data-path>/ratings.yaml)")
	fs.String(ConfigSQLitePath, "", "ratings database (default <data-path>/ratings.db)")
	fs.String(ConfigRedisURL, "redis://localhost:6379/0", "redis URL for ratings")
	fs.String(ConfigNatsURL, "nats://127.0.0.1:4222", "NATS server URL")
	fs.String(ConfigNatsSubjectPrefix, "wordduel", "NATS subject prefix")
	if err := fs.Parse(args); err != nil {
		return err
	}
	// Only flags that were actually given override env and file values.
	var bindErr error
	fs.Visit(func(f *pflag.Flag) {
		if err := c.BindPFlag(f.Name, f); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return bindErr
	}

	if file := c.GetString(ConfigFile); file != "" {
		c.SetConfigFile(file)
		c.SetConfigType("yaml")
		if err := c.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
	}
	return c.validate()
}

func (c *Config) validate() error {
	switch c.GetString(ConfigRatingBackend) {
	case RatingBackendYAML, RatingBackendSQLite, RatingBackendRedis, RatingBackendMemory:
	default:
		return fmt.Errorf("unknown rating backend %q", c.GetString(ConfigRatingBackend))
	}
	for _, k := range []string{ConfigTimeBudget, ConfigTickInterval, ConfigMatchScanInterval} {
		if c.GetDuration(k) <= 0 {
			return fmt.Errorf("%s must be positive", k)
		}
	}
	return nil
}

// AdjustRelativePaths makes a relative data path absolute with respect to
// basePath, typically the executable's directory.
func (c *Config) AdjustRelativePaths(basePath string) {
	dp := c.GetString(ConfigDataPath)
	if !filepath.IsAbs(dp) {
		c.Set(ConfigDataPath, filepath.Join(basePath, dp))
	}
}

// RatingsFile is where the YAML backend keeps ratings.
func (c *Config) RatingsFile() string {
	if f := c.GetString(ConfigRatingsFile); f != "" {
		return f
	}
	return filepath.Join(c.GetString(ConfigDataPath), "ratings.yaml")
}

// SQLitePath is where the SQLite backend keeps ratings.
func (c *Config) SQLitePath() string {
	if f := c.GetString(ConfigSQLitePath); f != "" {
		return f
	}
	return filepath.Join(c.GetString(ConfigDataPath), "ratings.db")
}

// WGLConfig is the configuration word-golib loaders expect. Lexica are
// looked up under <data-path>/lexica/gaddag and letter distributions under
// <data-path>/letterdistributions.
func (c *Config) WGLConfig() *wglconfig.Config {
	return &wglconfig.Config{DataPath: c.GetString(ConfigDataPath)}
}

func (c *Config) Debug() bool {
	return c.GetBool(ConfigDebug)
}
