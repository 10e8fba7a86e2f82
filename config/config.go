package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigTemplatePath = "template-path"
	ConfigStrategy     = "strategy"
	ConfigLocale       = "locale"
	ConfigThreads      = "threads"
	ConfigDebug        = "debug"
	ConfigNatsURL      = "nats-url"
	ConfigNatsSubject  = "nats-subject"
	ConfigRedisURL     = "redis-url"
	ConfigCacheTTL     = "cache-ttl"
	ConfigMetricsAddr  = "metrics-addr"
	ConfigTop          = "top"
	ConfigCPUProfile   = "cpu-profile"
	ConfigMemProfile   = "mem-profile"
)

const envPrefix = "handmatch"

// Config wraps a viper instance. Values come from, in increasing priority:
// defaults, a .env file, HANDMATCH_* environment variables, command-line
// flags.
type Config struct {
	*viper.Viper
}

func defaults(v *viper.Viper) {
	v.SetDefault(ConfigTemplatePath, "./data/templates/library.json")
	v.SetDefault(ConfigStrategy, "greedy")
	v.SetDefault(ConfigLocale, "en")
	v.SetDefault(ConfigThreads, 0)
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigNatsURL, "nats://localhost:4222")
	v.SetDefault(ConfigNatsSubject, "handmatch.analyze")
	v.SetDefault(ConfigRedisURL, "")
	v.SetDefault(ConfigCacheTTL, 10*time.Minute)
	v.SetDefault(ConfigMetricsAddr, "")
	v.SetDefault(ConfigTop, 10)
	v.SetDefault(ConfigCPUProfile, "")
	v.SetDefault(ConfigMemProfile, "")
}

// DefaultConfig returns a config with only defaults set. Useful for tests.
func DefaultConfig() *Config {
	v := viper.New()
	defaults(v)
	return &Config{Viper: v}
}

// Load reads the .env file if present, the environment, and then parses the
// given command-line arguments. Positional arguments are left in Args().
func (c *Config) Load(args []string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Debug().Err(err).Msg("could-not-read-dotenv")
	}

	c.Viper = viper.New()
	defaults(c.Viper)
	c.SetEnvPrefix(envPrefix)
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	fs := pflag.NewFlagSet("handmatch", pflag.ContinueOnError)
	fs.String(ConfigTemplatePath, c.GetString(ConfigTemplatePath), "template library file (.json or .yaml)")
	fs.String(ConfigStrategy, c.GetString(ConfigStrategy), "matching strategy: greedy or maximum")
	fs.String(ConfigLocale, c.GetString(ConfigLocale), "locale used to order names")
	fs.Int(ConfigThreads, c.GetInt(ConfigThreads), "worker goroutines for batch analysis (0 = one per CPU)")
	fs.Bool(ConfigDebug, c.GetBool(ConfigDebug), "debug logging on")
	fs.String(ConfigNatsURL, c.GetString(ConfigNatsURL), "the NATS server URL")
	fs.String(ConfigNatsSubject, c.GetString(ConfigNatsSubject), "subject to answer analyze requests on")
	fs.String(ConfigRedisURL, c.GetString(ConfigRedisURL), "redis URL for the response cache (empty = no cache)")
	fs.Duration(ConfigCacheTTL, c.GetDuration(ConfigCacheTTL), "how long cached responses live")
	fs.String(ConfigMetricsAddr, c.GetString(ConfigMetricsAddr), "address to serve prometheus metrics on (empty = off)")
	fs.Int(ConfigTop, c.GetInt(ConfigTop), "number of templates to report per hand")
	fs.String(ConfigCPUProfile, "", "file to write a CPU profile to")
	fs.String(ConfigMemProfile, "", "file to write a memory profile to")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.BindPFlags(fs); err != nil {
		return err
	}
	c.Set("args", fs.Args())
	return nil
}

// Args returns the positional arguments left over after flag parsing.
func (c *Config) Args() []string {
	return c.GetStringSlice("args")
}

// AdjustRelativePaths makes the template path absolute by resolving it
// against basepath, if it was given as a relative path.
func (c *Config) AdjustRelativePaths(basepath string) {
	p := c.GetString(ConfigTemplatePath)
	if p == "" {
		return
	}
	c.Set(ConfigTemplatePath, toAbsPath(basepath, p))
}

func toAbsPath(basepath string, filepathToAdjust string) string {
	if filepath.IsAbs(filepathToAdjust) {
		return filepathToAdjust
	}
	// If the file exists relative to the working directory, keep it that way.
	if _, err := os.Stat(filepathToAdjust); err == nil {
		abs, err := filepath.Abs(filepathToAdjust)
		if err == nil {
			return abs
		}
	}
	return filepath.Join(basepath, filepathToAdjust)
}

// SanitizedSettings returns the settings with anything that might carry
// credentials masked out.
func (c *Config) SanitizedSettings() map[string]any {
	out := map[string]any{}
	for k, v := range c.AllSettings() {
		if k == ConfigRedisURL || k == ConfigNatsURL {
			if s, ok := v.(string); ok && s != "" {
				v = "*****"
			}
		}
		out[k] = v
	}
	return out
}
