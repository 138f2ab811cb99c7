package luci

import (
	"fmt"
	"os"
	"sync"

	kitlog "github.com/go-kit/kit/log"
	"github.com/spf13/viper"
)

// ConfigEnv names the environment variable holding the configuration directory.
const ConfigEnv = "LUCI_CONFIG"

var (
	cfgOnce sync.Once
	config  Config
)

// Config is the package configuration read from `conf.toml`.
type Config struct {
	VSOP87    bool
	VSOP87Dir string
	OutputDir string
	CacheSize int
	LogLevel  string
	LogFile   string
}

// DefaultConfig is used when no configuration directory is set.
func DefaultConfig() Config {
	return Config{OutputDir: ".", CacheSize: DefaultEphemerisCacheSize, LogLevel: "info"}
}

// LoadConfig reads `conf.toml` from the provided directory.
func LoadConfig(confPath string) (Config, error) {
	v := viper.New()
	v.SetConfigName("conf")
	v.SetConfigType("toml")
	v.AddConfigPath(confPath)
	def := DefaultConfig()
	v.SetDefault("general.output_path", def.OutputDir)
	v.SetDefault("ephemeris.cache_size", def.CacheSize)
	v.SetDefault("log.level", def.LogLevel)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("%s/conf.toml: %s", confPath, err)
	}
	conf := Config{
		VSOP87:    v.GetBool("VSOP87.enabled"),
		VSOP87Dir: v.GetString("VSOP87.directory"),
		OutputDir: v.GetString("general.output_path"),
		CacheSize: v.GetInt("ephemeris.cache_size"),
		LogLevel:  v.GetString("log.level"),
		LogFile:   v.GetString("log.file"),
	}
	if conf.VSOP87 && conf.VSOP87Dir == "" {
		return Config{}, fmt.Errorf("%s/conf.toml: VSOP87 is enabled but VSOP87.directory is empty", confPath)
	}
	if _, err := levelOption(conf.LogLevel); err != nil {
		return Config{}, fmt.Errorf("%s/conf.toml: %s", confPath, err)
	}
	return conf, nil
}

// luciConfig returns the configuration from the directory named by
// LUCI_CONFIG, or the defaults if it is unset. It is loaded once.
func luciConfig() Config {
	cfgOnce.Do(func() {
		confPath := os.Getenv(ConfigEnv)
		if confPath == "" {
			config = DefaultConfig()
			return
		}
		var err error
		if config, err = LoadConfig(confPath); err != nil {
			panic(err)
		}
	})
	return config
}

// GlobalConfig returns the process wide configuration.
func GlobalConfig() Config {
	return luciConfig()
}

// vsop87Dir returns the VSOP87 directory, or nothing if disabled.
func (c Config) vsop87Dir() string {
	if !c.VSOP87 {
		return ""
	}
	return c.VSOP87Dir
}

// NewEphemeris returns an ephemeris set up from the configuration.
func (c Config) NewEphemeris(logger kitlog.Logger) (*Ephemeris, error) {
	return NewEphemeris(c.CacheSize, c.vsop87Dir(), logger)
}
