package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/agentx-labs/stackboot/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Setting keys.
const (
	KeyOutput         = "output"
	KeyDebug          = "debug"
	KeyLogFormat      = "log_format"
	KeyProbeTimeout   = "probe_timeout"
	KeyFetchTimeout   = "fetch_timeout"
	KeyCommandTimeout = "command_timeout"
	KeyInitializrURL  = "initializr_url"
)

var defaultValues = map[string]interface{}{
	KeyOutput:         ".",
	KeyDebug:          false,
	KeyLogFormat:      "text",
	KeyProbeTimeout:   "30s",
	KeyFetchTimeout:   "60s",
	KeyCommandTimeout: "10m",
	KeyInitializrURL:  "https://start.spring.io",
}

// Settings is the resolved view of every known key.
type Settings struct {
	Output         string
	Debug          bool
	LogFormat      string
	ProbeTimeout   time.Duration
	FetchTimeout   time.Duration
	CommandTimeout time.Duration
	InitializrURL  string
}

// Dir returns the path to the config directory (~/.stackboot/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.stackboot/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.Reset()
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()
	for key, val := range defaultValues {
		viper.SetDefault(key, val)
	}

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Keys returns every known setting key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(defaultValues))
	for k := range defaultValues {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsKnown reports whether key is a recognised setting.
func IsKnown(key string) bool {
	_, ok := defaultValues[key]
	return ok
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Current returns the typed settings after Load.
func Current() Settings {
	return Settings{
		Output:         viper.GetString(KeyOutput),
		Debug:          viper.GetBool(KeyDebug),
		LogFormat:      viper.GetString(KeyLogFormat),
		ProbeTimeout:   viper.GetDuration(KeyProbeTimeout),
		FetchTimeout:   viper.GetDuration(KeyFetchTimeout),
		CommandTimeout: viper.GetDuration(KeyCommandTimeout),
		InitializrURL:  viper.GetString(KeyInitializrURL),
	}
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if !IsKnown(key) {
		return fmt.Errorf("unknown config key %q", key)
	}
	if isDurationKey(key) {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for %s: %w", key, err)
		}
	}

	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

func isDurationKey(key string) bool {
	switch key {
	case KeyProbeTimeout, KeyFetchTimeout, KeyCommandTimeout:
		return true
	}
	return false
}
