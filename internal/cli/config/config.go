package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

var configDir string
var configFilePath string

// getConfigDir returns the platform-specific config directory
func getConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("LOCALAPPDATA")
		if appData == "" {
			appData = os.Getenv("APPDATA")
		}
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = home
		}
		return filepath.Join(appData, "citysearch", "cli"), nil
	}

	// ~/.config/citysearch/cli
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "citysearch", "cli"), nil
}

// getSystemConfigPaths returns platform-specific system config paths
func getSystemConfigPaths() []string {
	if runtime.GOOS == "windows" {
		return []string{filepath.Join(os.Getenv("ProgramFiles"), "CitySearch", "cli", "config.toml")}
	}
	return []string{
		"/etc/citysearch/cli/config.toml",
		"/usr/local/etc/citysearch/cli/config.toml",
	}
}

// Init loads the system config, then the user config, then CITYSEARCH_*
// environment overrides.
func Init(configPath string) error {
	var err error
	if configPath != "" {
		configDir = filepath.Dir(configPath)
		configFilePath = configPath
	} else {
		configDir, err = getConfigDir()
		if err != nil {
			return err
		}
		configFilePath = filepath.Join(configDir, "config.toml")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	viper.Reset()
	viper.SetConfigType("toml")
	setDefaults()

	for _, sysConfigPath := range getSystemConfigPaths() {
		if _, err := os.Stat(sysConfigPath); err == nil {
			viper.SetConfigFile(sysConfigPath)
			_ = viper.ReadInConfig()
			break
		}
	}

	viper.SetConfigFile(configFilePath)
	_ = viper.MergeInConfig()

	// CITYSEARCH_API_BASE_URL overrides api.base_url
	viper.SetEnvPrefix("citysearch")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	return nil
}

func setDefaults() {
	viper.SetDefault("api.base_url", "http://localhost:8787")
	viper.SetDefault("api.timeout", 30)
	viper.SetDefault("output.format", "text")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.file", filepath.Join(configDir, "citysearch-cli.log"))
}

// expandPath expands ~ to the home directory
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetString returns a string configuration value
func GetString(key string) string {
	value := viper.GetString(key)
	if key == "log.file" {
		return expandPath(value)
	}
	return value
}

// GetInt returns an int configuration value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// Set overrides a value for this process only
func Set(key string, value interface{}) {
	viper.Set(key, value)
}

// SetString persists a value to the user config file
func SetString(key string, value string) error {
	viper.Set(key, value)
	return viper.WriteConfigAs(configFilePath)
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() string {
	return configDir
}

// GetConfigFile returns the user config file path
func GetConfigFile() string {
	return configFilePath
}
