package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "BLOGDECK"

var configDir string
var configFilePath string

// getConfigDir returns platform-specific config directory
func getConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		// Windows: %LOCALAPPDATA%\blogdeck
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
		return filepath.Join(appData, "blogdeck"), nil
	}

	// Unix-like (macOS, Linux): ~/.config/blogdeck
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "blogdeck"), nil
}

// getSystemConfigPaths returns platform-specific system config paths
func getSystemConfigPaths() []string {
	if runtime.GOOS == "windows" {
		return []string{filepath.Join(os.Getenv("ProgramFiles"), "Blogdeck", "config.toml")}
	}

	return []string{
		"/etc/blogdeck/config.toml",
		"/usr/local/etc/blogdeck/config.toml",
	}
}

// Init initializes the configuration. An empty configPath selects the
// platform default under the user's config directory.
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

	// A missing .env is the common case.
	_ = godotenv.Load()

	viper.Reset()
	viper.SetConfigType("toml")
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	// System config first, user config overrides it.
	for _, sysConfigPath := range getSystemConfigPaths() {
		if _, err := os.Stat(sysConfigPath); err == nil {
			viper.SetConfigFile(sysConfigPath)
			_ = viper.MergeInConfig()
			break
		}
	}

	viper.SetConfigFile(configFilePath)
	_ = viper.MergeInConfig()

	// The web frontend read its backend address from VITE_API_BASE_URL.
	if legacy := os.Getenv("VITE_API_BASE_URL"); legacy != "" && os.Getenv(envPrefix+"_API_BASE_URL") == "" {
		viper.Set("api.base_url", legacy)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("api.base_url", "http://localhost:5000/api")
	viper.SetDefault("api.timeout", 30)
	viper.SetDefault("output.format", "text")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.file", filepath.Join(configDir, "blogdeck.log"))

	viper.SetDefault("storage.backend", "file")
	viper.SetDefault("storage.dir", configDir)
	viper.SetDefault("storage.redis_url", "")

	viper.SetDefault("posts.page_size", 10)
	viper.SetDefault("posts.sort_by", "createdAt")
	viper.SetDefault("posts.sort_order", "desc")
	viper.SetDefault("comments.page_size", 10)
	viper.SetDefault("analytics.max_pages", 20)
}

// expandPath expands ~ to home directory
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
	if key == "storage.dir" || key == "log.file" {
		return expandPath(value)
	}
	return value
}

// GetInt returns an int configuration value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool configuration value
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// IsSet reports whether a key has a value from any source, defaults included.
func IsSet(key string) bool {
	return viper.IsSet(key)
}

// Override sets a value for the lifetime of the process without persisting it.
func Override(key string, value interface{}) {
	viper.Set(key, value)
}

// SetString sets a string configuration value and writes the user config file.
func SetString(key string, value string) error {
	viper.Set(key, value)
	return viper.WriteConfigAs(configFilePath)
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() string {
	return configDir
}

// GetConfigFilePath returns the path of the user config file
func GetConfigFilePath() string {
	return configFilePath
}

// AllSettings returns the merged configuration as a nested map.
func AllSettings() map[string]interface{} {
	return viper.AllSettings()
}
