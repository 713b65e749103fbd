package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blogdeck/blogdeck/cli/pkg/config"
	"github.com/blogdeck/blogdeck/cli/pkg/output"
	"github.com/blogdeck/blogdeck/cli/pkg/storage"
)

type ConfigService struct{}

// NewConfigService creates a new config service
func NewConfigService() *ConfigService {
	return &ConfigService{}
}

// Get prints one key, or every setting when key is empty
func (s *ConfigService) Get(key string) error {
	if key == "" {
		settings := flatten("", config.AllSettings())
		if output.IsStructured() {
			return output.Print("", settings)
		}
		keys := make([]string, 0, len(settings))
		for k := range settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]output.Field, 0, len(keys))
		for _, k := range keys {
			fields = append(fields, output.Field{Key: k, Value: settings[k]})
		}
		return output.PrintRecord("Configuration", fields)
	}

	if !config.IsSet(key) {
		return fmt.Errorf("unknown config key: %s", key)
	}
	fmt.Fprintln(output.Writer(), config.GetString(key))
	return nil
}

// Set validates and persists a value to the user config file
func (s *ConfigService) Set(key, value string) error {
	switch key {
	case "output.format":
		if !output.ValidateOutputFormat(value) {
			return fmt.Errorf("invalid output format %q (valid: text, table, json, yaml)", value)
		}
	case "storage.backend":
		switch storage.Backend(value) {
		case storage.BackendFile, storage.BackendMemory, storage.BackendRedis:
		default:
			return fmt.Errorf("invalid storage backend %q (valid: file, memory, redis)", value)
		}
	}

	if err := config.SetString(key, value); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	output.PrintSuccess("✓ %s = %s", key, value)
	return nil
}

// Path prints the config file location
func (s *ConfigService) Path() error {
	fmt.Fprintln(output.Writer(), config.GetConfigFilePath())
	return nil
}

func flatten(prefix string, m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]interface{}); ok {
			for nk, nv := range flatten(key, nested) {
				out[nk] = nv
			}
			continue
		}
		out[strings.ToLower(key)] = v
	}
	return out
}
