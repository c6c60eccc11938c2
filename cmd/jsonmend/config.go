package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"charm.land/jsonmend"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	envProtectedFields = "JSONMEND_PROTECTED_FIELDS"
	envStringFields    = "JSONMEND_STRING_FIELDS"
)

// Config is the CLI configuration. Sources apply in order: defaults, config
// file, environment, flags.
type Config struct {
	ProtectedFields []string `json:"protected_fields"`
	StringFields    []string `json:"string_fields"`
	Schema          string   `json:"schema"`
}

func defaultConfig() Config {
	return Config{ProtectedFields: slices.Clone(jsonmend.DefaultProtectedFields)}
}

// loadConfigFile overlays the YAML file at path onto cfg.
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		ErrorUnused: true,
		Result:      cfg,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv(envProtectedFields); v != "" {
		cfg.ProtectedFields = splitList(v)
	}
	if v := getenv(envStringFields); v != "" {
		cfg.StringFields = splitList(v)
	}
}

func splitList(v string) []string {
	var out []string
	for part := range strings.SplitSeq(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func resolveConfig(cmd *cobra.Command, getenv func(string) string) (Config, error) {
	cfg := defaultConfig()
	flags := cmd.Flags()

	path, err := flags.GetString("config")
	if err != nil {
		return cfg, err
	}
	if path != "" {
		if err := loadConfigFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	applyEnv(&cfg, getenv)

	if flags.Changed("protect") {
		if cfg.ProtectedFields, err = flags.GetStringSlice("protect"); err != nil {
			return cfg, err
		}
	}
	if flags.Changed("string-field") {
		if cfg.StringFields, err = flags.GetStringSlice("string-field"); err != nil {
			return cfg, err
		}
	}
	if flags.Changed("schema") {
		if cfg.Schema, err = flags.GetString("schema"); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// options turns the config into engine options, reading the schema file when
// one is set.
func (c Config) options() ([]jsonmend.Option, error) {
	stringFields := slices.Clone(c.StringFields)
	if c.Schema != "" {
		data, err := os.ReadFile(c.Schema)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema: %w", err)
		}
		fields, err := jsonmend.StringFieldsFromSchema(data)
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", c.Schema, err)
		}
		stringFields = append(stringFields, fields...)
	}
	return []jsonmend.Option{
		jsonmend.WithProtectedFields(c.ProtectedFields...),
		jsonmend.WithStringFields(stringFields...),
	}, nil
}
