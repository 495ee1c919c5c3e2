// Package config loads the zap-sensor YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v2"
)

const (
	DefaultConfigFile = "config.yml"
	DefaultReportPath = "zap-report.xml"
	DefaultProjectDir = "."
)

// Config is the root of the YAML configuration.
type Config struct {
	Logger Logger `yaml:"logger"`
	Sensor Sensor `yaml:"sensor"`
	Output Output `yaml:"output"`
}

// Logger configures the hclog logger.
type Logger struct {
	Level           string `yaml:"level"`
	DisableTime     *bool  `yaml:"disable_time"`
	JSONFormat      *bool  `yaml:"json_format"`
	IncludeLocation *bool  `yaml:"include_location"`
}

// Sensor configures where the ZAP report is looked up and which project issues are raised on.
type Sensor struct {
	ReportPath string `yaml:"report_path"` // relative to ProjectDir unless absolute
	ProjectDir string `yaml:"project_dir"`
	ProjectKey string `yaml:"project_key"`
}

// Output configures the issue and measure sinks.
type Output struct {
	SarifPath    string `yaml:"sarif_path"`
	ArtifactsDir string `yaml:"artifacts_dir"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// ValidateConfigPath checks that path points to a file.
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

// LoadYAML decodes the YAML file at configPath into data.
func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	d.SetStrict(true)
	if err := d.Decode(data); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to decode %q: %w", configPath, err)
	}
	return nil
}

// LoadConfig reads configPath and fills unset values with defaults.
// The default config file is optional: when configPath is DefaultConfigFile and it does not exist, defaults are returned.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigFile
	}

	cfg := &Config{}
	if err := LoadYAML(configPath, cfg); err != nil {
		if configPath == DefaultConfigFile && os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	cfg.Sensor.ReportPath = SetThen(cfg.Sensor.ReportPath, DefaultReportPath)
	cfg.Sensor.ProjectDir = SetThen(cfg.Sensor.ProjectDir, DefaultProjectDir)
	cfg.Logger.Level = SetThen(cfg.Logger.Level, "INFO")
}

// ProjectKey returns the configured project key, or the base name of the project directory.
func ProjectKey(cfg *Config) string {
	if cfg == nil {
		return ""
	}
	if cfg.Sensor.ProjectKey != "" {
		return cfg.Sensor.ProjectKey
	}
	abs, err := filepath.Abs(cfg.Sensor.ProjectDir)
	if err != nil {
		return filepath.Base(cfg.Sensor.ProjectDir)
	}
	return filepath.Base(abs)
}
