package config

import (
	"fmt"
	"net/url"
	"strings"
)

var supportedLogLevels = []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"}

// ValidateConfig checks if the global configurations have valid values.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := ValidateLoggerConfig(&cfg.Logger); err != nil {
		return fmt.Errorf("YAML global config: logger directive is invalid: %w", err)
	}
	if err := ValidateSensorConfig(&cfg.Sensor); err != nil {
		return fmt.Errorf("YAML global config: sensor directive is invalid: %w", err)
	}
	return nil
}

// ValidateLoggerConfig checks the logger level.
func ValidateLoggerConfig(loggerConfig *Logger) error {
	if loggerConfig == nil {
		return fmt.Errorf("logger configuration is nil")
	}
	if loggerConfig.Level == "" {
		return nil
	}
	level := strings.ToUpper(strings.TrimSpace(loggerConfig.Level))
	for _, l := range supportedLogLevels {
		if l == level {
			return nil
		}
	}
	return fmt.Errorf("unsupported level %q, expected one of %s", loggerConfig.Level, strings.Join(supportedLogLevels, ", "))
}

// ValidateSensorConfig checks the report lookup settings.
func ValidateSensorConfig(sensorConfig *Sensor) error {
	if sensorConfig == nil {
		return fmt.Errorf("sensor configuration is nil")
	}
	if err := ValidateReportPath(sensorConfig.ReportPath); err != nil {
		return err
	}
	if strings.TrimSpace(sensorConfig.ProjectDir) == "" {
		return fmt.Errorf("project_dir must not be empty")
	}
	return nil
}

// ValidateReportPath rejects empty paths and remote locations; reports are read from the project workspace only.
func ValidateReportPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("report_path must not be empty")
	}
	if u, err := url.Parse(path); err == nil && u.Scheme != "" && u.Host != "" {
		return fmt.Errorf("report_path %q must be a local file, remote reports are not fetched", path)
	}
	return nil
}
