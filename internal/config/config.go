// Package config loads epqref runtime configuration from YAML.
package config

import (
	"os"
	"strings"

	"epqref/internal/runinfo"

	"gopkg.in/yaml.v3"
)

// Config captures all runtime options for the golden-test bridge.
type Config struct {
	Oracle  OracleConfig       `yaml:"oracle"`
	Report  ReportConfig       `yaml:"report"`
	Storage StorageConfig      `yaml:"storage"`
	Logging Logging            `yaml:"logging"`
	RunInfo *runinfo.BasicInfo `yaml:"-"`
}

// OracleConfig describes how to invoke the reference oracle process.
// Command and Args form the fixed prefix; the adapter appends the batch or
// single-mode arguments.
type OracleConfig struct {
	Command        string   `yaml:"command"`
	Args           []string `yaml:"args"`
	Dir            string   `yaml:"dir"`
	Env            []string `yaml:"env"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
}

// ReportConfig controls session artifact output.
type ReportConfig struct {
	OutputDir string `yaml:"output_dir"`
	Archive   bool   `yaml:"archive"`
	KeepRaw   bool   `yaml:"keep_raw"`
}

// Logging controls stdout logging behavior.
type Logging struct {
	Verbose bool `yaml:"verbose"`
}

// StorageConfig holds external storage settings.
type StorageConfig struct {
	S3  S3Config  `yaml:"s3"`
	GCS GCSConfig `yaml:"gcs"`
}

// CloudEnabled reports whether any cloud storage backend is enabled.
func (s StorageConfig) CloudEnabled() bool {
	return s.GCS.Enabled || s.S3.Enabled
}

// S3Config configures S3 uploads (legacy and S3-compatible endpoints).
type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
	UsePathStyle    bool   `yaml:"use_path_style"`
}

// GCSConfig configures GCS uploads.
type GCSConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

// Default returns the built-in defaults without reading a file.
func Default() Config {
	cfg := defaultConfig()
	normalizeConfig(&cfg)
	cfg.RunInfo = runinfo.FromEnv()
	return cfg
}

// Load reads configuration from a YAML file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	normalizeConfig(&cfg)
	cfg.RunInfo = runinfo.FromEnv()
	return cfg, nil
}

func defaultConfig() Config {
	return Config{
		Oracle: OracleConfig{
			Command:        "java",
			Args:           []string{"epq.reference.TestDump"},
			TimeoutSeconds: 600,
		},
		Report: ReportConfig{
			OutputDir: "epqref_reports",
			Archive:   true,
			KeepRaw:   true,
		},
	}
}

func normalizeConfig(cfg *Config) {
	cfg.Oracle.Command = strings.TrimSpace(cfg.Oracle.Command)
	if cfg.Oracle.TimeoutSeconds < 0 {
		cfg.Oracle.TimeoutSeconds = 0
	}
	if strings.TrimSpace(cfg.Report.OutputDir) == "" {
		cfg.Report.OutputDir = "epqref_reports"
	}
}
