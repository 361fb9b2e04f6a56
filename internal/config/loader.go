package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Backend names accepted in Config.Backend.
const (
	BackendTensorflow = "tensorflow"
	BackendOpenCV     = "opencv"
)

// EnvPrefix prefixes every environment override, e.g. DETECTD_ADDR.
const EnvPrefix = "DETECTD_"

// Config holds runtime parameters for the service.
type Config struct {
	Addr        string `json:"addr" yaml:"addr" toml:"addr"`
	GraphPath   string `json:"graph_path" yaml:"graph_path" toml:"graph_path"`
	GraphConfig string `json:"graph_config" yaml:"graph_config" toml:"graph_config"`
	LabelsPath  string `json:"labels_path" yaml:"labels_path" toml:"labels_path"`
	IndexesPath string `json:"indexes_path" yaml:"indexes_path" toml:"indexes_path"`
	Backend     string `json:"backend" yaml:"backend" toml:"backend"`

	UploadDir        string `json:"upload_dir" yaml:"upload_dir" toml:"upload_dir"`
	TempDir          string `json:"temp_dir" yaml:"temp_dir" toml:"temp_dir"`
	KeepUploads      bool   `json:"keep_uploads" yaml:"keep_uploads" toml:"keep_uploads"`
	MaxUploadBytes   int64  `json:"max_upload_bytes" yaml:"max_upload_bytes" toml:"max_upload_bytes"`
	MaxDownloadBytes int64  `json:"max_download_bytes" yaml:"max_download_bytes" toml:"max_download_bytes"`

	FetchTimeoutSeconds int64   `json:"fetch_timeout_seconds" yaml:"fetch_timeout_seconds" toml:"fetch_timeout_seconds"`
	InferTimeoutSeconds int64   `json:"infer_timeout_seconds" yaml:"infer_timeout_seconds" toml:"infer_timeout_seconds"`
	MaxInputSide        int     `json:"max_input_side" yaml:"max_input_side" toml:"max_input_side"`
	MinScore            float64 `json:"min_score" yaml:"min_score" toml:"min_score"`

	LogLevel    string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat   string   `json:"log_format" yaml:"log_format" toml:"log_format"`
	CORSEnabled bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Default returns the configuration used when nothing else is specified.
func Default() Config {
	return Config{
		Addr:                "0.0.0.0:8888",
		GraphPath:           "./model/frozen_inference_graph.pb",
		LabelsPath:          "./model/labels",
		IndexesPath:         "./model/label_indexes",
		Backend:             BackendTensorflow,
		UploadDir:           "./tmp",
		MaxUploadBytes:      32 << 20,
		MaxDownloadBytes:    32 << 20,
		FetchTimeoutSeconds: 30,
		LogLevel:            "info",
		LogFormat:           "console",
	}
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// Merge overlays the non-zero fields of o onto c.
func (c Config) Merge(o Config) Config {
	if o.Addr != "" {
		c.Addr = o.Addr
	}
	if o.GraphPath != "" {
		c.GraphPath = o.GraphPath
	}
	if o.GraphConfig != "" {
		c.GraphConfig = o.GraphConfig
	}
	if o.LabelsPath != "" {
		c.LabelsPath = o.LabelsPath
	}
	if o.IndexesPath != "" {
		c.IndexesPath = o.IndexesPath
	}
	if o.Backend != "" {
		c.Backend = o.Backend
	}
	if o.UploadDir != "" {
		c.UploadDir = o.UploadDir
	}
	if o.TempDir != "" {
		c.TempDir = o.TempDir
	}
	if o.KeepUploads {
		c.KeepUploads = true
	}
	if o.MaxUploadBytes != 0 {
		c.MaxUploadBytes = o.MaxUploadBytes
	}
	if o.MaxDownloadBytes != 0 {
		c.MaxDownloadBytes = o.MaxDownloadBytes
	}
	if o.FetchTimeoutSeconds != 0 {
		c.FetchTimeoutSeconds = o.FetchTimeoutSeconds
	}
	if o.InferTimeoutSeconds != 0 {
		c.InferTimeoutSeconds = o.InferTimeoutSeconds
	}
	if o.MaxInputSide != 0 {
		c.MaxInputSide = o.MaxInputSide
	}
	if o.MinScore != 0 {
		c.MinScore = o.MinScore
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.LogFormat != "" {
		c.LogFormat = o.LogFormat
	}
	if o.CORSEnabled {
		c.CORSEnabled = true
	}
	if len(o.CORSOrigins) > 0 {
		c.CORSOrigins = append([]string(nil), o.CORSOrigins...)
	}
	return c
}

// FromEnv builds a partial Config from DETECTD_* variables. Unparseable
// numeric or boolean values are reported rather than silently ignored.
func FromEnv(getenv func(string) string) (Config, error) {
	var c Config
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(EnvPrefix + key)); v != "" {
			*dst = v
		}
	}
	str("ADDR", &c.Addr)
	str("GRAPH_PATH", &c.GraphPath)
	str("GRAPH_CONFIG", &c.GraphConfig)
	str("LABELS_PATH", &c.LabelsPath)
	str("INDEXES_PATH", &c.IndexesPath)
	str("BACKEND", &c.Backend)
	str("UPLOAD_DIR", &c.UploadDir)
	str("TEMP_DIR", &c.TempDir)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)

	var errs []string
	i64 := func(key string, dst *int64) {
		v := strings.TrimSpace(getenv(EnvPrefix + key))
		if v == "" {
			return
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, EnvPrefix+key)
			return
		}
		*dst = n
	}
	i64("MAX_UPLOAD_BYTES", &c.MaxUploadBytes)
	i64("MAX_DOWNLOAD_BYTES", &c.MaxDownloadBytes)
	i64("FETCH_TIMEOUT_SECONDS", &c.FetchTimeoutSeconds)
	i64("INFER_TIMEOUT_SECONDS", &c.InferTimeoutSeconds)
	var side int64
	i64("MAX_INPUT_SIDE", &side)
	c.MaxInputSide = int(side)

	if v := strings.TrimSpace(getenv(EnvPrefix + "MIN_SCORE")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, EnvPrefix+"MIN_SCORE")
		} else {
			c.MinScore = f
		}
	}
	flag := func(key string, dst *bool) {
		v := strings.TrimSpace(getenv(EnvPrefix + key))
		if v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, EnvPrefix+key)
			return
		}
		*dst = b
	}
	flag("KEEP_UPLOADS", &c.KeepUploads)
	flag("CORS_ENABLED", &c.CORSEnabled)
	if v := getenv(EnvPrefix + "CORS_ORIGINS"); v != "" {
		c.CORSOrigins = SplitCSV(v)
	}
	if len(errs) > 0 {
		return c, fmt.Errorf("invalid environment values: %s", strings.Join(errs, ", "))
	}
	return c, nil
}

// Validate checks that the merged configuration can start a server.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("addr is required")
	}
	if strings.TrimSpace(c.GraphPath) == "" {
		return fmt.Errorf("graph_path is required")
	}
	if strings.TrimSpace(c.LabelsPath) == "" || strings.TrimSpace(c.IndexesPath) == "" {
		return fmt.Errorf("labels_path and indexes_path are required")
	}
	switch c.Backend {
	case BackendTensorflow, BackendOpenCV:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendTensorflow, BackendOpenCV)
	}
	if c.MaxUploadBytes < 0 || c.MaxDownloadBytes < 0 {
		return fmt.Errorf("byte limits must not be negative")
	}
	if c.FetchTimeoutSeconds < 0 || c.InferTimeoutSeconds < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.MaxInputSide < 0 {
		return fmt.Errorf("max_input_side must not be negative")
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		return fmt.Errorf("min_score must be within [0,1]")
	}
	switch c.LogFormat {
	case "", "console", "json":
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}
	return nil
}

// SplitCSV splits a comma-separated list, trimming spaces and dropping empties.
func SplitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
