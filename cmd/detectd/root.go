package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"detectd/internal/config"
)

// newRootCmd builds the command tree. getenv is injected so tests can supply
// their own environment.
func newRootCmd(getenv func(string) string) *cobra.Command {
	root := &cobra.Command{
		Use:           "detectd",
		Short:         "Object detection HTTP service for a frozen detection graph",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "Config file (.yaml, .yml, .json or .toml)")
	pf.String("env-file", "", "Load DETECTD_* variables from a .env file (existing environment wins)")
	pf.String("addr", "", "HTTP listen address (default 0.0.0.0:8888)")
	pf.String("graph", "", "Frozen graph path")
	pf.String("graph-config", "", "Text graph description for the opencv backend")
	pf.String("labels", "", "Label names file, one per line")
	pf.String("indexes", "", "Label indexes file, parallel to --labels")
	pf.String("backend", "", "Inference backend: tensorflow|opencv")
	pf.String("upload-dir", "", "Directory for uploaded images")
	pf.String("temp-dir", "", "Directory for downloaded images (default system temp)")
	pf.Bool("keep-uploads", false, "Keep uploaded images after the request")
	pf.Int64("max-upload-bytes", 0, "Maximum upload size in bytes")
	pf.Int64("max-download-bytes", 0, "Maximum downloaded image size in bytes")
	pf.Int64("fetch-timeout", 0, "Image download timeout in seconds")
	pf.Int64("infer-timeout", 0, "Per-request timeout in seconds (0 disables)")
	pf.Int("max-input-side", 0, "Downscale inputs so the long side is at most this many pixels (0 disables)")
	pf.Float64("min-score", 0, "Drop detections scoring below this value")
	pf.String("log-level", "", "Log level: debug|info|warn|error|off")
	pf.String("log-format", "", "Log format: console|json")
	pf.Bool("cors", false, "Enable CORS")
	pf.String("cors-origins", "", "Comma-separated CORS allowed origins")

	serve := newServeCmd(getenv)
	root.RunE = serve.RunE
	root.AddCommand(serve, newLabelsCmd(getenv), newDetectCmd(getenv))
	return root
}

// resolveConfig merges defaults, the config file, the environment and the
// flags the user actually set, in increasing priority.
func resolveConfig(fs *pflag.FlagSet, getenv func(string) string) (config.Config, error) {
	cfg := config.Default()

	if path, _ := fs.GetString("config"); path != "" {
		fileCfg, err := config.Load(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = cfg.Merge(fileCfg)
	}

	if path, _ := fs.GetString("env-file"); path != "" {
		vals, err := godotenv.Read(path)
		if err != nil {
			return cfg, fmt.Errorf("load env file: %w", err)
		}
		getenv = withFallback(getenv, vals)
	}
	envCfg, err := config.FromEnv(getenv)
	if err != nil {
		return cfg, err
	}
	cfg = cfg.Merge(envCfg)

	cfg = applyFlags(cfg, fs)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// withFallback consults vals for keys the real environment leaves empty.
func withFallback(getenv func(string) string, vals map[string]string) func(string) string {
	return func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return vals[key]
	}
}

func applyFlags(cfg config.Config, fs *pflag.FlagSet) config.Config {
	str := func(name string, dst *string) {
		if fs.Changed(name) {
			*dst, _ = fs.GetString(name)
		}
	}
	i64 := func(name string, dst *int64) {
		if fs.Changed(name) {
			*dst, _ = fs.GetInt64(name)
		}
	}
	str("addr", &cfg.Addr)
	str("graph", &cfg.GraphPath)
	str("graph-config", &cfg.GraphConfig)
	str("labels", &cfg.LabelsPath)
	str("indexes", &cfg.IndexesPath)
	str("backend", &cfg.Backend)
	str("upload-dir", &cfg.UploadDir)
	str("temp-dir", &cfg.TempDir)
	str("log-level", &cfg.LogLevel)
	str("log-format", &cfg.LogFormat)
	i64("max-upload-bytes", &cfg.MaxUploadBytes)
	i64("max-download-bytes", &cfg.MaxDownloadBytes)
	i64("fetch-timeout", &cfg.FetchTimeoutSeconds)
	i64("infer-timeout", &cfg.InferTimeoutSeconds)
	if fs.Changed("keep-uploads") {
		cfg.KeepUploads, _ = fs.GetBool("keep-uploads")
	}
	if fs.Changed("max-input-side") {
		cfg.MaxInputSide, _ = fs.GetInt("max-input-side")
	}
	if fs.Changed("min-score") {
		cfg.MinScore, _ = fs.GetFloat64("min-score")
	}
	if fs.Changed("cors") {
		cfg.CORSEnabled, _ = fs.GetBool("cors")
	}
	if fs.Changed("cors-origins") {
		v, _ := fs.GetString("cors-origins")
		cfg.CORSOrigins = config.SplitCSV(v)
	}
	return cfg
}
