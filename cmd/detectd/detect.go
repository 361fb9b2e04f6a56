package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"detectd/internal/detector"
	"detectd/internal/httpapi"
)

func newDetectCmd(getenv func(string) string) *cobra.Command {
	return &cobra.Command{
		Use:     "detect <image>",
		Short:   "Run detection on a local image and print the result as JSON",
		Example: "  detectd detect --graph model/frozen_inference_graph.pb site.jpg",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd.Flags(), getenv)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
			det, err := loadDetector(cfg, logPublisher{log: logger})
			if err != nil {
				return err
			}
			defer det.Close()
			return detectFile(cmd, det, args[0])
		},
	}
}

func detectFile(cmd *cobra.Command, det *detector.Detector, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dets, err := det.Detect(cmd.Context(), f)
	if err != nil {
		return fmt.Errorf("detect %s: %w", path, err)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(httpapi.ClassifyResponse(dets))
}
