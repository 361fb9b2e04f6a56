package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"detectd/internal/labels"
)

func newLabelsCmd(getenv func(string) string) *cobra.Command {
	return &cobra.Command{
		Use:   "labels",
		Short: "Load and print the category map",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd.Flags(), getenv)
			if err != nil {
				return err
			}
			lm, err := labels.Load(cfg.LabelsPath, cfg.IndexesPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range lm.Entries() {
				fmt.Fprintf(out, "%s\t%s\n", e.Index, e.Label)
			}
			return nil
		},
	}
}
