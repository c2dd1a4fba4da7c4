package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wasconverge/wasconverge/internal/config"
	"github.com/wasconverge/wasconverge/internal/domain"
)

func newReconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Run one reconciliation pass and exit",
		Long: `Loads the manifest set, converges every resource, prints the
per-resource outcomes, and exits non-zero if anything failed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log := newLogger(cfg)

			store, reconciler, err := buildComponents(cfg, log)
			if err != nil {
				return err
			}
			defer store.Close()

			detail, err := reconciler.ForceSync(cmd.Context(), "cli")
			if err != nil {
				return err
			}

			for _, res := range detail.Results {
				line := fmt.Sprintf("%-10s %s", res.Outcome, res.ResourceKey)
				if res.Error != "" {
					line += ": " + res.Error
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}

			if detail.Status != domain.RunStatusSuccess {
				return fmt.Errorf("run %s finished with status %s", detail.ID, detail.Status)
			}
			return nil
		},
	}
}
