package cmd

import (
	"fmt"
	"time"

	"github.com/autoops/backend/internal/config"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Poll new alerts, diagnose, remediate and notify",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		cfg, err := workerConfig(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		w, err := a.newWorker(ctx, cfg.Worker.CriticalOnly)
		if err != nil {
			return err
		}

		once, _ := cmd.Flags().GetBool("once")
		if once {
			processed, err := w.RunOnce(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "processed=%d\n", processed)
			return err
		}
		return w.Run(ctx, cfg.Worker.Interval)
	},
}

// 플래그가 지정되면 환경변수보다 우선
func workerConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Load()
	if cmd.Flags().Changed("interval") {
		interval, _ := cmd.Flags().GetDuration("interval")
		cfg.Worker.Interval = interval
	}
	if cmd.Flags().Changed("critical-only") {
		criticalOnly, _ := cmd.Flags().GetBool("critical-only")
		cfg.Worker.CriticalOnly = criticalOnly
	}
	if err := cfg.ValidateWorker(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func addWorkerFlags(cmd *cobra.Command) {
	cmd.Flags().Duration("interval", 5*time.Second, "Polling interval (overrides WORKER_INTERVAL)")
	cmd.Flags().Bool("critical-only", false, "Only process severity=Critical alerts (overrides WORKER_CRITICAL_ONLY)")
}

func init() {
	rootCmd.AddCommand(workerCmd)
	addWorkerFlags(workerCmd)
	workerCmd.Flags().Bool("once", false, "Run a single pass and exit")
}
