package cmd

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the API server and the worker loop in one process",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := workerConfig(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		w, err := a.newWorker(cmd.Context(), cfg.Worker.CriticalOnly)
		if err != nil {
			return err
		}

		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			return serveHTTP(ctx, a.newServer())
		})
		g.Go(func() error {
			return w.Run(ctx, cfg.Worker.Interval)
		})
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addWorkerFlags(runCmd)
}
