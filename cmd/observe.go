package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/visor-cli/internal/config"
	"github.com/xkilldash9x/visor-cli/internal/observability"
)

// newObserveCmd creates the `observe` command: a single full scan that
// reports which of the defined states are currently visible, without running
// any sequence.
func newObserveCmd() *cobra.Command {
	var screenshotPath string

	observeCmd := &cobra.Command{
		Use:   "observe",
		Short: "Scans the target surface and reports the visible states",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return viper.BindPFlag("driver.target_url", cmd.Flags().Lookup("target"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}

			components, err := initializeSessionComponents(ctx, cfg, uuid.New().String(), logger)
			if err != nil {
				if components != nil {
					components.Shutdown()
				}
				return fmt.Errorf("failed to initialize components: %w", err)
			}
			defer components.Shutdown()

			ids := components.Tracker.RefreshActiveStates(components.ActionCtx)
			names := components.Tracker.Active().Names()
			logger.Info("Observation finished",
				zap.Int("active", len(ids)),
				zap.Strings("states", names))

			fmt.Println("Active states:")
			for _, name := range names {
				fmt.Printf("  - %s\n", name)
			}

			if screenshotPath != "" {
				png, err := components.Driver.CaptureScreen(components.ActionCtx)
				if err != nil {
					return fmt.Errorf("failed to capture screen: %w", err)
				}
				if err := os.WriteFile(screenshotPath, png, 0o644); err != nil {
					return fmt.Errorf("failed to write screenshot: %w", err)
				}
				fmt.Printf("Screenshot written to %s\n", screenshotPath)
			}
			return nil
		},
	}

	observeCmd.Flags().StringP("target", "t", "", "Target URL the driver opens before observing. (Overrides config/env)")
	observeCmd.Flags().StringVarP(&screenshotPath, "screenshot", "s", "", "Write a PNG of the observed surface to this path.")

	return observeCmd
}
