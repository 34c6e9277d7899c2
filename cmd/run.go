package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/visor-cli/api/schemas"
	"github.com/xkilldash9x/visor-cli/internal/actionlog"
	"github.com/xkilldash9x/visor-cli/internal/config"
	"github.com/xkilldash9x/visor-cli/internal/dataset"
	"github.com/xkilldash9x/visor-cli/internal/driver/cdp"
	"github.com/xkilldash9x/visor-cli/internal/execution"
	"github.com/xkilldash9x/visor-cli/internal/find"
	"github.com/xkilldash9x/visor-cli/internal/history"
	"github.com/xkilldash9x/visor-cli/internal/input"
	"github.com/xkilldash9x/visor-cli/internal/matcher"
	"github.com/xkilldash9x/visor-cli/internal/observability"
	"github.com/xkilldash9x/visor-cli/internal/orchestrator"
	"github.com/xkilldash9x/visor-cli/internal/region"
	"github.com/xkilldash9x/visor-cli/internal/statemgmt"
)

// newRunCmd creates and configures the `run` command.
func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Runs the configured automation sequence",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to their viper keys so command-line values override
			// the config file and environment with the right precedence.
			if err := viper.BindPFlag("driver.target_url", cmd.Flags().Lookup("target")); err != nil {
				return err
			}
			if err := viper.BindPFlag("driver.headless", cmd.Flags().Lookup("headless")); err != nil {
				return err
			}
			return viper.BindPFlag("automation.build_dataset", cmd.Flags().Lookup("dataset"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}

			sessionID := uuid.New().String()
			logger.Info("Starting automation session",
				zap.String("sessionID", sessionID),
				zap.String("target", cfg.Driver.TargetURL),
				zap.Int("steps", len(cfg.Sequence)))

			components, err := initializeSessionComponents(ctx, cfg, sessionID, logger)
			if err != nil {
				if components != nil {
					components.Shutdown()
				}
				return fmt.Errorf("failed to initialize session components: %w", err)
			}
			defer components.Shutdown()

			if err := components.Session.Run(components.ActionCtx); err != nil {
				if errors.Is(err, execution.ErrStopped) || errors.Is(err, context.Canceled) {
					logger.Warn("Session aborted gracefully", zap.String("sessionID", sessionID))
					return fmt.Errorf("session aborted by user signal")
				}
				logger.Error("Session failed", zap.Error(err), zap.String("sessionID", sessionID))
				return err
			}

			fmt.Printf("\nSession Complete. Session ID: %s\n", sessionID)
			return nil
		},
	}

	runCmd.Flags().StringP("target", "t", "", "Target URL the driver opens before automation starts. (Overrides config/env)")
	runCmd.Flags().Bool("headless", true, "Run the browser headless. (Overrides config/env)")
	runCmd.Flags().Bool("dataset", false, "Record completed actions to the dataset store. (Overrides config/env)")

	return runCmd
}

// sessionComponents holds the initialized services of one run.
type sessionComponents struct {
	Session *orchestrator.Session
	Tracker *statemgmt.Tracker
	Driver  schemas.ScreenDriver

	// ActionCtx is the context actions run under. With the CDP driver it is
	// the browser-bound context.
	ActionCtx context.Context

	dbPool        *pgxpool.Pool
	cancelBrowser context.CancelFunc
}

// Shutdown releases everything the initialization acquired.
func (sc *sessionComponents) Shutdown() {
	if sc.cancelBrowser != nil {
		sc.cancelBrowser()
	}
	if sc.dbPool != nil {
		sc.dbPool.Close()
	}
}

// initializeSessionComponents handles dependency injection for a run.
func initializeSessionComponents(ctx context.Context, cfg *config.Config, sessionID string, logger *zap.Logger) (*sessionComponents, error) {
	components := &sessionComponents{ActionCtx: ctx}

	// 1. State model
	catalog, err := orchestrator.BuildCatalog(cfg.States)
	if err != nil {
		return components, fmt.Errorf("failed to build state catalog: %w", err)
	}
	active := statemgmt.NewActiveStates(catalog, logger)

	// 2. Matcher
	visual, err := newMatcher(cfg, logger)
	if err != nil {
		return components, err
	}

	// 3. Driver
	driver, actionCtx, cancelBrowser, err := newDriver(ctx, cfg, logger)
	if err != nil {
		return components, err
	}
	components.Driver = driver
	components.ActionCtx = actionCtx
	components.cancelBrowser = cancelBrowser

	// 4. Find and input layers
	resolver := region.NewResolver(logger)
	finder, err := find.New(visual, resolver, catalog, active, logger)
	if err != nil {
		return components, err
	}
	clock := execution.NewSystemClock()
	inputs, err := input.New(driver, finder, clock, logger)
	if err != nil {
		return components, err
	}

	// 5. Tracker
	tracker := statemgmt.NewTracker(catalog, active, finder, cfg.Automation.ScanRate, logger)
	components.Tracker = tracker

	// 6. Hooks
	hooks := execution.Hooks{
		Illustrator: history.NewController(cfg.Automation.Illustration, nil, logger),
		Logger:      actionlog.New(logger),
	}
	if cfg.Automation.BuildDataset {
		pool, err := pgxpool.New(ctx, cfg.Dataset.URL)
		if err != nil {
			return components, fmt.Errorf("failed to connect to dataset database: %w", err)
		}
		components.dbPool = pool
		recorder, err := dataset.New(ctx, pool, cfg.Dataset.Table, logger)
		if err != nil {
			return components, err
		}
		if err := recorder.EnsureSchema(ctx); err != nil {
			return components, err
		}
		hooks.Dataset = recorder
	}

	// 7. Execution controller
	controller, err := execution.NewController(
		clock,
		execution.NewContextSignal(),
		execution.NewResultFactory(clock),
		hooks,
		cfg.Automation.BuildDataset,
		sessionID,
		logger,
	)
	if err != nil {
		return components, err
	}

	// 8. Session
	session, err := orchestrator.New(cfg, logger, catalog, tracker, finder, inputs, controller)
	if err != nil {
		return components, fmt.Errorf("failed to create session: %w", err)
	}
	components.Session = session

	return components, nil
}

func newMatcher(cfg *config.Config, logger *zap.Logger) (schemas.VisualMatcher, error) {
	switch cfg.Matcher.Kind {
	case "mock", "":
		return matcher.NewMock(cfg.Matcher.Mock, logger), nil
	default:
		return nil, fmt.Errorf("unknown matcher kind %q", cfg.Matcher.Kind)
	}
}

func newDriver(ctx context.Context, cfg *config.Config, logger *zap.Logger) (schemas.ScreenDriver, context.Context, context.CancelFunc, error) {
	switch cfg.Driver.Kind {
	case "cdp", "":
		browserCtx, cancel, err := cdp.NewBrowserContext(ctx, cfg.Driver)
		if err != nil {
			return nil, ctx, nil, err
		}
		return cdp.New(logger), browserCtx, cancel, nil
	default:
		return nil, ctx, nil, fmt.Errorf("unknown driver kind %q", cfg.Driver.Kind)
	}
}
