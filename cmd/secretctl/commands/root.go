package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"secretsession/internal/app"
	"secretsession/internal/services/session"
)

const closeTimeout = 5 * time.Second

var (
	configPath  string
	mock        bool
	mockStore   string
	logLevel    string
	policy      string
	showMetrics bool

	wire *app.Wire
)

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx, newRootCmd())
}

// execute runs root and then releases the wire, whether or not the command
// failed. cobra skips the persistent post-run hooks after a RunE error.
func execute(ctx context.Context, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	if wire == nil {
		return err
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if cerr := wire.Close(closeCtx); cerr != nil {
		wire.Log.WithError(cerr).Warn("closing session failed")
	}
	if showMetrics {
		if merr := writeMetrics(root); merr != nil && err == nil {
			err = merr
		}
	}
	return err
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "secretctl",
		Short:        "Talk to the freedesktop Secret Service over a negotiated session",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			wire, err = app.NewWire(cfg, app.Options{LogOutput: cmd.ErrOrStderr()})
			return err
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "TOML config file")
	flags.BoolVar(&mock, "mock", false, "use the in-process mock service instead of the bus")
	flags.StringVar(&mockStore, "mock-store", "", "directory for mock items (implies --mock)")
	flags.StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, off)")
	flags.StringVar(&policy, "policy", "", "session policy: prefer-encrypted, require-encrypted or plain")
	flags.BoolVar(&showMetrics, "metrics", false, "print session metrics to stderr on exit")

	root.AddCommand(sessionCmd(), getCmd(), setCmd(), roundtripCmd())
	return root
}

func loadConfig(cmd *cobra.Command) (app.Config, error) {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return app.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("mock") {
		cfg.Mock.Enabled = mock
	}
	if mockStore != "" {
		cfg.Mock.Enabled = true
		cfg.Mock.StoreDir = mockStore
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if policy != "" {
		p, err := session.ParsePolicy(policy)
		if err != nil {
			return app.Config{}, err
		}
		cfg.Session.Policy = p
	}
	return cfg, cfg.Validate()
}

func writeMetrics(cmd *cobra.Command) error {
	families, err := wire.Metrics.Registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(cmd.ErrOrStderr(), mf); err != nil {
			return err
		}
	}
	return nil
}
