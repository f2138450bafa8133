package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stubkit/stubd/pkg/engine"
	"github.com/stubkit/stubd/pkg/logging"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the stubs and admin portals (foreground)",
		Example: `  # Serve a single document with defaults (stubs :8882, admin :8889)
  stubd serve --data stubs.yaml

  # Serve every document below a directory and reload on change
  stubd serve --data ./stubs --watch

  # Configure through the environment
  STUBD_DATA='stubs/**/*.yml' STUBD_STUBS_PORT=9000 stubd`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, v)
		},
	}
}

func runServe(cmd *cobra.Command, v *viper.Viper) error {
	cfg, err := serverConfig(v)
	if err != nil {
		return err
	}

	log, closer := logging.Open(loggingConfig(v))
	defer closer.Close()

	srv, err := engine.NewServer(cfg, engine.WithLogger(log), engine.WithVersion(Version))
	if err != nil {
		return err
	}
	if err := srv.Listen(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("stubd started",
		"version", Version,
		"stubs", "http://"+srv.StubsAddr(),
		"admin", "http://"+srv.AdminAddr(),
		"data", cfg.Data,
		"stub_count", srv.Repository().Count(),
		"watch", cfg.Watch,
	)
	return srv.Run(ctx)
}
