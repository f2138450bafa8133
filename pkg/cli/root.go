package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stubkit/stubd/pkg/engine"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// EnvPrefix prefixes every environment variable stubd reads.
const EnvPrefix = "STUBD"

// Setting keys, shared by flags, environment variables and the settings file.
const (
	keySettings          = "settings"
	keyHost              = "host"
	keyStubsPort         = "stubs-port"
	keyAdminPort         = "admin-port"
	keyData              = "data"
	keyWatch             = "watch"
	keyMute              = "mute"
	keyMaxConnections    = "max-connections"
	keyLogLevel          = "log-level"
	keyLogFormat         = "log-format"
	keyLogFile           = "log-file"
	keyLogFileMaxSize    = "log-file-max-size"
	keyLogFileMaxBackups = "log-file-max-backups"
	keyLogFileMaxAge     = "log-file-max-age"
	keyLogFileCompress   = "log-file-compress"
)

// NewRootCmd builds the stubd command tree. Each call gets its own settings
// registry, so commands can be built and run independently.
func NewRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "stubd",
		Short: "stubd is an HTTP stub server with a runtime admin API",
		Long: `stubd serves canned HTTP responses matched from a catalog of stub documents,
simulating third-party services for integration tests.

The stubs portal answers matched requests. The admin portal lists, creates,
updates and deletes stubs at runtime without a restart.

Running stubd without a subcommand is the same as 'stubd serve'.`,
		SilenceUsage:  true,
		SilenceErrors: true, // We handle errors in Execute()
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadSettingsFile(v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, v)
		},
	}

	defaults := engine.DefaultConfig()
	flags := rootCmd.PersistentFlags()
	flags.String(keySettings, "", "Settings file (YAML, JSON or TOML)")
	flags.String(keyHost, defaults.Host, "Host to bind both portals to")
	flags.Int(keyStubsPort, defaults.StubsPort, "Stubs portal port")
	flags.Int(keyAdminPort, defaults.AdminPort, "Admin portal port")
	flags.StringP(keyData, "d", "", "Stub documents: a file, a directory or a glob such as 'stubs/**/*.yaml'")
	flags.BoolP(keyWatch, "w", false, "Reload stub documents when they change")
	flags.BoolP(keyMute, "m", false, "Only log errors")
	flags.Int(keyMaxConnections, 0, "Maximum concurrent connections per portal (0 = unlimited)")
	flags.String(keyLogLevel, "info", "Log level (debug, info, warn, error)")
	flags.String(keyLogFormat, "text", "Log format (text, json)")
	flags.String(keyLogFile, "", "Also write JSON logs to this file, rotating it by size")
	flags.Int(keyLogFileMaxSize, 100, "Log file size in megabytes before rotation")
	flags.Int(keyLogFileMaxBackups, 3, "Rotated log files to keep")
	flags.Int(keyLogFileMaxAge, 28, "Days to keep rotated log files")
	flags.Bool(keyLogFileCompress, false, "Gzip rotated log files")
	_ = v.BindPFlags(flags)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd.AddCommand(newServeCmd(v), newValidateCmd(v), newVersionCmd())
	return rootCmd
}

// loadSettingsFile merges the --settings file, if any, beneath flags and
// environment variables.
func loadSettingsFile(v *viper.Viper) error {
	path := v.GetString(keySettings)
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading settings %s: %w", path, err)
	}
	return nil
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
