package cli

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/stubkit/stubd/pkg/engine"
	"github.com/stubkit/stubd/pkg/logging"
)

// serverConfig builds the engine configuration from resolved settings.
func serverConfig(v *viper.Viper) (engine.Config, error) {
	cfg := engine.DefaultConfig()
	cfg.Host = v.GetString(keyHost)
	cfg.StubsPort = v.GetInt(keyStubsPort)
	cfg.AdminPort = v.GetInt(keyAdminPort)
	cfg.Data = v.GetString(keyData)
	cfg.Watch = v.GetBool(keyWatch)
	cfg.MaxConnections = v.GetInt(keyMaxConnections)

	for name, port := range map[string]int{keyStubsPort: cfg.StubsPort, keyAdminPort: cfg.AdminPort} {
		if port < 0 || port > 65535 {
			return cfg, fmt.Errorf("invalid %s %d: must be between 0 and 65535", name, port)
		}
	}
	if cfg.StubsPort != 0 && cfg.StubsPort == cfg.AdminPort {
		return cfg, fmt.Errorf("stubs and admin portals cannot share port %d", cfg.StubsPort)
	}
	if cfg.MaxConnections < 0 {
		return cfg, fmt.Errorf("invalid %s %d", keyMaxConnections, cfg.MaxConnections)
	}
	return cfg, nil
}

// loggingConfig builds the logging configuration from resolved settings.
func loggingConfig(v *viper.Viper) logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(v.GetString(keyLogLevel))
	cfg.Format = logging.ParseFormat(v.GetString(keyLogFormat))
	if v.GetBool(keyMute) {
		cfg.Level = logging.LevelError
	}
	cfg.File = logging.FileConfig{
		Path:       v.GetString(keyLogFile),
		MaxSizeMB:  v.GetInt(keyLogFileMaxSize),
		MaxBackups: v.GetInt(keyLogFileMaxBackups),
		MaxAgeDays: v.GetInt(keyLogFileMaxAge),
		Compress:   v.GetBool(keyLogFileCompress),
	}
	return cfg
}
