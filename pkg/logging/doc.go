// Package logging provides structured logging configuration for stubd.
//
// This package wraps log/slog so the stubs portal, the admin portal and the
// CLI log the same way. Console output can be mirrored to a rotating log file.
//
// # Usage
//
//	logger, closer := logging.Open(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	    File:   logging.FileConfig{Path: "/var/log/stubd.log", MaxSizeMB: 50},
//	})
//	defer closer.Close()
//
//	logger.Info("stubs portal listening", "addr", "localhost:8882")
//
// # Integration
//
// Components accept a *slog.Logger in their constructor or via a setter.
// If no logger is provided, use logging.Nop() for a no-op logger.
package logging
