package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stubkit/stubd/pkg/config"
)

// ErrNoDataSource is returned by Reload when no data source is configured.
var ErrNoDataSource = errors.New("no data source configured")

// Reload re-reads the data source and replaces the whole catalog. On
// failure the current catalog stays in place.
func (s *Server) Reload(ctx context.Context, source string) (int, error) {
	if s.cfg.Data == "" {
		return 0, ErrNoDataSource
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	start := time.Now()
	lifecycles, err := config.LoadFromPattern(s.cfg.Data)
	if err == nil {
		err = s.repo.ReplaceAll(lifecycles)
	}
	s.metrics.ObserveReload(source, err)
	if err != nil {
		s.log.Error("catalog reload failed", "source", source, "data", s.cfg.Data, "error", err)
		return 0, fmt.Errorf("loading %s: %w", s.cfg.Data, err)
	}

	s.log.Info("catalog loaded",
		"source", source,
		"data", s.cfg.Data,
		"stubs", len(lifecycles),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return len(lifecycles), nil
}
