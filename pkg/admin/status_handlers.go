package admin

import (
	"net/http"
	"sort"
	"time"

	"github.com/stubkit/stubd/pkg/httputil"
	"github.com/stubkit/stubd/pkg/metrics"
	"github.com/stubkit/stubd/pkg/stub"
)

// LifecycleSummary is the status view of one catalog entry.
type LifecycleSummary struct {
	Index       int      `json:"index"`
	ID          string   `json:"id"`
	Description string   `json:"description,omitempty"`
	Methods     []string `json:"methods"`
	URL         string   `json:"url"`
	Responses   int      `json:"responses"`
	Hits        int64    `json:"hits"`
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Version    string             `json:"version"`
	StartedAt  time.Time          `json:"startedAt"`
	Uptime     string             `json:"uptime"`
	Server     StatusInfo         `json:"server"`
	StubCount  int                `json:"stubCount"`
	TotalHits  int64              `json:"totalHits"`
	Lifecycles []LifecycleSummary `json:"lifecycles"`
}

// URLStats aggregates hits for lifecycles sharing a URL pattern.
type URLStats struct {
	URL        string `json:"url"`
	Lifecycles int    `json:"lifecycles"`
	Hits       int64  `json:"hits"`
}

// RefreshResponse is the body of POST /refresh.
type RefreshResponse struct {
	Source    string `json:"source"`
	StubCount int    `json:"stubCount"`
}

func summarize(index int, lc *stub.Lifecycle) LifecycleSummary {
	return LifecycleSummary{
		Index:       index,
		ID:          lc.ID,
		Description: lc.Description,
		Methods:     lc.Pattern.Methods,
		URL:         lc.Pattern.URL.String(),
		Responses:   len(lc.Responses),
		Hits:        lc.Hits(),
	}
}

// handleStatus serves GET /status.
func (a *AdminAPI) handleStatus(w http.ResponseWriter, r *http.Request) {
	catalog := a.store.All()
	resp := StatusResponse{
		Version:    a.version,
		StartedAt:  a.started,
		Uptime:     time.Since(a.started).Round(time.Second).String(),
		Server:     a.info,
		StubCount:  len(catalog),
		Lifecycles: make([]LifecycleSummary, 0, len(catalog)),
	}
	for i, lc := range catalog {
		s := summarize(i, lc)
		resp.TotalHits += s.Hits
		resp.Lifecycles = append(resp.Lifecycles, s)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// handleUnused serves GET /unused.
func (a *AdminAPI) handleUnused(w http.ResponseWriter, r *http.Request) {
	unused := a.store.Unused()
	out := make([]LifecycleSummary, 0, len(unused))
	for _, entry := range unused {
		out = append(out, summarize(entry.Index, entry.Lifecycle))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// handleStats serves GET /stats. Entries are ordered by hits, busiest first.
func (a *AdminAPI) handleStats(w http.ResponseWriter, r *http.Request) {
	byURL := make(map[string]*URLStats)
	for _, lc := range a.store.All() {
		url := lc.Pattern.URL.String()
		s, ok := byURL[url]
		if !ok {
			s = &URLStats{URL: url}
			byURL[url] = s
		}
		s.Lifecycles++
		s.Hits += lc.Hits()
	}

	out := make([]URLStats, 0, len(byURL))
	for _, s := range byURL {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hits != out[j].Hits {
			return out[i].Hits > out[j].Hits
		}
		return out[i].URL < out[j].URL
	})
	httputil.WriteJSON(w, http.StatusOK, out)
}

// handleRefresh serves POST /refresh.
func (a *AdminAPI) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if a.reload == nil {
		httputil.WriteError(w, http.StatusNotImplemented, "reload_unavailable",
			"No data source is configured to refresh from")
		return
	}
	count, err := a.reload(r.Context(), metrics.SourceAdmin)
	if err != nil {
		a.log.Warn("refresh failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "reload_failed", failureMessage(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, RefreshResponse{Source: a.info.Data, StubCount: count})
}

// handleHealth serves GET /health.
func (a *AdminAPI) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"stubs":  a.store.Count(),
	})
}
