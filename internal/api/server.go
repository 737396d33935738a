package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/myat555/WildfireNowcast/internal/alerts"
	"github.com/myat555/WildfireNowcast/internal/config"
	"github.com/myat555/WildfireNowcast/internal/model"
	"github.com/myat555/WildfireNowcast/internal/results"
	"github.com/myat555/WildfireNowcast/internal/storage"
)

type Server struct {
	cfg     *config.Manager
	results *results.Store
	alerts  *alerts.Store
	store   storage.Store
	logger  *slog.Logger
	version string
}

type statusResponse struct {
	Status     string           `json:"status"`
	Time       string           `json:"time"`
	Version    string           `json:"version"`
	ConfigPath string           `json:"config_path"`
	Ingest     ingestStatus     `json:"ingest"`
	API        apiStatus        `json:"api"`
	Assessment assessmentStatus `json:"assessment"`
	LastCycle  *time.Time       `json:"last_cycle,omitempty"`
}

type ingestStatus struct {
	REST     bool `json:"rest"`
	FileTail bool `json:"file_tail"`
	Kafka    bool `json:"kafka"`
}

type apiStatus struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
}

type assessmentStatus struct {
	MaxDistanceKm      float64 `json:"max_distance_km"`
	EvacuationBufferKm float64 `json:"evacuation_buffer_km"`
	RankCriteria       string  `json:"rank_criteria"`
}

func Start(ctx context.Context, cfg *config.Manager, resultsStore *results.Store, alertsStore *alerts.Store, store storage.Store, logger *slog.Logger, version string) *http.Server {
	if cfg == nil {
		return nil
	}
	current := cfg.Get().API
	if !current.Enabled {
		if logger != nil {
			logger.Info("api disabled")
		}
		return nil
	}
	if logger != nil {
		logger.Info("api enabled", "addr", current.Addr)
	}
	server := &Server{
		cfg:     cfg,
		results: resultsStore,
		alerts:  alertsStore,
		store:   store,
		logger:  logger,
		version: version,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/status", server.handleStatus)
	mux.HandleFunc("/assessments", server.handleAssessments)
	mux.HandleFunc("/fires", server.handleFires)
	mux.HandleFunc("/zones", server.handleZones)
	mux.HandleFunc("/areas", server.handleAreas)
	mux.HandleFunc("/alerts", server.handleAlerts)
	mux.HandleFunc("/stats", server.handleStats)
	mux.HandleFunc("/cycles", server.handleCycles)
	mux.HandleFunc("/admin/clear", server.handleClear)
	mux.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{Addr: current.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(ctxShutdown)
	}()
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if logger != nil {
				logger.Error("api server error", "err", err)
			}
		}
	}()
	return httpServer
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	cfg := s.cfg.Get()
	resp := statusResponse{
		Status:     "ok",
		Time:       time.Now().UTC().Format(time.RFC3339Nano),
		Version:    s.version,
		ConfigPath: s.cfg.Path(),
		Ingest: ingestStatus{
			REST:     cfg.Ingest.REST.Enabled,
			FileTail: cfg.Ingest.FileTail.Enabled,
			Kafka:    cfg.Ingest.Kafka.Enabled,
		},
		API: apiStatus{Enabled: cfg.API.Enabled, Addr: cfg.API.Addr},
		Assessment: assessmentStatus{
			MaxDistanceKm:      cfg.Assessment.MaxDistanceKm,
			EvacuationBufferKm: cfg.Assessment.EvacuationBufferKm,
			RankCriteria:       cfg.Assessment.RankCriteria,
		},
	}
	if snap, ok := s.results.Latest(); ok {
		ts := snap.Timestamp
		resp.LastCycle = &ts
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssessments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	snap, ok := s.results.Latest()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"timestamp":   snap.Timestamp,
		"assessments": snap.Assessments,
		"summary":     snap.Summary,
	})
}

func (s *Server) handleFires(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	snap, ok := s.results.Latest()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	ranked := snap.Ranked
	if v := r.URL.Query().Get("top"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n < len(ranked) {
			ranked = ranked[:n]
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"timestamp": snap.Timestamp,
		"fires":     ranked,
		"count":     len(ranked),
	})
}

func (s *Server) handleZones(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	snap, ok := s.results.Latest()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"timestamp": snap.Timestamp,
		"zones":     snap.Zones,
		"count":     len(snap.Zones),
	})
}

func (s *Server) handleAreas(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	snap, ok := s.results.Latest()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"timestamp":    snap.Timestamp,
		"area_threats": snap.AreaThreats,
		"count":        len(snap.AreaThreats),
	})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	level := model.AlertLevel(strings.ToUpper(r.URL.Query().Get("level")))
	sinceStr := r.URL.Query().Get("since")
	var list []model.Alert
	if sinceStr != "" {
		ts, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if s.store != nil {
			// Persisted history reaches further back than the in-memory buffer.
			if stored, err := s.store.RecentAlerts(r.Context(), ts, level); err == nil {
				writeJSON(w, http.StatusOK, map[string]any{
					"alerts": stored,
					"count":  len(stored),
				})
				return
			} else if s.logger != nil {
				s.logger.Warn("alert history query failed, serving from memory", "err", err)
			}
		}
		list = s.alerts.Since(ts, level)
	} else if level != "" {
		// Level filter without a since bound covers the whole buffer.
		list = s.alerts.Since(time.Time{}, level)
	} else {
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}
		list = s.alerts.List(limit)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"alerts": list,
		"count":  len(list),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	since := time.Now().UTC().Add(-24 * time.Hour)
	if v := r.URL.Query().Get("since"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		since = ts
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"since": since.Format(time.RFC3339),
		"stats": s.alerts.StatsSince(since),
	})
}

func (s *Server) handleCycles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	list := s.results.Summaries(limit)
	writeJSON(w, http.StatusOK, map[string]any{
		"cycles": list,
		"count":  len(list),
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Target string `json:"target"`
	}
	_ = json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req)
	target := strings.ToLower(strings.TrimSpace(req.Target))
	if target == "" {
		target = "all"
	}
	switch target {
	case "all":
		if s.results != nil {
			s.results.Clear()
		}
		if s.alerts != nil {
			s.alerts.Clear()
		}
	case "alerts":
		if s.alerts != nil {
			s.alerts.Clear()
		}
	case "results":
		if s.results != nil {
			s.results.Clear()
		}
	default:
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
