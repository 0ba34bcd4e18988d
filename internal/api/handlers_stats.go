package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleNotionStats(w http.ResponseWriter, r *http.Request) {
	if s.notion == nil || s.notion.Stats == nil {
		jsonError(w, "notion stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"notion_version": s.cfg.NotionVersion,
		"stats":          s.notion.Stats.Snapshot(),
	})
}

func (s *Server) handleQueueStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"queue_depth":  s.orchestrator.QueueDepth(),
		"worker_count": s.cfg.WorkerCount,
		"max_queue":    s.cfg.MaxQueueSize,
	})
}
