package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pagemark-io/pagemark/internal/notion"
)

// handleListPages lists recently published pages from the job store.
func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	snaps := s.orchestrator.Jobs().RecentCompleted(limit)
	pages := make([]map[string]any, 0, len(snaps))
	for _, snap := range snaps {
		pages = append(pages, map[string]any{
			"job_id":       snap.ID,
			"title":        snap.Title,
			"page_id":      snap.PageID,
			"page_url":     snap.PageURL,
			"published_at": snap.UpdatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"pages": pages})
}

// handleArchivePage archives a published page.
func (s *Server) handleArchivePage(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")

	if err := s.notion.ArchivePage(r.Context(), pageID); err != nil {
		// Pass the upstream status through so 404s stay 404s.
		var apiErr *notion.APIError
		if errors.As(err, &apiErr) {
			jsonError(w, err.Error(), apiErr.StatusCode)
			return
		}
		jsonError(w, "failed to archive page: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"page_id":  pageID,
		"archived": true,
	})
}
