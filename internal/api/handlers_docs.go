package api

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// handleDeleteDocuments removes all chunks for the requested document IDs.
func (s *Server) handleDeleteDocuments(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DocumentIDs []string `json:"document_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.DocumentIDs) == 0 {
		jsonError(w, "document_ids is required", http.StatusBadRequest)
		return
	}

	report, err := s.coordinator.Invalidate(r.Context(), req.DocumentIDs)
	if err != nil {
		jsonError(w, "delete failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// handleDeleteCorpus wipes the whole index. Full reset only.
func (s *Server) handleDeleteCorpus(w http.ResponseWriter, r *http.Request) {
	if err := s.writer.DeleteAll(r.Context()); err != nil {
		jsonError(w, "delete failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.log.Info("corpus deleted")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
}

// handleSample returns a few indexed chunks, embeddings stripped, for
// spot-checking what the pipeline produced.
func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	n := 5
	if v := r.URL.Query().Get("n"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 100 {
			n = parsed
		}
	}

	chunks, err := s.writer.Sample(r.Context(), n)
	if err != nil {
		jsonError(w, "sample failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"chunks": chunks})
}
