package api

import (
	"encoding/json"
	"net/http"
)

// handleStats reports index size alongside embedding throughput and the
// current ingestion queue depth.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	chunkCount, sizeBytes, err := s.writer.Stats(r.Context())
	if err != nil {
		jsonError(w, "stats unavailable: "+err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"chunks":           chunkCount,
		"store_size_bytes": sizeBytes,
		"queue_depth":      s.orchestrator.QueueDepth(),
		"embedding": map[string]any{
			"model": s.embedder.Model(),
			"stats": s.embedStats.Snapshot(),
		},
	})
}
