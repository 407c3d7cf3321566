package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/telder/paperidx/internal/index"
)

// handleSearch runs a hybrid query: the query text is embedded and matched
// both lexically and by vector similarity. When the embedding provider is
// down the search degrades to lexical-only instead of failing.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		jsonError(w, "q query parameter is required", http.StatusBadRequest)
		return
	}

	topK := s.cfg.SearchTopK
	if v := r.URL.Query().Get("k"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			topK = n
		}
	}

	vector, err := s.embedder.Embed(r.Context(), q)
	if err != nil {
		s.log.Warn("query embedding failed, lexical-only search", "error", err)
		vector = nil
	}

	hits, err := s.writer.Search(r.Context(), q, vector, index.SearchOptions{
		LexicalBoost: s.cfg.SearchLexicalBoost,
		VectorBoost:  s.cfg.SearchVectorBoost,
		MinScore:     s.cfg.SearchMinScore,
		TopK:         topK,
	})
	if err != nil {
		jsonError(w, "search failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"query": q,
		"hits":  hits,
	})
}
