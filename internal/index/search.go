package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/telder/paperidx/internal/corpus"
)

// SearchOptions tunes the hybrid query. Zero boosts fall back to defaults
// that weight lexical and vector evidence equally.
type SearchOptions struct {
	LexicalBoost float64
	VectorBoost  float64
	MinScore     float64
	TopK         int
}

// Hit is one search result with its combined relevance score.
type Hit struct {
	Chunk corpus.Chunk `json:"chunk"`
	Score float64      `json:"score"`
}

// Search runs a hybrid lexical plus vector query. The text matches against
// chunk content, the vector runs a KNN lookup against the embeddings, and
// either clause alone can qualify a hit.
func (w *Writer) Search(ctx context.Context, text string, vector []float32, opts SearchOptions) ([]Hit, error) {
	if opts.TopK <= 0 {
		opts.TopK = 10
	}
	if opts.LexicalBoost <= 0 {
		opts.LexicalBoost = 1.0
	}
	if opts.VectorBoost <= 0 {
		opts.VectorBoost = 1.0
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	should := []map[string]any{}
	if text != "" {
		should = append(should, map[string]any{
			"match": map[string]any{
				"text_content": map[string]any{
					"query": text,
					"boost": opts.LexicalBoost,
				},
			},
		})
	}
	if len(vector) > 0 {
		should = append(should, map[string]any{
			"knn": map[string]any{
				"embedding": map[string]any{
					"vector": vector,
					"k":      opts.TopK,
					"boost":  opts.VectorBoost,
				},
			},
		})
	}
	if len(should) == 0 {
		return nil, fmt.Errorf("search requires query text or a vector")
	}

	query := map[string]any{
		"size": opts.TopK,
		"query": map[string]any{
			"bool": map[string]any{"should": should},
		},
		"_source": map[string]any{"excludes": []string{"embedding"}},
	}
	if opts.MinScore > 0 {
		query["min_score"] = opts.MinScore
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	res, err := opensearchapi.SearchRequest{
		Index: []string{w.index},
		Body:  bytes.NewReader(body),
	}.Do(ctx, w.client)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search: %s", responseError(res))
	}

	var searchResp struct {
		Hits struct {
			Hits []struct {
				Score  float64      `json:"_score"`
				Source corpus.Chunk `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	hits := make([]Hit, 0, len(searchResp.Hits.Hits))
	for _, h := range searchResp.Hits.Hits {
		hits = append(hits, Hit{Chunk: h.Source, Score: h.Score})
	}
	return hits, nil
}
