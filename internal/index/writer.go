package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	opensearch "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/telder/paperidx/internal/corpus"
)

// Config connects the writer to an OpenSearch cluster.
type Config struct {
	URL      string
	Username string
	Password string
	Index    string

	// Dimension of the embedding vector field. Writes with a different
	// vector length fail the store's mapping validation.
	Dimension int

	// Timeout applies per store round trip.
	Timeout time.Duration
}

// Writer performs all index-side operations of the ingestion pipeline:
// schema management, deduplicated bulk writes, existence lookups and
// deletion by document identity.
type Writer struct {
	client    *opensearch.Client
	index     string
	dimension int
	timeout   time.Duration
	log       *slog.Logger
}

func NewWriter(cfg Config, log *slog.Logger) (*Writer, error) {
	if cfg.Index == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("vector dimension must be positive")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("opensearch client: %w", err)
	}

	return &Writer{
		client:    client,
		index:     cfg.Index,
		dimension: cfg.Dimension,
		timeout:   cfg.Timeout,
		log:       log,
	}, nil
}

// EnsureIndex creates the chunk index with its mapping if it does not exist.
// Safe to call on every startup.
func (w *Writer) EnsureIndex(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	res, err := opensearchapi.IndicesExistsRequest{Index: []string{w.index}}.Do(ctx, w.client)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	mapping := map[string]any{
		"settings": map[string]any{
			"index": map[string]any{"knn": true},
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				"document_id":       map[string]any{"type": "keyword"},
				"document_checksum": map[string]any{"type": "keyword"},
				"kind":              map[string]any{"type": "keyword"},
				"page_number":       map[string]any{"type": "integer"},
				"sequence_index":    map[string]any{"type": "integer"},
				"title":             map[string]any{"type": "keyword"},
				"text_content":      map[string]any{"type": "text"},
				"header_path":       map[string]any{"type": "keyword"},
				"embedding_model":   map[string]any{"type": "keyword"},
				"loader_id":         map[string]any{"type": "keyword"},
				"embedding": map[string]any{
					"type":      "knn_vector",
					"dimension": w.dimension,
				},
			},
		},
	}
	body, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("marshal mapping: %w", err)
	}

	res, err = opensearchapi.IndicesCreateRequest{
		Index: w.index,
		Body:  bytes.NewReader(body),
	}.Do(ctx, w.client)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index: %s", responseError(res))
	}

	w.log.Info("created index", "index", w.index, "dimension", w.dimension)
	return nil
}

// BulkResult reports how a batch write fared. Indexed+Failed always equals
// the number of chunks attempted; partial failures are never swallowed.
type BulkResult struct {
	Indexed int
	Failed  int
	Errors  []string
}

// BulkWrite indexes all chunks in one round trip. Document IDs are derived
// from checksum and sequence index, so replaying the same chunks overwrites
// rather than duplicates.
func (w *Writer) BulkWrite(ctx context.Context, chunks []corpus.Chunk) (BulkResult, error) {
	if len(chunks) == 0 {
		return BulkResult{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	var buf bytes.Buffer
	for _, c := range chunks {
		fmt.Fprintf(&buf, `{"index":{"_id":"%s:%d"}}`+"\n", c.Checksum, c.SequenceIndex)
		line, err := json.Marshal(c)
		if err != nil {
			return BulkResult{}, fmt.Errorf("marshal chunk %d: %w", c.SequenceIndex, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	res, err := opensearchapi.BulkRequest{
		Index:   w.index,
		Body:    &buf,
		Refresh: "true",
	}.Do(ctx, w.client)
	if err != nil {
		return BulkResult{}, fmt.Errorf("bulk write: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return BulkResult{}, fmt.Errorf("bulk write: %s", responseError(res))
	}

	var bulkResp struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int `json:"status"`
			Error  *struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkResp); err != nil {
		return BulkResult{}, fmt.Errorf("decode bulk response: %w", err)
	}

	result := BulkResult{}
	for _, item := range bulkResp.Items {
		for _, status := range item {
			if status.Status >= 200 && status.Status < 300 {
				result.Indexed++
			} else {
				result.Failed++
				if status.Error != nil && len(result.Errors) < 5 {
					result.Errors = append(result.Errors,
						fmt.Sprintf("%s: %s", status.Error.Type, status.Error.Reason))
				}
			}
		}
	}
	return result, nil
}

// ExistingChecksums returns which of the candidate checksums are already
// present, in a single round trip. Callers use this to skip unchanged
// documents before any parsing or embedding work.
func (w *Writer) ExistingChecksums(ctx context.Context, checksums []string) (map[string]bool, error) {
	if len(checksums) == 0 {
		return map[string]bool{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	query := map[string]any{
		"size": 0,
		"query": map[string]any{
			"terms": map[string]any{"document_checksum": checksums},
		},
		"aggs": map[string]any{
			"checksums": map[string]any{
				"terms": map[string]any{
					"field": "document_checksum",
					"size":  len(checksums),
				},
			},
		},
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
		return nil, fmt.Errorf("existence lookup: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("existence lookup: %s", responseError(res))
	}

	var searchResp struct {
		Aggregations struct {
			Checksums struct {
				Buckets []struct {
					Key string `json:"key"`
				} `json:"buckets"`
			} `json:"checksums"`
		} `json:"aggregations"`
	}
	if err := json.NewDecoder(res.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decode existence response: %w", err)
	}

	existing := make(map[string]bool, len(searchResp.Aggregations.Checksums.Buckets))
	for _, b := range searchResp.Aggregations.Checksums.Buckets {
		existing[b.Key] = true
	}
	return existing, nil
}

// DeleteResult reports the outcome of a delete-by-identity call.
type DeleteResult struct {
	Deleted int
	Failed  int
}

// DeleteByDocumentIDs removes every chunk belonging to the given documents.
// The deletion refreshes the index before returning, so a caller that
// deletes and immediately re-checks sees the store without the chunks.
func (w *Writer) DeleteByDocumentIDs(ctx context.Context, ids []string) (DeleteResult, error) {
	if len(ids) == 0 {
		return DeleteResult{}, nil
	}
	return w.deleteByQuery(ctx, map[string]any{
		"query": map[string]any{
			"terms": map[string]any{"document_id": ids},
		},
	})
}

// DeleteAll removes every chunk in the index. Full reset only.
func (w *Writer) DeleteAll(ctx context.Context) error {
	_, err := w.deleteByQuery(ctx, map[string]any{
		"query": map[string]any{"match_all": map[string]any{}},
	})
	return err
}

func (w *Writer) deleteByQuery(ctx context.Context, query map[string]any) (DeleteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	body, err := json.Marshal(query)
	if err != nil {
		return DeleteResult{}, fmt.Errorf("marshal query: %w", err)
	}

	refresh := true
	res, err := opensearchapi.DeleteByQueryRequest{
		Index:   []string{w.index},
		Body:    bytes.NewReader(body),
		Refresh: &refresh,
	}.Do(ctx, w.client)
	if err != nil {
		return DeleteResult{}, fmt.Errorf("delete by query: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return DeleteResult{}, fmt.Errorf("delete by query: %s", responseError(res))
	}

	var deleteResp struct {
		Deleted  int   `json:"deleted"`
		Failures []any `json:"failures"`
	}
	if err := json.NewDecoder(res.Body).Decode(&deleteResp); err != nil {
		return DeleteResult{}, fmt.Errorf("decode delete response: %w", err)
	}
	return DeleteResult{
		Deleted: deleteResp.Deleted,
		Failed:  len(deleteResp.Failures),
	}, nil
}

// Stats returns the chunk count and store size in bytes. Best effort.
func (w *Writer) Stats(ctx context.Context) (int64, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	res, err := opensearchapi.CountRequest{Index: []string{w.index}}.Do(ctx, w.client)
	if err != nil {
		return 0, 0, fmt.Errorf("count: %w", err)
	}
	var countResp struct {
		Count int64 `json:"count"`
	}
	err = json.NewDecoder(res.Body).Decode(&countResp)
	res.Body.Close()
	if err != nil {
		return 0, 0, fmt.Errorf("decode count: %w", err)
	}

	res, err = opensearchapi.IndicesStatsRequest{
		Index:  []string{w.index},
		Metric: []string{"store"},
	}.Do(ctx, w.client)
	if err != nil {
		return countResp.Count, 0, fmt.Errorf("indices stats: %w", err)
	}
	defer res.Body.Close()
	var statsResp struct {
		All struct {
			Total struct {
				Store struct {
					SizeInBytes int64 `json:"size_in_bytes"`
				} `json:"store"`
			} `json:"total"`
		} `json:"_all"`
	}
	if err := json.NewDecoder(res.Body).Decode(&statsResp); err != nil {
		return countResp.Count, 0, fmt.Errorf("decode stats: %w", err)
	}

	return countResp.Count, statsResp.All.Total.Store.SizeInBytes, nil
}

// Sample returns up to n chunks without their embeddings, for spot checks.
func (w *Writer) Sample(ctx context.Context, n int) ([]corpus.Chunk, error) {
	if n <= 0 {
		n = 5
	}
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	query := map[string]any{
		"size":    n,
		"query":   map[string]any{"match_all": map[string]any{}},
		"_source": map[string]any{"excludes": []string{"embedding"}},
	}
	body, _ := json.Marshal(query)

	res, err := opensearchapi.SearchRequest{
		Index: []string{w.index},
		Body:  bytes.NewReader(body),
	}.Do(ctx, w.client)
	if err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("sample: %s", responseError(res))
	}

	return decodeHitChunks(res.Body)
}

func decodeHitChunks(r io.Reader) ([]corpus.Chunk, error) {
	var searchResp struct {
		Hits struct {
			Hits []struct {
				Score  float64      `json:"_score"`
				Source corpus.Chunk `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	chunks := make([]corpus.Chunk, 0, len(searchResp.Hits.Hits))
	for _, h := range searchResp.Hits.Hits {
		chunks = append(chunks, h.Source)
	}
	return chunks, nil
}

// responseError condenses an error response body into one line.
func responseError(res *opensearchapi.Response) string {
	var buf strings.Builder
	buf.WriteString(res.Status())
	if res.Body != nil {
		body, err := io.ReadAll(io.LimitReader(res.Body, 4096))
		if err == nil && len(body) > 0 {
			buf.WriteString(": ")
			buf.Write(bytes.TrimSpace(body))
		}
	}
	return buf.String()
}
