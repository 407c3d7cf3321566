package embed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/telder/paperidx/internal/corpus"
)

// Orchestrator fans a chunk sequence out to the embedding provider with a
// bounded number of requests in flight.
type Orchestrator struct {
	embedder    Embedder
	concurrency int
	stats       *Stats
	log         *slog.Logger
}

func NewOrchestrator(embedder Embedder, concurrency int, log *slog.Logger) *Orchestrator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Orchestrator{
		embedder:    embedder,
		concurrency: concurrency,
		stats:       NewStats(time.Hour),
		log:         log,
	}
}

// Stats exposes the rolling throughput window for introspection endpoints.
func (o *Orchestrator) Stats() *Stats { return o.stats }

// EmbedAll attaches one embedding per chunk, in place. The call is
// all-or-nothing for the given sequence: on any provider failure the first
// error cancels in-flight siblings, no chunk keeps a partial result and the
// caller must not persist anything. Output order matches input order
// regardless of completion order.
func (o *Orchestrator) EmbedAll(ctx context.Context, chunks []corpus.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	start := time.Now()
	vectors := make([][]float32, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i := range chunks {
		i := i
		g.Go(func() error {
			vec, err := o.embedder.Embed(ctx, chunks[i].TextContent)
			if err != nil {
				return fmt.Errorf("embed chunk %d: %w", chunks[i].SequenceIndex, err)
			}
			if len(vec) != o.embedder.Dimension() {
				return fmt.Errorf("embed chunk %d: got %d-dim vector, expected %d",
					chunks[i].SequenceIndex, len(vec), o.embedder.Dimension())
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Assignment happens only after every request succeeded, so a failed
	// batch leaves the chunks untouched.
	model := o.embedder.Model()
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
		chunks[i].EmbeddingModel = model
	}

	elapsed := time.Since(start)
	o.stats.Record(len(chunks), elapsed)
	o.log.Info("embedded chunks",
		"count", len(chunks),
		"elapsed_ms", elapsed.Milliseconds(),
		"chunks_per_sec", o.stats.rate(len(chunks), elapsed),
	)
	return nil
}
