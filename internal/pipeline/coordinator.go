package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/telder/paperidx/internal/checksum"
	"github.com/telder/paperidx/internal/chunker"
	"github.com/telder/paperidx/internal/corpus"
	"github.com/telder/paperidx/internal/index"
	"github.com/telder/paperidx/internal/loader"
	"github.com/telder/paperidx/internal/splitter"
)

// Embedder fans embedding requests out over a chunk batch. All chunks get
// vectors or none do.
type Embedder interface {
	EmbedAll(ctx context.Context, chunks []corpus.Chunk) error
}

// Store is the index-side surface the coordinator needs.
type Store interface {
	ExistingChecksums(ctx context.Context, checksums []string) (map[string]bool, error)
	BulkWrite(ctx context.Context, chunks []corpus.Chunk) (index.BulkResult, error)
	DeleteByDocumentIDs(ctx context.Context, ids []string) (index.DeleteResult, error)
}

// Coordinator drives a document through the full ingestion pipeline:
// checksum, dedup lookup, load, split, chunk, embed, index. Each stage
// either fully succeeds or fails the document with the stage recorded.
type Coordinator struct {
	loaders  *loader.Registry
	embedder Embedder
	store    Store
	chunkCfg chunker.Config
	log      *slog.Logger
}

func NewCoordinator(loaders *loader.Registry, embedder Embedder, store Store, chunkCfg chunker.Config, log *slog.Logger) *Coordinator {
	return &Coordinator{
		loaders:  loaders,
		embedder: embedder,
		store:    store,
		chunkCfg: chunkCfg,
		log:      log,
	}
}

// Document is one batch ingestion input.
type Document struct {
	Data     []byte
	Filename string
}

// Ingest processes a single document. The job, when non-nil, is updated as
// the document moves through stages. The returned error is non-nil exactly
// when the report status is failed.
func (c *Coordinator) Ingest(ctx context.Context, data []byte, filename string, job *Job) (corpus.IngestReport, error) {
	return c.ingest(ctx, data, filename, job, nil)
}

// IngestBatch processes documents sequentially, resolving all dedup lookups
// in a single store round trip up front. One document's failure never aborts
// its siblings.
func (c *Coordinator) IngestBatch(ctx context.Context, docs []Document) corpus.BatchReport {
	sums := make([]string, len(docs))
	for i, d := range docs {
		sums[i] = checksum.SumBytes(d.Data)
	}

	known, err := c.store.ExistingChecksums(ctx, sums)
	if err != nil {
		c.log.Warn("batch dedup lookup failed, treating all documents as new", "error", err)
		known = map[string]bool{}
	}

	var batch corpus.BatchReport
	for _, d := range docs {
		report, err := c.ingest(ctx, d.Data, d.Filename, nil, known)
		if err != nil {
			c.log.Error("document failed", "filename", d.Filename, "stage", report.Stage, "error", err)
		}
		batch.Add(report)
	}
	return batch
}

// Invalidate removes every chunk belonging to the given documents so they
// can be re-ingested from scratch.
func (c *Coordinator) Invalidate(ctx context.Context, documentIDs []string) (corpus.DeleteReport, error) {
	result, err := c.store.DeleteByDocumentIDs(ctx, documentIDs)
	if err != nil {
		return corpus.DeleteReport{}, err
	}
	c.log.Info("invalidated documents", "documents", len(documentIDs), "chunks_deleted", result.Deleted)
	return corpus.DeleteReport{Deleted: result.Deleted, Failed: result.Failed}, nil
}

// ingest runs the pipeline for one document. A non-nil known map is a
// pre-resolved dedup set covering this document's checksum.
func (c *Coordinator) ingest(ctx context.Context, data []byte, filename string, job *Job, known map[string]bool) (corpus.IngestReport, error) {
	report := corpus.IngestReport{DocumentID: uuid.NewString()}
	if job != nil {
		job.SetDocumentID(report.DocumentID)
	}
	log := c.log.With("document_id", report.DocumentID, "filename", filename)

	fail := func(stage string, err error) (corpus.IngestReport, error) {
		serr := stageErr(report.DocumentID, stage, err)
		report.Status = corpus.StatusFailed
		report.Stage = stage
		report.Error = serr.Error()
		if job != nil {
			job.AddError(serr.Error())
			job.SetStatus(StatusFailed, stage)
		}
		log.Error("ingestion failed", "stage", stage, "error", err)
		return report, serr
	}

	advance(job, StatusChecksumming, StageChecksum)
	sum := checksum.SumBytes(data)
	report.Checksum = sum
	if job != nil {
		job.SetChecksum(sum)
	}

	// A failed lookup degrades to treating the document as new. Re-indexing
	// an existing document is harmless because chunk IDs are deterministic.
	exists := false
	if known != nil {
		exists = known[sum]
	} else {
		existing, err := c.store.ExistingChecksums(ctx, []string{sum})
		if err != nil {
			log.Warn("dedup lookup failed, proceeding as new", "error", err)
		} else {
			exists = existing[sum]
		}
	}
	if exists {
		log.Info("duplicate content, skipping", "checksum", sum)
		report.Status = corpus.StatusSkipped
		if job != nil {
			job.SetStatus(StatusDupSkipped, StageDedup)
		}
		return report, nil
	}

	advance(job, StatusLoading, StageLoad)
	ld, err := c.loaders.ForFile(filename)
	if err != nil {
		return fail(StageLoad, err)
	}
	source, err := ld.Load(bytes.NewReader(data), filename)
	if err != nil {
		return fail(StageLoad, err)
	}
	text, pageStarts := joinPages(source.Pages)
	if strings.TrimSpace(text) == "" {
		return fail(StageLoad, fmt.Errorf("no extractable text"))
	}

	advance(job, StatusSplitting, StageSplit)
	blocks := splitter.Split(text)
	assignPages(blocks, text, pageStarts, source.Pages)

	advance(job, StatusChunking, StageChunk)
	chunks, excluded := chunker.Chunk(blocks, c.chunkCfg)
	report.Chunks = len(chunks)
	report.Excluded = excluded
	if len(chunks) == 0 {
		return fail(StageChunk, fmt.Errorf("no indexable content"))
	}
	for i := range chunks {
		chunks[i].DocumentID = report.DocumentID
		chunks[i].Checksum = sum
		chunks[i].LoaderID = ld.ID()
	}
	if job != nil {
		job.SetTotalChunks(len(chunks))
	}

	advance(job, StatusEmbedding, StageEmbed)
	if err := c.embedder.EmbedAll(ctx, chunks); err != nil {
		return fail(StageEmbed, err)
	}

	advance(job, StatusIndexing, StageIndex)
	result, err := c.store.BulkWrite(ctx, chunks)
	if err != nil {
		return fail(StageIndex, err)
	}
	report.Indexed = result.Indexed
	report.IndexErrs = result.Failed
	if result.Indexed == 0 && result.Failed > 0 {
		return fail(StageIndex, fmt.Errorf("all %d chunks rejected: %s", result.Failed, strings.Join(result.Errors, "; ")))
	}

	report.Status = corpus.StatusIndexed
	if job != nil {
		job.RecordOutcome(report)
		job.SetStatus(StatusCompleted, "done")
		for _, e := range result.Errors {
			job.AddError(e)
		}
	}
	log.Info("document indexed",
		"checksum", sum,
		"chunks", len(chunks),
		"indexed", result.Indexed,
		"index_errors", result.Failed,
		"excluded_tables", excluded)
	return report, nil
}

func advance(job *Job, status JobStatus, stage string) {
	if job != nil {
		job.SetStatus(status, stage)
	}
}

// joinPages flattens page texts into one document string and records the
// byte offset each page starts at.
func joinPages(pages []corpus.Page) (string, []int) {
	var sb strings.Builder
	starts := make([]int, len(pages))
	for i, p := range pages {
		if i > 0 {
			sb.WriteString("\n")
		}
		starts[i] = sb.Len()
		sb.WriteString(p.Text)
	}
	return sb.String(), starts
}

// assignPages locates each block in the joined document text and stamps it
// with the page its first line came from. Blocks keep page 0 when their text
// cannot be located, which only happens for content the splitter rewrote.
func assignPages(blocks []corpus.Block, text string, starts []int, pages []corpus.Page) {
	cursor := 0
	for i := range blocks {
		pos := strings.Index(text[cursor:], blocks[i].Text)
		if pos < 0 {
			continue
		}
		abs := cursor + pos
		blocks[i].Page = pageAt(abs, starts, pages)
		cursor = abs + len(blocks[i].Text)
	}
}

func pageAt(offset int, starts []int, pages []corpus.Page) int {
	page := 0
	for i, s := range starts {
		if offset < s {
			break
		}
		page = pages[i].Number
	}
	return page
}
