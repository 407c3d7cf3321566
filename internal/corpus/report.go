package corpus

// Document statuses reported per ingestion attempt.
const (
	StatusIndexed = "indexed"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// IngestReport describes the outcome of ingesting a single document.
type IngestReport struct {
	DocumentID string `json:"document_id"`
	Checksum   string `json:"checksum,omitempty"`
	Status     string `json:"status"`
	Stage      string `json:"stage,omitempty"` // Stage the document failed at, if any.
	Chunks     int    `json:"chunks"`
	Indexed    int    `json:"indexed"`
	IndexErrs  int    `json:"index_errors"`
	Excluded   int    `json:"excluded_tables,omitempty"`
	Error      string `json:"error,omitempty"`
}

// BatchReport aggregates per-document outcomes for one ingestion run.
// One document's failure never aborts its siblings, so a batch report
// can carry a mix of indexed, skipped and failed entries.
type BatchReport struct {
	Succeeded int            `json:"succeeded"`
	Skipped   int            `json:"skipped"`
	Failed    int            `json:"failed"`
	Documents []IngestReport `json:"documents"`
}

// Add folds a document report into the batch totals.
func (b *BatchReport) Add(r IngestReport) {
	b.Documents = append(b.Documents, r)
	switch r.Status {
	case StatusSkipped:
		b.Skipped++
	case StatusFailed:
		b.Failed++
	default:
		b.Succeeded++
	}
}

// DeleteReport describes the outcome of an invalidation call.
type DeleteReport struct {
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}
