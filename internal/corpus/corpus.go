package corpus

// Kind classifies a piece of document content as tabular or prose.
type Kind string

const (
	KindText  Kind = "text"
	KindTable Kind = "table"
)

// Block is an intermediate typed segment of a document, produced by the
// splitter and consumed by the chunker. Blocks are never persisted.
type Block struct {
	Kind  Kind
	Text  string // Raw text, newline-joined lines as they appeared in the source.
	Title string // Table title line for TABLE blocks, empty otherwise.
	Page  int    // Source page the block starts on (0 if unknown).
}

// Chunk is the unit of retrieval persisted to the search index.
// Field names form the wire contract with the index mapping.
type Chunk struct {
	DocumentID     string    `json:"document_id"`
	Checksum       string    `json:"document_checksum"`
	Kind           Kind      `json:"kind"`
	PageNumber     int       `json:"page_number,omitempty"`
	SequenceIndex  int       `json:"sequence_index"`
	Title          string    `json:"title,omitempty"`
	TextContent    string    `json:"text_content"`
	HeaderPath     []string  `json:"header_path,omitempty"`
	EmbeddingModel string    `json:"embedding_model,omitempty"`
	Embedding      []float32 `json:"embedding,omitempty"`
	LoaderID       string    `json:"loader_id,omitempty"`
}

// Page is one page of extracted document text.
type Page struct {
	Number     int
	Text       string
	ImageCount int
}

// Source is the normalized output of a document loader.
type Source struct {
	Title string
	Pages []Page
}
