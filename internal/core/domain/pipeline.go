package domain

// PipelineState is the lifecycle state of a question-answering pipeline.
type PipelineState int

// Pipeline states. Construction is a one-way transition from Unbuilt to Ready.
const (
	PipelineUnbuilt PipelineState = iota
	PipelineReady
)

// String returns the state name.
func (s PipelineState) String() string {
	switch s {
	case PipelineUnbuilt:
		return "unbuilt"
	case PipelineReady:
		return "ready"
	default:
		return unknownDescription
	}
}

// IndexStats describes a built pipeline.
type IndexStats struct {
	Files          int    `json:"files"`
	Records        int    `json:"records"`
	Chunks         int    `json:"chunks"`
	EmbeddingModel string `json:"embedding_model"`
	Dimensions     int    `json:"dimensions"`
	TopK           int    `json:"top_k"`
	LLMModel       string `json:"llm_model"`
	Mode           string `json:"mode"`
}

// FileReport summarises one loaded file.
type FileReport struct {
	Source  string `json:"source"`
	Records int    `json:"records"`
	Chunks  int    `json:"chunks"`
	// MaxChunkLen is the longest chunk in characters.
	MaxChunkLen int `json:"max_chunk_len"`
}

// CorpusReport summarises load and split without any indexing.
type CorpusReport struct {
	Dir       string       `json:"dir"`
	Files     []FileReport `json:"files"`
	Records   int          `json:"records"`
	Chunks    int          `json:"chunks"`
	ChunkSize int          `json:"chunk_size"`
	Overlap   int          `json:"overlap"`
}
