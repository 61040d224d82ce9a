package domain

// RetrievedChunk is a chunk returned for a question.
type RetrievedChunk struct {
	// Chunk is the indexed chunk.
	Chunk Chunk `json:"chunk"`

	// Rank is the 1-based position in the retrieval result.
	Rank int `json:"rank"`

	// Score is the cosine similarity to the question, higher is closer.
	Score float64 `json:"score"`
}
