package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the loaded papers"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Mode       string           `json:"mode"`
	Text       string           `json:"text,omitempty"`
	Bullets    []BulletOutput   `json:"bullets,omitempty"`
	Script     string           `json:"script,omitempty"`
	Evidence   []string         `json:"evidence,omitempty"`
	Unverified []string         `json:"unverified_evidence,omitempty"`
	Sources    []RetrieveOutput `json:"sources"`
}

// BulletOutput is one slide bullet with its citation.
type BulletOutput struct {
	Content  string `json:"content"`
	Citation string `json:"citation"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Question string `json:"question" jsonschema:"the question to find evidence for"`
}

// RetrieveOutput represents a single retrieved chunk.
type RetrieveOutput struct {
	Rank    int     `json:"rank"`
	Source  string  `json:"source"`
	Page    string  `json:"page"`
	Score   float64 `json:"score"`
	Content string  `json:"content"`
}

// RetrieveResult is the output schema for the retrieve tool.
type RetrieveResult struct {
	Chunks  []RetrieveOutput `json:"chunks"`
	Context string           `json:"context"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the loaded papers with cited slide bullets, a script and verbatim evidence",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Return the paper passages most similar to a question, without generating an answer",
	}, s.handleRetrieve)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	answer, err := s.ports.Answerer.Ask(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, toolError(err)
	}

	output := AskOutput{
		Mode:    answer.Mode.String(),
		Text:    answer.Text,
		Sources: chunkOutputs(answer.Sources),
	}
	if st := answer.Structured; st != nil {
		output.Bullets = make([]BulletOutput, len(st.Bullets))
		for i, b := range st.Bullets {
			output.Bullets[i] = BulletOutput{
				Content:  b.Content,
				Citation: domain.Provenance{Source: b.Source, Page: domain.PageNumber(b.Page)}.Citation(),
			}
		}
		output.Script = st.Script
		output.Evidence = st.Evidence
	}
	if answer.Evidence != nil {
		output.Unverified = answer.Evidence.Unverified
	}

	return nil, output, nil
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chunks, err := s.ports.Answerer.Retrieve(ctx, input.Question)
	if err != nil {
		return nil, RetrieveResult{}, toolError(err)
	}

	return nil, RetrieveResult{
		Chunks:  chunkOutputs(chunks),
		Context: s.ports.Answerer.FormatContext(chunks),
	}, nil
}

func chunkOutputs(chunks []domain.RetrievedChunk) []RetrieveOutput {
	out := make([]RetrieveOutput, len(chunks))
	for i, rc := range chunks {
		out[i] = RetrieveOutput{
			Rank:    rc.Rank,
			Source:  rc.Chunk.Provenance.SourceName(),
			Page:    rc.Chunk.Provenance.Page.String(),
			Score:   rc.Score,
			Content: rc.Chunk.Content,
		}
	}
	return out
}

// toolError prefixes err with its kind so clients can tell a bad
// question from an unavailable service.
func toolError(err error) error {
	return fmt.Errorf("%s: %w", domain.ErrorKind(err), err)
}
