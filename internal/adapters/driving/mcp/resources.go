package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for paperqa resources.
	uriScheme = "paperqa://"

	indexURI = uriScheme + "index"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         indexURI,
		Name:        "index",
		Description: "Statistics of the loaded paper index: files, pages, chunks and models",
		MIMEType:    "application/json",
	}, s.handleIndexResource)
}

// indexInfo is the JSON body of the index resource.
type indexInfo struct {
	State          string `json:"state"`
	Files          int    `json:"files"`
	Records        int    `json:"records"`
	Chunks         int    `json:"chunks"`
	EmbeddingModel string `json:"embedding_model"`
	Dimensions     int    `json:"dimensions"`
	TopK           int    `json:"top_k"`
	LLMModel       string `json:"llm_model"`
	Mode           string `json:"mode"`
}

// handleIndexResource returns the index statistics.
func (s *Server) handleIndexResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats := s.ports.Answerer.Stats()
	info := indexInfo{
		State:          s.ports.Answerer.State().String(),
		Files:          stats.Files,
		Records:        stats.Records,
		Chunks:         stats.Chunks,
		EmbeddingModel: stats.EmbeddingModel,
		Dimensions:     stats.Dimensions,
		TopK:           stats.TopK,
		LLMModel:       stats.LLMModel,
		Mode:           stats.Mode,
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling index info: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
