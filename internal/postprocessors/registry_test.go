package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
	"github.com/custodia-labs/paperqa/internal/postprocessors/chunker"
)

// registryMockProcessor is a simple mock for testing registry functionality.
type registryMockProcessor struct {
	name string
}

func (m *registryMockProcessor) Name() string { return m.name }
func (m *registryMockProcessor) Process(_ context.Context, _ *domain.Record, chunks []domain.Chunk) ([]domain.Chunk, error) {
	return chunks, nil
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry returned nil")
	}
	if len(r.builders) != 0 {
		t.Errorf("expected empty builders, got %d", len(r.builders))
	}
}

func TestRegistry_Build_Success(t *testing.T) {
	r := NewRegistry()
	r.Register("test", func(cfg map[string]any) (driven.PostProcessor, error) {
		name := "default"
		if n, ok := cfg["name"].(string); ok {
			name = n
		}
		return &registryMockProcessor{name: name}, nil
	})

	proc, err := r.Build("test", map[string]any{"name": "custom"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if proc.Name() != "custom" {
		t.Errorf("expected name 'custom', got %q", proc.Name())
	}
}

func TestRegistry_Build_UnknownProcessor(t *testing.T) {
	r := NewRegistry()

	_, err := r.Build("unknown", nil)
	if !errors.Is(err, domain.ErrConfig) {
		t.Errorf("expected ErrConfig for unknown processor, got %v", err)
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	if len(r.Names()) != 0 {
		t.Errorf("expected 0 names, got %d", len(r.Names()))
	}

	builder := func(_ map[string]any) (driven.PostProcessor, error) {
		return &registryMockProcessor{name: "x"}, nil
	}
	r.Register("beta", builder)
	r.Register("alpha", builder)

	names := r.Names()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("expected sorted [alpha beta], got %v", names)
	}
	if !r.Has("alpha") || r.Has("gamma") {
		t.Error("Has reported wrong membership")
	}
}

func TestBuildChunker_WithConfig(t *testing.T) {
	proc, err := DefaultRegistry().Build("chunker", map[string]any{
		"chunk_size": int64(500),
		"overlap":    float64(100),
	})
	if err != nil {
		t.Fatalf("Build chunker failed: %v", err)
	}

	c, ok := proc.(*chunker.Processor)
	if !ok {
		t.Fatalf("expected *chunker.Processor, got %T", proc)
	}
	if c.ChunkSize() != 500 || c.Overlap() != 100 {
		t.Errorf("expected 500/100, got %d/%d", c.ChunkSize(), c.Overlap())
	}
}

func TestBuildChunker_WithNilConfig(t *testing.T) {
	proc, err := DefaultRegistry().Build("chunker", nil)
	if err != nil {
		t.Fatalf("Build chunker with nil config failed: %v", err)
	}

	c := proc.(*chunker.Processor)
	if c.ChunkSize() != chunker.DefaultChunkSize || c.Overlap() != chunker.DefaultChunkOverlap {
		t.Errorf("expected defaults, got %d/%d", c.ChunkSize(), c.Overlap())
	}
}

func TestBuildChunker_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  map[string]any
	}{
		{"overlap not below size", map[string]any{"chunk_size": 100, "overlap": 100}},
		{"zero size", map[string]any{"chunk_size": 0}},
		{"string size", map[string]any{"chunk_size": "big"}},
		{"fractional overlap", map[string]any{"overlap": 1.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DefaultRegistry().Build("chunker", tt.cfg)
			if !errors.Is(err, domain.ErrConfig) {
				t.Errorf("expected ErrConfig, got %v", err)
			}
		})
	}
}

func TestGetIntFromConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      map[string]any
		expected int
		found    bool
		wantErr  bool
	}{
		{"int value", map[string]any{"size": 100}, 100, true, false},
		{"int64 value", map[string]any{"size": int64(200)}, 200, true, false},
		{"float64 value", map[string]any{"size": float64(300)}, 300, true, false},
		{"string value", map[string]any{"size": "400"}, 0, false, true},
		{"missing key", map[string]any{"other": 100}, 0, false, false},
		{"nil config", nil, 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found, err := getIntFromConfig(tt.cfg, "size")
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error state: %v", err)
			}
			if got != tt.expected || found != tt.found {
				t.Errorf("expected (%d, %v), got (%d, %v)", tt.expected, tt.found, got, found)
			}
		})
	}
}

func TestRegistry_BuildPipeline(t *testing.T) {
	r := DefaultRegistry()

	p, err := r.BuildPipeline(domain.ChunkingSettings{ChunkSize: 10, Overlap: 2}.PipelineConfig())
	if err != nil {
		t.Fatalf("BuildPipeline failed: %v", err)
	}

	chunks, err := p.Process(context.Background(), &domain.Record{Text: "short"})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Content != "short" {
		t.Errorf("expected one identical chunk, got %+v", chunks)
	}

	_, err = r.BuildPipeline(domain.ChunkingSettings{ChunkSize: 10, Overlap: 10}.PipelineConfig())
	if !errors.Is(err, domain.ErrConfig) {
		t.Errorf("expected ErrConfig for overlap == size, got %v", err)
	}
}
