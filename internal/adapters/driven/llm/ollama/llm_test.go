package ollama

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

type chatBody struct {
	Model    string          `json:"model"`
	Stream   *bool           `json:"stream"`
	Format   json.RawMessage `json:"format"`
	Options  map[string]any  `json:"options"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewLLMService(LLMConfig{BaseURL: srv.URL})
	require.NoError(t, err)
	return svc
}

func writeReply(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"model":   "llama3.2",
		"message": map[string]string{"role": "assistant", "content": content},
		"done":    true,
	})
}

func TestNewLLMService(t *testing.T) {
	svc, err := NewLLMService(LLMConfig{})
	require.NoError(t, err)
	assert.Equal(t, DefaultLLMModel, svc.ModelName())
	assert.NoError(t, svc.Close())

	_, err = NewLLMService(LLMConfig{BaseURL: "localhost"})
	assert.ErrorContains(t, err, "invalid base URL")
}

func TestChat(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var body chatBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "llama3.2", body.Model)
		require.NotNil(t, body.Stream)
		assert.False(t, *body.Stream)
		assert.EqualValues(t, 128, body.Options["num_predict"])
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "question", body.Messages[1].Content)

		writeReply(w, "[PPT]\n- one")
	})

	reply, err := svc.Chat(t.Context(), []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: "rules"},
		{Role: driven.RoleUser, Content: "question"},
	}, driven.ChatOptions{MaxTokens: 128})

	require.NoError(t, err)
	assert.Equal(t, "[PPT]\n- one", reply)
}

func TestGenerateStructured_SendsSchemaAsFormat(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var body chatBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.JSONEq(t, `{"type":"object","required":["speaker_notes"]}`, string(body.Format))

		writeReply(w, `{"speaker_notes":"hi"}`)
	})

	reply, err := svc.GenerateStructured(t.Context(),
		[]driven.ChatMessage{{Role: driven.RoleUser, Content: "q"}},
		driven.OutputSchema{
			Name: "structured_answer",
			Schema: map[string]any{
				"type":     "object",
				"required": []string{"speaker_notes"},
			},
		},
		driven.ChatOptions{Temperature: floatPtr(0.1)},
	)
	require.NoError(t, err)
	assert.JSONEq(t, `{"speaker_notes":"hi"}`, reply)
}

func floatPtr(v float64) *float64 { return &v }

func TestChat_Temperature(t *testing.T) {
	tests := []struct {
		name        string
		temperature *float64
		want        any
	}{
		{"zero is sent", floatPtr(0), float64(0)},
		{"unset is omitted", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				var body chatBody
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

				got, ok := body.Options["temperature"]
				assert.Equal(t, tt.want != nil, ok)
				assert.Equal(t, tt.want, got)

				writeReply(w, "ok")
			})

			_, err := svc.Chat(t.Context(),
				[]driven.ChatMessage{{Role: driven.RoleUser, Content: "q"}},
				driven.ChatOptions{Temperature: tt.temperature})
			require.NoError(t, err)
		})
	}
}

func TestChat_ServerError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model not found"}`))
	})

	_, err := svc.Chat(t.Context(), nil, driven.ChatOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestPing(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"models":[]}`))
	})
	assert.NoError(t, svc.Ping(t.Context()))
}
