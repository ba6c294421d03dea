package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

func newTestModel(t *testing.T, handler http.HandlerFunc) *Model {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewModel(Config{APIKey: "test-key", BaseURL: srv.URL + "/", Model: "test-model"})
}

func TestGenerateTextSendsChatCompletionPayload(t *testing.T) {
	var got map[string]any
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Olá!"}}]}`))
	})

	req := &model.LLMRequest{
		Contents: []*genai.Content{
			{Role: RoleSystem, Parts: []*genai.Part{genai.NewPartFromText("lead info")}},
			{Role: genai.RoleUser, Parts: []*genai.Part{genai.NewPartFromText("oi")}},
			{Role: genai.RoleModel, Parts: []*genai.Part{genai.NewPartFromText("olá")}},
			{Role: genai.RoleUser, Parts: []*genai.Part{genai.NewPartFromText("quero orçamento")}},
		},
		Config: &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{genai.NewPartFromText("persona")}},
			Temperature:       genai.Ptr[float32](0.8),
			MaxOutputTokens:   500,
		},
	}

	text, err := GenerateText(context.Background(), m, req)
	require.NoError(t, err)
	assert.Equal(t, "Olá!", text)

	assert.Equal(t, "test-model", got["model"])
	assert.InDelta(t, 0.8, got["temperature"], 0.0001)
	assert.EqualValues(t, 500, got["max_completion_tokens"])

	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 5)
	roles := make([]string, 0, len(msgs))
	for _, raw := range msgs {
		roles = append(roles, raw.(map[string]any)["role"].(string))
	}
	assert.Equal(t, []string{"system", "system", "user", "assistant", "user"}, roles)
	assert.Equal(t, "persona", msgs[0].(map[string]any)["content"])
}

func TestGenerateTextStatusErrorIsTyped(t *testing.T) {
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("upstream exploded"))
	})

	_, err := GenerateText(context.Background(), m, &model.LLMRequest{})
	require.Error(t, err)

	var ce *CallError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindStatus, ce.Kind)
	assert.Equal(t, http.StatusInternalServerError, ce.StatusCode)
	assert.Equal(t, "upstream exploded", ce.Body)
}

func TestGenerateTextDecodeAndEmptyErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		kind ErrorKind
	}{
		{name: "not json", body: "<html>", kind: KindDecode},
		{name: "no choices", body: `{"choices":[]}`, kind: KindEmpty},
		{name: "blank content", body: `{"choices":[{"message":{"content":"  "}}]}`, kind: KindEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := GenerateText(context.Background(), m, &model.LLMRequest{})
			assert.True(t, IsKind(err, tt.kind), "got %v", err)
		})
	}
}

func TestGenerateTextTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	m := NewModel(Config{APIKey: "k", BaseURL: url})
	_, err := GenerateText(context.Background(), m, &model.LLMRequest{})
	assert.True(t, IsKind(err, KindTransport), "got %v", err)
}

func TestNewModelDefaults(t *testing.T) {
	m := NewModel(Config{})
	assert.Equal(t, defaultModel, m.Name())
	assert.Equal(t, defaultBaseURL, m.config.BaseURL)
}
