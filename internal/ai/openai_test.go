package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boqview/internal/model"
)

func rows() []model.WorkingRow {
	return []model.WorkingRow{
		{Row: model.Row{WBS1: "Arch", Description: "Brick wall", Unit: "m2", Qty: 5, Amount: 100}, ID: "a"},
		{Row: model.Row{WBS1: "Struct", Description: "Concrete", Unit: "", Qty: 1, Amount: 50}, ID: "b"},
	}
}

func TestSummarizeDisabled(t *testing.T) {
	c := NewOpenAIClient("", "", "gpt-4o-mini", time.Second)
	_, err := c.Summarize(context.Background(), model.Query{}, rows())
	assert.True(t, eris.Is(err, ErrDisabled))

	var nilClient *OpenAIClient
	assert.False(t, nilClient.Enabled())
}

func TestSummarize(t *testing.T) {
	var prompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) || len(req.Messages) == 0 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		assert.Equal(t, "test-model", req.Model)
		prompt = req.Messages[len(req.Messages)-1].Content

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  Mostly walls.  "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("key", srv.URL+"/v1", "test-model", 5*time.Second)
	out, err := c.Summarize(context.Background(), model.Query{Text: "wall", Mode: model.MatchAll}, rows())
	require.NoError(t, err)
	assert.Equal(t, "Mostly walls.", out)
	assert.Contains(t, prompt, `Search: "wall" (match ALL)`)
	assert.Contains(t, prompt, "Total amount: 150.00")
	assert.Contains(t, prompt, "- Arch: 100.00 (1 lines)")
	assert.Contains(t, prompt, "Struct||||Concrete|-|1|50")
}

func TestSummarizeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom","type":"server_error"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewOpenAIClient("key", srv.URL+"/v1", "m", 5*time.Second)
	_, err := c.Summarize(context.Background(), model.Query{}, rows())
	assert.Error(t, err)
}

func TestBuildSummaryPromptCapsSample(t *testing.T) {
	var many []model.WorkingRow
	for i := 0; i < 100; i++ {
		many = append(many, rows()[0])
	}
	p := buildSummaryPrompt(model.Query{}, many)
	assert.Contains(t, p, "Sample lines (40 of 100)")
	assert.NotContains(t, p, "Search:")
}
