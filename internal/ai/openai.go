package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	altai "github.com/sashabaranov/go-openai"

	"boqview/internal/engine"
	"boqview/internal/model"
)

var ErrDisabled = eris.New("openai disabled")

// Thin wrapper around go-openai; one client per configuration.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	model   string
	timeout time.Duration
}

func NewOpenAIClient(apiKey, baseURL, model string, timeout time.Duration) *OpenAIClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIClient{apiKey: apiKey, baseURL: baseURL, model: model, timeout: timeout}
}

// Enabled reports whether requests will be attempted.
func (c *OpenAIClient) Enabled() bool { return c != nil && c.apiKey != "" }

// maxSampleRows bounds how many lines go into the prompt.
const maxSampleRows = 40

// Summarize asks the model for a short plain-text summary of a filtered view.
func (c *OpenAIClient) Summarize(ctx context.Context, q model.Query, rows []model.WorkingRow) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	ctx2, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	out, err := c.call(ctx2, buildSummaryPrompt(q, rows))
	if err != nil {
		return "", eris.Wrap(err, "summarize")
	}
	return strings.TrimSpace(out), nil
}

func (c *OpenAIClient) call(ctx context.Context, prompt string) (string, error) {
	cfg := altai.DefaultConfig(c.apiKey)
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	cli := altai.NewClientWithConfig(cfg)
	resp, err := cli.CreateChatCompletion(ctx, altai.ChatCompletionRequest{
		Model: c.model,
		Messages: []altai.ChatCompletionMessage{
			{Role: altai.ChatMessageRoleSystem, Content: "You review construction bills of quantities. Answer in plain text, at most 8 short lines. No markdown tables, no code fences."},
			{Role: altai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", eris.New("empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func buildSummaryPrompt(q model.Query, rows []model.WorkingRow) string {
	tot := engine.Aggregate(rows)
	var b strings.Builder
	b.WriteString("Summarize this filtered BOQ view: where the money goes, unusual lines, and anything worth checking.\n")
	if !q.Empty() {
		fmt.Fprintf(&b, "Search: %q (match %s)", q.Text, q.Mode)
		if q.Where != "" {
			fmt.Fprintf(&b, " where %s", q.Where)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Rows: %d\nTotal amount: %.2f\n", tot.Count, tot.Amount)
	b.WriteString("Quantity by unit:")
	for _, u := range tot.QtyByUnit {
		fmt.Fprintf(&b, " %s=%.2f", u.Unit, u.Qty)
	}
	b.WriteByte('\n')
	b.WriteString("Amount by WBS-1:\n")
	for _, bk := range engine.AmountBy(rows, model.DimWBS1) {
		fmt.Fprintf(&b, "- %s: %.2f (%d lines)\n", bk.Label, bk.Amount, bk.Count)
	}
	n := len(rows)
	if n > maxSampleRows {
		n = maxSampleRows
	}
	fmt.Fprintf(&b, "Sample lines (%d of %d) as wbs1|wbs2|wbs3|wbs4|description|unit|qty|amount:\n", n, len(rows))
	for _, r := range rows[:n] {
		fmt.Fprintf(&b, "%s|%s|%s|%s|%s|%s|%g|%g\n", r.WBS1, r.WBS2, r.WBS3, r.WBS4, r.Description, model.NormalizeUnit(r.Unit), r.Qty, r.Amount)
	}
	return b.String()
}
