package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/biotrust-cli/internal/scrape"
)

const systemPrompt = `You are an analyst covering healthcare and biotech equities.
Summarize press releases for an investor audience. Lead with the single
most market-relevant fact, then list concrete commitments (timelines,
regulatory milestones, enrollment targets) with their stated dates.
Flag hedged language. Keep the summary under 200 words. Plain text only.`

// Summary is the investor-oriented digest of a press release.
type Summary struct {
	URL     string `json:"url"`
	Company string `json:"company"`
	Title   string `json:"title"`
	Text    string `json:"text"`
	Model   string `json:"model"`
}

// Summarizer produces Summary documents via a model client.
type Summarizer struct {
	client Client
	model  string
}

// NewSummarizer creates a Summarizer using the given client and model.
func NewSummarizer(client Client, model string) *Summarizer {
	return &Summarizer{client: client, model: model}
}

// Summarize digests a scraped release. Body text beyond roughly 12k
// characters is truncated; press releases front-load the substance.
func (s *Summarizer) Summarize(ctx context.Context, rel *scrape.Release) (*Summary, error) {
	if strings.TrimSpace(rel.Body) == "" {
		return nil, eris.New("summarize: empty release body")
	}

	body := rel.Body
	if len(body) > 12000 {
		body = body[:12000]
	}

	published := "unknown"
	if rel.Published != nil {
		published = rel.Published.Format("2006-01-02")
	}
	prompt := fmt.Sprintf("Company: %s\nTitle: %s\nPublished: %s\n\n%s",
		rel.Company, rel.Title, published, body)

	temp := 0.2
	resp, err := s.client.CreateMessage(ctx, MessageRequest{
		Model:       s.model,
		MaxTokens:   1024,
		System:      systemPrompt,
		Messages:    []Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "summarize: %s", rel.URL)
	}
	if strings.TrimSpace(resp.Text) == "" {
		return nil, eris.Errorf("summarize: model returned no text for %s", rel.URL)
	}

	zap.L().Info("summarized release",
		zap.String("url", rel.URL),
		zap.String("model", resp.Model),
		zap.Int64("input_tokens", resp.Usage.InputTokens),
		zap.Int64("output_tokens", resp.Usage.OutputTokens),
	)

	return &Summary{
		URL:     rel.URL,
		Company: rel.Company,
		Title:   rel.Title,
		Text:    strings.TrimSpace(resp.Text),
		Model:   resp.Model,
	}, nil
}
