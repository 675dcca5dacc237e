package summarize

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/biotrust-cli/internal/scrape"
)

type fakeClient struct {
	lastReq MessageRequest
	resp    *MessageResponse
	err     error
}

func (f *fakeClient) CreateMessage(_ context.Context, req MessageRequest) (*MessageResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

func testRelease() *scrape.Release {
	published := time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC)
	return &scrape.Release{
		URL:       "https://example.com/news/bla",
		Company:   "Biotech Corp",
		Title:     "Biotech Corp Announces BLA Submission",
		Published: &published,
		Body:      "Biotech Corp today announced the submission of a BLA to the FDA.",
	}
}

func TestSummarize(t *testing.T) {
	fake := &fakeClient{resp: &MessageResponse{
		Model: "claude-sonnet-4-5-20250929",
		Text:  "  Biotech Corp submitted its BLA; decision expected within 12 months.  ",
		Usage: TokenUsage{InputTokens: 400, OutputTokens: 60},
	}}
	s := NewSummarizer(fake, "claude-sonnet-4-5-20250929")

	sum, err := s.Summarize(context.Background(), testRelease())
	require.NoError(t, err)

	assert.Equal(t, "Biotech Corp submitted its BLA; decision expected within 12 months.", sum.Text)
	assert.Equal(t, "Biotech Corp", sum.Company)
	assert.Equal(t, "https://example.com/news/bla", sum.URL)

	assert.Equal(t, "claude-sonnet-4-5-20250929", fake.lastReq.Model)
	require.Len(t, fake.lastReq.Messages, 1)
	assert.Contains(t, fake.lastReq.Messages[0].Content, "Company: Biotech Corp")
	assert.Contains(t, fake.lastReq.Messages[0].Content, "Published: 2024-07-15")
	require.NotNil(t, fake.lastReq.Temperature)
	assert.InDelta(t, 0.2, *fake.lastReq.Temperature, 1e-9)
}

func TestSummarize_TruncatesLongBody(t *testing.T) {
	fake := &fakeClient{resp: &MessageResponse{Text: "ok"}}
	s := NewSummarizer(fake, "m")

	rel := testRelease()
	rel.Body = strings.Repeat("x", 20000)
	_, err := s.Summarize(context.Background(), rel)
	require.NoError(t, err)
	assert.Less(t, len(fake.lastReq.Messages[0].Content), 13000)
}

func TestSummarize_EmptyBody(t *testing.T) {
	s := NewSummarizer(&fakeClient{}, "m")
	rel := testRelease()
	rel.Body = "   "
	_, err := s.Summarize(context.Background(), rel)
	assert.Error(t, err)
}

func TestSummarize_ClientError(t *testing.T) {
	fake := &fakeClient{err: eris.New("boom")}
	s := NewSummarizer(fake, "m")
	_, err := s.Summarize(context.Background(), testRelease())
	assert.Error(t, err)
}

func TestSummarize_EmptyModelText(t *testing.T) {
	fake := &fakeClient{resp: &MessageResponse{Text: "   "}}
	s := NewSummarizer(fake, "m")
	_, err := s.Summarize(context.Background(), testRelease())
	assert.Error(t, err)
}
