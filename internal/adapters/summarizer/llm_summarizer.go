// internal/adapters/summarizer/llm_summarizer.go

// Package summarizer implementa el puerto Summarizer: condensa la
// colección final de items en un prólogo más el top-N comentado.
package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"newsrake/internal/adapters/llm"
	"newsrake/internal/core/domain"
	"newsrake/internal/core/ports"
	"newsrake/internal/platform/errors"
	"newsrake/internal/platform/logx"
)

const summaryPrompt = `You are a news editor. You receive a JSON list of news items about a topic.
Write a response as a single JSON object:
{"prologue": "2-3 sentence overview of the news landscape for the topic",
 "top_news": [{"title": "...", "url": "...", "source": "...", "date": "YYYY-MM-DD or empty", "summary": "1-2 sentences", "comment": "why it matters"}]}
Pick the %d most relevant items. Keep titles and urls exactly as given. Respond ONLY with the JSON object.`

// Options del summarizer.
type Options struct {
	// TopN cuántos items entran en el informe final
	TopN int
}

// LLMSummarizer produce el resumen editorial con un modelo.
type LLMSummarizer struct {
	client *llm.Client
	opts   Options
	logger logx.Logger
}

// NewLLMSummarizer crea el summarizer.
func NewLLMSummarizer(client *llm.Client, opts Options, logger logx.Logger) *LLMSummarizer {
	if opts.TopN <= 0 {
		opts.TopN = 10
	}
	return &LLMSummarizer{
		client: client,
		opts:   opts,
		logger: logger.With("component", "summarizer"),
	}
}

// feedItem es el shape compacto que se envía al modelo.
type feedItem struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Source  string `json:"source"`
	Date    string `json:"date,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

type modelSummary struct {
	Prologue string `json:"prologue"`
	TopNews  []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Source  string `json:"source"`
		Date    string `json:"date"`
		Summary string `json:"summary"`
		Comment string `json:"comment"`
	} `json:"top_news"`
}

// Summarize condensa los items. Retorna error si el modelo no responde
// o la respuesta no se puede interpretar; el coordinador decide la
// degradación.
func (s *LLMSummarizer) Summarize(ctx context.Context, topic string, items []*domain.NewsItem) (*ports.Summary, error) {
	if len(items) == 0 {
		return &ports.Summary{Prologue: "No relevant news found for " + topic + "."}, nil
	}

	feed := make([]feedItem, 0, len(items))
	for _, item := range items {
		fi := feedItem{
			Title:   item.Title,
			URL:     item.URL,
			Source:  item.Source,
			Snippet: item.Snippet,
		}
		if !item.PublishedAt.IsZero() {
			fi.Date = item.PublishedAt.Format("2006-01-02")
		}
		feed = append(feed, fi)
	}
	payload, err := json.Marshal(feed)
	if err != nil {
		return nil, errors.Wrap(err, "summarizer: marshal feed")
	}

	s.logger.Info("summarizing collection", "items", len(items), "top_n", s.opts.TopN)

	raw, err := s.client.Chat(ctx, []llm.Message{
		{Role: "system", Content: fmt.Sprintf(summaryPrompt, s.opts.TopN)},
		{Role: "user", Content: fmt.Sprintf("Topic: %s\nItems: %s", topic, payload)},
	})
	if err != nil {
		return nil, err
	}

	var parsed modelSummary
	if err := json.Unmarshal([]byte(llm.ExtractJSON(raw)), &parsed); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidResponse, err.Error())
	}
	if strings.TrimSpace(parsed.Prologue) == "" && len(parsed.TopNews) == 0 {
		return nil, errors.Wrap(errors.ErrInvalidResponse, "empty summary")
	}

	summary := &ports.Summary{Prologue: strings.TrimSpace(parsed.Prologue)}
	for i, entry := range parsed.TopNews {
		if i >= s.opts.TopN {
			break
		}
		if entry.Title == "" || entry.URL == "" {
			continue
		}
		summary.TopNews = append(summary.TopNews, domain.ReportItem{
			Title:   entry.Title,
			URL:     entry.URL,
			Source:  entry.Source,
			Date:    entry.Date,
			Summary: entry.Summary,
			Comment: entry.Comment,
		})
	}
	return summary, nil
}

var _ ports.Summarizer = (*LLMSummarizer)(nil)
