// internal/adapters/output/raw_items.go
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"newsrake/internal/core/domain"
	"newsrake/internal/platform/logx"
)

// RawWriter vuelca la colección compactada de items a un archivo
// aparte del informe, con fingerprints y tiers, para inspección y
// reprocesado. Formato: newsrake_{topic}_{timestamp}_items.json
type RawWriter struct {
	baseDir   string
	runID     string
	topic     string
	timestamp string
	logger    logx.Logger
}

// NewRawWriter crea el writer de colección cruda.
func NewRawWriter(baseDir, runID, topic string, logger logx.Logger) *RawWriter {
	return &RawWriter{
		baseDir:   baseDir,
		runID:     runID,
		topic:     topic,
		timestamp: time.Now().Format("20060102_150405"),
		logger:    logger.With("component", "raw-writer"),
	}
}

// rawItem es la proyección JSON de un NewsItem.
type rawItem struct {
	Source      string `json:"source"`
	Tier        string `json:"tier"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Published   string `json:"published,omitempty"`
	Snippet     string `json:"snippet,omitempty"`
	Fingerprint string `json:"fingerprint"`
}

// rawCollection es el documento completo.
type rawCollection struct {
	RunID     string    `json:"run_id"`
	Topic     string    `json:"topic"`
	WrittenAt time.Time `json:"written_at"`
	ItemCount int       `json:"item_count"`
	Items     []rawItem `json:"items"`
}

// Write vuelca los items a disco y retorna la ruta escrita.
func (w *RawWriter) Write(items []*domain.NewsItem) (string, error) {
	if err := os.MkdirAll(w.baseDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(w.baseDir, w.Filename())
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create items file: %w", err)
	}
	defer f.Close()

	doc := rawCollection{
		RunID:     w.runID,
		Topic:     w.topic,
		WrittenAt: time.Now(),
		ItemCount: len(items),
		Items:     make([]rawItem, 0, len(items)),
	}
	for _, item := range items {
		ri := rawItem{
			Source:      item.Source,
			Tier:        string(item.Tier),
			Title:       item.Title,
			URL:         item.URL,
			Snippet:     item.Snippet,
			Fingerprint: item.Fingerprint,
		}
		if !item.PublishedAt.IsZero() {
			ri.Published = item.PublishedAt.Format(time.RFC3339)
		}
		doc.Items = append(doc.Items, ri)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("failed to encode items JSON: %w", err)
	}

	w.logger.Debug("raw collection written", "items", len(items), "file", path)
	return path, nil
}

// Filename genera el nombre del archivo de items.
func (w *RawWriter) Filename() string {
	return fmt.Sprintf("newsrake_%s_%s_items.json", sanitizeTopic(w.topic), w.timestamp)
}
