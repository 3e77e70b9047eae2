// internal/adapters/output/json.go
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"newsrake/internal/core/domain"
)

// sanitizeTopic convierte un tema de texto libre en un nombre de
// archivo válido. Ejemplo: "quantum computing" -> "quantum_computing"
func sanitizeTopic(topic string) string {
	sanitized := strings.ToLower(strings.TrimSpace(topic))
	sanitized = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		if r == ' ' || r == '.' || r == '/' {
			return '_'
		}
		return -1
	}, sanitized)
	if sanitized == "" {
		sanitized = "report"
	}
	const maxLen = 60
	if len(sanitized) > maxLen {
		sanitized = sanitized[:maxLen]
	}
	return sanitized
}

// WriteJSON exporta el informe a un archivo JSON con timestamp dentro
// de dir. Retorna la ruta escrita.
func WriteJSON(dir string, report *domain.Report) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("newsrake_%s_%s.json", sanitizeTopic(report.Topic), timestamp)
	path := filepath.Join(dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}
	return path, nil
}

// WriteJSONStdout exporta el informe a stdout.
func WriteJSONStdout(report *domain.Report, pretty bool) error {
	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(report)
}
