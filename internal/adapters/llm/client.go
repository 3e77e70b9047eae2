// internal/adapters/llm/client.go

// Package llm implementa el cliente de chat-completions compatible con
// OpenAI que usan el planner y el summarizer. No conoce el dominio:
// entrega texto y extrae JSON de respuestas con fences markdown.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"newsrake/internal/platform/errors"
	"newsrake/internal/platform/httpclient"
	"newsrake/internal/platform/logx"
)

// Config configura el endpoint del modelo.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
}

// Client habla con un endpoint de chat completions.
type Client struct {
	http   *httpclient.Client
	config Config
	logger logx.Logger
}

// New crea el cliente. Requiere API key y modelo.
func New(http *httpclient.Client, config Config, logger logx.Logger) (*Client, error) {
	if config.APIKey == "" {
		return nil, errors.New("llm: api key is required")
	}
	if config.Model == "" {
		return nil, errors.New("llm: model is required")
	}
	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}
	return &Client{
		http:   http,
		config: config,
		logger: logger.With("component", "llm"),
	}, nil
}

// Message es un mensaje del chat.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Chat envía los mensajes y retorna el contenido de la primera
// respuesta.
func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       c.config.Model,
		Messages:    messages,
		Temperature: c.config.Temperature,
	})
	if err != nil {
		return "", errors.Wrap(err, "llm: marshal request")
	}

	endpoint := c.config.BaseURL + "/chat/completions"
	resp, err := c.http.Request(ctx, "POST", endpoint, bytes.NewReader(payload), map[string]string{
		"Content-Type":  "application/json",
		"Accept":        "application/json",
		"Authorization": "Bearer " + c.config.APIKey,
	})
	if err != nil {
		return "", errors.Wrap(err, "llm: request failed")
	}
	if err := httpclient.CheckStatus(resp); err != nil {
		resp.Body.Close()
		return "", errors.Wrap(err, "llm: bad status")
	}

	body, err := httpclient.ReadBody(resp)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", errors.Wrap(errors.ErrInvalidResponse, err.Error())
	}
	if parsed.Error != nil {
		return "", errors.Wrapf(errors.ErrInvalidResponse, "llm: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.Wrap(errors.ErrInvalidResponse, "llm: empty choices")
	}

	content := parsed.Choices[0].Message.Content
	c.logger.Debug("llm response", "chars", len(content))
	return content, nil
}

// ExtractJSON localiza el primer bloque JSON de una respuesta de
// modelo, tolerando fences markdown (```json ... ```) y texto alrededor.
func ExtractJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := s[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		rest = strings.TrimPrefix(rest, "JSON")
		if end := strings.Index(rest, "```"); end >= 0 {
			s = strings.TrimSpace(rest[:end])
		} else {
			s = strings.TrimSpace(rest)
		}
	}

	// Recortar al primer objeto o array balanceado
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	open := s[start]
	var closing byte = '}'
	if open == '[' {
		closing = ']'
	}
	depth := 0
	inString := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			if ch == '\\' {
				i++
			} else if ch == '"' {
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return s[start:]
}
