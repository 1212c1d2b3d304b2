package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"iga-community/internal/ai"
	"iga-community/internal/vectorstore"
)

var (
	ErrMissingUserMessage = errors.New("missing user message")
	ErrEmptyCompletion    = errors.New("failed to generate response")
)

const systemPromptTemplate = `You are an AI assistant who knows everything about International Girls Academy.
Use the below context to augment what you know about International Girls Academy.
The context will provide you with the most recent page data from wikipedia,
the official International Girls Academy website and others.
If the context doesn't include the information you need answer based on your
existing knowledge and don't mention the source of your information or
what the context does or doesn't include.
Format responses using markdown where applicable and don't return
images.
---------------------
START CONTEXT
%s
END CONTEXT
---------------------
QUESTION: %s
---------------------
`

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Completer interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

// IncomingMessage is a chat message as sent by the widget. Content is either
// a string or an array of parts; Parts is an alternative part array.
type IncomingMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
	Parts   json.RawMessage `json:"parts"`
}

type ChatService struct {
	embedder  Embedder
	completer Completer
	store     vectorstore.Store
	topK      int
	logger    *slog.Logger
}

func NewChatService(embedder Embedder, completer Completer, store vectorstore.Store, topK int, logger *slog.Logger) *ChatService {
	if topK <= 0 {
		topK = 10
	}
	return &ChatService{
		embedder:  embedder,
		completer: completer,
		store:     store,
		topK:      topK,
		logger:    logger,
	}
}

// Reply answers the latest user message using retrieved site content. No
// answer is cached and nothing is retried.
func (s *ChatService) Reply(ctx context.Context, incoming []IncomingMessage) (ai.ChatMessage, error) {
	messages := NormalizeMessages(incoming)

	latest := ""
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			latest = messages[i].Content
			break
		}
	}
	if latest == "" {
		return ai.ChatMessage{}, ErrMissingUserMessage
	}

	vector, err := s.embedder.Embed(ctx, latest)
	if err != nil {
		return ai.ChatMessage{}, fmt.Errorf("embed question failed: %w", err)
	}

	docContext := ""
	matches, err := s.store.Search(ctx, vector, s.topK)
	if err != nil {
		s.logger.ErrorContext(ctx, "vector search failed", slog.Any("error", err))
	} else if texts := matchTexts(matches); len(texts) > 0 {
		docContext, err = encodeContext(texts)
		if err != nil {
			return ai.ChatMessage{}, err
		}
	}

	prompt := make([]ai.ChatMessage, 0, len(messages)+1)
	prompt = append(prompt, ai.ChatMessage{
		Role:    "system",
		Content: fmt.Sprintf(systemPromptTemplate, docContext, latest),
	})
	for _, m := range messages {
		if m.Role != "system" {
			prompt = append(prompt, m)
		}
	}

	answer, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return ai.ChatMessage{}, fmt.Errorf("chat completion failed: %w", err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return ai.ChatMessage{}, ErrEmptyCompletion
	}
	return ai.ChatMessage{Role: "assistant", Content: answer}, nil
}

// NormalizeMessages flattens every message to plain text and drops the ones
// that end up empty.
func NormalizeMessages(incoming []IncomingMessage) []ai.ChatMessage {
	out := make([]ai.ChatMessage, 0, len(incoming))
	for _, m := range incoming {
		if text := extractText(m); text != "" {
			out = append(out, ai.ChatMessage{Role: m.Role, Content: text})
		}
	}
	return out
}

func extractText(m IncomingMessage) string {
	var s string
	if err := json.Unmarshal(m.Content, &s); err == nil {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	if text := flattenParts(m.Content); text != "" {
		return text
	}
	return flattenParts(m.Parts)
}

func flattenParts(raw json.RawMessage) string {
	var parts []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &parts) != nil {
		return ""
	}

	var b strings.Builder
	for _, p := range parts {
		var s string
		if json.Unmarshal(p, &s) == nil {
			b.WriteString(s)
			continue
		}
		var obj struct {
			Text    string          `json:"text"`
			Value   string          `json:"value"`
			Content json.RawMessage `json:"content"`
		}
		if json.Unmarshal(p, &obj) != nil {
			continue
		}
		switch {
		case obj.Text != "":
			b.WriteString(obj.Text)
		case obj.Value != "":
			b.WriteString(obj.Value)
		default:
			if json.Unmarshal(obj.Content, &s) == nil {
				b.WriteString(s)
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// encodeContext renders texts as a JSON array without HTML escaping.
func encodeContext(texts []string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(texts); err != nil {
		return "", fmt.Errorf("encode context failed: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func matchTexts(matches []vectorstore.Match) []string {
	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.Text != "" {
			texts = append(texts, m.Text)
		}
	}
	return texts
}
