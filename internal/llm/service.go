package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"github.com/rs/zerolog"

	"resume-parser/internal/ner"
)

type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderOllama Provider = "ollama"
	ProviderGroq   Provider = "groq"
	ProviderNone   Provider = "none"
)

var defaultBaseURLs = map[Provider]string{
	ProviderGroq:   "https://api.groq.com/openai/v1",
	ProviderOllama: "http://localhost:11434/v1",
}

// Service recognizes person names through an OpenAI-compatible chat endpoint.
type Service struct {
	provider Provider
	model    string
	client   openai.Client
	log      zerolog.Logger
}

// Name identifies the provider and model, e.g. "llm:openai/gpt-4o-mini".
func (s *Service) Name() string {
	return "llm:" + string(s.provider) + "/" + s.model
}

type Options struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string // overrides the provider default
	Timeout  time.Duration
	Logger   zerolog.Logger
}

type entityResponse struct {
	Entities []ner.Entity `json:"entities"`
}

func NewService(opts Options) (*Service, error) {
	p := Provider(opts.Provider)
	switch p {
	case ProviderOpenAI, ProviderGroq, ProviderOllama:
	case ProviderNone, "":
		return nil, fmt.Errorf("LLM provider not configured")
	default:
		return nil, fmt.Errorf("unknown provider: %s", opts.Provider)
	}

	apiKey := opts.APIKey
	if apiKey == "" {
		if p != ProviderOllama {
			return nil, fmt.Errorf("API key required for provider %s", p)
		}
		apiKey = "ollama"
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(timeout),
		option.WithMaxRetries(1),
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURLs[p]
	}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}

	return &Service{
		provider: p,
		model:    opts.Model,
		client:   openai.NewClient(reqOpts...),
		log:      opts.Logger,
	}, nil
}

// Recognize implements ner.EntityRecognizer.
func (s *Service) Recognize(ctx context.Context, text string) ([]ner.Entity, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(s.buildPrompt(text)),
		},
		Temperature: openai.Float(0),
	}

	start := time.Now()
	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%s chat completion: %w", s.provider, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s returned no choices", s.provider)
	}

	s.log.Debug().
		Str("provider", string(s.provider)).
		Dur("took", time.Since(start)).
		Msg("entity recognition response received")

	return parseEntities(resp.Choices[0].Message.Content)
}

func (s *Service) buildPrompt(text string) string {
	return fmt.Sprintf(`Find every person name mentioned in this resume, in the order they appear.

Resume Text:
"""
%s
"""

Return ONLY valid JSON with this structure:
{"entities": [{"text": "exact name as written", "label": "PERSON"}]}`, text)
}

const systemPrompt = "You are a named-entity recognizer. You answer with JSON only."

// parseEntities accepts bare JSON or JSON wrapped in a markdown code fence.
func parseEntities(content string) ([]ner.Entity, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	var out entityResponse
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}
	for i := range out.Entities {
		if out.Entities[i].Label == "" {
			out.Entities[i].Label = ner.LabelPerson
		}
	}
	return out.Entities, nil
}
