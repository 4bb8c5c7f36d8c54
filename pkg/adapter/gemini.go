package adapter

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/journal/pkg/model"
	"google.golang.org/genai"
)

// Gemini generates completions with the Gemini API. The credential passed to
// Generate is the user's API key, so a client is built per call.
type Gemini struct {
	generativeModel string
	instruction     string
	maxOutputTokens int32
	baseURL         string
}

type GeminiOption func(*Gemini)

func WithGenerativeModel(model string) GeminiOption {
	return func(g *Gemini) {
		g.generativeModel = model
	}
}

// WithInstruction sets the system instruction that plays the role of the
// prompt template
func WithInstruction(instruction string) GeminiOption {
	return func(g *Gemini) {
		g.instruction = instruction
	}
}

// WithGeminiBaseURL overrides the API endpoint
func WithGeminiBaseURL(url string) GeminiOption {
	return func(g *Gemini) {
		g.baseURL = url
	}
}

func NewGemini(opts ...GeminiOption) *Gemini {
	g := &Gemini{
		generativeModel: "gemini-2.5-flash",
		maxOutputTokens: defaultMaxOutputTokens,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gemini) Generate(ctx context.Context, credential, input string) (*model.Completion, error) {
	cfg := &genai.ClientConfig{
		APIKey:  credential,
		Backend: genai.BackendGeminiAPI,
	}
	if g.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client")
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens:  g.maxOutputTokens,
		ResponseMIMEType: "application/json",
	}
	if g.instruction != "" {
		config.SystemInstruction = genai.NewContentFromText(g.instruction, "")
	}

	contents := []*genai.Content{genai.NewContentFromText(input, genai.RoleUser)}
	resp, err := client.Models.GenerateContent(ctx, g.generativeModel, contents, config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, goerr.Wrap(&model.APIError{StatusCode: apiErr.Code, Message: apiErr.Message},
				"gemini API returned error", goerr.V("status", apiErr.Status))
		}
		return nil, goerr.Wrap(model.ErrNetwork, "failed to generate content", goerr.V("cause", err.Error()))
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal gemini response")
	}

	return &model.Completion{
		Provider: model.ProviderGemini,
		Raw:      raw,
	}, nil
}
