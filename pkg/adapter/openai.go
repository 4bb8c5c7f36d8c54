package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/journal/pkg/model"
)

const (
	defaultResponsesEndpoint = "https://api.openai.com/v1/responses"
	defaultPromptID          = "pmpt_688f8ad66f148190be5af55d2d5f3bec08612d69fdddd2b3"
	defaultPromptVersion     = "1"
	defaultMaxOutputTokens   = 2048
	defaultTimeout           = 60 * time.Second

	// maxResponseSize bounds how much of a response body is read
	maxResponseSize = 4 << 20
)

// OpenAI calls the Responses API with a pre-registered prompt template
type OpenAI struct {
	endpoint        string
	promptID        string
	promptVersion   string
	maxOutputTokens int
	httpClient      *http.Client
}

type OpenAIOption func(*OpenAI)

func WithEndpoint(endpoint string) OpenAIOption {
	return func(o *OpenAI) {
		o.endpoint = endpoint
	}
}

// WithPrompt sets the prompt template id and version
func WithPrompt(id, version string) OpenAIOption {
	return func(o *OpenAI) {
		o.promptID = id
		o.promptVersion = version
	}
}

func WithMaxOutputTokens(n int) OpenAIOption {
	return func(o *OpenAI) {
		o.maxOutputTokens = n
	}
}

func WithHTTPClient(client *http.Client) OpenAIOption {
	return func(o *OpenAI) {
		o.httpClient = client
	}
}

func NewOpenAI(opts ...OpenAIOption) *OpenAI {
	o := &OpenAI{
		endpoint:        defaultResponsesEndpoint,
		promptID:        defaultPromptID,
		promptVersion:   defaultPromptVersion,
		maxOutputTokens: defaultMaxOutputTokens,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type responsesRequest struct {
	Prompt          promptRef      `json:"prompt"`
	Input           []inputMessage `json:"input"`
	Text            textOptions    `json:"text"`
	Reasoning       struct{}       `json:"reasoning"`
	MaxOutputTokens int            `json:"max_output_tokens"`
	Store           bool           `json:"store"`
}

type promptRef struct {
	ID      string `json:"id"`
	Version string `json:"version"`
}

type inputMessage struct {
	Role    string         `json:"role"`
	Content []inputContent `json:"content"`
}

type inputContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type textOptions struct {
	Format struct {
		Type string `json:"type"`
	} `json:"format"`
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate posts input as a single user message
func (o *OpenAI) Generate(ctx context.Context, credential, input string) (*model.Completion, error) {
	reqBody := responsesRequest{
		Prompt: promptRef{ID: o.promptID, Version: o.promptVersion},
		Input: []inputMessage{
			{
				Role:    "user",
				Content: []inputContent{{Type: "input_text", Text: input}},
			},
		},
		MaxOutputTokens: o.maxOutputTokens,
		Store:           true,
	}
	reqBody.Text.Format.Type = "text"

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(model.ErrNetwork, "failed to send request", goerr.V("cause", err.Error()))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, goerr.Wrap(model.ErrNetwork, "failed to read response", goerr.V("cause", err.Error()))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, goerr.Wrap(newAPIError(resp.StatusCode, body), "responses API returned error",
			goerr.V("status", resp.StatusCode))
	}

	return &model.Completion{
		Provider: model.ProviderOpenAI,
		Raw:      body,
	}, nil
}

// newAPIError reads the message of a structured error body, if any
func newAPIError(status int, body []byte) *model.APIError {
	apiErr := &model.APIError{StatusCode: status}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		apiErr.Message = eb.Error.Message
	}
	return apiErr
}
