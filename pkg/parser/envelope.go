package parser

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/journal/pkg/model"
)

// responsesEnvelope is the subset of the OpenAI Responses API body we read
type responsesEnvelope struct {
	Output []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string  `json:"type"`
			Text *string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

// geminiEnvelope is the subset of a GenerateContentResponse we read
type geminiEnvelope struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// ExtractText returns the model's textual completion from the envelope of the
// given provider. Any deviation from the expected shape is ErrParse.
func ExtractText(c *model.Completion) (string, error) {
	if c == nil || len(c.Raw) == 0 {
		return "", goerr.Wrap(model.ErrParse, "empty completion")
	}

	switch c.Provider {
	case model.ProviderGemini:
		return extractGemini(c.Raw)
	default:
		return extractResponses(c.Raw)
	}
}

// extractResponses follows output -> first item with content -> first block with text
func extractResponses(raw []byte) (string, error) {
	var env responsesEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", goerr.Wrap(model.ErrParse, "invalid responses envelope", goerr.V("cause", err.Error()))
	}
	if len(env.Output) == 0 {
		return "", goerr.Wrap(model.ErrParse, "no output in response")
	}

	for _, item := range env.Output {
		if len(item.Content) == 0 {
			// reasoning items precede the message and carry no content
			continue
		}
		for _, block := range item.Content {
			if block.Text != nil {
				return *block.Text, nil
			}
		}
		break
	}
	return "", goerr.Wrap(model.ErrParse, "no text block in response output")
}

func extractGemini(raw []byte) (string, error) {
	var env geminiEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", goerr.Wrap(model.ErrParse, "invalid gemini envelope", goerr.V("cause", err.Error()))
	}
	if len(env.Candidates) == 0 || env.Candidates[0].Content == nil {
		return "", goerr.Wrap(model.ErrParse, "no candidate in response")
	}
	for _, part := range env.Candidates[0].Content.Parts {
		if part.Text != "" {
			return part.Text, nil
		}
	}
	return "", goerr.Wrap(model.ErrParse, "no text part in candidate")
}
