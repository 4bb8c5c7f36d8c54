package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/journal/pkg/model"
	"github.com/m-mizutani/journal/pkg/utils/logging"
)

// Result is the outcome of parsing one completion. Raw is always set so the
// caller can show what the model returned even when no action was found.
type Result struct {
	Raw     string
	Text    string
	Actions []model.Action
}

// Parse unwraps the completion envelope and decodes the actions it carries.
// It never fails: envelope or payload mismatches yield zero actions.
func Parse(ctx context.Context, c *model.Completion) *Result {
	logger := logging.From(ctx)
	if c == nil {
		return &Result{Actions: []model.Action{}}
	}
	result := &Result{
		Raw:     prettyJSON(c.Raw),
		Actions: []model.Action{},
	}

	text, err := ExtractText(c)
	if err != nil {
		logger.Debug("no text in completion envelope", "provider", c.Provider, "error", err)
		return result
	}
	result.Text = text

	actions, err := ParseActions(text)
	if err != nil {
		logger.Debug("completion text is not an action payload", "error", err)
		return result
	}
	result.Actions = actions
	return result
}

// ParseActions decodes the model text as one action object or a list of
// action objects. Elements that are not well-formed actions are dropped and
// order is preserved. A payload that is not JSON, or is neither an object nor
// a list, returns an empty list with ErrParse.
func ParseActions(text string) ([]model.Action, error) {
	var payload any
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &payload); err != nil {
		return []model.Action{}, goerr.Wrap(model.ErrParse, "payload is not JSON", goerr.V("cause", err.Error()))
	}

	var items []any
	switch v := payload.(type) {
	case map[string]any:
		items = []any{v}
	case []any:
		items = v
	default:
		return []model.Action{}, goerr.Wrap(model.ErrParse, "payload is neither an object nor a list")
	}

	actions := make([]model.Action, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		action, err := model.DecodeAction(obj)
		if err != nil {
			continue
		}
		actions = append(actions, action)
	}
	return actions, nil
}

// stripCodeFence removes a surrounding markdown code fence, which some models
// add around JSON output
func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
		s = s[nl+1:]
	}
	return strings.TrimSpace(s)
}

func prettyJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
