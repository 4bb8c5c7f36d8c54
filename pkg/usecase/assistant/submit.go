package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/journal/pkg/model"
	"github.com/m-mizutani/journal/pkg/parser"
	"github.com/m-mizutani/journal/pkg/render"
	"github.com/m-mizutani/journal/pkg/utils/logging"
)

const (
	msgEmptyPrompt   = "Please enter some text"
	msgNoCredential  = "%s API key not found. Please check your secrets configuration."
	msgNetwork       = "Failed to reach the completion service"
	msgAPIFallback   = "Failed to call the completion API"
	msgUnknownFailed = "Something went wrong while calling the completion API"
)

// Submit sends prompt and moves to success or error. While another
// submission is in flight it returns ErrBusy and changes nothing. Validation,
// network and API failures leave the assistant in the error state and are
// also returned.
func (uc *UseCase) Submit(ctx context.Context, prompt string) (Snapshot, error) {
	logger := logging.From(ctx)

	credential := uc.credential()
	if verr := uc.validate(prompt, credential); verr != nil {
		snap := errorSnapshot(verr, prompt, "")
		if !uc.state.begin(snap) {
			return uc.state.get(), goerr.Wrap(model.ErrBusy, "submission rejected")
		}
		uc.notify(snap)
		return snap, verr
	}

	id := model.NewInteractionID()
	started := Snapshot{
		State:         StateSubmitting,
		InteractionID: id,
		Prompt:        prompt,
		Actions:       []model.Action{},
		Cards:         []render.Card{},
	}
	if !uc.state.begin(started) {
		return uc.state.get(), goerr.Wrap(model.ErrBusy, "submission rejected")
	}
	uc.notify(started)

	logger = logger.With("interaction_id", id, "provider", uc.provider)
	logger.Debug("submitting prompt", "prompt_length", len(prompt))

	callCtx := ctx
	if uc.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, uc.timeout)
		defer cancel()
	}

	completion, err := uc.completion.Generate(callCtx, credential, prompt)
	if err != nil {
		logger.Warn("completion failed", "kind", kindOf(err), "error", err)
		snap := errorSnapshot(err, prompt, id)
		uc.settle(snap)
		return snap, err
	}

	result := parser.Parse(logging.With(ctx, logger), completion)
	snap := Snapshot{
		State:         StateSuccess,
		InteractionID: id,
		Prompt:        prompt,
		Raw:           result.Raw,
		Actions:       result.Actions,
		Cards:         uc.renderer.RenderAll(result.Actions),
	}
	uc.settle(snap)

	logger.Debug("submission succeeded", "actions", len(result.Actions))
	return snap, nil
}

func (uc *UseCase) validate(prompt, credential string) error {
	if !hasText(prompt) {
		return &model.ValidationError{Message: msgEmptyPrompt}
	}
	if credential == "" {
		return &model.ValidationError{Message: fmt.Sprintf(msgNoCredential, uc.provider.Secret().DisplayName())}
	}
	return nil
}

func (uc *UseCase) settle(snap Snapshot) {
	uc.state.set(snap)
	uc.notify(snap)
}

func (uc *UseCase) notify(snap Snapshot) {
	if uc.onState != nil {
		uc.onState(snap)
	}
}

func errorSnapshot(err error, prompt string, id model.InteractionID) Snapshot {
	return Snapshot{
		State:         StateError,
		InteractionID: id,
		Prompt:        prompt,
		Actions:       []model.Action{},
		Cards:         []render.Card{},
		Error:         Message(err),
		Cause:         err,
	}
}

// Message returns the user-facing text for an error of a submission
func Message(err error) string {
	var (
		validationErr *model.ValidationError
		apiErr        *model.APIError
	)
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Message
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return msgAPIFallback
	case errors.Is(err, model.ErrNetwork),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return msgNetwork
	default:
		return msgUnknownFailed
	}
}

func kindOf(err error) string {
	switch {
	case errors.Is(err, model.ErrValidation):
		return "validation"
	case errors.Is(err, model.ErrAPI):
		return "api"
	case errors.Is(err, model.ErrNetwork):
		return "network"
	default:
		return "unknown"
	}
}

func hasText(s string) bool {
	return strings.TrimSpace(s) != ""
}
