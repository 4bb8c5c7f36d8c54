package assistant_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/journal/pkg/model"
	"github.com/m-mizutani/journal/pkg/render"
	"github.com/m-mizutani/journal/pkg/usecase/assistant"
)

// mockCompletion returns canned envelopes; when gate is set each call blocks
// until gate is closed
type mockCompletion struct {
	calls      atomic.Int32
	credential string
	text       string
	err        error
	gate       chan struct{}
	entered    chan struct{}
}

func (m *mockCompletion) Generate(ctx context.Context, credential, input string) (*model.Completion, error) {
	m.calls.Add(1)
	m.credential = credential
	if m.entered != nil {
		close(m.entered)
	}
	if m.gate != nil {
		select {
		case <-m.gate:
		case <-ctx.Done():
			return nil, goerr.Wrap(model.ErrNetwork, "canceled", goerr.V("cause", ctx.Err().Error()))
		}
	}
	if m.err != nil {
		return nil, m.err
	}

	raw, err := json.Marshal(map[string]any{
		"output": []any{
			map[string]any{
				"type":    "message",
				"content": []any{map[string]any{"type": "output_text", "text": m.text}},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	return &model.Completion{Provider: model.ProviderOpenAI, Raw: raw}, nil
}

type staticCredentials map[model.SecretName]string

func (s staticCredentials) Credential(name model.SecretName) string { return s[name] }

var withKey = staticCredentials{model.SecretOpenAI: "sk-test"}

func TestSubmitBananaScenario(t *testing.T) {
	mock := &mockCompletion{
		text: `[{"action":"food","name":"Banana","calories":105,"carbs":27,"sugar":14,"fats":0.4,"protein":1.3,"fiber":3.1,"time":"2024-01-01T00:00:00Z"}]`,
	}
	var states []assistant.State
	uc := assistant.New(mock, withKey,
		assistant.WithRenderer(render.New(render.WithLocation(time.UTC))),
		assistant.WithStateHook(func(s assistant.Snapshot) { states = append(states, s.State) }),
	)
	gt.Equal(t, uc.Snapshot().State, assistant.StateIdle)

	snap, err := uc.Submit(context.Background(), "I ate a banana")
	gt.NoError(t, err)
	gt.Equal(t, snap.State, assistant.StateSuccess)
	gt.Equal(t, mock.credential, "sk-test")
	gt.Equal(t, states, []assistant.State{assistant.StateSubmitting, assistant.StateSuccess})

	gt.A(t, snap.Actions).Length(1)
	gt.True(t, model.IsFood(snap.Actions[0]))
	gt.A(t, snap.Cards).Length(1)
	card := snap.Cards[0]
	gt.Equal(t, card.Label, "Food")
	gt.Equal(t, card.Title, "Banana")
	gt.Equal(t, card.Fields[0], render.Field{Label: "Calories", Value: "105 kcal"})
	gt.S(t, snap.Raw).Contains("Banana")
	gt.Equal(t, snap.Error, "")
	gt.True(t, snap.InteractionID != "")
}

func TestSubmitUnparseableTextStillSucceeds(t *testing.T) {
	mock := &mockCompletion{text: "Sorry, I could not understand that."}
	uc := assistant.New(mock, withKey)

	snap, err := uc.Submit(context.Background(), "hmm")
	gt.NoError(t, err)
	gt.Equal(t, snap.State, assistant.StateSuccess)
	gt.A(t, snap.Actions).Length(0)
	gt.S(t, snap.Raw).Contains("could not understand")
}

func TestSubmitValidation(t *testing.T) {
	t.Run("empty prompt", func(t *testing.T) {
		mock := &mockCompletion{}
		uc := assistant.New(mock, withKey)
		gt.False(t, uc.CanSubmit("   "))

		snap, err := uc.Submit(context.Background(), "  \n\t")
		gt.True(t, errors.Is(err, model.ErrValidation))
		gt.Equal(t, snap.State, assistant.StateError)
		gt.Equal(t, snap.Error, "Please enter some text")
		gt.Equal(t, mock.calls.Load(), int32(0))
	})

	t.Run("missing credential", func(t *testing.T) {
		mock := &mockCompletion{}
		uc := assistant.New(mock, staticCredentials{})
		gt.False(t, uc.CanSubmit("hello"))

		snap, err := uc.Submit(context.Background(), "hello")
		gt.True(t, errors.Is(err, model.ErrValidation))
		gt.Equal(t, snap.Error, "OpenAI API key not found. Please check your secrets configuration.")
		gt.Equal(t, mock.calls.Load(), int32(0))
	})

	t.Run("gemini provider reads gemini secret", func(t *testing.T) {
		mock := &mockCompletion{text: "[]"}
		uc := assistant.New(mock, withKey, assistant.WithProvider(model.ProviderGemini))
		snap, err := uc.Submit(context.Background(), "hello")
		gt.Error(t, err)
		gt.Equal(t, snap.Error, "Gemini API key not found. Please check your secrets configuration.")
	})
}

func TestSubmitErrorKinds(t *testing.T) {
	testCases := map[string]struct {
		err    error
		expect string
		is     error
	}{
		"api with message": {
			err:    goerr.Wrap(&model.APIError{StatusCode: 429, Message: "Rate limit reached"}, "responses API returned error"),
			expect: "Rate limit reached",
			is:     model.ErrAPI,
		},
		"api without message": {
			err:    &model.APIError{StatusCode: 500},
			expect: "Failed to call the completion API",
			is:     model.ErrAPI,
		},
		"network": {
			err:    goerr.Wrap(model.ErrNetwork, "failed to send request"),
			expect: "Failed to reach the completion service",
			is:     model.ErrNetwork,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			mock := &mockCompletion{err: tc.err}
			uc := assistant.New(mock, withKey)

			snap, err := uc.Submit(context.Background(), "hello")
			gt.True(t, errors.Is(err, tc.is))
			gt.Equal(t, snap.State, assistant.StateError)
			gt.Equal(t, snap.Error, tc.expect)
			gt.Equal(t, snap.Raw, "")
			gt.A(t, snap.Actions).Length(0)

			// error is recoverable by resubmission
			mock.err = nil
			mock.text = `{"action":"buy","name":"Coffee","price":4.5,"time":"2024-01-01T00:00:00Z"}`
			snap, err = uc.Submit(context.Background(), "bought coffee")
			gt.NoError(t, err)
			gt.Equal(t, snap.State, assistant.StateSuccess)
			gt.A(t, snap.Actions).Length(1)
		})
	}
}

func TestSubmitRejectedWhileInFlight(t *testing.T) {
	mock := &mockCompletion{
		text:    "[]",
		gate:    make(chan struct{}),
		entered: make(chan struct{}),
	}
	uc := assistant.New(mock, withKey)

	done := make(chan error, 1)
	go func() {
		_, err := uc.Submit(context.Background(), "first")
		done <- err
	}()
	<-mock.entered

	gt.Equal(t, uc.Snapshot().State, assistant.StateSubmitting)
	gt.False(t, uc.CanSubmit("second"))

	snap, err := uc.Submit(context.Background(), "second")
	gt.True(t, errors.Is(err, model.ErrBusy))
	gt.Equal(t, snap.State, assistant.StateSubmitting)
	gt.Equal(t, snap.Prompt, "first")

	// validation failures do not clobber the in-flight request either
	_, err = uc.Submit(context.Background(), "")
	gt.True(t, errors.Is(err, model.ErrBusy))

	close(mock.gate)
	gt.NoError(t, <-done)
	gt.Equal(t, mock.calls.Load(), int32(1))
	gt.Equal(t, uc.Snapshot().State, assistant.StateSuccess)
	gt.True(t, uc.CanSubmit("second"))
}

func TestSubmitTimeout(t *testing.T) {
	mock := &mockCompletion{gate: make(chan struct{})}
	uc := assistant.New(mock, withKey, assistant.WithTimeout(10*time.Millisecond))

	snap, err := uc.Submit(context.Background(), "slow")
	gt.True(t, errors.Is(err, model.ErrNetwork))
	gt.Equal(t, snap.State, assistant.StateError)
	gt.Equal(t, snap.Error, "Failed to reach the completion service")
}

func TestMessageUnknown(t *testing.T) {
	gt.Equal(t, assistant.Message(errors.New("boom")), "Something went wrong while calling the completion API")
}
