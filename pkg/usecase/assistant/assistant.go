package assistant

import (
	"time"

	"github.com/m-mizutani/journal/pkg/adapter"
	"github.com/m-mizutani/journal/pkg/model"
	"github.com/m-mizutani/journal/pkg/render"
)

// State is the request lifecycle state of the assistant
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateError      State = "error"
)

// CredentialSource provides the credential of a known secret, "" if absent
type CredentialSource interface {
	Credential(name model.SecretName) string
}

// Snapshot is a copy of the assistant state for display
type Snapshot struct {
	State         State
	InteractionID model.InteractionID
	Prompt        string
	Raw           string
	Actions       []model.Action
	Cards         []render.Card
	Error         string
	// Cause is the classified error of the last failed submission
	Cause error
}

// UseCase runs one prompt at a time against a completion provider
type UseCase struct {
	completion  adapter.Completion
	provider    model.Provider
	credentials CredentialSource
	renderer    *render.Renderer
	timeout     time.Duration

	state   stateBox
	onState func(Snapshot)
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithProvider sets which provider the completion client talks to
func WithProvider(p model.Provider) Option {
	return func(uc *UseCase) {
		uc.provider = p
	}
}

// WithRenderer sets the renderer used to build cards
func WithRenderer(r *render.Renderer) Option {
	return func(uc *UseCase) {
		uc.renderer = r
	}
}

// WithTimeout bounds each outbound call; zero disables the bound
func WithTimeout(d time.Duration) Option {
	return func(uc *UseCase) {
		uc.timeout = d
	}
}

// WithStateHook registers fn to be called after every state transition
func WithStateHook(fn func(Snapshot)) Option {
	return func(uc *UseCase) {
		uc.onState = fn
	}
}

// New creates an idle assistant
func New(completion adapter.Completion, credentials CredentialSource, opts ...Option) *UseCase {
	uc := &UseCase{
		completion:  completion,
		provider:    model.ProviderOpenAI,
		credentials: credentials,
		renderer:    render.New(),
		timeout:     60 * time.Second,
	}
	for _, opt := range opts {
		opt(uc)
	}
	uc.state.snap = Snapshot{State: StateIdle, Actions: []model.Action{}}
	return uc
}

// Snapshot returns the current state
func (uc *UseCase) Snapshot() Snapshot {
	return uc.state.get()
}

// CanSubmit reports whether the submit control would be enabled for prompt
func (uc *UseCase) CanSubmit(prompt string) bool {
	return uc.state.get().State != StateSubmitting &&
		uc.credential() != "" &&
		hasText(prompt)
}

func (uc *UseCase) credential() string {
	if uc.credentials == nil {
		return ""
	}
	return uc.credentials.Credential(uc.provider.Secret())
}
