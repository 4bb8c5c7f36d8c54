package model

import (
	"github.com/google/uuid"
)

// Provider names a completion backend
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// Secret returns the credential a provider authenticates with
func (p Provider) Secret() SecretName {
	switch p {
	case ProviderGemini:
		return SecretGemini
	default:
		return SecretOpenAI
	}
}

type InteractionID string

// NewInteractionID generates a new unique InteractionID
func NewInteractionID() InteractionID {
	return InteractionID(uuid.New().String())
}

// Completion is the undecoded response envelope of one completion call
type Completion struct {
	Provider Provider
	Raw      []byte
}
