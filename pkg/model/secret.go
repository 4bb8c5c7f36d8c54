package model

// SecretName identifies a known per-user credential
type SecretName string

const (
	SecretOpenAI SecretName = "openai"
	SecretGemini SecretName = "gemini"
)

// KnownSecrets lists every secret the assistant reads, in display order
var KnownSecrets = []SecretName{SecretOpenAI, SecretGemini}

// SecretValue is one entry of the secrets document. Other sub-keys in the
// stored map are ignored.
type SecretValue struct {
	Value string `firestore:"value" json:"value"`
}

// Secrets is the per-user secrets document with one field per known secret
type Secrets struct {
	OpenAI *SecretValue `firestore:"openai,omitempty" json:"openai,omitempty"`
	Gemini *SecretValue `firestore:"gemini,omitempty" json:"gemini,omitempty"`
}

// Get returns the credential for name, or "" when absent
func (s *Secrets) Get(name SecretName) string {
	if s == nil {
		return ""
	}
	var v *SecretValue
	switch name {
	case SecretOpenAI:
		v = s.OpenAI
	case SecretGemini:
		v = s.Gemini
	}
	if v == nil {
		return ""
	}
	return v.Value
}

// SecretState is the fetch status of a single secret
type SecretState string

const (
	SecretStateUnknown SecretState = "unknown"
	SecretStateLoading SecretState = "loading"
	SecretStateOK      SecretState = "ok"
	SecretStateError   SecretState = "error"
)

// SecretStatus reports the state of one secret for display
type SecretStatus struct {
	Name  SecretName
	State SecretState
	Error string
}

// DisplayName is the human readable name of the secret's service
func (n SecretName) DisplayName() string {
	switch n {
	case SecretOpenAI:
		return "OpenAI"
	case SecretGemini:
		return "Gemini"
	default:
		return string(n)
	}
}
