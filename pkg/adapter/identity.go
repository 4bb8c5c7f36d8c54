package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/journal/pkg/model"
)

const defaultIdentityEndpoint = "https://identitytoolkit.googleapis.com/v1"

// Identity signs users in with a hosted email/password identity provider
type Identity interface {
	SignIn(ctx context.Context, email, password string) (*model.User, error)
	SignUp(ctx context.Context, email, password string) (*model.User, error)
}

// FirebaseAuth implements Identity with the Identity Toolkit REST API
type FirebaseAuth struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

type FirebaseAuthOption func(*FirebaseAuth)

func WithIdentityEndpoint(endpoint string) FirebaseAuthOption {
	return func(f *FirebaseAuth) {
		f.endpoint = endpoint
	}
}

func WithIdentityHTTPClient(client *http.Client) FirebaseAuthOption {
	return func(f *FirebaseAuth) {
		f.httpClient = client
	}
}

// NewFirebaseAuth creates a client for the project owning apiKey
func NewFirebaseAuth(apiKey string, opts ...FirebaseAuthOption) *FirebaseAuth {
	f := &FirebaseAuth{
		apiKey:   apiKey,
		endpoint: defaultIdentityEndpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type credentialRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type credentialResponse struct {
	IDToken   string `json:"idToken"`
	LocalID   string `json:"localId"`
	Email     string `json:"email"`
	ExpiresIn string `json:"expiresIn"`
}

func (f *FirebaseAuth) SignIn(ctx context.Context, email, password string) (*model.User, error) {
	return f.call(ctx, "accounts:signInWithPassword", email, password)
}

func (f *FirebaseAuth) SignUp(ctx context.Context, email, password string) (*model.User, error) {
	return f.call(ctx, "accounts:signUp", email, password)
}

func (f *FirebaseAuth) call(ctx context.Context, method, email, password string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, &model.ValidationError{Message: "email and password are required"}
	}

	data, err := json.Marshal(credentialRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal request")
	}

	url := f.endpoint + "/" + method + "?key=" + f.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(model.ErrNetwork, "failed to reach identity provider", goerr.V("cause", err.Error()))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, goerr.Wrap(model.ErrNetwork, "failed to read identity response", goerr.V("cause", err.Error()))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.Wrap(newAPIError(resp.StatusCode, body), "identity provider returned error",
			goerr.V("method", method))
	}

	var cr credentialResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, goerr.Wrap(err, "failed to decode identity response")
	}

	return userFromCredential(&cr)
}

// userFromCredential builds a User from the response, preferring claims of
// the ID token. The token is not verified here; it is only used to read the
// claims of a token the provider just issued.
func userFromCredential(cr *credentialResponse) (*model.User, error) {
	user := &model.User{
		ID:      model.UserID(cr.LocalID),
		Email:   cr.Email,
		IDToken: cr.IDToken,
	}
	if sec, err := strconv.Atoi(cr.ExpiresIn); err == nil {
		user.ExpiresAt = time.Now().Add(time.Duration(sec) * time.Second)
	}

	if cr.IDToken != "" {
		claims := jwt.MapClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(cr.IDToken, claims); err == nil {
			if uid, ok := claims["user_id"].(string); ok && uid != "" {
				user.ID = model.UserID(uid)
			} else if sub, err := claims.GetSubject(); err == nil && sub != "" {
				user.ID = model.UserID(sub)
			}
			if email, ok := claims["email"].(string); ok && email != "" {
				user.Email = email
			}
			if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
				user.ExpiresAt = exp.Time
			}
		}
	}

	if user.ID == "" {
		return nil, goerr.New("identity response has no user id")
	}
	return user, nil
}
