package cli

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/journal/pkg/adapter"
	"github.com/m-mizutani/journal/pkg/model"
	"github.com/m-mizutani/journal/pkg/render"
	"github.com/m-mizutani/journal/pkg/repository"
	"github.com/m-mizutani/journal/pkg/usecase/assistant"
	"github.com/m-mizutani/journal/pkg/usecase/session"
	"github.com/m-mizutani/journal/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
	"gopkg.in/yaml.v3"
)

const defaultTimeout = 60 * time.Second

// config holds configuration values
type config struct {
	logLevel   string
	configPath string

	// Credential store
	project         string
	database        string
	credentialsFile string

	// Identity provider
	firebaseAPIKey string
	email          string
	password       string

	// Completion
	provider          string
	endpoint          string
	promptID          string
	promptVersion     string
	geminiModel       string
	geminiInstruction string
	timeout           time.Duration
	currency          string

	// Local mode: credentials given directly, no sign-in
	openaiAPIKey string
	geminiAPIKey string
}

// fileConfig is the optional YAML configuration file
type fileConfig struct {
	Prompt struct {
		ID      string `yaml:"id"`
		Version string `yaml:"version"`
	} `yaml:"prompt"`
	Endpoint string `yaml:"endpoint"`
	Provider string `yaml:"provider"`
	Gemini   struct {
		Model       string `yaml:"model"`
		Instruction string `yaml:"instruction"`
	} `yaml:"gemini"`
	Timeout  string `yaml:"timeout"`
	Currency string `yaml:"currency"`
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("JOURNAL_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to YAML config file",
			Sources:     cli.EnvVars("JOURNAL_CONFIG"),
			Destination: &cfg.configPath,
		},
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID of the secrets store",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.StringFlag{
			Name:        "credentials",
			Usage:       "Service account key file for Firestore (default: application default credentials)",
			Sources:     cli.EnvVars("GOOGLE_APPLICATION_CREDENTIALS"),
			Destination: &cfg.credentialsFile,
		},
	}
}

// identityFlags returns flags for signing in to the identity provider
func identityFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "firebase-api-key",
			Usage:       "Web API key of the Firebase project",
			Sources:     cli.EnvVars("JOURNAL_FIREBASE_API_KEY"),
			Destination: &cfg.firebaseAPIKey,
		},
		&cli.StringFlag{
			Name:        "email",
			Aliases:     []string{"u"},
			Usage:       "Account email",
			Sources:     cli.EnvVars("JOURNAL_EMAIL"),
			Destination: &cfg.email,
		},
		&cli.StringFlag{
			Name:        "password",
			Usage:       "Account password",
			Sources:     cli.EnvVars("JOURNAL_PASSWORD"),
			Destination: &cfg.password,
		},
	}
}

// llmFlags returns flags for completion configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "provider",
			Usage:       "Completion provider (openai, gemini)",
			Sources:     cli.EnvVars("JOURNAL_PROVIDER"),
			Destination: &cfg.provider,
		},
		&cli.StringFlag{
			Name:        "openai-endpoint",
			Usage:       "Responses API endpoint",
			Sources:     cli.EnvVars("JOURNAL_OPENAI_ENDPOINT"),
			Destination: &cfg.endpoint,
		},
		&cli.StringFlag{
			Name:        "prompt-id",
			Usage:       "ID of the registered prompt template",
			Sources:     cli.EnvVars("JOURNAL_PROMPT_ID"),
			Destination: &cfg.promptID,
		},
		&cli.StringFlag{
			Name:        "prompt-version",
			Usage:       "Version of the registered prompt template",
			Sources:     cli.EnvVars("JOURNAL_PROMPT_VERSION"),
			Destination: &cfg.promptVersion,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini model name",
			Sources:     cli.EnvVars("JOURNAL_GEMINI_MODEL"),
			Destination: &cfg.geminiModel,
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Usage:       "Timeout of one completion call",
			Sources:     cli.EnvVars("JOURNAL_TIMEOUT"),
			Destination: &cfg.timeout,
		},
		&cli.StringFlag{
			Name:        "currency",
			Usage:       "Currency symbol shown with prices",
			Sources:     cli.EnvVars("JOURNAL_CURRENCY"),
			Destination: &cfg.currency,
		},
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "Use this OpenAI key directly instead of signing in",
			Sources:     cli.EnvVars("JOURNAL_OPENAI_API_KEY"),
			Destination: &cfg.openaiAPIKey,
		},
		&cli.StringFlag{
			Name:        "gemini-api-key",
			Usage:       "Use this Gemini key directly instead of signing in",
			Sources:     cli.EnvVars("JOURNAL_GEMINI_API_KEY"),
			Destination: &cfg.geminiAPIKey,
		},
	}
}

// setup loads the config file, fills defaults and attaches the logger to ctx
func (cfg *config) setup(ctx context.Context) (context.Context, error) {
	logger := logging.New(cfg.logLevel, os.Stderr)
	logging.SetDefault(logger)
	ctx = logging.With(ctx, logger)

	if cfg.configPath != "" {
		if err := cfg.loadFile(cfg.configPath); err != nil {
			return ctx, err
		}
	}
	cfg.fillDefaults()

	switch model.Provider(cfg.provider) {
	case model.ProviderOpenAI, model.ProviderGemini:
	default:
		return ctx, goerr.New("unknown provider", goerr.V("provider", cfg.provider))
	}
	return ctx, nil
}

// loadFile fills fields that were not given by flags or environment
func (cfg *config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return goerr.Wrap(err, "failed to parse config file", goerr.V("path", path))
	}

	setIfEmpty(&cfg.promptID, fc.Prompt.ID)
	setIfEmpty(&cfg.promptVersion, fc.Prompt.Version)
	setIfEmpty(&cfg.endpoint, fc.Endpoint)
	setIfEmpty(&cfg.provider, fc.Provider)
	setIfEmpty(&cfg.geminiModel, fc.Gemini.Model)
	setIfEmpty(&cfg.geminiInstruction, fc.Gemini.Instruction)
	setIfEmpty(&cfg.currency, fc.Currency)

	if cfg.timeout == 0 && fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return goerr.Wrap(err, "invalid timeout in config file", goerr.V("timeout", fc.Timeout))
		}
		cfg.timeout = d
	}
	return nil
}

func (cfg *config) fillDefaults() {
	setIfEmpty(&cfg.provider, string(model.ProviderOpenAI))
	setIfEmpty(&cfg.currency, "₾")
	if cfg.timeout == 0 {
		cfg.timeout = defaultTimeout
	}
}

func setIfEmpty(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

// localMode reports whether credentials were given directly
func (cfg *config) localMode() bool {
	return cfg.openaiAPIKey != "" || cfg.geminiAPIKey != ""
}

// newSession creates a session and signs in. In local mode the given keys
// are served from memory to a fixed local user. A secrets fetch failure is
// logged and left visible in the session's statuses.
func (cfg *config) newSession(ctx context.Context) (*session.Session, func(), error) {
	logger := logging.From(ctx)

	if cfg.localMode() {
		store := repository.NewMemory()
		secrets := &model.Secrets{}
		if cfg.openaiAPIKey != "" {
			secrets.OpenAI = &model.SecretValue{Value: cfg.openaiAPIKey}
			logger.Debug("using local OpenAI key", "key", logging.Redact(cfg.openaiAPIKey))
		}
		if cfg.geminiAPIKey != "" {
			secrets.Gemini = &model.SecretValue{Value: cfg.geminiAPIKey}
			logger.Debug("using local Gemini key", "key", logging.Redact(cfg.geminiAPIKey))
		}
		store.PutSecrets(model.LocalUserID, secrets)

		sess := session.New(store)
		if err := sess.Begin(ctx, &model.User{ID: model.LocalUserID}); err != nil {
			return nil, nil, err
		}
		return sess, func() { sess.SignOut(ctx) }, nil
	}

	sess, closeStore, err := cfg.newRemoteSession(ctx)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		sess.SignOut(ctx)
		closeStore()
	}

	if _, err := sess.SignIn(ctx, cfg.email, cfg.password); err != nil {
		if sess.CurrentUser() == nil {
			cleanup()
			return nil, nil, err
		}
		logger.Warn("signed in but secrets are unavailable", "error", err)
	}
	return sess, cleanup, nil
}

// newRemoteSession creates a signed-out session backed by Firestore and the
// identity provider
func (cfg *config) newRemoteSession(ctx context.Context) (*session.Session, func(), error) {
	if cfg.project == "" {
		return nil, nil, goerr.New("project is required")
	}
	if cfg.database == "" {
		return nil, nil, goerr.New("database is required")
	}
	if cfg.firebaseAPIKey == "" {
		return nil, nil, goerr.New("firebase-api-key is required")
	}

	var opts []option.ClientOption
	if cfg.credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.credentialsFile))
	}

	repo, err := repository.New(ctx, cfg.project, cfg.database, opts...)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to create repository")
	}

	identity := adapter.NewFirebaseAuth(cfg.firebaseAPIKey)
	sess := session.New(repo, session.WithIdentity(identity))
	return sess, func() { _ = repo.Close() }, nil
}

// newCompletion creates the completion client of the configured provider
func (cfg *config) newCompletion() adapter.Completion {
	switch model.Provider(cfg.provider) {
	case model.ProviderGemini:
		var opts []adapter.GeminiOption
		if cfg.geminiModel != "" {
			opts = append(opts, adapter.WithGenerativeModel(cfg.geminiModel))
		}
		if cfg.geminiInstruction != "" {
			opts = append(opts, adapter.WithInstruction(cfg.geminiInstruction))
		}
		return adapter.NewGemini(opts...)

	default:
		opts := []adapter.OpenAIOption{
			adapter.WithHTTPClient(&http.Client{Timeout: cfg.timeout}),
		}
		if cfg.endpoint != "" {
			opts = append(opts, adapter.WithEndpoint(cfg.endpoint))
		}
		if cfg.promptID != "" {
			version := cfg.promptVersion
			if version == "" {
				version = "1"
			}
			opts = append(opts, adapter.WithPrompt(cfg.promptID, version))
		}
		return adapter.NewOpenAI(opts...)
	}
}

// newAssistant creates the assistant reading credentials from sess
func (cfg *config) newAssistant(sess *session.Session, opts ...assistant.Option) *assistant.UseCase {
	base := []assistant.Option{
		assistant.WithProvider(model.Provider(cfg.provider)),
		assistant.WithTimeout(cfg.timeout),
		assistant.WithRenderer(render.New(render.WithCurrency(cfg.currency))),
	}
	return assistant.New(cfg.newCompletion(), sess, append(base, opts...)...)
}
