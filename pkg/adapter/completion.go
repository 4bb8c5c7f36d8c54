package adapter

import (
	"context"

	"github.com/m-mizutani/journal/pkg/model"
)

// Completion sends one user input to a hosted model and returns the response
// envelope as received. Errors wrap model.ErrNetwork or are *model.APIError.
type Completion interface {
	Generate(ctx context.Context, credential, input string) (*model.Completion, error)
}
