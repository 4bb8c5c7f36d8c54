package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/journal/pkg/model"
	"github.com/m-mizutani/journal/pkg/repository"
)

func TestMemoryGetSecrets(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()

	missing, err := repo.GetSecrets(ctx, "nobody")
	gt.NoError(t, err)
	gt.V(t, missing).Nil()

	repo.PutSecrets("alice", &model.Secrets{OpenAI: &model.SecretValue{Value: "sk-alice"}})
	got, err := repo.GetSecrets(ctx, "alice")
	gt.NoError(t, err)
	gt.Equal(t, got.Get(model.SecretOpenAI), "sk-alice")

	// returned value is a copy
	got.OpenAI = nil
	again, err := repo.GetSecrets(ctx, "alice")
	gt.NoError(t, err)
	gt.Equal(t, again.Get(model.SecretOpenAI), "sk-alice")
}
