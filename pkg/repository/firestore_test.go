package repository_test

import (
	"context"
	"os"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/journal/pkg/model"
	"github.com/m-mizutani/journal/pkg/repository"
)

func setupFirestore(t *testing.T) (*repository.Firestore, *firestore.Client) {
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")

	if projectID == "" || databaseID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID and TEST_FIRESTORE_DATABASE_ID must be set to run Firestore tests")
	}

	ctx := context.Background()
	repo, err := repository.New(ctx, projectID, databaseID)
	gt.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	gt.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return repo, client
}

func TestFirestoreGetSecrets(t *testing.T) {
	repo, client := setupFirestore(t)
	ctx := context.Background()

	userID := model.UserID("test-" + uuid.New().String())
	doc := client.Collection("secrets").Doc(string(userID))
	_, err := doc.Set(ctx, map[string]any{
		"openai": map[string]any{"value": "sk-test", "note": "ignored"},
	})
	gt.NoError(t, err)
	t.Cleanup(func() { _, _ = doc.Delete(context.Background()) })

	secrets, err := repo.GetSecrets(ctx, userID)
	gt.NoError(t, err)
	gt.V(t, secrets).NotNil()
	gt.Equal(t, secrets.Get(model.SecretOpenAI), "sk-test")
	gt.Equal(t, secrets.Get(model.SecretGemini), "")
}

func TestFirestoreGetSecretsNotFound(t *testing.T) {
	repo, _ := setupFirestore(t)

	secrets, err := repo.GetSecrets(context.Background(), model.UserID("non-existent-"+uuid.New().String()))
	gt.NoError(t, err)
	gt.V(t, secrets).Nil()
}
