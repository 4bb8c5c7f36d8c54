package repository

import (
	"context"
	"sync"

	"github.com/m-mizutani/journal/pkg/model"
)

// Memory is an in-process SecretStore, used for local mode and tests
type Memory struct {
	mu      sync.RWMutex
	secrets map[model.UserID]*model.Secrets
}

func NewMemory() *Memory {
	return &Memory{
		secrets: make(map[model.UserID]*model.Secrets),
	}
}

// PutSecrets stores a copy of secrets for the user
func (m *Memory) PutSecrets(userID model.UserID, secrets *model.Secrets) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *secrets
	m.secrets[userID] = &copied
}

func (m *Memory) GetSecrets(ctx context.Context, userID model.UserID) (*model.Secrets, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.secrets[userID]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}
