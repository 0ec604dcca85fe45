package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tamuroo-server/internal/store"
)

type MockDatabaseManager struct {
	mock.Mock
}

func (m *MockDatabaseManager) Collections() store.Collections {
	args := m.Called()
	return args.Get(0).(store.Collections)
}

func (m *MockDatabaseManager) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDatabaseManager) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
