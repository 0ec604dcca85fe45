package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockMailManager struct {
	mock.Mock
}

func (m *MockMailManager) SendEmail(ctx context.Context, to, subject, htmlBody string) error {
	args := m.Called(ctx, to, subject, htmlBody)
	return args.Error(0)
}

func (m *MockMailManager) SendActivationMail(ctx context.Context, email, username, activationCode string) error {
	args := m.Called(ctx, email, username, activationCode)
	return args.Error(0)
}

func (m *MockMailManager) SendPasswordResetMail(ctx context.Context, email, username, resetCode string, validFor time.Duration) error {
	args := m.Called(ctx, email, username, resetCode, validFor)
	return args.Error(0)
}
