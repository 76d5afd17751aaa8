package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendVerificationEmail(ctx context.Context, to, baseURL, token string) error {
	args := m.Called(ctx, to, baseURL, token)
	return args.Error(0)
}

func (m *MockMailer) SendPasswordResetEmail(ctx context.Context, to, baseURL, token string) error {
	args := m.Called(ctx, to, baseURL, token)
	return args.Error(0)
}
