package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chat-client/internal/observability"
)

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, env observability.EventEnvelope, headers map[string]string) error {
	args := m.Called(ctx, env, headers)
	return args.Error(0)
}

var _ observability.Publisher = (*PublisherMock)(nil)
