package mocks

import (
	"github.com/stretchr/testify/mock"

	"chat-client/internal/chat"
	"chat-client/internal/models"
)

// TransportMock scripts the connection surface a session depends on.
// Fire delivers events to subscribed handlers the way a live connection
// would, on the caller's goroutine.
type TransportMock struct {
	mock.Mock

	handlers []chat.Handler
}

func (m *TransportMock) Subscribe(h chat.Handler) {
	m.handlers = append(m.handlers, h)
}

func (m *TransportMock) Emit(ev models.ChatEvent) error {
	args := m.Called(ev)
	return args.Error(0)
}

func (m *TransportMock) State() chat.State {
	args := m.Called()
	return args.Get(0).(chat.State)
}

func (m *TransportMock) Disconnect() {
	m.Called()
}

// Fire dispatches an event to every subscribed handler.
func (m *TransportMock) Fire(ev chat.Event) {
	for _, h := range m.handlers {
		h(ev)
	}
}

// Emitted returns the envelopes passed to Emit, in call order.
func (m *TransportMock) Emitted() []models.ChatEvent {
	var out []models.ChatEvent
	for _, call := range m.Calls {
		if call.Method != "Emit" {
			continue
		}
		out = append(out, call.Arguments.Get(0).(models.ChatEvent))
	}
	return out
}

var _ chat.Transport = (*TransportMock)(nil)
