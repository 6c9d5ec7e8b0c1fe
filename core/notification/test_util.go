package notification

import (
	"context"
	"sync"

	"github.com/trezcool/edusite/core"
)

// PusherMock records notifications and answers with a canned Response.
type PusherMock struct {
	mu    sync.Mutex
	calls []Notification

	Response Response
	Err      error
}

var _ Pusher = (*PusherMock)(nil)

func NewPusherMock() *PusherMock {
	return &PusherMock{
		Response: Response{
			StatusCode:  200,
			ContentType: "application/json",
			Body:        []byte(`{"id":"notif-1","recipients":1}`),
		},
	}
}

func (m *PusherMock) Push(_ context.Context, _ core.PushCredentials, n Notification) (Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, n)
	return m.Response, m.Err
}

func (m *PusherMock) Calls() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Notification(nil), m.calls...)
}

func (m *PusherMock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}
