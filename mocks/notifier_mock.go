package mocks

import (
	"context"
	"sync"
)

type SentNotification struct {
	Kind    string
	Payload interface{}
}

// MockNotifier records notifications instead of publishing them.
type MockNotifier struct {
	mu   sync.Mutex
	sent []SentNotification
	Err  error
}

func (n *MockNotifier) Notify(_ context.Context, kind string, payload interface{}) chan error {
	n.mu.Lock()
	n.sent = append(n.sent, SentNotification{Kind: kind, Payload: payload})
	n.mu.Unlock()

	errChan := make(chan error, 1)
	errChan <- n.Err
	return errChan
}

func (n *MockNotifier) Sent() []SentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]SentNotification(nil), n.sent...)
}

func (n *MockNotifier) Kinds() []string {
	kinds := []string{}
	for _, s := range n.Sent() {
		kinds = append(kinds, s.Kind)
	}
	return kinds
}
