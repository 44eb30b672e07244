// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"sync"
)

// Mock is a Backend for tests and local runs without a vendor key. It
// replays canned responses in order (repeating the last one) and records
// every request it receives.
type Mock struct {
	Responses []string
	Err       error

	mu       sync.Mutex
	requests []Request
	next     int
}

// Name returns the backend identifier.
func (m *Mock) Name() string { return "mock" }

// Complete records the request and returns the next canned response.
func (m *Mock) Complete(_ context.Context, req Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", nil
	}
	resp := m.Responses[min(m.next, len(m.Responses)-1)]
	m.next++
	return resp, nil
}

// Requests returns a copy of the recorded requests.
func (m *Mock) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}
