// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Memory is a token-bounded conversation history. When the total token
// count exceeds the budget, the oldest messages are evicted first so the
// recent turns of the conversation survive.
type Memory struct {
	mu        sync.Mutex
	messages  []Message
	totals    []int
	used      int
	maxTokens int
	enc       *tiktoken.Tiktoken
}

// NewMemory builds a Memory sized in tokens of the given model's encoding.
// Unknown models fall back to the cl100k_base encoding.
func NewMemory(model string, maxTokens int) (*Memory, error) {
	if maxTokens <= 0 {
		return nil, fmt.Errorf("memory token budget must be positive, got %d", maxTokens)
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("loading token encoding: %w", err)
		}
	}
	return &Memory{maxTokens: maxTokens, enc: enc}, nil
}

// Add appends a message and evicts the oldest messages while the history
// is over budget. A single message larger than the whole budget is kept
// on its own rather than dropped.
func (m *Memory) Add(role, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tokens := len(m.enc.Encode(content, nil, nil))
	m.messages = append(m.messages, Message{Role: role, Content: content})
	m.totals = append(m.totals, tokens)
	m.used += tokens

	for m.used > m.maxTokens && len(m.messages) > 1 {
		m.used -= m.totals[0]
		m.messages = m.messages[1:]
		m.totals = m.totals[1:]
	}
}

// Messages returns a copy of the current history, oldest first.
func (m *Memory) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// TokensUsed reports the token count of the retained history.
func (m *Memory) TokensUsed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.used
}
