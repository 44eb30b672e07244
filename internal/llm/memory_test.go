// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryKeepsHistoryUnderBudget(t *testing.T) {
	mem, err := NewMemory("gpt-4o", 1000)
	require.NoError(t, err)

	mem.Add("user", "What drives solar panel costs?")
	mem.Add("assistant", "Mostly module prices and installation labor.")

	msgs := mem.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "assistant", msgs[1].Role)
}

func TestMemoryEvictsOldestFirst(t *testing.T) {
	mem, err := NewMemory("gpt-4o", 30)
	require.NoError(t, err)

	filler := strings.Repeat("solar rooftop installation cost ", 5)
	mem.Add("user", filler)
	mem.Add("assistant", filler)
	mem.Add("user", "final question")

	msgs := mem.Messages()
	require.NotEmpty(t, msgs)
	assert.Equal(t, "final question", msgs[len(msgs)-1].Content)
	assert.LessOrEqual(t, mem.TokensUsed(), 30)
}

func TestMemoryKeepsOversizedSingleMessage(t *testing.T) {
	mem, err := NewMemory("gpt-4o", 5)
	require.NoError(t, err)

	mem.Add("user", strings.Repeat("long message about solar energy ", 20))
	require.Len(t, mem.Messages(), 1)
}

func TestMemoryRejectsNonPositiveBudget(t *testing.T) {
	_, err := NewMemory("gpt-4o", 0)
	require.Error(t, err)
}
