package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docqa/docqa-backend/internal/entity"
)

func TestHistoryRollingWindow(t *testing.T) {
	h := NewHistory(2, time.Minute)

	h.Append(1, "q1", "a1")
	h.Append(1, "q2", "a2")
	h.Append(1, "q3", "a3")

	messages := h.Get(1)
	require.Len(t, messages, 4, "window of 2 turns keeps 4 messages")
	assert.Equal(t, "q2", messages[0].Content)
	assert.Equal(t, entity.RoleUser, messages[0].Role)
	assert.Equal(t, "a3", messages[3].Content)
	assert.Equal(t, entity.RoleAssistant, messages[3].Role)
}

func TestHistoryIsolatesChats(t *testing.T) {
	h := NewHistory(5, time.Minute)

	h.Append(1, "from one", "ok")
	h.Append(2, "from two", "ok")

	assert.Equal(t, "from one", h.Get(1)[0].Content)
	assert.Equal(t, "from two", h.Get(2)[0].Content)
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory(5, time.Minute)

	h.Append(1, "q", "a")
	h.Clear(1)

	assert.Empty(t, h.Get(1))
}
