// Package state keeps per-chat conversation history for the bot.
package state

import (
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/docqa/docqa-backend/internal/entity"
)

// History is a rolling per-chat message window with TTL expiry. Idle chats
// are forgotten; active chats keep at most window*2 messages (a question and
// an answer per turn).
type History struct {
	mu     sync.Mutex
	cache  *cache.Cache
	window int
}

func NewHistory(window int, ttl time.Duration) *History {
	return &History{
		cache:  cache.New(ttl, 2*ttl),
		window: window,
	}
}

// Get returns the chat's history, oldest first.
func (h *History) Get(chatID int64) []entity.ChatMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.get(chatID)
}

// Append records one exchange and refreshes the chat's TTL.
func (h *History) Append(chatID int64, question, answer string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	messages := append(h.get(chatID),
		entity.ChatMessage{Role: entity.RoleUser, Content: question},
		entity.ChatMessage{Role: entity.RoleAssistant, Content: answer},
	)

	if limit := h.window * 2; len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}

	h.cache.SetDefault(key(chatID), messages)
}

// Clear forgets the chat's history.
func (h *History) Clear(chatID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cache.Delete(key(chatID))
}

func (h *History) get(chatID int64) []entity.ChatMessage {
	if stored, ok := h.cache.Get(key(chatID)); ok {
		if messages, ok := stored.([]entity.ChatMessage); ok {
			return messages
		}
	}
	return nil
}

func key(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
