package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/docqa/docqa-backend/internal/entity"
)

const (
	startMessage = "Hi! Send me a question and I will answer it using the indexed documents.\n\n" +
		"Commands:\n/help - usage\n/clear - forget our conversation\n/info - index status"

	helpMessage = "Just type your question as a regular message.\n\n" +
		"When the indexed documents cover the topic, the answer is grounded in them " +
		"and marked with \U0001F4DA. Otherwise I answer from general knowledge.\n\n" +
		"/clear starts a fresh conversation, /info shows what is indexed."

	clearedMessage = "Conversation history cleared."
	errorMessage   = "Something went wrong, please try again later."
)

// handleCommand handles /start, /help, /clear and /info
func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	switch message.Command() {
	case "start":
		b.history.Clear(chatID)
		b.send(ctx, chatID, startMessage)
	case "help":
		b.send(ctx, chatID, helpMessage)
	case "clear":
		b.history.Clear(chatID)
		b.send(ctx, chatID, clearedMessage)
	case "info":
		b.handleInfo(ctx, chatID)
	default:
		b.send(ctx, chatID, "Unknown command. Try /help.")
	}
}

// handleInfo reports the tenant's index status
func (b *Bot) handleInfo(ctx context.Context, chatID int64) {
	stats, err := b.tenantUC.Stats(ctx, b.cfg.TenantID)
	if err != nil {
		ctxzap.Error(ctx, "failed to get tenant stats", zap.Error(err))
		b.send(ctx, chatID, errorMessage)
		return
	}

	b.send(ctx, chatID, fmt.Sprintf(
		"Tenant: %s\nIndexed chunks: %d\nProvider: %s\nModel: %s",
		stats.TenantID, stats.VectorCount, stats.Provider, stats.Model,
	))
}

// handleQuestion answers a free-text message through the QA pipeline
func (b *Bot) handleQuestion(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	question := strings.TrimSpace(message.Text)

	b.sendTyping(ctx, chatID)

	resp, err := b.chatUC.Ask(ctx, b.cfg.TenantID, &entity.ChatRequest{
		Message: question,
		History: b.history.Get(chatID),
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to answer question",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
		b.send(ctx, chatID, errorMessage)
		return
	}

	b.history.Append(chatID, question, resp.Answer)

	text := resp.Answer
	if resp.UsedContext {
		text += fmt.Sprintf("\n\n\U0001F4DA Based on %d document fragment(s)", len(resp.Sources))
	}
	b.send(ctx, chatID, text)
}

func (b *Bot) send(ctx context.Context, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		ctxzap.Error(ctx, "failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

func (b *Bot) sendTyping(ctx context.Context, chatID int64) {
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	if _, err := b.api.Request(action); err != nil {
		ctxzap.Debug(ctx, "failed to send typing action", zap.Error(err))
	}
}
