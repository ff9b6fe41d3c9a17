package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"smarta-financials/internal/report"
	"smarta-financials/internal/variants"
)

const helpText = `Available commands:
/variants - list pricing variants
/report <variant> - projection summary and Excel workbook
/help - show this help`

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start", "help":
		b.sendText(chatID, helpText)
	case "variants":
		b.handleVariants(chatID)
	case "report":
		b.handleReport(ctx, msg)
	default:
		b.handleUnknownCommand(chatID)
	}
}

func (b *Bot) handleDefault(chatID int64) {
	b.sendError(chatID, "I only understand commands. Try /help.")
}

func (b *Bot) handleUnknownCommand(chatID int64) {
	b.sendError(chatID, "Unknown command. Use /help to see what I can do.")
}

func (b *Bot) handleVariants(chatID int64) {
	var sb strings.Builder
	sb.WriteString("Pricing variants:\n")
	for _, v := range b.dashboard.Variants() {
		fmt.Fprintf(&sb, "• %s - %s\n", v.Name, v.Title)
	}
	b.sendText(chatID, sb.String())
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if !b.allowed(msg) {
		b.logger.Warn("Report request denied", zap.Int64("chat_id", chatID))
		b.sendError(chatID, "You are not allowed to request reports.")
		return
	}

	name := strings.TrimSpace(msg.CommandArguments())
	if name == "" {
		b.sendError(chatID, "Usage: /report <variant>. See /variants.")
		return
	}

	var buf bytes.Buffer
	r, err := b.dashboard.Export(ctx, name, &buf)
	if err != nil {
		if errors.Is(err, variants.ErrUnknownVariant) {
			b.sendError(chatID, fmt.Sprintf("Unknown variant %q. See /variants.", name))
			return
		}
		b.logger.Error("Failed to build report",
			zap.Int64("chat_id", chatID),
			zap.String("variant", name),
			zap.Error(err))
		b.sendError(chatID, "Failed to build the report.")
		return
	}

	b.sendText(chatID, report.Summary(r))

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("%s_%s.xlsx", r.Variant, r.GeneratedAt.Format("20060102_1504")),
		Bytes: buf.Bytes(),
	})
	doc.Caption = r.Title
	if _, err := b.sender.Send(doc); err != nil {
		b.logger.Error("Failed to send workbook",
			zap.Int64("chat_id", chatID),
			zap.String("report_id", r.ID.String()),
			zap.Error(err))
	}
}
