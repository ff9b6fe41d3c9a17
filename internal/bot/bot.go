package bot

import (
	"context"
	"fmt"
	"io"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"smarta-financials/internal/projection"
	"smarta-financials/internal/report"
)

// Dashboard is the subset of service.Dashboard the bot needs.
type Dashboard interface {
	Variants() []projection.Params
	Report(ctx context.Context, name string) (*report.Report, error)
	Export(ctx context.Context, name string, w io.Writer) (*report.Report, error)
}

// Sender is implemented by *tgbotapi.BotAPI.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api       *tgbotapi.BotAPI
	sender    Sender
	dashboard Dashboard
	admins    map[int64]bool
	logger    *zap.Logger
}

func New(token string, debug bool, dashboard Dashboard, adminIDs []int64, logger *zap.Logger) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}
	botAPI.Debug = debug

	logger.Info("Bot authorized",
		zap.String("username", botAPI.Self.UserName),
		zap.Int64("id", botAPI.Self.ID))

	b := newBot(botAPI, dashboard, adminIDs, logger)
	b.api = botAPI
	return b, nil
}

func newBot(sender Sender, dashboard Dashboard, adminIDs []int64, logger *zap.Logger) *Bot {
	admins := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}
	return &Bot{
		sender:    sender,
		dashboard: dashboard,
		admins:    admins,
		logger:    logger,
	}
}

// Start long-polls updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Shutting down bot")
			return nil

		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message != nil {
				b.processMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	b.logger.Debug("Processing message",
		zap.Int64("chat_id", chatID),
		zap.String("text", msg.Text))

	if !msg.IsCommand() {
		b.handleDefault(chatID)
		return
	}
	b.handleCommand(ctx, msg)
}

// allowed reports whether the sender may request reports. An empty admin
// list allows everyone.
func (b *Bot) allowed(msg *tgbotapi.Message) bool {
	if len(b.admins) == 0 {
		return true
	}
	if msg.From != nil && b.admins[msg.From.ID] {
		return true
	}
	return b.admins[msg.Chat.ID]
}

func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) {
	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Int64("chat_id", msg.ChatID),
			zap.String("text", msg.Text),
			zap.Error(err))
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendError(chatID int64, text string) {
	b.sendText(chatID, "❌ "+text)
}
