package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// commandHandler turns one command update into a reply.
type commandHandler interface {
	HandleCommand(ctx context.Context, update tgbotapi.Update) tgbotapi.Chattable
}

// sender is the part of the Bot API replies go out through.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramBot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
	chatID  int64
}

func NewTelegramBot(token string, chatID int64, assistant DraftAssistant) (*TelegramBot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("error connecting to Telegram: %w", err)
	}

	return &TelegramBot{
		api:     api,
		handler: NewHandler(assistant),
		chatID:  chatID,
	}, nil
}

// Start long-polls for commands until ctx is done.
func (t *TelegramBot) Start(ctx context.Context) error {
	slog.Info("Draft bot listening", "username", t.api.Self.UserName, "chat_id", t.chatID)

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 60
	updates := t.api.GetUpdatesChan(cfg)
	defer t.api.StopReceivingUpdates()

	dispatch(ctx, updates, t.handler, t.api)
	return nil
}

// dispatch answers each command on its own goroutine, so a /plan solve does
// not hold up /board or /mine. It returns when ctx is done or updates closes,
// after every command in flight has replied.
func dispatch(ctx context.Context, updates <-chan tgbotapi.Update, handler commandHandler, out sender) {
	var inFlight sync.WaitGroup
	defer inFlight.Wait()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			inFlight.Add(1)
			go func() {
				defer inFlight.Done()
				reply(ctx, update, handler, out)
			}()
		case <-ctx.Done():
			return
		}
	}
}

func reply(ctx context.Context, update tgbotapi.Update, handler commandHandler, out sender) {
	command := update.Message.Command()
	slog.Debug("Command received", "command", command, "chat_id", update.Message.Chat.ID)

	if _, err := out.Send(handler.HandleCommand(ctx, update)); err != nil {
		slog.Error("Error sending reply", "command", command, "error", err)
	}
}

// SendMessage posts text to the configured draft chat.
func (t *TelegramBot) SendMessage(text string) error {
	if t.chatID == 0 {
		return fmt.Errorf("chat ID not set")
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "Markdown"
	if _, err := t.api.Send(msg); err != nil {
		slog.Error("Error sending draft update", "chat_id", t.chatID, "error", err)
		return fmt.Errorf("error sending message: %w", err)
	}
	return nil
}
