package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/omarshaarawi/draftbot/internal/tables"
)

// DraftAssistant is the draft service as seen by the bot.
type DraftAssistant interface {
	Refresh(ctx context.Context) (string, error)
	Plan(ctx context.Context) (string, error)
	Board(ctx context.Context) (string, error)
	MarkMine(ctx context.Context, name string) (string, error)
	MarkTaken(ctx context.Context, name string) (string, error)
	Undo(ctx context.Context, name string) (string, error)
	Export(ctx context.Context, format tables.Format) ([]byte, string, error)
}

const helpText = "Available commands:\n" +
	"/plan - Best draft plan from here\n" +
	"/board - Your roster and best available players\n" +
	"/mine <player> - Mark a player as drafted by you\n" +
	"/taken <player> - Mark a player as drafted by someone else\n" +
	"/undo <player> - Put a player back on the board\n" +
	"/refresh - Reload the board from ESPN\n" +
	"/export [xlsx|json|yaml] - Download the draft board"

type Handler struct {
	draftService DraftAssistant
}

func NewHandler(draftService DraftAssistant) *Handler {
	return &Handler{draftService: draftService}
}

func (h *Handler) HandleCommand(ctx context.Context, update tgbotapi.Update) tgbotapi.Chattable {
	chatID := update.Message.Chat.ID
	msg := tgbotapi.NewMessage(chatID, "")
	command := strings.ToLower(update.Message.Command())
	args := strings.TrimSpace(update.Message.CommandArguments())
	msg.ParseMode = "Markdown"

	switch command {
	case "start":
		msg.Text = "Welcome to DraftBot! Use /help to see available commands."
	case "help":
		msg.Text = helpText
	case "plan":
		h.handlePlan(ctx, &msg)
	case "board":
		h.handleBoard(ctx, &msg)
	case "mine":
		h.handlePlayer(ctx, &msg, args, "mine", h.draftService.MarkMine)
	case "taken":
		h.handlePlayer(ctx, &msg, args, "taken", h.draftService.MarkTaken)
	case "undo":
		h.handlePlayer(ctx, &msg, args, "undo", h.draftService.Undo)
	case "refresh":
		h.handleRefresh(ctx, &msg)
	case "export":
		if doc, ok := h.handleExport(ctx, &msg, chatID, args); ok {
			return doc
		}
	default:
		msg.Text = "Unknown command. Use /help to see available commands."
	}

	return msg
}

func (h *Handler) handlePlan(ctx context.Context, msg *tgbotapi.MessageConfig) {
	plan, err := h.draftService.Plan(ctx)
	if err != nil {
		msg.Text = fmt.Sprintf("Error planning draft: %v", err)
	} else {
		msg.Text = plan
	}
}

func (h *Handler) handleBoard(ctx context.Context, msg *tgbotapi.MessageConfig) {
	board, err := h.draftService.Board(ctx)
	if err != nil {
		msg.Text = fmt.Sprintf("Error loading draft board: %v", err)
	} else {
		msg.Text = board
	}
}

func (h *Handler) handleRefresh(ctx context.Context, msg *tgbotapi.MessageConfig) {
	result, err := h.draftService.Refresh(ctx)
	if err != nil {
		msg.Text = fmt.Sprintf("Error refreshing draft board: %v", err)
	} else {
		msg.Text = result
	}
}

func (h *Handler) handlePlayer(ctx context.Context, msg *tgbotapi.MessageConfig, args, command string, mark func(context.Context, string) (string, error)) {
	if args == "" {
		msg.Text = fmt.Sprintf("Please provide a player name. Usage: /%s <player name>", command)
		return
	}
	result, err := mark(ctx, args)
	if err != nil {
		msg.Text = fmt.Sprintf("Error updating player: %v", err)
	} else {
		msg.Text = result
	}
}

func (h *Handler) handleExport(ctx context.Context, msg *tgbotapi.MessageConfig, chatID int64, args string) (tgbotapi.DocumentConfig, bool) {
	if args == "" {
		args = string(tables.XLSX)
	}
	format, err := tables.ParseFormat(args)
	if err != nil {
		msg.Text = "Unknown format. Usage: /export [xlsx|json|yaml]"
		return tgbotapi.DocumentConfig{}, false
	}

	raw, name, err := h.draftService.Export(ctx, format)
	if err != nil {
		msg.Text = fmt.Sprintf("Error exporting draft board: %v", err)
		return tgbotapi.DocumentConfig{}, false
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: raw})
	doc.Caption = "Draft board"
	return doc, true
}
