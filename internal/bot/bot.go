package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/xaenox/blog-assistant/internal/assistant"
	"github.com/xaenox/blog-assistant/internal/models"
	"github.com/xaenox/blog-assistant/internal/render"
	"github.com/xaenox/blog-assistant/internal/storage"
)

// Telegram rejects longer messages.
const maxMessageLength = 4096

// Sender is the part of the Telegram API the bot talks to.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api       *tgbotapi.BotAPI
	sender    Sender
	svc       *assistant.Service
	persister assistant.Persister
	logger    *zap.Logger
	wg        sync.WaitGroup
}

func New(token string, svc *assistant.Service, persister assistant.Persister, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := NewWithSender(api, svc, persister, logger)
	b.api = api
	return b, nil
}

// NewWithSender builds a bot that only sends through s. It cannot Start.
func NewWithSender(s Sender, svc *assistant.Service, persister assistant.Persister, logger *zap.Logger) *Bot {
	return &Bot{
		sender:    s,
		svc:       svc,
		persister: persister,
		logger:    logger,
	}
}

// Start polls for updates until ctx is done, then waits for in-flight
// messages to finish.
func (b *Bot) Start(ctx context.Context) error {
	if b.api == nil {
		return errors.New("bot has no telegram api")
	}
	b.logger.Info("Bot started", zap.String("username", b.api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	defer b.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("Bot stopping", zap.Error(ctx.Err()))
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.wg.Add(1)
			go func(m *tgbotapi.Message) {
				defer b.wg.Done()
				b.handleMessage(ctx, m)
			}(update.Message)
		}
	}
}

func sessionID(chatID int64) string {
	return "tg-" + strconv.FormatInt(chatID, 10)
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	text := message.Text
	if message.Caption != "" {
		text = message.Caption
	}
	if strings.TrimSpace(text) == "" {
		b.sendMessage(message.Chat.ID, "Please send me a text message.")
		return
	}

	req := assistant.Request{
		SessionID: sessionID(message.Chat.ID),
		Message:   text,
	}
	if message.From != nil {
		req.UserID = strconv.FormatInt(message.From.ID, 10)
		req.Username = message.From.UserName
	}

	resp := b.svc.Process(ctx, req)
	b.sendReply(message.Chat.ID, message.MessageID, resp.Message)

	switch resp.Action {
	case models.ActionGenerate, models.ActionUpdate:
		if resp.BlogState.Title != "" {
			b.sendDraftSummary(message.Chat.ID, resp.BlogState)
		}
	}
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	case "new":
		b.handleNew(ctx, message)
	case "draft":
		b.handleDraft(ctx, message)
	case "save":
		b.handleSave(ctx, message)
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	welcome := `Welcome to Blog Assistant! ✍️
I can write blog posts with you, step by step.

Tell me what to write about, for example "Create a blog about home coffee brewing".
Use /help to see all available commands.`

	b.sendMessage(message.Chat.ID, welcome)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	help := `Available commands:
/start - Start the bot
/help - Show this help message
/new - Drop the current draft and start over
/draft - Show the current draft
/save - Save the draft to your collection

You can also just talk to me:
- "Write about ..." creates a new draft
- "Change the title to ..." edits the draft
- "Save it" marks the draft for saving`

	b.sendMessage(message.Chat.ID, help)
}

func (b *Bot) handleNew(ctx context.Context, message *tgbotapi.Message) {
	if err := b.svc.ClearDraft(ctx, sessionID(message.Chat.ID)); err != nil {
		b.logger.Error("Failed to clear draft",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't clear your draft. Please try again.")
		return
	}
	b.sendMessage(message.Chat.ID, "Draft cleared. What should we write about next?")
}

func (b *Bot) handleDraft(ctx context.Context, message *tgbotapi.Message) {
	session, err := b.svc.Session(ctx, sessionID(message.Chat.ID))
	if err != nil || session.Draft == nil {
		b.sendMessage(message.Chat.ID, "You don't have a draft yet.")
		return
	}
	b.sendMessage(message.Chat.ID, truncate(render.Markdown(*session.Draft)))
}

func (b *Bot) handleSave(ctx context.Context, message *tgbotapi.Message) {
	if b.persister == nil {
		b.sendMessage(message.Chat.ID, "Saving is not available right now.")
		return
	}

	blogID, err := b.svc.CommitSave(ctx, sessionID(message.Chat.ID), b.persister)
	switch {
	case err == nil:
		b.logger.Info("Blog saved from chat",
			zap.Int64("chat_id", message.Chat.ID),
			zap.String("blog_id", blogID))
		b.sendMessage(message.Chat.ID, "Saved! Your blog is now in your collection.")
	case errors.Is(err, assistant.ErrNothingToSave), errors.Is(err, storage.ErrNotFound):
		b.sendMessage(message.Chat.ID, `Nothing to save yet. Generate a draft, then say "save it" or use /save.`)
	case errors.Is(err, assistant.ErrDraftIncomplete):
		b.sendMessage(message.Chat.ID, "The draft is missing its title or body. Ask me to finish it first.")
	default:
		b.logger.Error("Failed to save blog",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't save your blog. Please try again.")
	}
}

func (b *Bot) sendDraftSummary(chatID int64, d models.Draft) {
	text := fmt.Sprintf("*%s*\n", escapeMarkdown(d.Title))
	if d.Excerpt != "" {
		text += fmt.Sprintf("_%s_\n", escapeMarkdown(d.Excerpt))
	}
	if d.Category != "" {
		text += fmt.Sprintf("\n*Category:* %s\n", escapeMarkdown("#"+strings.ReplaceAll(d.Category, " ", "_")))
	}
	if len(d.Tags) > 0 {
		tags := make([]string, len(d.Tags))
		for i, tag := range d.Tags {
			tags[i] = escapeMarkdown("#" + strings.ReplaceAll(tag, " ", "_"))
		}
		text += fmt.Sprintf("*Tags:* %s\n", strings.Join(tags, " "))
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error("Failed to send draft summary",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

// escapeMarkdown escapes the characters MarkdownV2 treats specially.
func escapeMarkdown(text string) string {
	specialChars := []string{"\\", "_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "-", "=", "|", "{", "}", ".", "!"}
	escaped := text
	for _, char := range specialChars {
		escaped = strings.ReplaceAll(escaped, char, "\\"+char)
	}
	return escaped
}

func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= maxMessageLength {
		return text
	}
	return string(runes[:maxMessageLength-1]) + "…"
}

func (b *Bot) sendReply(chatID int64, replyToID int, text string) {
	msg := tgbotapi.NewMessage(chatID, truncate(text))
	msg.ReplyToMessageID = replyToID
	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error("Failed to send reply",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "⚠️ "+text)
	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error("Failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}
