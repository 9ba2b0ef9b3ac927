package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/suspectuso/gym-storefront/internal/config"
	"github.com/suspectuso/gym-storefront/internal/purchase"
)

type command int

const (
	cmdStart command = iota + 1
	cmdInfo
	cmdHours
	cmdContact
	cmdPackages
)

// commandTriggers maps slash commands and menu labels to commands
var commandTriggers = map[string]command{
	"/start":      cmdStart,
	"/info":       cmdInfo,
	"/hours":      cmdHours,
	"/contact":    cmdContact,
	"/packages":   cmdPackages,
	labelInfo:     cmdInfo,
	labelHours:    cmdHours,
	labelContact:  cmdContact,
	labelPackages: cmdPackages,
}

type messageHandler func(ctx context.Context, msg *models.Message)

// Bot translates Telegram updates into purchase flow calls
type Bot struct {
	bot      *bot.Bot
	cfg      *config.Config
	flow     *purchase.Controller
	commands map[command]messageHandler
	log      *slog.Logger
}

// New creates a new telegram bot. Extra options are appended to the defaults.
func New(cfg *config.Config, flow *purchase.Controller, log *slog.Logger, extra ...bot.Option) (*Bot, error) {
	b := &Bot{
		cfg:  cfg,
		flow: flow,
		log:  log,
	}
	b.commands = map[command]messageHandler{
		cmdStart:    b.handleStart,
		cmdInfo:     b.handleInfo,
		cmdHours:    b.handleHours,
		cmdContact:  b.handleContactInfo,
		cmdPackages: b.handlePackages,
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(b.defaultHandler),
		bot.WithCallbackQueryDataHandler(buyPrefix, bot.MatchTypePrefix, b.buyHandler),
	}
	opts = append(opts, extra...)

	tgBot, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	b.bot = tgBot
	return b, nil
}

// Start starts the bot polling
func (b *Bot) Start(ctx context.Context) {
	b.bot.Start(ctx)
}

// --- Dispatch ---

func (b *Bot) defaultHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.CallbackQuery != nil {
		b.answerCallback(ctx, update.CallbackQuery.ID, "", false)
		return
	}
	if update.Message == nil || update.Message.From == nil {
		return
	}

	msg := update.Message
	if msg.Contact != nil {
		b.handleSharedContact(ctx, msg)
		return
	}

	cmd, ok := parseCommand(msg.Text)
	if !ok {
		return
	}
	b.commands[cmd](ctx, msg)
}

func parseCommand(text string) (command, bool) {
	text = strings.TrimSpace(text)
	if cmd, ok := commandTriggers[text]; ok {
		return cmd, true
	}
	if !strings.HasPrefix(text, "/") {
		return 0, false
	}

	// "/start payload" or "/packages@gym_bot"
	name := strings.Fields(text)[0]
	if i := strings.IndexByte(name, '@'); i > 0 {
		name = name[:i]
	}
	cmd, ok := commandTriggers[name]
	return cmd, ok
}

// --- Commands ---

func (b *Bot) handleStart(ctx context.Context, msg *models.Message) {
	b.flow.Start(msg.From.ID)

	text := fmt.Sprintf(
		"👋 Welcome to <b>%s</b>!\n%s\n\nChoose an option:",
		html.EscapeString(b.cfg.BusinessName),
		html.EscapeString(b.cfg.BusinessDescription),
	)
	b.sendMessage(ctx, msg.Chat.ID, text, MenuKeyboard())
}

func (b *Bot) handleInfo(ctx context.Context, msg *models.Message) {
	text := fmt.Sprintf(
		"🏋️ <b>%s</b>\n%s",
		html.EscapeString(b.cfg.BusinessName),
		html.EscapeString(b.cfg.BusinessDescription),
	)
	b.sendMessage(ctx, msg.Chat.ID, text, nil)
}

func (b *Bot) handleHours(ctx context.Context, msg *models.Message) {
	text := "🕒 <b>Opening Hours:</b>\n" + html.EscapeString(b.cfg.BusinessHours)
	b.sendMessage(ctx, msg.Chat.ID, text, nil)
}

func (b *Bot) handleContactInfo(ctx context.Context, msg *models.Message) {
	text := fmt.Sprintf(
		"📞 <b>Phone:</b> %s\n📧 <b>Email:</b> %s\n📍 <b>Location:</b> %s",
		html.EscapeString(b.cfg.BusinessPhone),
		html.EscapeString(b.cfg.BusinessEmail),
		html.EscapeString(b.cfg.BusinessLocation),
	)
	b.sendMessage(ctx, msg.Chat.ID, text, nil)
}

func (b *Bot) handlePackages(ctx context.Context, msg *models.Message) {
	packages := b.flow.Packages()
	currency := html.EscapeString(b.flow.Currency())

	var lines []string
	for _, p := range packages {
		lines = append(lines, fmt.Sprintf(
			"💼 <b>%s</b>\n%s\n💰 %d %s",
			html.EscapeString(p.Name), html.EscapeString(p.Description), p.Price, currency,
		))
	}

	text := "🏋️ <b>Our Packages:</b>\n\n" + strings.Join(lines, "\n\n")
	b.sendMessage(ctx, msg.Chat.ID, text, PackagesKeyboard(packages, b.flow.Currency()))
}

// --- Contact ---

func (b *Bot) handleSharedContact(ctx context.Context, msg *models.Message) {
	contact := msg.Contact
	if contact.UserID != msg.From.ID {
		b.sendMessage(ctx, msg.Chat.ID, "📱 Please share your own contact using the button below.", ContactKeyboard())
		return
	}

	err := b.flow.CaptureContact(ctx, purchase.Contact{
		ChatID:    msg.From.ID,
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
		Phone:     contact.PhoneNumber,
	})
	if err != nil {
		b.log.Error("capture contact", "user_id", msg.From.ID, "error", err)
		b.sendMessage(ctx, msg.Chat.ID, "❌ Could not save your contact. Please try again later.", nil)
		return
	}

	text := fmt.Sprintf("✅ Thanks %s! Your contact is saved.", html.EscapeString(msg.From.FirstName))
	b.sendMessage(ctx, msg.Chat.ID, text, MenuKeyboard())
}

func (b *Bot) requestContact(ctx context.Context, chatID int64) {
	b.sendMessage(ctx, chatID, "📱 Please share your phone number:", ContactKeyboard())
}

// --- Purchase ---

func (b *Bot) buyHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	cb := update.CallbackQuery
	userID := cb.From.ID
	chatID := callbackChatID(cb)
	packageID := strings.TrimPrefix(cb.Data, buyPrefix)

	checkout, err := b.flow.SelectPackage(ctx, userID, packageID)

	var extErr *purchase.ExternalServiceError
	switch {
	case err == nil:
		b.answerCallback(ctx, cb.ID, "", false)
		text := fmt.Sprintf(
			"💳 Click below to pay for <b>%s</b>:\n%s",
			html.EscapeString(checkout.Package.Name), checkout.CheckoutURL,
		)
		b.sendMessage(ctx, chatID, text, nil)
	case errors.Is(err, purchase.ErrUnknownPackage):
		b.answerCallback(ctx, cb.ID, "Invalid package!", true)
	case errors.Is(err, purchase.ErrContactRequired):
		b.requestContact(ctx, chatID)
		b.answerCallback(ctx, cb.ID, "Please share your contact first!", false)
	case errors.As(err, &extErr):
		b.answerCallback(ctx, cb.ID, "", false)
		b.sendMessage(ctx, chatID, "❌ Payment initialization failed. Please try again later.", nil)
	default:
		b.log.Error("select package", "user_id", userID, "package", packageID, "error", err)
		b.answerCallback(ctx, cb.ID, "", false)
		b.sendMessage(ctx, chatID, "❌ Something went wrong. Please try again later.", nil)
	}
}

// NotifyPayment tells the user how their checkout ended
func (b *Bot) NotifyPayment(ctx context.Context, chatID int64, packageName string, success bool) error {
	text := "❌ Payment failed. Please try again."
	if success {
		text = "✅ Payment successful! Your membership is now active. 🎉"
		if packageName != "" {
			text = fmt.Sprintf("✅ Payment successful! Your <b>%s</b> membership is now active. 🎉", html.EscapeString(packageName))
		}
	}
	return b.send(ctx, chatID, text, nil)
}

// --- Helpers ---

func callbackChatID(cb *models.CallbackQuery) int64 {
	if cb.Message.Message != nil {
		return cb.Message.Message.Chat.ID
	}
	return cb.From.ID
}

func (b *Bot) answerCallback(ctx context.Context, id, text string, alert bool) {
	_, err := b.bot.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: id,
		Text:            text,
		ShowAlert:       alert,
	})
	if err != nil {
		b.log.Error("answer callback", "error", err)
	}
}

func (b *Bot) sendMessage(ctx context.Context, chatID int64, text string, markup models.ReplyMarkup) {
	if err := b.send(ctx, chatID, text, markup); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) send(ctx context.Context, chatID int64, text string, markup models.ReplyMarkup) error {
	disablePreview := true
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
		LinkPreviewOptions: &models.LinkPreviewOptions{
			IsDisabled: &disablePreview,
		},
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}

	_, err := b.bot.SendMessage(ctx, params)
	return err
}
