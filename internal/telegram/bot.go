package telegram

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/kitbuilder587/cine-bot/internal/metrics"
	"github.com/kitbuilder587/cine-bot/internal/ratelimit"
	"github.com/kitbuilder587/cine-bot/internal/service"
)

// Messenger - часть tgbotapi.BotAPI, которой пользуется бот.
type Messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type BotConfig struct {
	Token             string
	Debug             bool
	RequestsPerMinute int
}

type Bot struct {
	api         Messenger
	sessions    service.SessionService
	logger      *zap.Logger
	metrics     *metrics.Metrics
	handler     *Handler
	rateLimiter *ratelimit.Limiter
	wg          sync.WaitGroup
}

func New(cfg BotConfig, sessions service.SessionService, logger *zap.Logger, m *metrics.Metrics) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	api.Debug = cfg.Debug

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
	)

	return NewWithAPI(api, cfg, sessions, logger, m), nil
}

func NewWithAPI(api Messenger, cfg BotConfig, sessions service.SessionService, logger *zap.Logger, m *metrics.Metrics) *Bot {
	bot := &Bot{
		api:      api,
		sessions: sessions,
		logger:   logger,
		metrics:  m,
		rateLimiter: ratelimit.New(ratelimit.Config{
			RequestsPerMinute: cfg.RequestsPerMinute,
		}),
	}
	bot.handler = NewHandler(bot)
	return bot
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("bot started, waiting for updates")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("bot stopping, waiting for handlers to finish")
			b.api.StopReceivingUpdates()
			b.wg.Wait()
			b.rateLimiter.Stop()
			b.logger.Info("all handlers finished")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				b.wg.Wait()
				b.rateLimiter.Stop()
				return nil
			}
			if update.Message == nil && update.CallbackQuery == nil {
				continue
			}
			b.wg.Add(1)
			go func(upd tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	startTime := time.Now()
	reqType := updateType(update)

	if b.metrics != nil {
		b.metrics.IncRequestsInFlight()
		defer b.metrics.DecRequestsInFlight()
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic in update handler",
				zap.Any("panic", r),
				zap.Int64("chat_id", updateChatID(update)),
			)
			if b.metrics != nil {
				b.metrics.RecordRequest(reqType, "panic", time.Since(startTime))
			}
		}
	}()

	if update.CallbackQuery != nil {
		b.handler.HandleCallback(ctx, update.CallbackQuery)
	} else {
		b.handler.HandleMessage(ctx, update.Message)
	}

	if b.metrics != nil {
		b.metrics.RecordRequest(reqType, "processed", time.Since(startTime))
	}
}

func updateType(update tgbotapi.Update) string {
	switch {
	case update.CallbackQuery != nil:
		return "callback"
	case update.Message != nil:
		if cmd, _ := ParseInput(update.Message.Text); cmd != "" {
			return "command"
		}
		return "query"
	default:
		return "other"
	}
}

func updateChatID(update tgbotapi.Update) int64 {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		return update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
		return update.CallbackQuery.Message.Chat.ID
	default:
		return 0
	}
}

func (b *Bot) Send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := b.api.Send(msg)
	return err
}

// SendWithMore отправляет текст с кнопкой "Generate more".
func (b *Bot) SendWithMore(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = moreKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendPhoto(chatID int64, photoURL, caption string) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(photoURL))
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(photo)
	return err
}

func (b *Bot) SendTyping(chatID int64) {
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	b.api.Request(action)
}

// AnswerCallback снимает "часики" с нажатой кнопки.
func (b *Bot) AnswerCallback(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.logger.Debug("failed to answer callback", zap.Error(err))
	}
}

func (b *Bot) RecordRateLimitHit() {
	if b.metrics != nil {
		b.metrics.RecordRateLimitHit()
	}
}

func moreKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(MoreButtonText, CallbackMore),
		),
	)
}
