package telegram

import (
	"context"
	"errors"
	"fmt"
	"math"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/kitbuilder587/cine-bot/internal/controller"
	"github.com/kitbuilder587/cine-bot/internal/domain"
)

const historyLimit = 10

type Handler struct {
	bot *Bot
}

func NewHandler(bot *Bot) *Handler {
	return &Handler{bot: bot}
}

func (h *Handler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg == nil || msg.Chat == nil || msg.From == nil {
		return
	}

	command, args := ParseInput(msg.Text)

	h.bot.logger.Info("received message",
		zap.Int64("user_id", msg.From.ID),
		zap.String("username", msg.From.UserName),
		zap.String("command", command),
	)

	switch command {
	case "":
		h.handleSearch(ctx, msg.Chat.ID, msg.From.ID, args)
	case "search":
		if err := domain.ValidateQuery(domain.NormalizeQuery(args)); err != nil {
			h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
			return
		}
		h.handleSearch(ctx, msg.Chat.ID, msg.From.ID, args)
	case "more":
		h.handleMore(ctx, msg.Chat.ID, msg.From.ID)
	case "clear":
		h.handleClear(msg.Chat.ID)
	case "history":
		h.handleHistory(ctx, msg.Chat.ID)
	case "forget":
		h.handleForget(ctx, msg.Chat.ID)
	case "start":
		h.handleStart(msg.Chat.ID)
	case "help":
		h.handleHelp(msg.Chat.ID)
	default:
		h.bot.Send(msg.Chat.ID, "Unknown command. Use /help to see what I can do.")
	}
}

func (h *Handler) HandleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return
	}

	h.bot.AnswerCallback(cb.ID, "")

	switch cb.Data {
	case CallbackMore:
		h.handleMore(ctx, cb.Message.Chat.ID, cb.From.ID)
	default:
		h.bot.logger.Debug("unknown callback", zap.String("data", cb.Data))
	}
}

func (h *Handler) handleStart(chatID int64) {
	h.bot.Send(chatID, "Welcome! Describe a movie you want to watch and I will find matching titles.\n\nUse /help to see available commands.")
}

func (h *Handler) handleHelp(chatID int64) {
	helpText := `<b>Available commands:</b>

/search text - Search movies by description
/more - Show more movies for the last search
/clear - Clear the current query
/history - Your recent searches
/forget - Delete your search history
/help - Show this help

<b>How to use:</b>
Just send a description, for example:
• "mind-bending sci-fi about dreams"
• "90s heist movie with a great soundtrack"

Press <b>Generate more</b> under the results to get new titles without repeats.`

	h.bot.Send(chatID, helpText)
}

func (h *Handler) allow(chatID, userID int64) bool {
	if h.bot.rateLimiter.Allow(userID) {
		return true
	}

	retry := h.bot.rateLimiter.RetryAfter(userID)
	h.bot.logger.Warn("rate limit exceeded",
		zap.Int64("user_id", userID),
		zap.Duration("retry_after", retry),
	)
	h.bot.RecordRateLimitHit()
	h.bot.Send(chatID, fmt.Sprintf("Too many requests. Please try again in %d s.", int(math.Ceil(retry.Seconds()))))
	return false
}

func (h *Handler) handleSearch(ctx context.Context, chatID, userID int64, query string) {
	if domain.NormalizeQuery(query) == "" {
		return
	}
	if !h.allow(chatID, userID) {
		return
	}

	h.bot.SendTyping(chatID)

	state, outcome := h.bot.sessions.Submit(ctx, chatID, query)
	switch outcome {
	case controller.Busy:
		h.bot.Send(chatID, "Still searching, please wait.")
	case controller.Applied:
		h.render(chatID, state, false)
	}
}

func (h *Handler) handleMore(ctx context.Context, chatID, userID int64) {
	if !h.allow(chatID, userID) {
		return
	}

	h.bot.SendTyping(chatID)

	state, outcome := h.bot.sessions.LoadMore(ctx, chatID)
	switch outcome {
	case controller.Busy:
		h.bot.Send(chatID, "Already loading more movies, please wait.")
	case controller.Ignored:
		h.bot.Send(chatID, "Nothing to continue. Send a movie description first.")
	case controller.Applied:
		h.render(chatID, state, true)
	}
}

func (h *Handler) handleClear(chatID int64) {
	h.bot.sessions.Clear(chatID)
	h.bot.Send(chatID, "Query cleared. Send a new description to search.")
}

func (h *Handler) handleHistory(ctx context.Context, chatID int64) {
	entries, err := h.bot.sessions.History(ctx, chatID, historyLimit)
	if err != nil {
		h.bot.logger.Error("failed to list history", zap.Error(err), zap.Int64("chat_id", chatID))
		h.bot.Send(chatID, mapErrorToMessage(err))
		return
	}
	if len(entries) == 0 {
		h.bot.Send(chatID, "No searches yet.")
		return
	}

	for _, m := range SplitMessage(FormatHistory(entries), messageLimit) {
		h.bot.Send(chatID, m)
	}
}

func (h *Handler) handleForget(ctx context.Context, chatID int64) {
	if err := h.bot.sessions.Forget(ctx, chatID); err != nil {
		h.bot.logger.Error("failed to forget chat", zap.Error(err), zap.Int64("chat_id", chatID))
		h.bot.Send(chatID, mapErrorToMessage(err))
		return
	}
	h.bot.Send(chatID, "Your search history was deleted.")
}

// render показывает результат примененной операции: баннер ошибки
// или новые карточки с кнопкой "Generate more".
func (h *Handler) render(chatID int64, state controller.State, more bool) {
	if state.HasError() {
		h.bot.Send(chatID, FormatBanner(state.ErrorMessage))
		return
	}

	batch := state.NewResults()
	if len(batch) == 0 {
		return
	}

	h.bot.Send(chatID, FormatHeader(state, more))
	for _, r := range batch {
		h.sendCard(chatID, r)
	}

	footer := FormatFooter(state)
	if state.CanLoadMore() {
		h.bot.SendWithMore(chatID, footer)
	} else {
		h.bot.Send(chatID, footer)
	}
}

func (h *Handler) sendCard(chatID int64, r domain.ResultRecord) {
	card := FormatCard(r)
	if poster := r.PosterURL(); poster != "" && len(card) <= captionLimit {
		err := h.bot.SendPhoto(chatID, poster, card)
		if err == nil {
			return
		}
		h.bot.logger.Debug("failed to send poster, falling back to text",
			zap.Error(err),
			zap.String("title", r.Title),
		)
	}

	for _, m := range SplitMessage(FormatTextCard(r), messageLimit) {
		if err := h.bot.Send(chatID, m); err != nil {
			h.bot.logger.Error("failed to send message", zap.Error(err))
		}
	}
}

func mapErrorToMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyQuery):
		return "Usage: /search description of the movie"
	case errors.Is(err, context.DeadlineExceeded):
		return "The request took too long. Please try again."
	default:
		return "Something went wrong. Please try again later."
	}
}
