package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ledgerbot/internal/bot"
	applog "ledgerbot/internal/log"
)

// UpdateSource is the subset of *tgbotapi.BotAPI used for long polling.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Dispatcher accepts inbound messages for processing, e.g. bot.Serializer.
type Dispatcher interface {
	Dispatch(ctx context.Context, in bot.Inbound)
}

type Receiver struct {
	src         UpdateSource
	dispatcher  Dispatcher
	pollTimeout int
	logger      *applog.Logger
}

// NewReceiver long-polls src with a server-side timeout of pollTimeout
// seconds.
func NewReceiver(src UpdateSource, dispatcher Dispatcher, pollTimeout int, logger *applog.Logger) *Receiver {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Receiver{
		src:         src,
		dispatcher:  dispatcher,
		pollTimeout: pollTimeout,
		logger:      logger.WithComponent(applog.ComponentTelegram),
	}
}

// Run polls until ctx is done. Messages already dispatched keep a context
// that outlives ctx so their replies are not cut off at shutdown.
func (r *Receiver) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = r.pollTimeout
	updates := r.src.GetUpdatesChan(cfg)
	handlerCtx := context.WithoutCancel(ctx)

	r.logger.InfoContext(ctx, "Polling for updates", "timeout_s", r.pollTimeout)
	for {
		select {
		case <-ctx.Done():
			r.src.StopReceivingUpdates()
			r.logger.InfoContext(ctx, "Stopped polling")
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			in, ok := ToInbound(upd)
			if !ok {
				continue
			}
			r.dispatcher.Dispatch(handlerCtx, in)
		}
	}
}

// ToInbound extracts a text message from upd. Edits, channel posts and
// non-text messages are skipped.
func ToInbound(upd tgbotapi.Update) (bot.Inbound, bool) {
	msg := upd.Message
	if msg == nil || msg.Chat == nil || msg.Text == "" {
		return bot.Inbound{}, false
	}
	kind := bot.ChatGroup
	if msg.Chat.IsPrivate() {
		kind = bot.ChatPrivate
	}
	return bot.Inbound{ChatID: msg.Chat.ID, Text: msg.Text, Kind: kind}, true
}
